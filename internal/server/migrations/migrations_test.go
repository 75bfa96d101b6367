package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMigrations_Embedded(t *testing.T) {
	files, err := fs.Glob(Migrations, "*.sql")
	require.NoError(t, err)
	require.Len(t, files, 2)

	for _, f := range files {
		b, err := fs.ReadFile(Migrations, f)
		require.NoError(t, err)
		require.True(t, strings.Contains(string(b), "-- +goose Up"), f)
		require.True(t, strings.Contains(string(b), "-- +goose Down"), f)
	}
}

func TestMigrations_EmailIsUnique(t *testing.T) {
	b, err := fs.ReadFile(Migrations, "00001_create_rsvps.sql")
	require.NoError(t, err)
	require.Contains(t, string(b), "CREATE UNIQUE INDEX rsvps_email_key ON rsvps (email)")
}
