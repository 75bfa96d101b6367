package repomanager

import (
	"context"
	"database/sql"

	"github.com/thabitrevor/wedding/internal/dbx"
	"github.com/thabitrevor/wedding/internal/server/repositories/photos"
	"github.com/thabitrevor/wedding/internal/server/repositories/rsvps"
)

// RepositoryManager vends repositories bound to a connection or transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	RSVPs(db dbx.DBTX) rsvps.Repository
	Photos(db dbx.DBTX) photos.Repository
}
