package photos

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"github.com/thabitrevor/wedding/internal/server/models"
)

const (
	insertQ = `(?s)^INSERT\s+INTO\s+wedding_photos\s*\(file_name,\s*file_path,\s*file_size,\s*mime_type,\s*uploaded_by_name\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5\)\s*RETURNING\s+id,\s*uploaded_at\s*$`
	listQ   = `(?s)^SELECT\s+id,.*FROM\s+wedding_photos\s+WHERE\s+is_approved\s*=\s*TRUE\s+ORDER\s+BY\s+uploaded_at\s+DESC\s*$`
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewPostgresRepository(db), mock, db
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	at := time.Now().UTC()
	mock.ExpectQuery(insertQ).
		WithArgs("beach.jpg", "uploads/1-abc.jpg", int64(2048), "image/jpeg", "Anonymous Guest").
		WillReturnRows(sqlmock.NewRows([]string{"id", "uploaded_at"}).AddRow("p-1", at))

	p := &models.Photo{
		FileName: "beach.jpg", StoragePath: "uploads/1-abc.jpg", FileSize: 2048,
		MimeType: "image/jpeg", UploaderName: "Anonymous Guest", IsApproved: true,
	}
	require.NoError(t, repo.Create(context.Background(), p))
	require.Equal(t, "p-1", p.ID)
	require.True(t, at.Equal(p.UploadedAt))
	require.False(t, p.IsApproved)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQ).WillReturnError(errors.New("disk full"))

	err := repo.Create(context.Background(), &models.Photo{})
	require.ErrorContains(t, err, "db error: disk full")
}

func TestListApproved(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	at := time.Now()
	mock.ExpectQuery(listQ).
		WillReturnRows(sqlmock.NewRows([]string{"id", "file_name", "file_path", "file_size", "mime_type", "uploaded_by_name", "uploaded_at"}).
			AddRow("p-2", "cake.png", "uploads/2.png", int64(10), "image/png", "Aunt May", at).
			AddRow("p-1", "vows.jpg", "uploads/1.jpg", int64(20), "image/jpeg", "Anonymous Guest", at.Add(-time.Hour)))

	got, err := repo.ListApproved(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "uploads/2.png", got[0].StoragePath)
	require.True(t, got[1].IsApproved)
}

func TestListApproved_QueryError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(listQ).WillReturnError(errors.New("boom"))

	_, err := repo.ListApproved(context.Background())
	require.ErrorContains(t, err, "failed to select photos")
}
