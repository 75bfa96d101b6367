package rsvps

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
	"github.com/thabitrevor/wedding/internal/common"
	"github.com/thabitrevor/wedding/internal/server/models"
)

const (
	selectByEmailQ = `(?s)^SELECT\s+id,\s*name,\s*email,\s*attending,\s*partner_name,\s*message,\s*submitted_at\s+FROM\s+rsvps\s+WHERE\s+email\s*=\s*\$1\s*$`
	insertQ        = `(?s)^INSERT\s+INTO\s+rsvps\s*\(name,\s*email,\s*attending,\s*partner_name,\s*message,\s*submitted_at\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*\$6\)\s*RETURNING\s+id\s*$`
	listQ          = `(?s)^SELECT\s+id,.*FROM\s+rsvps\s+ORDER\s+BY\s+submitted_at,\s*id\s*$`
)

var rsvpColumns = []string{"id", "name", "email", "attending", "partner_name", "message", "submitted_at"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func strPtr(s string) *string { return &s }

func TestFindByEmail_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	at := time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(selectByEmailQ).
		WithArgs("jane@example.com").
		WillReturnRows(sqlmock.NewRows(rsvpColumns).
			AddRow("r-1", "Jane Doe", "jane@example.com", true, "John Doe", nil, at))

	got, err := repo.FindByEmail(context.Background(), "jane@example.com")
	require.NoError(t, err)
	require.Equal(t, "r-1", got.ID)
	require.True(t, got.Attending)
	require.NotNil(t, got.PartnerName)
	require.Equal(t, "John Doe", *got.PartnerName)
	require.Nil(t, got.Message)
	require.True(t, at.Equal(got.SubmittedAt))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByEmail_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(selectByEmailQ).
		WithArgs("ghost@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByEmail(context.Background(), "ghost@example.com")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestFindByEmail_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(selectByEmailQ).
		WithArgs("jane@example.com").
		WillReturnError(errors.New("connection refused"))

	_, err := repo.FindByEmail(context.Background(), "jane@example.com")
	if err == nil || !regexp.MustCompile(`db error: .*connection refused`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
	require.NotErrorIs(t, err, common.ErrorNotFound)
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	at := time.Now().UTC()
	mock.ExpectQuery(insertQ).
		WithArgs("Jane Doe", "jane@example.com", true, "John Doe", "Congrats!", at).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("r-42"))

	r := &models.RSVP{
		Name: "Jane Doe", Email: "jane@example.com", Attending: true,
		PartnerName: strPtr("John Doe"), Message: strPtr("Congrats!"), SubmittedAt: at,
	}
	require.NoError(t, repo.Create(context.Background(), r))
	require.Equal(t, "r-42", r.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_NullOptionalFields(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQ).
		WithArgs("Sam", "sam@example.com", false, nil, nil, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("r-7"))

	r := &models.RSVP{Name: "Sam", Email: "sam@example.com", SubmittedAt: time.Now()}
	require.NoError(t, repo.Create(context.Background(), r))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_UniqueViolation(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQ).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "rsvps_email_key"})

	err := repo.Create(context.Background(), &models.RSVP{Name: "Jane", Email: "jane@example.com"})
	require.ErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQ).
		WillReturnError(&pgconn.PgError{Code: "57P01", Message: "terminating connection"})

	err := repo.Create(context.Background(), &models.RSVP{Name: "Jane", Email: "jane@example.com"})
	require.Error(t, err)
	require.NotErrorIs(t, err, common.ErrorAlreadyExists)
	require.Regexp(t, `db error: .*terminating connection`, err.Error())
}

func TestList_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	at := time.Now()
	mock.ExpectQuery(listQ).
		WillReturnRows(sqlmock.NewRows(rsvpColumns).
			AddRow("r-1", "Jane", "jane@example.com", true, "John", "Congrats!", at).
			AddRow("r-2", "Sam", "sam@example.com", false, nil, nil, at))

	got, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "Congrats!", *got[0].Message)
	require.Nil(t, got[1].PartnerName)
}

func TestList_QueryError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(listQ).WillReturnError(errors.New("boom"))

	_, err := repo.List(context.Background())
	require.ErrorContains(t, err, "failed to select rsvps")
}

func TestList_ScanError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(listQ).
		WillReturnRows(sqlmock.NewRows(rsvpColumns).
			AddRow("r-1", "Jane", "jane@example.com", "not-a-bool", nil, nil, time.Now()))

	_, err := repo.List(context.Background())
	require.Error(t, err)
}
