// Package rsvps stores RSVP records in PostgreSQL.
package rsvps

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/thabitrevor/wedding/internal/common"
	"github.com/thabitrevor/wedding/internal/dbx"
	"github.com/thabitrevor/wedding/internal/server/models"
)

// uniqueViolation is the SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// FindByEmail looks up the RSVP with exactly this email.
func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*models.RSVP, error) {
	query :=
		`SELECT id, name, email, attending, partner_name, message, submitted_at FROM rsvps
		 WHERE email = $1
		 `

	rsvp, err := scanRSVP(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return rsvp, nil
}

// Create inserts rsvp and stores the generated id back into it. The unique
// index on email is the authoritative duplicate guard; its violation is
// reported as common.ErrorAlreadyExists.
func (r *PostgresRepository) Create(ctx context.Context, rsvp *models.RSVP) error {
	query :=
		`INSERT INTO rsvps (name, email, attending, partner_name, message, submitted_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		rsvp.Name, rsvp.Email, rsvp.Attending, nullable(rsvp.PartnerName), nullable(rsvp.Message), rsvp.SubmittedAt,
	).Scan(&rsvp.ID)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

// List returns every RSVP in submission order.
func (r *PostgresRepository) List(ctx context.Context) ([]*models.RSVP, error) {
	query :=
		`SELECT id, name, email, attending, partner_name, message, submitted_at FROM rsvps
		 ORDER BY submitted_at, id
		 `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select rsvps: %w", err)
	}
	defer rows.Close()

	var result []*models.RSVP
	for rows.Next() {
		rsvp, err := scanRSVP(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, rsvp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRSVP(s scanner) (*models.RSVP, error) {
	var (
		rsvp    models.RSVP
		partner sql.NullString
		message sql.NullString
	)
	if err := s.Scan(&rsvp.ID, &rsvp.Name, &rsvp.Email, &rsvp.Attending, &partner, &message, &rsvp.SubmittedAt); err != nil {
		return nil, err
	}
	if partner.Valid {
		rsvp.PartnerName = &partner.String
	}
	if message.Valid {
		rsvp.Message = &message.String
	}
	return &rsvp, nil
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
