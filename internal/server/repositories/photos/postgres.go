// Package photos stores guest photo metadata in PostgreSQL.
package photos

import (
	"context"
	"fmt"

	"github.com/thabitrevor/wedding/internal/dbx"
	"github.com/thabitrevor/wedding/internal/server/models"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts photo metadata. New rows are never approved; the id and
// upload time come from the database.
func (r *PostgresRepository) Create(ctx context.Context, p *models.Photo) error {
	query :=
		`INSERT INTO wedding_photos (file_name, file_path, file_size, mime_type, uploaded_by_name)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, uploaded_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		p.FileName, p.StoragePath, p.FileSize, p.MimeType, p.UploaderName,
	).Scan(&p.ID, &p.UploadedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	p.IsApproved = false
	return nil
}

// ListApproved returns approved photos, newest first.
func (r *PostgresRepository) ListApproved(ctx context.Context) ([]*models.Photo, error) {
	query :=
		`SELECT id, file_name, file_path, file_size, mime_type, uploaded_by_name, uploaded_at FROM wedding_photos
		 WHERE is_approved = TRUE
		 ORDER BY uploaded_at DESC
		 `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select photos: %w", err)
	}
	defer rows.Close()

	var result []*models.Photo
	for rows.Next() {
		p := models.Photo{IsApproved: true}
		if err := rows.Scan(&p.ID, &p.FileName, &p.StoragePath, &p.FileSize, &p.MimeType, &p.UploaderName, &p.UploadedAt); err != nil {
			return nil, err
		}
		result = append(result, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
