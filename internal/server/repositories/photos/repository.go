package photos

import (
	"context"

	"github.com/thabitrevor/wedding/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, p *models.Photo) error
	ListApproved(ctx context.Context) ([]*models.Photo, error)
}
