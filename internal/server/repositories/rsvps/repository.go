package rsvps

import (
	"context"

	"github.com/thabitrevor/wedding/internal/server/models"
)

// Repository is the Guest Record Store: durable storage of RSVP rows keyed by
// email.
type Repository interface {
	// FindByEmail returns common.ErrorNotFound when no RSVP exists.
	FindByEmail(ctx context.Context, email string) (*models.RSVP, error)
	// Create stores r and fills r.ID. A second RSVP for the same email yields
	// common.ErrorAlreadyExists.
	Create(ctx context.Context, r *models.RSVP) error
	List(ctx context.Context) ([]*models.RSVP, error)
}
