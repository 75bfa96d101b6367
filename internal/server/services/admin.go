package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/thabitrevor/wedding/internal/common"
	"github.com/thabitrevor/wedding/internal/logging"
	"github.com/thabitrevor/wedding/internal/server/auth"
	"github.com/thabitrevor/wedding/internal/server/config"
)

// AdminService authenticates the couple for the guest-list endpoints.
type AdminService struct {
	passwordHash  []byte
	jwtSecret     []byte
	tokenValidity time.Duration
	logger        logging.Logger
}

// NewAdminService prefers cfg.AdminPasswordHash. A plain AdminPassword is
// hashed here so it is never compared or kept in clear text. With neither
// set every login is rejected.
func NewAdminService(logger logging.Logger, cfg *config.Config) (*AdminService, error) {
	s := &AdminService{
		jwtSecret:     []byte(cfg.SecretKey),
		tokenValidity: cfg.AdminTokenValidity,
		logger:        logger,
	}

	switch {
	case cfg.AdminPasswordHash != "":
		if _, err := bcrypt.Cost([]byte(cfg.AdminPasswordHash)); err != nil {
			return nil, fmt.Errorf("admin password hash: %w", err)
		}
		s.passwordHash = []byte(cfg.AdminPasswordHash)
	case cfg.AdminPassword != "":
		h, err := HashAdminPassword(cfg.AdminPassword)
		if err != nil {
			return nil, fmt.Errorf("admin password: %w", err)
		}
		logger.Warn(context.Background(), "admin password configured in clear text, set a bcrypt hash instead")
		s.passwordHash = []byte(h)
	}
	return s, nil
}

// HashAdminPassword returns the bcrypt hash to put in AdminPasswordHash.
func HashAdminPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Login checks password and returns a signed admin token.
// A wrong password yields common.ErrorUnauthorized.
func (s *AdminService) Login(ctx context.Context, password string) (string, error) {
	if len(s.passwordHash) == 0 {
		s.logger.Warn(ctx, "admin login rejected", "reason", "no admin password configured")
		return "", common.ErrorUnauthorized
	}

	err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		s.logger.Warn(ctx, "admin login rejected")
		return "", common.ErrorUnauthorized
	}
	if err != nil {
		s.logger.Error(ctx, "admin password check failed", "error", err)
		return "", common.ErrorInternal
	}

	token, err := auth.GenerateToken(auth.AdminSubject, s.jwtSecret, s.tokenValidity)
	if err != nil {
		return "", common.ErrorInternal
	}
	return token, nil
}

// Authorize verifies an admin token.
func (s *AdminService) Authorize(token string) error {
	sub, err := auth.SubjectFromToken(token, s.jwtSecret)
	if err != nil {
		return err
	}
	if sub != auth.AdminSubject {
		return common.ErrInvalidToken
	}
	return nil
}
