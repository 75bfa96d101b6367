// Package services holds client-side state on top of the API client. The
// admin session keeps the bearer token in memory only; it is gone when the
// CLI exits.
package services

import (
	"context"
	"errors"

	"github.com/thabitrevor/wedding/internal/client/client"
)

// ErrLoginRequired is returned by admin calls made without a valid session.
var ErrLoginRequired = errors.New("admin login required")

type AdminService interface {
	Login(ctx context.Context, password []byte) error
	Logout()
	LoggedIn() bool
	Guests(ctx context.Context) ([]client.Guest, error)
	Stats(ctx context.Context) (*client.Stats, error)
}

type adminService struct {
	api   client.Client
	token string
}

func NewAdminService(api client.Client) AdminService {
	return &adminService{api: api}
}

func (s *adminService) Login(ctx context.Context, password []byte) error {
	token, err := s.api.AdminLogin(ctx, string(password))
	if err != nil {
		return err
	}
	s.token = token
	return nil
}

func (s *adminService) Logout() { s.token = "" }

func (s *adminService) LoggedIn() bool { return s.token != "" }

func (s *adminService) Guests(ctx context.Context) ([]client.Guest, error) {
	if !s.LoggedIn() {
		return nil, ErrLoginRequired
	}
	guests, err := s.api.ListGuests(ctx, s.token)
	return guests, s.check(err)
}

func (s *adminService) Stats(ctx context.Context) (*client.Stats, error) {
	if !s.LoggedIn() {
		return nil, ErrLoginRequired
	}
	st, err := s.api.Stats(ctx, s.token)
	return st, s.check(err)
}

// check drops the session when the server no longer accepts the token.
func (s *adminService) check(err error) error {
	if errors.Is(err, client.ErrUnauthorized) {
		s.token = ""
		return ErrLoginRequired
	}
	return err
}
