package client

import (
	"context"
	"time"
)

// RSVPRequest mirrors the RSVP form.
type RSVPRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Attending       bool   `json:"attending"`
	BringingPartner bool   `json:"bringingPartner"`
	PartnerName     string `json:"partnerName,omitempty"`
	Message         string `json:"message,omitempty"`
}

// RSVPResult is the server's acknowledgement of a stored RSVP.
type RSVPResult struct {
	Message string `json:"message"`
	RSVP    struct {
		ID          string    `json:"id"`
		Email       string    `json:"email"`
		Attending   bool      `json:"attending"`
		PartnerName string    `json:"partnerName"`
		SubmittedAt time.Time `json:"submittedAt"`
	} `json:"rsvp"`
}

type Photo struct {
	ID           string    `json:"id"`
	FileName     string    `json:"fileName"`
	UploaderName string    `json:"uploaderName"`
	UploadedAt   time.Time `json:"uploadedAt"`
	URL          string    `json:"url"`
}

type Guest struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Attending   bool      `json:"attending"`
	PartnerName *string   `json:"partnerName"`
	Message     *string   `json:"message"`
	PartySize   int       `json:"partySize"`
	SubmittedAt time.Time `json:"submittedAt"`
}

type Stats struct {
	Total     int `json:"total"`
	Attending int `json:"attending"`
	Declined  int `json:"declined"`
	Partners  int `json:"partners"`
	Headcount int `json:"headcount"`
}

// Client is the wedding API as used by the CLI. Admin calls take the token
// returned by AdminLogin.
type Client interface {
	Ping(ctx context.Context) error
	SubmitRSVP(ctx context.Context, req RSVPRequest) (*RSVPResult, error)
	ListPhotos(ctx context.Context) ([]Photo, error)
	AdminLogin(ctx context.Context, password string) (string, error)
	ListGuests(ctx context.Context, token string) ([]Guest, error)
	Stats(ctx context.Context, token string) (*Stats, error)
}
