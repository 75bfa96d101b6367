// Package notify delivers RSVP confirmation emails. Delivery is best effort:
// callers log failures and never let them affect a stored RSVP.
package notify

import (
	"context"
	"fmt"
)

// Message is the payload of a confirmation request. The JSON shape is what
// the confirmation endpoint accepts.
type Message struct {
	Email       string `json:"email"`
	Name        string `json:"name"`
	Attending   bool   `json:"attending"`
	PartnerName string `json:"partnerName,omitempty"`
	Message     string `json:"message,omitempty"`
}

// Notifier sends one RSVP confirmation.
type Notifier interface {
	SendRSVPConfirmation(ctx context.Context, m Message) error
}

// DeliveryError reports a confirmation that could not be delivered, either
// because the request failed or because the remote side answered non-2xx.
type DeliveryError struct {
	Status int
	Body   string
	Err    error
}

func (e *DeliveryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("notification delivery failed: %v", e.Err)
	}
	return fmt.Sprintf("notification delivery failed: status %d: %s", e.Status, e.Body)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, m Message) error

func (f NotifierFunc) SendRSVPConfirmation(ctx context.Context, m Message) error {
	return f(ctx, m)
}
