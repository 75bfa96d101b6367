package notify

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"html/template"
	"net/http"
	"strings"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

const (
	subjectAttending = "RSVP Confirmed - We Can't Wait to Celebrate with You! 💕"
	subjectDeclined  = "Thank You for Your RSVP Response 💕"
)

// Email is a rendered confirmation ready to hand to a mail API.
type Email struct {
	Subject string
	HTML    string
}

type emailView struct {
	GuestNames string
	PartySize  int
	Message    string
	Couple     string
}

// RenderConfirmation builds the confirmation mail for m. Attending guests get
// the party-size summary; declining guests get the thank-you variant.
func RenderConfirmation(m Message, couple string) (*Email, error) {
	view := emailView{
		GuestNames: m.Name,
		PartySize:  1,
		Message:    strings.TrimSpace(m.Message),
		Couple:     couple,
	}
	if m.PartnerName != "" {
		view.GuestNames = m.Name + " and " + m.PartnerName
		view.PartySize = 2
	}

	name, subject := "attending.html", subjectAttending
	if !m.Attending {
		name, subject = "declined.html", subjectDeclined
		view.GuestNames = m.Name
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, view); err != nil {
		return nil, err
	}
	return &Email{Subject: subject, HTML: buf.String()}, nil
}

// MailConfig configures MailNotifier.
type MailConfig struct {
	Endpoint string
	APIKey   string
	From     string
	ReplyTo  string
	Couple   string
}

// MailNotifier renders the confirmation itself and sends it through the
// Resend email API.
type MailNotifier struct {
	cfg    MailConfig
	client *http.Client
}

func NewMailNotifier(cfg MailConfig, client *http.Client) *MailNotifier {
	if client == nil {
		client = http.DefaultClient
	}
	return &MailNotifier{cfg: cfg, client: client}
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	ReplyTo string   `json:"reply_to,omitempty"`
}

type resendResponse struct {
	ID string `json:"id"`
}

func (n *MailNotifier) SendRSVPConfirmation(ctx context.Context, m Message) error {
	_, err := n.Send(ctx, m)
	return err
}

// Send renders and sends the confirmation, returning the provider's email id.
func (n *MailNotifier) Send(ctx context.Context, m Message) (string, error) {
	email, err := RenderConfirmation(m, n.cfg.Couple)
	if err != nil {
		return "", &DeliveryError{Err: err}
	}

	body, err := json.Marshal(resendRequest{
		From:    n.cfg.From,
		To:      []string{m.Email},
		Subject: email.Subject,
		HTML:    email.HTML,
		ReplyTo: n.cfg.ReplyTo,
	})
	if err != nil {
		return "", &DeliveryError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", &DeliveryError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+n.cfg.APIKey)

	var out resendResponse
	if err := doJSON(n.client, req, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}
