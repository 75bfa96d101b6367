package httpapi

import (
	"time"

	"github.com/thabitrevor/wedding/internal/server/models"
)

type rsvpView struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Attending   bool      `json:"attending"`
	PartnerName *string   `json:"partnerName"`
	Message     *string   `json:"message"`
	PartySize   int       `json:"partySize"`
	SubmittedAt time.Time `json:"submittedAt"`
}

func newRSVPView(r *models.RSVP) rsvpView {
	return rsvpView{
		ID:          r.ID,
		Name:        r.Name,
		Email:       r.Email,
		Attending:   r.Attending,
		PartnerName: r.PartnerName,
		Message:     r.Message,
		PartySize:   r.PartySize(),
		SubmittedAt: r.SubmittedAt,
	}
}
