// Package models defines server-side data models persisted in the database.
package models

import "time"

// RSVP is one household's answer to the invitation. Records are created once
// and never updated by the API.
type RSVP struct {
	ID    string
	Name  string
	Email string
	// Attending governs whether PartnerName is meaningful.
	Attending bool
	// PartnerName is set only for attending guests bringing a partner.
	PartnerName *string
	Message     *string
	SubmittedAt time.Time
}

// PartySize is the number of people the RSVP accounts for.
func (r *RSVP) PartySize() int {
	if !r.Attending {
		return 0
	}
	if r.PartnerName != nil {
		return 2
	}
	return 1
}

// RSVPStats summarises all responses for the couple.
type RSVPStats struct {
	Total     int `json:"total"`
	Attending int `json:"attending"`
	Declined  int `json:"declined"`
	Partners  int `json:"partners"`
	Headcount int `json:"headcount"`
}
