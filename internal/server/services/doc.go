// Package services contains the server-side business logic: the RSVP
// submission workflow, the guest photo wall and admin authentication.
package services
