// Package cli provides weddingctl, an interactive client for the wedding API.
//
// Guests can submit an RSVP and browse approved photos; the couple can log in
// with the admin password to list guests and see attendance totals. A
// background watcher pings the server and shows online/offline in the prompt.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
