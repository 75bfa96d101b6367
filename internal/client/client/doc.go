// Package client talks to the wedding HTTP API on behalf of the CLI.
//
// Errors follow two shapes: ErrUnavailable when the server could not be
// reached at all, and *APIError when it answered with a non-2xx status. An
// APIError carries the server's guest-facing message so the CLI can print it
// verbatim.
package client
