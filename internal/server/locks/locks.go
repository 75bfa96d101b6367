// Package locks serializes RSVP submissions that share an email address.
// The database unique index stays the authoritative duplicate guard; the lock
// only keeps concurrent submissions from racing each other to it.
package locks

import (
	"context"
	"errors"
)

// ErrLocked is returned when another submission holds the lock.
var ErrLocked = errors.New("lock is held")

// ReleaseFunc gives a lock back. It is safe to call after the lock expired.
type ReleaseFunc func(ctx context.Context) error

// Locker hands out short-lived exclusive locks by key.
type Locker interface {
	Acquire(ctx context.Context, key string) (ReleaseFunc, error)
}

// NoopLocker never blocks. Used when no Redis is configured.
type NoopLocker struct{}

func (NoopLocker) Acquire(context.Context, string) (ReleaseFunc, error) {
	return func(context.Context) error { return nil }, nil
}
