package ratelimit

import (
	"context"
	"time"
)

// Store persists rate limit entries. Implementations need not be safe for
// a concurrent read-modify-write; the Limiter serializes that.
type Store interface {
	// Get returns the entry for key; ok is false when there is none.
	Get(ctx context.Context, key string) (entry Entry, ok bool, err error)
	Set(ctx context.Context, key string, entry Entry) error
	// Sweep removes entries whose window has elapsed at now and returns how
	// many were removed.
	Sweep(ctx context.Context, now time.Time) (int, error)
}
