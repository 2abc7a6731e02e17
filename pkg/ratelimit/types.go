package ratelimit

import (
	"context"
	"time"
)

// Config is an immutable admission policy.
type Config struct {
	// Window is the fixed time span the ceiling applies to.
	Window time.Duration

	// Max is the request ceiling per window.
	Max int

	// SkipSuccessful refunds requests whose downstream handler succeeded
	// (status < 400), so only failures count toward the ceiling.
	SkipSuccessful bool

	// SkipFailed refunds requests whose downstream handler failed
	// (status >= 400), so only successes count toward the ceiling.
	SkipFailed bool
}

// Result is the outcome of an admission check.
type Result struct {
	// Allowed reports whether the request fits under the ceiling.
	Allowed bool

	// Limit is the policy ceiling.
	Limit int

	// Count is the number of requests observed in the current window,
	// including this one.
	Count int64

	// Remaining is how many more requests the window admits.
	Remaining int

	// ResetAt is when the current window expires.
	ResetAt time.Time
}

// RetryAfter returns how long to wait before the next request can be
// admitted. Zero when the request was allowed.
func (r *Result) RetryAfter() time.Duration {
	if r.Allowed {
		return 0
	}
	return time.Until(r.ResetAt)
}

// Store owns the per-key window counters. Implementations must make
// Increment atomic per key: two concurrent calls for the same key must
// observe distinct counts.
type Store interface {
	// Increment loads or creates the entry for key, resets it when its
	// window has expired, adds one and returns the new count with the
	// window expiry.
	Increment(ctx context.Context, key string, window time.Duration) (count int64, resetAt time.Time, err error)

	// Decrement refunds one previously counted request. It is a no-op for
	// absent or expired entries and never drops a count below zero.
	Decrement(ctx context.Context, key string) error

	// Get returns the current count and window expiry without counting a
	// request. Absent or expired entries report a zero count.
	Get(ctx context.Context, key string) (count int64, resetAt time.Time, err error)

	// Delete removes the entry for key.
	Delete(ctx context.Context, key string) error

	// Sweep removes entries whose window has expired and reports how many
	// were removed. Purely a storage-growth bound: an expired entry left in
	// place is still reset correctly on next access.
	Sweep(ctx context.Context) (removed int64, err error)
}
