// Package ratelimit provides framework-agnostic rate limiting with
// pluggable stores, algorithms, and metrics collectors. It is used by the
// HTTP middleware but has no HTTP dependency of its own.
package ratelimit

import (
	"context"
	"time"
)

// RateLimitStore stores request timestamps per key (IP address, user ID).
// Implementations must be safe for concurrent use.
type RateLimitStore interface {
	// AddRequest records a request timestamp for the key.
	AddRequest(ctx context.Context, key string, timestamp time.Time) error

	// GetRequests returns the timestamps for the key that are after cutoff.
	GetRequests(ctx context.Context, key string, cutoff time.Time) ([]time.Time, error)

	// GetRequestCount returns the number of timestamps for the key after
	// cutoff. Cheaper than GetRequests when only the count matters.
	GetRequestCount(ctx context.Context, key string, cutoff time.Time) (int, error)

	// Cleanup drops timestamps older than cutoff across all keys.
	Cleanup(ctx context.Context, cutoff time.Time) error

	// KeyCount returns the number of keys currently tracked.
	KeyCount(ctx context.Context) (int, error)

	// MemoryUsage returns the estimated memory footprint in bytes.
	MemoryUsage(ctx context.Context) (int64, error)
}

// AtomicRateLimitStore extends RateLimitStore with a check-and-add that
// happens under a single lock acquisition, closing the window between
// counting and recording that concurrent requests could otherwise slip
// through.
type AtomicRateLimitStore interface {
	RateLimitStore

	// CheckAndAddRequest counts requests after cutoff and, if the count is
	// below limit, records the new timestamp. Returns whether the request
	// was admitted and the count after the operation.
	CheckAndAddRequest(ctx context.Context, key string, timestamp time.Time, cutoff time.Time, limit int) (allowed bool, count int, err error)
}

// RateLimitAlgorithm decides whether a request identified by key is within
// its limit for the window.
type RateLimitAlgorithm interface {
	IsAllowed(ctx context.Context, key string, store RateLimitStore, limit int, window time.Duration) (*RateLimitDecision, error)
}

// RateLimitMetrics records rate limiting observability data. The limiterType
// label distinguishes the IP limiter from the user limiter ("ip", "user").
type RateLimitMetrics interface {
	RecordAllowed(limiterType, endpoint string)
	RecordDenied(limiterType, endpoint string)
	RecordCheckDuration(limiterType string, duration time.Duration)
	SetActiveKeys(limiterType string, count int)
	RecordCircuitState(limiterType, state string)
	RecordDegradationLevel(limiterType string, level int)
	RecordEviction(limiterType string, count int)
}

// Clock abstracts time for tests.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock backed by time.Now.
type SystemClock struct{}

func (c *SystemClock) Now() time.Time {
	return time.Now()
}
