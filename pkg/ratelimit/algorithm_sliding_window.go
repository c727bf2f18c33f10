package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// SlidingWindowAlgorithm counts individual request timestamps inside a
// sliding time window, avoiding the boundary bursts a fixed window allows.
//
// The algorithm guards against the system clock moving backwards (NTP
// adjustments): the last timestamp seen per key is remembered, and when the
// clock reports an earlier time the remembered one is used instead, so a
// time jump cannot reset anyone's budget.
type SlidingWindowAlgorithm struct {
	clock Clock

	mu             sync.RWMutex
	lastTimestamps map[string]time.Time
}

// NewSlidingWindowAlgorithm creates the algorithm. A nil clock defaults to
// the system clock.
func NewSlidingWindowAlgorithm(clock Clock) *SlidingWindowAlgorithm {
	if clock == nil {
		clock = &SystemClock{}
	}

	return &SlidingWindowAlgorithm{
		clock:          clock,
		lastTimestamps: make(map[string]time.Time),
	}
}

// IsAllowed checks the key's request count in the window and records the
// request when admitted. Stores implementing AtomicRateLimitStore are used
// through their atomic path so concurrent checks cannot both pass on the
// last remaining slot.
func (a *SlidingWindowAlgorithm) IsAllowed(
	ctx context.Context,
	key string,
	store RateLimitStore,
	limit int,
	window time.Duration,
) (*RateLimitDecision, error) {
	now := a.getValidTimestamp(key)
	cutoff := now.Add(-window)
	resetAt := now.Add(window)

	if atomicStore, ok := store.(AtomicRateLimitStore); ok {
		allowed, count, err := atomicStore.CheckAndAddRequest(ctx, key, now, cutoff, limit)
		if err != nil {
			return nil, fmt.Errorf("failed to check and add request: %w", err)
		}
		if allowed {
			return NewAllowedDecision(key, "unknown", limit, limit-count, resetAt), nil
		}
		return NewDeniedDecision(key, "unknown", limit, resetAt), nil
	}

	// Non-atomic fallback. A concurrent request can slip between the count
	// and the add, which is tolerable for stores that cannot do better.
	count, err := store.GetRequestCount(ctx, key, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to get request count: %w", err)
	}

	if count < limit {
		if err := store.AddRequest(ctx, key, now); err != nil {
			return nil, fmt.Errorf("failed to add request: %w", err)
		}
		return NewAllowedDecision(key, "unknown", limit, limit-count-1, resetAt), nil
	}

	return NewDeniedDecision(key, "unknown", limit, resetAt), nil
}

// getValidTimestamp returns the current time, pinned to the last seen
// timestamp for the key when the clock has gone backwards.
func (a *SlidingWindowAlgorithm) getValidTimestamp(key string) time.Time {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.clock.Now()

	lastSeen, exists := a.lastTimestamps[key]
	if exists && now.Before(lastSeen) {
		slog.Warn("clock skew detected, using last valid timestamp",
			slog.String("key", key),
			slog.Time("now", now),
			slog.Time("last_seen", lastSeen),
			slog.Duration("skew", lastSeen.Sub(now)),
		)
		return lastSeen
	}

	a.lastTimestamps[key] = now
	return now
}

// CleanupExpiredTimestamps drops clock-skew tracking entries older than
// maxAge so the map does not grow with every key ever seen. Returns the
// number of entries removed.
func (a *SlidingWindowAlgorithm) CleanupExpiredTimestamps(maxAge time.Duration) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	cutoff := a.clock.Now().Add(-maxAge)
	removed := 0

	for key, timestamp := range a.lastTimestamps {
		if timestamp.Before(cutoff) {
			delete(a.lastTimestamps, key)
			removed++
		}
	}

	if removed > 0 {
		slog.Debug("cleaned up expired timestamp entries",
			slog.Int("removed", removed),
			slog.Int("remaining", len(a.lastTimestamps)),
		)
	}

	return removed
}

// GetTrackedKeysCount returns the number of keys tracked for clock skew
// protection.
func (a *SlidingWindowAlgorithm) GetTrackedKeysCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return len(a.lastTimestamps)
}
