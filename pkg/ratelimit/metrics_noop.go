package ratelimit

import "time"

// NoOpMetrics is a RateLimitMetrics that discards everything. Used in tests
// and wherever metrics collection is switched off.
type NoOpMetrics struct{}

// NewNoOpMetrics creates a NoOpMetrics.
func NewNoOpMetrics() *NoOpMetrics {
	return &NoOpMetrics{}
}

func (m *NoOpMetrics) RecordAllowed(limiterType, endpoint string) {}

func (m *NoOpMetrics) RecordDenied(limiterType, endpoint string) {}

func (m *NoOpMetrics) RecordCheckDuration(limiterType string, duration time.Duration) {}

func (m *NoOpMetrics) SetActiveKeys(limiterType string, count int) {}

func (m *NoOpMetrics) RecordCircuitState(limiterType, state string) {}

func (m *NoOpMetrics) RecordDegradationLevel(limiterType string, level int) {}

func (m *NoOpMetrics) RecordEviction(limiterType string, count int) {}
