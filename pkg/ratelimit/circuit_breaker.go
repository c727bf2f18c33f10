package ratelimit

import (
	"log/slog"
	"sync"
	"time"
)

// CircuitState is the current state of the circuit breaker.
type CircuitState int

const (
	// StateClosed is normal operation.
	StateClosed CircuitState = iota

	// StateOpen means the limiter itself kept failing. While open the
	// breaker fails open: requests pass without rate limiting, trading
	// strictness for availability.
	StateOpen

	// StateHalfOpen lets one operation through to probe recovery.
	StateHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreakerConfig configures the limiter's circuit breaker.
type CircuitBreakerConfig struct {
	// FailureThreshold is the consecutive failure count that opens the
	// circuit. Default 10.
	FailureThreshold int

	// RecoveryTimeout is how long to wait before probing recovery.
	// Default 30 seconds.
	RecoveryTimeout time.Duration

	// Clock abstracts time for tests. Default SystemClock.
	Clock Clock

	// Metrics records state changes. Default NoOpMetrics.
	Metrics RateLimitMetrics

	// LimiterType labels the breaker's metrics ("ip", "user").
	LimiterType string
}

// CircuitBreaker protects request handling from a malfunctioning rate
// limiter. After FailureThreshold consecutive limiter errors the circuit
// opens and requests bypass rate limiting entirely until a probe succeeds.
// Fail-open is intentional here: losing rate limiting briefly is preferable
// to refusing all traffic because the limiter store broke.
type CircuitBreaker struct {
	config CircuitBreakerConfig

	mu                  sync.RWMutex
	state               CircuitState
	consecutiveFailures int
	lastFailureTime     time.Time
	lastStateChange     time.Time
}

// NewCircuitBreaker creates a breaker, filling zero config values with
// defaults.
func NewCircuitBreaker(config CircuitBreakerConfig) *CircuitBreaker {
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = 10
	}
	if config.RecoveryTimeout <= 0 {
		config.RecoveryTimeout = 30 * time.Second
	}
	if config.Clock == nil {
		config.Clock = &SystemClock{}
	}
	if config.Metrics == nil {
		config.Metrics = &NoOpMetrics{}
	}

	cb := &CircuitBreaker{
		config:          config,
		state:           StateClosed,
		lastStateChange: config.Clock.Now(),
	}

	config.Metrics.RecordCircuitState(config.LimiterType, cb.state.String())

	return cb
}

// Execute runs the operation under breaker protection.
//
//   - Closed: run normally, tracking failures.
//   - Open: skip the operation and return nil (fail-open).
//   - Half-open: run as a probe; success closes the circuit, failure
//     reopens it.
func (cb *CircuitBreaker) Execute(operation func() error) error {
	cb.attemptRecovery()

	cb.mu.RLock()
	currentState := cb.state
	cb.mu.RUnlock()

	switch currentState {
	case StateOpen:
		return nil

	case StateHalfOpen:
		return cb.executeProbe(operation)

	default:
		err := operation()
		if err != nil {
			cb.RecordFailure()
			return err
		}
		cb.RecordSuccess()
		return nil
	}
}

// executeProbe runs the half-open test operation.
func (cb *CircuitBreaker) executeProbe(operation func() error) error {
	err := operation()

	cb.mu.Lock()
	oldState := cb.state
	if err != nil {
		cb.state = StateOpen
		cb.consecutiveFailures++
		cb.lastFailureTime = cb.config.Clock.Now()
	} else {
		cb.state = StateClosed
		cb.consecutiveFailures = 0
	}
	cb.lastStateChange = cb.config.Clock.Now()
	newState := cb.state
	failures := cb.consecutiveFailures
	cb.mu.Unlock()

	cb.config.Metrics.RecordCircuitState(cb.config.LimiterType, newState.String())
	cb.logStateChange(oldState, newState, failures)

	return err
}

// RecordFailure counts a limiter failure, opening the circuit when the
// threshold is reached.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	cb.consecutiveFailures++
	cb.lastFailureTime = cb.config.Clock.Now()

	opened := false
	oldState := cb.state
	if cb.state == StateClosed && cb.consecutiveFailures >= cb.config.FailureThreshold {
		cb.state = StateOpen
		cb.lastStateChange = cb.config.Clock.Now()
		opened = true
	}
	failures := cb.consecutiveFailures
	cb.mu.Unlock()

	if opened {
		cb.config.Metrics.RecordCircuitState(cb.config.LimiterType, StateOpen.String())
		cb.logStateChange(oldState, StateOpen, failures)
	}
}

// RecordSuccess resets the consecutive failure counter.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	cb.consecutiveFailures = 0
	cb.mu.Unlock()
}

// attemptRecovery transitions open to half-open once the recovery timeout
// has elapsed.
func (cb *CircuitBreaker) attemptRecovery() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state != StateOpen {
		return
	}

	if cb.config.Clock.Now().Sub(cb.lastStateChange) >= cb.config.RecoveryTimeout {
		cb.state = StateHalfOpen
		cb.lastStateChange = cb.config.Clock.Now()
		cb.config.Metrics.RecordCircuitState(cb.config.LimiterType, StateHalfOpen.String())

		slog.Info("circuit breaker attempting recovery",
			slog.String("limiter_type", cb.config.LimiterType),
			slog.String("new_state", StateHalfOpen.String()),
		)
	}
}

// State returns the current circuit state.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.RLock()
	defer cb.mu.RUnlock()

	return cb.state
}

// ConsecutiveFailures returns the current consecutive failure count.
func (cb *CircuitBreaker) ConsecutiveFailures() int {
	cb.mu.RLock()
	defer cb.mu.RUnlock()

	return cb.consecutiveFailures
}

func (cb *CircuitBreaker) logStateChange(oldState, newState CircuitState, failures int) {
	slog.Warn("circuit breaker state changed",
		slog.String("limiter_type", cb.config.LimiterType),
		slog.String("previous_state", oldState.String()),
		slog.String("new_state", newState.String()),
		slog.Int("consecutive_failures", failures),
		slog.Duration("recovery_timeout", cb.config.RecoveryTimeout),
	)
}
