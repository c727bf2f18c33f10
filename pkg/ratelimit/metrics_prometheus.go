package ratelimit

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetrics implements RateLimitMetrics on a private Prometheus
// registry, keeping limiter metrics isolated from the default registry so
// tests and multiple limiter instances never collide.
type PrometheusMetrics struct {
	registry *prometheus.Registry

	// requestsTotal counts checks by limiter_type, status (allowed/denied)
	// and path.
	requestsTotal *prometheus.CounterVec

	// checkDuration buckets are tuned for sub-5ms checks; the upper
	// buckets exist to surface a degrading store before the breaker trips.
	checkDuration *prometheus.HistogramVec

	activeKeys *prometheus.GaugeVec

	// circuitState encodes the breaker state as 0=closed, 1=open,
	// 2=half-open.
	circuitState *prometheus.GaugeVec

	// degradationLevel encodes the limiter's degradation level as
	// 0=normal, 1=relaxed, 2=minimal, 3=disabled.
	degradationLevel *prometheus.GaugeVec

	evictionsTotal *prometheus.CounterVec
}

// NewPrometheusMetrics creates the metric set on a fresh registry. Expose
// it with promhttp.HandlerFor(metrics.Registry(), ...).
func NewPrometheusMetrics() *PrometheusMetrics {
	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_rate_limit_requests_total",
			Help: "Total rate limit requests by limiter type, status, and path",
		},
		[]string{"limiter_type", "status", "path"},
	)

	checkDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_rate_limit_check_duration_seconds",
			Help:    "Duration of rate limit check operations",
			Buckets: []float64{0.0005, 0.001, 0.002, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		},
		[]string{"limiter_type"},
	)

	activeKeys := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_rate_limit_active_keys",
			Help: "Current number of active keys by limiter type",
		},
		[]string{"limiter_type"},
	)

	circuitState := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_rate_limit_circuit_state",
			Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
		},
		[]string{"limiter_type"},
	)

	degradationLevel := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_rate_limit_degradation_level",
			Help: "Degradation level (0=normal, 1=relaxed, 2=minimal, 3=disabled)",
		},
		[]string{"limiter_type"},
	)

	evictionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_rate_limit_evictions_total",
			Help: "Total LRU evictions by limiter type",
		},
		[]string{"limiter_type"},
	)

	registry.MustRegister(
		requestsTotal,
		checkDuration,
		activeKeys,
		circuitState,
		degradationLevel,
		evictionsTotal,
	)

	return &PrometheusMetrics{
		registry:         registry,
		requestsTotal:    requestsTotal,
		checkDuration:    checkDuration,
		activeKeys:       activeKeys,
		circuitState:     circuitState,
		degradationLevel: degradationLevel,
		evictionsTotal:   evictionsTotal,
	}
}

// Registry returns the registry holding all rate limit metrics.
func (m *PrometheusMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordAllowed counts an admitted request.
func (m *PrometheusMetrics) RecordAllowed(limiterType, endpoint string) {
	m.requestsTotal.WithLabelValues(limiterType, "allowed", endpoint).Inc()
}

// RecordDenied counts a rejected request.
func (m *PrometheusMetrics) RecordDenied(limiterType, endpoint string) {
	m.requestsTotal.WithLabelValues(limiterType, "denied", endpoint).Inc()
}

// RecordCheckDuration observes how long a limit check took.
func (m *PrometheusMetrics) RecordCheckDuration(limiterType string, duration time.Duration) {
	m.checkDuration.WithLabelValues(limiterType).Observe(duration.Seconds())
}

// SetActiveKeys records the current key count for capacity monitoring.
func (m *PrometheusMetrics) SetActiveKeys(limiterType string, count int) {
	m.activeKeys.WithLabelValues(limiterType).Set(float64(count))
}

// RecordCircuitState maps the breaker state string onto the numeric gauge.
func (m *PrometheusMetrics) RecordCircuitState(limiterType, state string) {
	var stateValue float64
	switch state {
	case "closed":
		stateValue = 0
	case "open":
		stateValue = 1
	case "half-open":
		stateValue = 2
	default:
		stateValue = 0
	}
	m.circuitState.WithLabelValues(limiterType).Set(stateValue)
}

// RecordDegradationLevel records the limiter's current degradation level.
func (m *PrometheusMetrics) RecordDegradationLevel(limiterType string, level int) {
	m.degradationLevel.WithLabelValues(limiterType).Set(float64(level))
}

// RecordEviction counts keys evicted by the LRU policy. Sustained evictions
// usually mean the key cap is too low for the traffic, or a flood of unique
// source IPs.
func (m *PrometheusMetrics) RecordEviction(limiterType string, count int) {
	m.evictionsTotal.WithLabelValues(limiterType).Add(float64(count))
}
