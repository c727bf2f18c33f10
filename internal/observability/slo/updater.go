package slo

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

const (
	httpRequestsMetric = "http_requests_total"
	httpDurationMetric = "http_request_duration_seconds"
)

// Updater periodically recomputes the SLO gauges from the raw HTTP metrics.
// It reads http_requests_total for availability and error rate, and the
// http_request_duration_seconds histogram for latency percentiles.
type Updater struct {
	gatherer prometheus.Gatherer
	interval time.Duration
	logger   *slog.Logger
}

// NewUpdater creates an updater reading from the given gatherer.
// A nil gatherer falls back to the default registry, and a non-positive
// interval falls back to one minute.
func NewUpdater(gatherer prometheus.Gatherer, interval time.Duration, logger *slog.Logger) *Updater {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	if interval <= 0 {
		interval = time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Updater{
		gatherer: gatherer,
		interval: interval,
		logger:   logger,
	}
}

// Run recomputes the SLO gauges on a fixed interval until ctx is canceled.
func (u *Updater) Run(ctx context.Context) {
	ticker := time.NewTicker(u.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			u.UpdateOnce()
		}
	}
}

// UpdateOnce recomputes the SLO gauges from the current metric values.
// Gauges keep their previous value when no traffic has been recorded yet.
func (u *Updater) UpdateOnce() {
	families, err := u.gatherer.Gather()
	if err != nil {
		u.logger.Warn("failed to gather metrics for SLO update", "error", err)
		return
	}

	byName := make(map[string]*dto.MetricFamily, len(families))
	for _, mf := range families {
		byName[mf.GetName()] = mf
	}

	if mf, ok := byName[httpRequestsMetric]; ok {
		total, errors := sumRequests(mf)
		if total > 0 {
			UpdateAvailability((total - errors) / total)
			UpdateErrorRate(errors / total)
		}
	}

	if mf, ok := byName[httpDurationMetric]; ok {
		buckets, count := mergeBuckets(mf)
		if count > 0 {
			UpdateLatencyP95(quantileFromBuckets(buckets, count, 0.95))
			UpdateLatencyP99(quantileFromBuckets(buckets, count, 0.99))
		}
	}
}

// sumRequests totals request counts and 5xx counts across all label sets.
func sumRequests(mf *dto.MetricFamily) (total, errors float64) {
	for _, m := range mf.GetMetric() {
		value := m.GetCounter().GetValue()
		total += value
		for _, label := range m.GetLabel() {
			if label.GetName() == "status" && strings.HasPrefix(label.GetValue(), "5") {
				errors += value
			}
		}
	}
	return total, errors
}

// bucket is one cumulative histogram bucket.
type bucket struct {
	upperBound float64
	count      uint64
}

// mergeBuckets merges histogram buckets across all label sets of a family.
// All series of one family share the same bucket layout, so counts for a
// given upper bound can simply be summed.
func mergeBuckets(mf *dto.MetricFamily) ([]bucket, uint64) {
	merged := make(map[float64]uint64)
	var count uint64
	for _, m := range mf.GetMetric() {
		h := m.GetHistogram()
		count += h.GetSampleCount()
		for _, b := range h.GetBucket() {
			merged[b.GetUpperBound()] += b.GetCumulativeCount()
		}
	}

	buckets := make([]bucket, 0, len(merged))
	for ub, c := range merged {
		buckets = append(buckets, bucket{upperBound: ub, count: c})
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].upperBound < buckets[j].upperBound })
	return buckets, count
}

// quantileFromBuckets estimates a quantile by linear interpolation within the
// bucket containing the target rank, the same way PromQL's histogram_quantile
// does. Results are capped at the highest finite bucket bound.
func quantileFromBuckets(buckets []bucket, count uint64, q float64) float64 {
	if len(buckets) == 0 || count == 0 {
		return 0
	}

	rank := q * float64(count)
	var prevBound float64
	var prevCount uint64
	for _, b := range buckets {
		if float64(b.count) >= rank {
			if math.IsInf(b.upperBound, +1) {
				return prevBound
			}
			bucketCount := b.count - prevCount
			if bucketCount == 0 {
				return b.upperBound
			}
			return prevBound + (b.upperBound-prevBound)*(rank-float64(prevCount))/float64(bucketCount)
		}
		prevBound = b.upperBound
		prevCount = b.count
	}

	// The +Inf bucket is implicit in the exposition format, so the rank can
	// land past the last explicit bucket.
	return buckets[len(buckets)-1].upperBound
}
