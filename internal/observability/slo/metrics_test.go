package slo

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	io_prometheus_client "github.com/prometheus/client_model/go"
)

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()

	metric := &io_prometheus_client.Metric{}
	if err := g.Write(metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	return metric.GetGauge().GetValue()
}

func TestSLOConstants(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		expected float64
	}{
		{"AvailabilitySLO", AvailabilitySLO, 99.9},
		{"LatencyP95SLO", LatencyP95SLO, 0.200},
		{"LatencyP99SLO", LatencyP99SLO, 0.500},
		{"ErrorRateSLO", ErrorRateSLO, 0.001},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != tt.expected {
				t.Errorf("%s = %v, want %v", tt.name, tt.value, tt.expected)
			}
		})
	}
}

func TestUpdateFunctions(t *testing.T) {
	tests := []struct {
		name   string
		update func(float64)
		gauge  prometheus.Gauge
		value  float64
	}{
		{"availability", UpdateAvailability, SLOAvailability, 0.9995},
		{"latency p95", UpdateLatencyP95, SLOLatencyP95, 0.150},
		{"latency p99", UpdateLatencyP99, SLOLatencyP99, 0.450},
		{"error rate", UpdateErrorRate, SLOErrorRate, 0.0005},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.gauge.Set(0)

			tt.update(tt.value)

			if got := gaugeValue(t, tt.gauge); got != tt.value {
				t.Errorf("gauge = %v, want %v", got, tt.value)
			}
		})
	}
}

func TestMetricsAreRegistered(t *testing.T) {
	metrics := []prometheus.Collector{
		SLOAvailability,
		SLOLatencyP95,
		SLOLatencyP99,
		SLOErrorRate,
	}

	for _, metric := range metrics {
		desc := make(chan *prometheus.Desc, 1)
		metric.Describe(desc)
		select {
		case d := <-desc:
			if d == nil {
				t.Error("metric descriptor is nil")
			}
		default:
			t.Error("no descriptor received")
		}
	}
}

func TestSLOTargetsAreReasonable(t *testing.T) {
	if AvailabilitySLO < 90.0 || AvailabilitySLO > 100.0 {
		t.Errorf("AvailabilitySLO = %v, should be between 90 and 100", AvailabilitySLO)
	}

	if LatencyP95SLO <= 0 || LatencyP95SLO > 1.0 {
		t.Errorf("LatencyP95SLO = %v, should be between 0 and 1 second", LatencyP95SLO)
	}

	if LatencyP99SLO <= LatencyP95SLO || LatencyP99SLO > 2.0 {
		t.Errorf("LatencyP99SLO = %v, should be greater than P95 (%v) and less than 2 seconds",
			LatencyP99SLO, LatencyP95SLO)
	}

	if ErrorRateSLO < 0 || ErrorRateSLO > 0.01 {
		t.Errorf("ErrorRateSLO = %v, should be between 0 and 0.01 (1%%)", ErrorRateSLO)
	}
}
