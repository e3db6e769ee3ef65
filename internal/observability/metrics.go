package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// inference engine.
type Metrics struct {
	InferenceRequests *prometheus.CounterVec // labels: analysis_type
	InferenceDuration prometheus.Histogram
	ScenarioRequests  prometheus.Counter
	ChatReplies       *prometheus.CounterVec // labels: mode={assistant,template}
	PersistFailures   *prometheus.CounterVec // labels: op={heartbeat,feedback}
	EngineUp          prometheus.Gauge
}

// NewMetrics creates and registers all engine metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		InferenceRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "field_inference",
			Name:      "requests_total",
			Help:      "Total inference requests by analysis type.",
		}, []string{"analysis_type"}),
		InferenceDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "field_inference",
			Name:      "inference_duration_seconds",
			Help:      "Duration of a complete inference pipeline run.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		ScenarioRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "field_inference",
			Name:      "scenario_requests_total",
			Help:      "Total scenario simulations served.",
		}),
		ChatReplies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "field_inference",
			Name:      "chat_replies_total",
			Help:      "Chat replies by producing mode (assistant or template fallback).",
		}, []string{"mode"}),
		PersistFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "field_inference",
			Name:      "persist_failures_total",
			Help:      "Best-effort persistence failures by operation.",
		}, []string{"op"}),
		EngineUp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "field_inference",
			Name:      "engine_up",
			Help:      "1 while the engine is serving.",
		}),
	}

	prometheus.MustRegister(
		m.InferenceRequests,
		m.InferenceDuration,
		m.ScenarioRequests,
		m.ChatReplies,
		m.PersistFailures,
		m.EngineUp,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		InferenceRequests: prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "field_inference", Name: "requests_total"}, []string{"analysis_type"}),
		InferenceDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "field_inference", Name: "inference_duration_seconds"}),
		ScenarioRequests:  prometheus.NewCounter(prometheus.CounterOpts{Namespace: "field_inference", Name: "scenario_requests_total"}),
		ChatReplies:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "field_inference", Name: "chat_replies_total"}, []string{"mode"}),
		PersistFailures:   prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "field_inference", Name: "persist_failures_total"}, []string{"op"}),
		EngineUp:          prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "field_inference", Name: "engine_up"}),
	}
}
