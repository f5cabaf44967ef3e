package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all custom Prometheus metrics for the application
type Metrics struct {
	// Suggestion pipeline metrics
	SuggestionRequests prometheus.Counter
	SuggestionLatency  prometheus.Histogram
	GeneratorFailures  prometheus.Counter

	// FAQ clustering metrics: outcome is "merged" or "new"
	Resolutions *prometheus.CounterVec
}

var globalMetrics *Metrics

// InitMetrics initializes the Prometheus metrics. queueDepth is polled for
// the live queue depth gauge; pass nil to skip registering it (tests).
func InitMetrics(queueDepth func() float64) *Metrics {
	metrics := &Metrics{
		SuggestionRequests: promauto.NewCounter(prometheus.CounterOpts{
			Name: "officehourlens_suggestion_requests_total",
			Help: "Total number of AI suggestion attempts",
		}),

		SuggestionLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "officehourlens_suggestion_duration_seconds",
			Help:    "Suggestion composition latency in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120}, // generation can take minutes on CPU
		}),

		GeneratorFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "officehourlens_generator_failures_total",
			Help: "Total number of failed external generation calls (fallback served)",
		}),

		Resolutions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "officehourlens_resolutions_total",
			Help: "Total number of FAQ-saved resolutions by clustering outcome",
		}, []string{"outcome"}), // "merged" or "new"
	}

	if queueDepth != nil {
		prometheus.MustRegister(prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "officehourlens_queue_depth",
				Help: "Current number of open and in-progress questions",
			},
			queueDepth,
		))
	}

	globalMetrics = metrics
	return metrics
}

// GetMetrics returns the global metrics instance (nil until InitMetrics)
func GetMetrics() *Metrics {
	return globalMetrics
}

// RecordSuggestion records one suggestion attempt and its latency
func (m *Metrics) RecordSuggestion(seconds float64) {
	m.SuggestionRequests.Inc()
	m.SuggestionLatency.Observe(seconds)
}

// RecordGeneratorFailure records a failed external generation call
func (m *Metrics) RecordGeneratorFailure() {
	m.GeneratorFailures.Inc()
}

// RecordResolution records a save-to-FAQ resolution outcome
func (m *Metrics) RecordResolution(outcome string) {
	m.Resolutions.WithLabelValues(outcome).Inc()
}
