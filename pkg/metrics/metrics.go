// Package metrics exposes Prometheus counters for password evaluations.
// Labels never carry password material.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	EvaluationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "passcheck_evaluations_total",
			Help: "Total number of completed password evaluations",
		},
		[]string{"source", "tier"},
	)

	EvaluationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "passcheck_evaluation_errors_total",
			Help: "Total number of failed password evaluations",
		},
		[]string{"source"},
	)

	EvaluationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "passcheck_evaluation_duration_seconds",
			Help:    "Duration of password evaluation in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
		},
		[]string{"source"},
	)
)

// ObserveEvaluation records a completed evaluation.
func ObserveEvaluation(source, tier string, d time.Duration) {
	EvaluationsTotal.WithLabelValues(source, tier).Inc()
	EvaluationDuration.WithLabelValues(source).Observe(d.Seconds())
}

// ObserveError records a failed evaluation.
func ObserveError(source string) {
	EvaluationErrors.WithLabelValues(source).Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
