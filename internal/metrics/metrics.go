// Package metrics provides Prometheus metrics collection for the prediction
// engine: scoring volume and latency, score distribution, routing fallbacks,
// training runs and bundle age. The engine records through its Recorder
// interface, so an embedding service decides how the metrics are exposed.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the engine.
type Metrics struct {
	Predictions      prometheus.Counter   // Total number of scoring calls
	PredictionScores prometheus.Histogram // Distribution of final probabilities
	ScoreLatency     prometheus.Histogram // End-to-end scoring latency in seconds
	RoutingFallbacks prometheus.Counter   // Records routed through a fallback expert
	TrainingRuns     prometheus.Counter   // Training runs started
	TrainingFailures prometheus.Counter   // Training runs that aborted
	TrainingDuration prometheus.Histogram // Training run duration in seconds
	BundleAge        prometheus.Gauge     // Age of the active model bundle in seconds
}

// New creates and registers all metrics on the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates metrics against a custom registry, which keeps
// tests isolated from the global registry.
func NewWithRegistry(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		Predictions: factory.NewCounter(prometheus.CounterOpts{
			Name: "predictions_total",
			Help: "Total number of scoring calls",
		}),
		PredictionScores: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "prediction_scores",
			Help:    "Distribution of final success probabilities",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		}),
		ScoreLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "score_latency_seconds",
			Help:    "End-to-end scoring latency in seconds",
			Buckets: []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
		}),
		RoutingFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Name: "routing_fallbacks_total",
			Help: "Records scored through a fallback expert",
		}),
		TrainingRuns: factory.NewCounter(prometheus.CounterOpts{
			Name: "training_runs_total",
			Help: "Training runs started",
		}),
		TrainingFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "training_failures_total",
			Help: "Training runs that aborted with an error",
		}),
		TrainingDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "training_duration_seconds",
			Help:    "Training run duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
		BundleAge: factory.NewGauge(prometheus.GaugeOpts{
			Name: "bundle_age_seconds",
			Help: "Age of the active model bundle in seconds",
		}),
	}
}
