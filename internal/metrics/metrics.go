// Package metrics provides Prometheus metrics for the match predictor.
// It covers the serving path (predictions, model loads, latency) and the
// offline data-quality pipeline (skipped deliveries, rows dropped per
// cleaning stage), exposed via the Prometheus metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the predictor service.
type Metrics struct {
	// Serving metrics
	PredictionsTotal   prometheus.Counter   // Total predictions served
	PredictionFailures prometheus.Counter   // Total failed prediction requests
	PredictionLatency  prometheus.Histogram // End-to-end predictor latency in seconds
	PredictionScores   prometheus.Histogram // Distribution of win probabilities served
	ValidationFailures prometheus.Counter   // Requests rejected before inference

	// Model lifecycle metrics
	ModelLoads        prometheus.Counter // Completed model artifact loads
	ModelLoadFailures prometheus.Counter // Failed model artifact loads

	// Data pipeline metrics
	DeliveriesSkipped    prometheus.Counter // Deliveries skipped during aggregation
	RowsDroppedMissing   prometheus.Counter // Summaries dropped for missing identity fields
	RowsDroppedZeroOvers prometheus.Counter // Summaries dropped for zero overs
	RowsDroppedOutliers  prometheus.Counter // Summaries dropped by the run-rate bound
	RowsDroppedDuplicate prometheus.Counter // Exact-duplicate summaries removed
}

// New creates and registers all metrics using the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates metrics with a custom registry, allowing
// isolated metric collection in tests.
func NewWithRegistry(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		PredictionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "predictions_total",
			Help: "Total number of predictions served",
		}),
		PredictionFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "prediction_failures_total",
			Help: "Total number of failed prediction requests",
		}),
		PredictionLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "prediction_latency_seconds",
			Help:    "End-to-end prediction latency in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
		}),
		PredictionScores: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "prediction_win_probability",
			Help:    "Distribution of win probabilities served",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		}),
		ValidationFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "validation_failures_total",
			Help: "Total number of requests rejected before inference",
		}),
		ModelLoads: factory.NewCounter(prometheus.CounterOpts{
			Name: "model_loads_total",
			Help: "Total number of completed model artifact loads",
		}),
		ModelLoadFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "model_load_failures_total",
			Help: "Total number of failed model artifact loads",
		}),
		DeliveriesSkipped: factory.NewCounter(prometheus.CounterOpts{
			Name: "deliveries_skipped_total",
			Help: "Deliveries skipped during aggregation due to incomplete grouping keys",
		}),
		RowsDroppedMissing: factory.NewCounter(prometheus.CounterOpts{
			Name: "rows_dropped_missing_total",
			Help: "Innings summaries dropped for missing identity fields",
		}),
		RowsDroppedZeroOvers: factory.NewCounter(prometheus.CounterOpts{
			Name: "rows_dropped_zero_overs_total",
			Help: "Innings summaries dropped for zero overs played",
		}),
		RowsDroppedOutliers: factory.NewCounter(prometheus.CounterOpts{
			Name: "rows_dropped_outliers_total",
			Help: "Innings summaries dropped by the run-rate outlier bound",
		}),
		RowsDroppedDuplicate: factory.NewCounter(prometheus.CounterOpts{
			Name: "rows_dropped_duplicate_total",
			Help: "Exact-duplicate innings summaries removed",
		}),
	}
}

// ObserveAggregateReport records deliveries skipped while loading and
// aggregating the raw dataset.
func (m *Metrics) ObserveAggregateReport(skipped int) {
	m.DeliveriesSkipped.Add(float64(skipped))
}

// ObserveCleanReport records per-stage drop counts from a cleaning pass.
func (m *Metrics) ObserveCleanReport(missing, zeroOvers, outliers, duplicates int) {
	m.RowsDroppedMissing.Add(float64(missing))
	m.RowsDroppedZeroOvers.Add(float64(zeroOvers))
	m.RowsDroppedOutliers.Add(float64(outliers))
	m.RowsDroppedDuplicate.Add(float64(duplicates))
}
