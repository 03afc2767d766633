package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewWithRegistry(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewWithRegistry(registry)

	m.PredictionsTotal.Inc()
	m.PredictionsTotal.Inc()
	m.ValidationFailures.Inc()
	m.ModelLoads.Inc()

	if got := testutil.ToFloat64(m.PredictionsTotal); got != 2 {
		t.Errorf("predictions_total = %f, want 2", got)
	}
	if got := testutil.ToFloat64(m.ValidationFailures); got != 1 {
		t.Errorf("validation_failures_total = %f, want 1", got)
	}
	if got := testutil.ToFloat64(m.ModelLoads); got != 1 {
		t.Errorf("model_loads_total = %f, want 1", got)
	}

	// A second isolated registry must not collide with the first.
	other := NewWithRegistry(prometheus.NewRegistry())
	if got := testutil.ToFloat64(other.PredictionsTotal); got != 0 {
		t.Errorf("Fresh registry predictions_total = %f, want 0", got)
	}
}

func TestObserveAggregateReport(t *testing.T) {
	m := NewWithRegistry(prometheus.NewRegistry())

	m.ObserveAggregateReport(3)
	m.ObserveAggregateReport(0)
	m.ObserveAggregateReport(2)

	if got := testutil.ToFloat64(m.DeliveriesSkipped); got != 5 {
		t.Errorf("deliveries_skipped_total = %f, want 5", got)
	}
}

func TestObserveCleanReport(t *testing.T) {
	m := NewWithRegistry(prometheus.NewRegistry())

	m.ObserveCleanReport(3, 1, 2, 4)
	m.ObserveCleanReport(1, 0, 0, 0)

	if got := testutil.ToFloat64(m.RowsDroppedMissing); got != 4 {
		t.Errorf("rows_dropped_missing_total = %f, want 4", got)
	}
	if got := testutil.ToFloat64(m.RowsDroppedZeroOvers); got != 1 {
		t.Errorf("rows_dropped_zero_overs_total = %f, want 1", got)
	}
	if got := testutil.ToFloat64(m.RowsDroppedOutliers); got != 2 {
		t.Errorf("rows_dropped_outliers_total = %f, want 2", got)
	}
	if got := testutil.ToFloat64(m.RowsDroppedDuplicate); got != 4 {
		t.Errorf("rows_dropped_duplicate_total = %f, want 4", got)
	}
}
