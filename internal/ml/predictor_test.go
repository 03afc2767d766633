package ml

import (
	"errors"
	"math"
	"path/filepath"
	"sync"
	"testing"

	"ipl-predictor/internal/features"
)

type mockPredictorMetrics struct {
	mu           sync.Mutex
	predictions  int
	failures     int
	latencies    int
	scores       []float64
	loads        int
	loadFailures int
}

func (m *mockPredictorMetrics) PredictionsInc() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.predictions++
}

func (m *mockPredictorMetrics) PredictionFailuresInc() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures++
}

func (m *mockPredictorMetrics) PredictionLatencyObserve(float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latencies++
}

func (m *mockPredictorMetrics) PredictionScoresObserve(s float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scores = append(m.scores, s)
}

func (m *mockPredictorMetrics) ModelLoadsInc() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads++
}

func (m *mockPredictorMetrics) ModelLoadFailuresInc() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadFailures++
}

func newTestPredictor(t *testing.T) (*Predictor, *mockPredictorMetrics, string) {
	t.Helper()
	path, _ := saveTestModel(t, t.TempDir())
	metrics := &mockPredictorMetrics{}
	return NewPredictor(NewStore(metrics), metrics), metrics, path
}

func winningInput() map[string]any {
	return map[string]any{
		"batting_team":  "Team A",
		"bowling_team":  "Team B",
		"venue":         "Stadium X",
		"city":          "Mumbai",
		"total_runs":    200.0,
		"total_wickets": 3.0,
		"run_rate":      10.0,
		"extras_total":  10.0,
		"overs_played":  20.0,
	}
}

func losingInput() map[string]any {
	input := winningInput()
	input["total_runs"] = 90.0
	input["run_rate"] = 4.5
	input["total_wickets"] = 9.0
	input["extras_total"] = 4.0
	return input
}

func TestPredictor_PredictOne(t *testing.T) {
	p, metrics, path := newTestPredictor(t)

	result, err := p.PredictOne(winningInput(), path)
	if err != nil {
		t.Fatalf("PredictOne failed: %v", err)
	}

	if result.Label != 1 {
		t.Errorf("Expected a win prediction for a dominant innings, got label %d", result.Label)
	}
	if result.Text != "Batting Team Wins" {
		t.Errorf("Text = %q, want the win phrasing", result.Text)
	}
	if sum := result.WinProbability + result.LossProbability; math.Abs(sum-1) > 1e-3 {
		t.Errorf("Probabilities sum to %f", sum)
	}
	if result.WinProbability != round4(result.WinProbability) {
		t.Errorf("Win probability %f not rounded to 4 places", result.WinProbability)
	}

	if metrics.predictions != 1 || metrics.latencies != 1 || len(metrics.scores) != 1 {
		t.Errorf("Metrics predictions=%d latencies=%d scores=%d, want 1 each",
			metrics.predictions, metrics.latencies, len(metrics.scores))
	}
}

func TestPredictor_BatchPreservesOrder(t *testing.T) {
	p, _, path := newTestPredictor(t)

	inputs := []map[string]any{winningInput(), losingInput(), winningInput()}
	results, err := p.PredictMany(inputs, path)
	if err != nil {
		t.Fatalf("PredictMany failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}
	if results[0].Label != 1 || results[1].Label != 0 || results[2].Label != 1 {
		t.Errorf("Results out of input order: labels %d %d %d",
			results[0].Label, results[1].Label, results[2].Label)
	}
	if results[1].Text != "Batting Team Loses" {
		t.Errorf("Loss text = %q", results[1].Text)
	}
}

func TestPredictor_NumericAsString(t *testing.T) {
	p, _, path := newTestPredictor(t)

	input := winningInput()
	input["total_runs"] = "200"
	if _, err := p.PredictOne(input, path); err != nil {
		t.Errorf("String-typed numeric should coerce, got %v", err)
	}
}

func TestPredictor_NonNumericValueRejected(t *testing.T) {
	p, metrics, path := newTestPredictor(t)

	input := winningInput()
	input["total_runs"] = "plenty"
	_, err := p.PredictOne(input, path)

	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
	if valErr.Field != "total_runs" {
		t.Errorf("ValidationError field = %q, want total_runs", valErr.Field)
	}
	if metrics.failures != 1 {
		t.Errorf("PredictionFailures = %d, want 1", metrics.failures)
	}
}

func TestPredictor_MissingFeaturesListed(t *testing.T) {
	p, _, path := newTestPredictor(t)

	input := winningInput()
	delete(input, "venue")
	delete(input, "overs_played")
	_, err := p.PredictOne(input, path)

	var missingErr *features.MissingFeatureError
	if !errors.As(err, &missingErr) {
		t.Fatalf("Expected MissingFeatureError, got %v", err)
	}
	if len(missingErr.Columns) != 2 {
		t.Errorf("Missing columns = %v, want both reported", missingErr.Columns)
	}
}

func TestPredictor_UnknownTeamStillPredicts(t *testing.T) {
	p, _, path := newTestPredictor(t)

	input := winningInput()
	input["batting_team"] = "Expansion Franchise"
	result, err := p.PredictOne(input, path)
	if err != nil {
		t.Fatalf("Unknown category must degrade, not fail: %v", err)
	}
	if !validProb(result.WinProbability) {
		t.Errorf("Win probability %f out of range", result.WinProbability)
	}
}

func TestPredictor_ModelNotFoundPassesThrough(t *testing.T) {
	metrics := &mockPredictorMetrics{}
	p := NewPredictor(NewStore(metrics), metrics)

	_, err := p.PredictOne(winningInput(), filepath.Join(t.TempDir(), "missing.json"))
	var notFound *ModelNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("Expected ModelNotFoundError, got %v", err)
	}
	if metrics.loadFailures != 1 {
		t.Errorf("ModelLoadFailures = %d, want 1", metrics.loadFailures)
	}
}

func TestPredictor_EmptyBatchRejected(t *testing.T) {
	p, _, path := newTestPredictor(t)
	_, err := p.PredictMany(nil, path)
	var predErr *PredictionError
	if !errors.As(err, &predErr) {
		t.Fatalf("Expected PredictionError, got %v", err)
	}
}

func TestPredictor_CachedReflectsWarmState(t *testing.T) {
	p, _, path := newTestPredictor(t)

	if _, ok := p.Cached(); ok {
		t.Error("Cached() should be empty before the first prediction")
	}
	if _, err := p.PredictOne(winningInput(), path); err != nil {
		t.Fatalf("PredictOne failed: %v", err)
	}
	if _, ok := p.Cached(); !ok {
		t.Error("Cached() should report the loaded model after a prediction")
	}
}
