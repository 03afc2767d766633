package ml

import (
	"math"
	"testing"
)

func separableData() ([][]float64, []int) {
	var X [][]float64
	var y []int
	for i := 0; i < 20; i++ {
		X = append(X, []float64{1.5 + float64(i)*0.05, 1.0})
		y = append(y, 1)
		X = append(X, []float64{-1.5 - float64(i)*0.05, -1.0})
		y = append(y, 0)
	}
	return X, y
}

func TestLogisticRegression_FitLearnsSeparableData(t *testing.T) {
	lr := NewLogisticRegression()
	X, y := separableData()
	if err := lr.Fit(X, y); err != nil {
		t.Fatalf("Fit returned error: %v", err)
	}
	if len(lr.Weights) != 3 {
		t.Fatalf("Expected bias + 2 weights, got %d", len(lr.Weights))
	}

	pred := lr.Predict(X)
	if got := accuracy(pred, y); got < 0.95 {
		t.Errorf("Training accuracy %f on separable data, want >= 0.95", got)
	}
}

func TestLogisticRegression_ProbabilitiesSumToOne(t *testing.T) {
	lr := NewLogisticRegression()
	X, y := separableData()
	if err := lr.Fit(X, y); err != nil {
		t.Fatalf("Fit returned error: %v", err)
	}

	for i, pair := range lr.PredictProba(X) {
		if len(pair) != 2 {
			t.Fatalf("Row %d: expected probability pair, got %v", i, pair)
		}
		if sum := pair[0] + pair[1]; math.Abs(sum-1) > 1e-9 {
			t.Errorf("Row %d: probabilities sum to %f", i, sum)
		}
		if pair[0] < 0 || pair[0] > 1 || pair[1] < 0 || pair[1] > 1 {
			t.Errorf("Row %d: probability out of range: %v", i, pair)
		}
	}
}

func TestLogisticRegression_PredictAgreesWithProba(t *testing.T) {
	lr := NewLogisticRegression()
	X, y := separableData()
	if err := lr.Fit(X, y); err != nil {
		t.Fatalf("Fit returned error: %v", err)
	}

	labels := lr.Predict(X)
	probs := lr.PredictProba(X)
	for i := range X {
		want := 0
		if probs[i][1] > 0.5 {
			want = 1
		}
		if labels[i] != want {
			t.Errorf("Row %d: label %d disagrees with win probability %f", i, labels[i], probs[i][1])
		}
	}
}

func TestLogisticRegression_FitRejectsBadShapes(t *testing.T) {
	cases := []struct {
		name string
		X    [][]float64
		y    []int
	}{
		{"empty", nil, nil},
		{"length mismatch", [][]float64{{1, 2}}, []int{1, 0}},
		{"ragged rows", [][]float64{{1, 2}, {1}}, []int{1, 0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			lr := NewLogisticRegression()
			if err := lr.Fit(tc.X, tc.y); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}

func TestSigmoid_Clamped(t *testing.T) {
	if got := sigmoid(100); got != 1 {
		t.Errorf("sigmoid(100) = %f, want 1", got)
	}
	if got := sigmoid(-100); got != 0 {
		t.Errorf("sigmoid(-100) = %f, want 0", got)
	}
	if got := sigmoid(0); got != 0.5 {
		t.Errorf("sigmoid(0) = %f, want 0.5", got)
	}
}
