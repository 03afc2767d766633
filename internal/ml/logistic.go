package ml

import (
	"fmt"
	"math"
)

const (
	defaultIterations   = 400
	defaultLearningRate = 0.15
)

// LogisticRegression is the default Estimator: binary logistic regression
// trained by gradient descent on log-loss. Weights[0] is the bias term.
type LogisticRegression struct {
	Weights      []float64 `json:"weights"`
	Iterations   int       `json:"iterations"`
	LearningRate float64   `json:"learning_rate"`
}

// NewLogisticRegression returns an untrained estimator with default
// training parameters.
func NewLogisticRegression() *LogisticRegression {
	return &LogisticRegression{
		Iterations:   defaultIterations,
		LearningRate: defaultLearningRate,
	}
}

// Fit trains weights by full-batch gradient descent. The gradient of
// -[y*log(p)+(1-y)*log(1-p)] with respect to w is (p-y)*x.
func (lr *LogisticRegression) Fit(X [][]float64, y []int) error {
	if len(X) == 0 {
		return fmt.Errorf("no training samples")
	}
	if len(X) != len(y) {
		return fmt.Errorf("sample/label length mismatch: %d vs %d", len(X), len(y))
	}

	dim := len(X[0]) + 1 // bias
	for i, row := range X {
		if len(row)+1 != dim {
			return fmt.Errorf("row %d has %d features, expected %d", i, len(row), dim-1)
		}
	}

	w := make([]float64, dim)
	n := float64(len(X))
	iters := lr.Iterations
	if iters <= 0 {
		iters = defaultIterations
	}
	rate := lr.LearningRate
	if rate <= 0 {
		rate = defaultLearningRate
	}

	for iter := 0; iter < iters; iter++ {
		for i, row := range X {
			p := sigmoid(w[0] + dot(w[1:], row))
			err := p - float64(y[i])
			w[0] -= rate * err / n
			for k, x := range row {
				w[k+1] -= rate * err * x / n
			}
		}
	}

	lr.Weights = w
	return nil
}

// Predict returns the label with the higher probability for each row.
func (lr *LogisticRegression) Predict(X [][]float64) []int {
	labels := make([]int, len(X))
	for i, row := range X {
		if lr.proba(row) > 0.5 {
			labels[i] = 1
		}
	}
	return labels
}

// PredictProba returns [loss, win] probability pairs.
func (lr *LogisticRegression) PredictProba(X [][]float64) [][]float64 {
	probs := make([][]float64, len(X))
	for i, row := range X {
		p := lr.proba(row)
		probs[i] = []float64{1 - p, p}
	}
	return probs
}

func (lr *LogisticRegression) proba(row []float64) float64 {
	if len(lr.Weights) == 0 {
		return 0.5
	}
	return sigmoid(lr.Weights[0] + dot(lr.Weights[1:], row))
}

func sigmoid(z float64) float64 {
	if z > 20 {
		return 1.0
	}
	if z < -20 {
		return 0.0
	}
	return 1.0 / (1.0 + math.Exp(-z))
}

func dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}
