package ml

import (
	"fmt"
	"math"
	"sort"

	"ipl-predictor/internal/features"
)

// Pipeline is the fitted preprocessing step in front of the estimator:
// one-hot encoding for categorical columns and standard scaling for
// numerical columns. Unknown categories at inference time encode as an
// all-zero indicator rather than failing the request, so an unseen team
// or venue yields a weaker prediction, not an error.
type Pipeline struct {
	Contract   features.Contract   `json:"contract"`
	Categories map[string][]string `json:"categories"`
	Means      []float64           `json:"means"`
	Stds       []float64           `json:"stds"`
}

// NewPipeline returns an unfitted pipeline for the given contract.
func NewPipeline(contract features.Contract) *Pipeline {
	return &Pipeline{Contract: contract}
}

// Fit learns the categorical vocabularies and numerical scaling statistics
// from the training rows. Rows are (cats, nums) pairs already in contract
// order.
func (p *Pipeline) Fit(cats [][]string, nums [][]float64) error {
	if len(cats) == 0 || len(cats) != len(nums) {
		return fmt.Errorf("invalid training shape: %d categorical rows, %d numerical rows", len(cats), len(nums))
	}

	p.Categories = make(map[string][]string, len(p.Contract.Categorical))
	for j, col := range p.Contract.Categorical {
		vocab := make(map[string]struct{})
		for _, row := range cats {
			if len(row) != len(p.Contract.Categorical) {
				return fmt.Errorf("categorical row has %d values, expected %d", len(row), len(p.Contract.Categorical))
			}
			vocab[row[j]] = struct{}{}
		}
		values := make([]string, 0, len(vocab))
		for v := range vocab {
			values = append(values, v)
		}
		sort.Strings(values)
		p.Categories[col] = values
	}

	n := float64(len(nums))
	dim := len(p.Contract.Numerical)
	p.Means = make([]float64, dim)
	p.Stds = make([]float64, dim)
	for _, row := range nums {
		if len(row) != dim {
			return fmt.Errorf("numerical row has %d values, expected %d", len(row), dim)
		}
		for j, v := range row {
			p.Means[j] += v
		}
	}
	for j := range p.Means {
		p.Means[j] /= n
	}
	for _, row := range nums {
		for j, v := range row {
			d := v - p.Means[j]
			p.Stds[j] += d * d
		}
	}
	for j := range p.Stds {
		p.Stds[j] = math.Sqrt(p.Stds[j] / n)
		if p.Stds[j] == 0 {
			p.Stds[j] = 1 // constant column, leave values centered
		}
	}

	return nil
}

// Transform encodes rows into the dense feature matrix the estimator
// consumes: one indicator column per known category, then scaled
// numericals in contract order.
func (p *Pipeline) Transform(cats [][]string, nums [][]float64) ([][]float64, error) {
	if p.Categories == nil || p.Means == nil {
		return nil, fmt.Errorf("pipeline not fitted")
	}

	out := make([][]float64, len(cats))
	for i := range cats {
		if len(cats[i]) != len(p.Contract.Categorical) || len(nums[i]) != len(p.Contract.Numerical) {
			return nil, fmt.Errorf("row %d does not match contract shape", i)
		}
		row := make([]float64, 0, p.Width())
		for j, col := range p.Contract.Categorical {
			for _, category := range p.Categories[col] {
				if cats[i][j] == category {
					row = append(row, 1)
				} else {
					row = append(row, 0)
				}
			}
		}
		for j, v := range nums[i] {
			row = append(row, (v-p.Means[j])/p.Stds[j])
		}
		out[i] = row
	}
	return out, nil
}

// Width returns the encoded feature dimension.
func (p *Pipeline) Width() int {
	w := len(p.Contract.Numerical)
	for _, col := range p.Contract.Categorical {
		w += len(p.Categories[col])
	}
	return w
}
