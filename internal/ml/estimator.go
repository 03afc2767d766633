// Package ml provides the match-win classifier: the estimator capability,
// the preprocessing pipeline shared by training and inference, the model
// artifact pair on disk, the single-slot model store, and the predictor
// that serves validated inputs against the cached model.
package ml

// Estimator is the opaque binary-classifier capability. The rest of the
// system depends only on this interface, never on a specific algorithm.
// PredictProba returns one [loss, win] probability pair per input row.
type Estimator interface {
	Fit(X [][]float64, y []int) error
	Predict(X [][]float64) []int
	PredictProba(X [][]float64) [][]float64
}
