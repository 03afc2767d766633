package ml

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"ipl-predictor/internal/features"
)

const estimatorLogistic = "logistic_regression"

// Model is a loaded classifier: the fitted estimator plus the preprocessing
// pipeline and feature contract it was trained with. Immutable once loaded;
// safe for concurrent readers.
type Model struct {
	Estimator Estimator
	Pipeline  *Pipeline
	Contract  features.Contract
	Path      string
	TrainedAt time.Time
}

// modelArtifact is the on-disk shape of the estimator file.
type modelArtifact struct {
	EstimatorType string              `json:"estimator"`
	TrainedAt     time.Time           `json:"trained_at"`
	Logistic      *LogisticRegression `json:"logistic_regression,omitempty"`
}

// sidecarArtifact is the on-disk shape of the feature metadata file. It
// records the feature contract and fitted preprocessing statistics; the
// estimator file and the sidecar are versioned as a pair.
type sidecarArtifact struct {
	CategoricalFeatures []string            `json:"categorical_features"`
	NumericalFeatures   []string            `json:"numerical_features"`
	FeatureColumns      []string            `json:"feature_columns"`
	Categories          map[string][]string `json:"categories"`
	Means               []float64           `json:"means"`
	Stds                []float64           `json:"stds"`
}

// SidecarPath derives the feature-metadata path from a model path:
// model.json -> model_features.json.
func SidecarPath(modelPath string) string {
	ext := filepath.Ext(modelPath)
	return strings.TrimSuffix(modelPath, ext) + "_features" + ext
}

// SaveModel writes the estimator artifact and its feature sidecar.
func SaveModel(m *Model, path string) error {
	lr, ok := m.Estimator.(*LogisticRegression)
	if !ok {
		return fmt.Errorf("unsupported estimator type %T", m.Estimator)
	}

	art := modelArtifact{
		EstimatorType: estimatorLogistic,
		TrainedAt:     m.TrainedAt,
		Logistic:      lr,
	}
	data, err := json.MarshalIndent(art, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal model: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write model: %w", err)
	}

	side := sidecarArtifact{
		CategoricalFeatures: m.Contract.Categorical,
		NumericalFeatures:   m.Contract.Numerical,
		FeatureColumns:      m.Contract.Columns(),
		Categories:          m.Pipeline.Categories,
		Means:               m.Pipeline.Means,
		Stds:                m.Pipeline.Stds,
	}
	data, err = json.MarshalIndent(side, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal feature sidecar: %w", err)
	}
	if err := os.WriteFile(SidecarPath(path), data, 0o600); err != nil {
		return fmt.Errorf("write feature sidecar: %w", err)
	}

	log.Info().
		Str("model_path", path).
		Str("features_path", SidecarPath(path)).
		Msg("model artifacts saved")
	return nil
}

// LoadModel reads the artifact pair at path. A missing model file is a
// ModelNotFoundError; anything else that prevents a usable model,
// including a missing or mismatched sidecar, is a ModelLoadError.
func LoadModel(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &ModelNotFoundError{Path: path}
		}
		return nil, &ModelLoadError{Path: path, Err: err}
	}

	var art modelArtifact
	if err := json.Unmarshal(data, &art); err != nil {
		return nil, &ModelLoadError{Path: path, Err: err}
	}
	if art.EstimatorType != estimatorLogistic || art.Logistic == nil {
		return nil, &ModelLoadError{Path: path, Err: fmt.Errorf("unsupported estimator %q", art.EstimatorType)}
	}

	sidePath := SidecarPath(path)
	sideData, err := os.ReadFile(sidePath)
	if err != nil {
		return nil, &ModelLoadError{Path: path, Err: fmt.Errorf("feature sidecar %s: %w", sidePath, err)}
	}
	var side sidecarArtifact
	if err := json.Unmarshal(sideData, &side); err != nil {
		return nil, &ModelLoadError{Path: path, Err: fmt.Errorf("feature sidecar %s: %w", sidePath, err)}
	}
	if len(side.CategoricalFeatures) == 0 || len(side.NumericalFeatures) == 0 {
		return nil, &ModelLoadError{Path: path, Err: fmt.Errorf("feature sidecar %s has empty contract", sidePath)}
	}
	if len(side.Means) != len(side.NumericalFeatures) || len(side.Stds) != len(side.NumericalFeatures) {
		return nil, &ModelLoadError{Path: path, Err: fmt.Errorf("feature sidecar %s scaler shape mismatch", sidePath)}
	}

	contract := features.Contract{
		Categorical: side.CategoricalFeatures,
		Numerical:   side.NumericalFeatures,
	}
	pipeline := &Pipeline{
		Contract:   contract,
		Categories: side.Categories,
		Means:      side.Means,
		Stds:       side.Stds,
	}

	log.Info().Str("model_path", path).Time("trained_at", art.TrainedAt).Msg("model loaded")

	return &Model{
		Estimator: art.Logistic,
		Pipeline:  pipeline,
		Contract:  contract,
		Path:      path,
		TrainedAt: art.TrainedAt,
	}, nil
}
