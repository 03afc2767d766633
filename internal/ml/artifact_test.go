package ml

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func trainedModel(t *testing.T) *Model {
	t.Helper()
	model, _, err := Train(syntheticSummaries(40), TrainConfig{})
	if err != nil {
		t.Fatalf("Failed to train fixture model: %v", err)
	}
	return model
}

func saveTestModel(t *testing.T, dir string) (string, *Model) {
	t.Helper()
	model := trainedModel(t)
	path := filepath.Join(dir, "model.json")
	if err := SaveModel(model, path); err != nil {
		t.Fatalf("SaveModel failed: %v", err)
	}
	return path, model
}

func TestSidecarPath(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"model.json", "model_features.json"},
		{"/srv/models/ipl.json", "/srv/models/ipl_features.json"},
		{"model", "model_features"},
	}
	for _, tc := range cases {
		if got := SidecarPath(tc.in); got != tc.want {
			t.Errorf("SidecarPath(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSaveLoadModel_RoundTrip(t *testing.T) {
	path, saved := saveTestModel(t, t.TempDir())

	loaded, err := LoadModel(path)
	if err != nil {
		t.Fatalf("LoadModel failed: %v", err)
	}

	if len(loaded.Contract.Categorical) != len(saved.Contract.Categorical) {
		t.Errorf("Contract categoricals changed: %v vs %v",
			loaded.Contract.Categorical, saved.Contract.Categorical)
	}
	savedLR := saved.Estimator.(*LogisticRegression)
	loadedLR, ok := loaded.Estimator.(*LogisticRegression)
	if !ok {
		t.Fatalf("Loaded estimator has type %T", loaded.Estimator)
	}
	if len(loadedLR.Weights) != len(savedLR.Weights) {
		t.Fatalf("Weights length %d, want %d", len(loadedLR.Weights), len(savedLR.Weights))
	}
	for i := range savedLR.Weights {
		if loadedLR.Weights[i] != savedLR.Weights[i] {
			t.Errorf("Weight %d changed in round trip: %f vs %f",
				i, loadedLR.Weights[i], savedLR.Weights[i])
		}
	}
	if !loaded.TrainedAt.Equal(saved.TrainedAt) {
		t.Errorf("TrainedAt changed: %v vs %v", loaded.TrainedAt, saved.TrainedAt)
	}
}

func TestLoadModel_MissingFile(t *testing.T) {
	_, err := LoadModel(filepath.Join(t.TempDir(), "nope.json"))
	var notFound *ModelNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("Expected ModelNotFoundError, got %v", err)
	}
}

func TestLoadModel_MissingSidecar(t *testing.T) {
	dir := t.TempDir()
	path, _ := saveTestModel(t, dir)
	if err := os.Remove(SidecarPath(path)); err != nil {
		t.Fatal(err)
	}

	_, err := LoadModel(path)
	var loadErr *ModelLoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("Expected ModelLoadError for missing sidecar, got %v", err)
	}
	var notFound *ModelNotFoundError
	if errors.As(err, &notFound) {
		t.Error("Missing sidecar must not be reported as a missing model")
	}
}

func TestLoadModel_CorruptArtifact(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := LoadModel(path)
	var loadErr *ModelLoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("Expected ModelLoadError, got %v", err)
	}
}

func TestLoadModel_ScalerShapeMismatch(t *testing.T) {
	dir := t.TempDir()
	path, _ := saveTestModel(t, dir)
	side := `{"categorical_features":["a"],"numerical_features":["b","c"],"categories":{},"means":[1],"stds":[1]}`
	if err := os.WriteFile(SidecarPath(path), []byte(side), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := LoadModel(path)
	var loadErr *ModelLoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("Expected ModelLoadError for scaler shape mismatch, got %v", err)
	}
}
