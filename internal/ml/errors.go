package ml

import "fmt"

// ValidationError reports a single request field violating a business rule.
// Expected, common failure path; returned as a value, never panicked.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Reason)
}

// ModelNotFoundError means the backing artifact does not exist at the
// requested path. An operator/config problem (missing deployment
// artifact), distinct from a corrupt one.
type ModelNotFoundError struct {
	Path string
}

func (e *ModelNotFoundError) Error() string {
	return fmt.Sprintf("model file not found: %s", e.Path)
}

// ModelLoadError wraps a deserialization failure for an artifact that
// exists but cannot be loaded, including a model missing its sidecar
// metadata.
type ModelLoadError struct {
	Path string
	Err  error
}

func (e *ModelLoadError) Error() string {
	return fmt.Sprintf("failed to load model %s: %v", e.Path, e.Err)
}

func (e *ModelLoadError) Unwrap() error { return e.Err }

// PredictionError wraps an unexpected estimator-level failure.
type PredictionError struct {
	Err error
}

func (e *PredictionError) Error() string {
	return fmt.Sprintf("prediction failed: %v", e.Err)
}

func (e *PredictionError) Unwrap() error { return e.Err }
