package ml

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

// StoreMetrics is the subset of metrics the store reports.
type StoreMetrics interface {
	ModelLoadsInc()
	ModelLoadFailuresInc()
}

// Store is the process-wide model cache: a single slot keyed by path,
// since exactly one model version is active at a time. The store is
// constructed and injected explicitly; there is no ambient global.
//
// Concurrent first loads of the same path are collapsed into one
// deserialization; every caller observes the same *Model. A request for a
// different path evicts the slot and loads the new artifact.
type Store struct {
	mu      sync.RWMutex
	path    string
	model   *Model
	group   singleflight.Group
	loadFn  func(string) (*Model, error)
	metrics StoreMetrics
}

// NewStore creates an empty model store. metrics may be nil.
func NewStore(metrics StoreMetrics) *Store {
	return &Store{
		loadFn:  LoadModel,
		metrics: metrics,
	}
}

// GetOrLoad returns the cached model for path, loading it at most once
// under concurrency. Missing artifacts surface as ModelNotFoundError,
// corrupt ones as ModelLoadError.
func (s *Store) GetOrLoad(path string) (*Model, error) {
	s.mu.RLock()
	if s.model != nil && s.path == path {
		m := s.model
		s.mu.RUnlock()
		return m, nil
	}
	s.mu.RUnlock()

	v, err, _ := s.group.Do(path, func() (any, error) {
		// A concurrent winner may have populated the slot already.
		s.mu.RLock()
		if s.model != nil && s.path == path {
			m := s.model
			s.mu.RUnlock()
			return m, nil
		}
		s.mu.RUnlock()

		m, err := s.loadFn(path)
		if err != nil {
			if s.metrics != nil {
				s.metrics.ModelLoadFailuresInc()
			}
			return nil, err
		}
		if s.metrics != nil {
			s.metrics.ModelLoadsInc()
		}

		s.mu.Lock()
		s.path = path
		s.model = m
		s.mu.Unlock()
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Model), nil
}

// Cached returns the currently cached model, if any, without loading.
func (s *Store) Cached() (*Model, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model, s.model != nil
}
