package ml

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
)

type mockStoreMetrics struct {
	loads    atomic.Int64
	failures atomic.Int64
}

func (m *mockStoreMetrics) ModelLoadsInc()        { m.loads.Add(1) }
func (m *mockStoreMetrics) ModelLoadFailuresInc() { m.failures.Add(1) }

func TestStore_GetOrLoadCaches(t *testing.T) {
	metrics := &mockStoreMetrics{}
	store := NewStore(metrics)

	var calls atomic.Int64
	store.loadFn = func(path string) (*Model, error) {
		calls.Add(1)
		return &Model{Path: path}, nil
	}

	first, err := store.GetOrLoad("model.json")
	if err != nil {
		t.Fatalf("GetOrLoad failed: %v", err)
	}
	second, err := store.GetOrLoad("model.json")
	if err != nil {
		t.Fatalf("Second GetOrLoad failed: %v", err)
	}

	if first != second {
		t.Error("Expected the same cached model handle on both calls")
	}
	if calls.Load() != 1 {
		t.Errorf("Loader called %d times, want 1", calls.Load())
	}
	if metrics.loads.Load() != 1 {
		t.Errorf("ModelLoads = %d, want 1", metrics.loads.Load())
	}
}

func TestStore_ConcurrentFirstLoadCollapses(t *testing.T) {
	store := NewStore(nil)

	var calls atomic.Int64
	ready := make(chan struct{})
	store.loadFn = func(path string) (*Model, error) {
		calls.Add(1)
		<-ready // hold the load until all goroutines are in flight
		return &Model{Path: path}, nil
	}

	const workers = 50
	models := make([]*Model, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()
			if i == workers-1 {
				close(ready)
			}
			m, err := store.GetOrLoad("model.json")
			if err != nil {
				t.Errorf("Worker %d: %v", i, err)
				return
			}
			models[i] = m
		}(i)
	}
	wg.Wait()

	if calls.Load() != 1 {
		t.Errorf("Loader called %d times under concurrency, want 1", calls.Load())
	}
	for i := 1; i < workers; i++ {
		if models[i] != models[0] {
			t.Fatalf("Worker %d received a different model handle", i)
		}
	}
}

func TestStore_PathChangeEvicts(t *testing.T) {
	store := NewStore(nil)
	store.loadFn = func(path string) (*Model, error) {
		return &Model{Path: path}, nil
	}

	a, err := store.GetOrLoad("a.json")
	if err != nil {
		t.Fatal(err)
	}
	b, err := store.GetOrLoad("b.json")
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Error("Expected a fresh model after path change")
	}
	if b.Path != "b.json" {
		t.Errorf("Cached model path = %q, want b.json", b.Path)
	}
	if cached, ok := store.Cached(); !ok || cached != b {
		t.Error("Cached() should return the newest model")
	}
}

func TestStore_FailedLoadNotCached(t *testing.T) {
	metrics := &mockStoreMetrics{}
	store := NewStore(metrics)

	var calls atomic.Int64
	store.loadFn = func(path string) (*Model, error) {
		if calls.Add(1) == 1 {
			return nil, fmt.Errorf("transient i/o error")
		}
		return &Model{Path: path}, nil
	}

	if _, err := store.GetOrLoad("model.json"); err == nil {
		t.Fatal("Expected the first load to fail")
	}
	if _, ok := store.Cached(); ok {
		t.Error("Failed load must not populate the cache")
	}

	if _, err := store.GetOrLoad("model.json"); err != nil {
		t.Fatalf("Retry after failure should succeed: %v", err)
	}
	if metrics.failures.Load() != 1 || metrics.loads.Load() != 1 {
		t.Errorf("Metrics loads=%d failures=%d, want 1 and 1",
			metrics.loads.Load(), metrics.failures.Load())
	}
}
