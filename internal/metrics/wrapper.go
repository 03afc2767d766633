package metrics

// Wrapper exposes metrics through the small method sets the ml package
// accepts, keeping the import direction one-way.
type Wrapper struct {
	m *Metrics
}

// NewWrapper wraps a Metrics value for injection into the ml package.
func NewWrapper(m *Metrics) *Wrapper {
	return &Wrapper{m: m}
}

func (w *Wrapper) PredictionsInc()                    { w.m.PredictionsTotal.Inc() }
func (w *Wrapper) PredictionFailuresInc()             { w.m.PredictionFailures.Inc() }
func (w *Wrapper) PredictionLatencyObserve(v float64) { w.m.PredictionLatency.Observe(v) }
func (w *Wrapper) PredictionScoresObserve(v float64)  { w.m.PredictionScores.Observe(v) }
func (w *Wrapper) ValidationFailuresInc()             { w.m.ValidationFailures.Inc() }
func (w *Wrapper) ModelLoadsInc()                     { w.m.ModelLoads.Inc() }
func (w *Wrapper) ModelLoadFailuresInc()              { w.m.ModelLoadFailures.Inc() }
