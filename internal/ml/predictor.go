package ml

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

// MetricsInterface defines the metrics methods the predictor reports to.
type MetricsInterface interface {
	PredictionsInc()
	PredictionFailuresInc()
	PredictionLatencyObserve(float64)
	PredictionScoresObserve(float64)
}

// Result is a single typed prediction: the predicted label, the rounded
// probability pair, and a human-readable text derived from the label.
type Result struct {
	Label           int     `json:"prediction_label"`
	WinProbability  float64 `json:"win_probability"`
	LossProbability float64 `json:"loss_probability"`
	Text            string  `json:"prediction_text"`
}

const (
	textWin  = "Batting Team Wins"
	textLoss = "Batting Team Loses"
)

// Predictor validates inputs against the model's feature contract and
// serves predictions from the store's cached model. Stateless apart from
// the injected store; safe for concurrent use.
type Predictor struct {
	store   *Store
	metrics MetricsInterface
}

// NewPredictor creates a predictor backed by the given model store.
// metrics may be nil.
func NewPredictor(store *Store, metrics MetricsInterface) *Predictor {
	return &Predictor{store: store, metrics: metrics}
}

// Cached reports the currently cached model, if any, without loading.
func (p *Predictor) Cached() (*Model, bool) {
	return p.store.Cached()
}

// PredictOne predicts the outcome for a single input mapping.
func (p *Predictor) PredictOne(input map[string]any, modelPath string) (Result, error) {
	results, err := p.PredictMany([]map[string]any{input}, modelPath)
	if err != nil {
		return Result{}, err
	}
	return results[0], nil
}

// PredictMany predicts outcomes for a batch. Output order matches input
// order, and the whole batch goes through one estimator invocation so
// every row sees the same model snapshot. Model store errors pass through
// unchanged; contract violations surface as MissingFeatureError.
func (p *Predictor) PredictMany(inputs []map[string]any, modelPath string) ([]Result, error) {
	start := time.Now()
	results, err := p.predictBatch(inputs, modelPath)
	if p.metrics != nil {
		p.metrics.PredictionLatencyObserve(time.Since(start).Seconds())
		if err != nil {
			p.metrics.PredictionFailuresInc()
		} else {
			for _, r := range results {
				p.metrics.PredictionsInc()
				p.metrics.PredictionScoresObserve(r.WinProbability)
			}
		}
	}
	return results, err
}

func (p *Predictor) predictBatch(inputs []map[string]any, modelPath string) ([]Result, error) {
	if len(inputs) == 0 {
		return nil, &PredictionError{Err: fmt.Errorf("empty input batch")}
	}

	model, err := p.store.GetOrLoad(modelPath)
	if err != nil {
		return nil, err
	}

	nCat := len(model.Contract.Categorical)
	nNum := len(model.Contract.Numerical)
	cats := make([][]string, len(inputs))
	nums := make([][]float64, len(inputs))

	for i, input := range inputs {
		ordered, err := model.Contract.Reorder(input)
		if err != nil {
			return nil, err
		}
		catRow := make([]string, nCat)
		for j := 0; j < nCat; j++ {
			catRow[j] = fmt.Sprint(ordered[j])
		}
		numRow := make([]float64, nNum)
		for j := 0; j < nNum; j++ {
			v, err := toFloat(ordered[nCat+j])
			if err != nil {
				return nil, &ValidationError{
					Field:  model.Contract.Numerical[j],
					Reason: "must be a valid number",
				}
			}
			numRow[j] = v
		}
		cats[i] = catRow
		nums[i] = numRow
	}

	probs, labels, err := p.invoke(model, cats, nums)
	if err != nil {
		return nil, err
	}

	results := make([]Result, len(inputs))
	for i := range inputs {
		if len(probs[i]) != 2 {
			return nil, &PredictionError{Err: fmt.Errorf("expected 2 probabilities, got %d", len(probs[i]))}
		}
		loss, win := probs[i][0], probs[i][1]
		if !validProb(loss) || !validProb(win) {
			return nil, &PredictionError{Err: fmt.Errorf("invalid probability pair [%f, %f]", loss, win)}
		}
		text := textLoss
		if labels[i] == 1 {
			text = textWin
		}
		results[i] = Result{
			Label:           labels[i],
			WinProbability:  round4(win),
			LossProbability: round4(loss),
			Text:            text,
		}
	}

	log.Debug().Int("batch", len(results)).Str("model_path", modelPath).Msg("prediction batch complete")
	return results, nil
}

// invoke runs the preprocessing and the single estimator call, converting
// any panic from a malformed artifact into a PredictionError.
func (p *Predictor) invoke(model *Model, cats [][]string, nums [][]float64) (probs [][]float64, labels []int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PredictionError{Err: fmt.Errorf("estimator panic: %v", r)}
		}
	}()

	X, terr := model.Pipeline.Transform(cats, nums)
	if terr != nil {
		return nil, nil, &PredictionError{Err: terr}
	}
	labels = model.Estimator.Predict(X)
	probs = model.Estimator.PredictProba(X)
	if len(labels) != len(cats) || len(probs) != len(cats) {
		return nil, nil, &PredictionError{Err: fmt.Errorf("estimator returned %d labels, %d probability rows for %d inputs", len(labels), len(probs), len(cats))}
	}
	return probs, labels, nil
}

func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case string:
		return strconv.ParseFloat(x, 64)
	default:
		return 0, fmt.Errorf("not a number: %T", v)
	}
}

func validProb(p float64) bool {
	return p >= 0 && p <= 1 && !math.IsNaN(p)
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
