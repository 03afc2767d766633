package ml

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"

	"ipl-predictor/internal/features"
)

// TrainConfig tunes the offline training run.
type TrainConfig struct {
	Contract  features.Contract // zero value means DefaultContract
	TestSplit float64           // fraction held out, default 0.2
	Seed      int64             // split shuffle seed, default 42
}

// Evaluation summarizes held-out performance of a training run.
// Confusion is indexed [actual][predicted].
type Evaluation struct {
	TrainSamples  int
	TestSamples   int
	TrainAccuracy float64
	TestAccuracy  float64
	Precision     float64
	Recall        float64
	Confusion     [2][2]int
}

// Train fits the preprocessing pipeline and estimator on cleaned innings
// summaries, using a seeded stratified split so both labels keep their
// proportions in train and test sets. The pipeline is fitted on the
// training partition only.
func Train(rows []features.InningsSummary, cfg TrainConfig) (*Model, Evaluation, error) {
	contract := cfg.Contract
	if len(contract.Categorical) == 0 && len(contract.Numerical) == 0 {
		contract = features.DefaultContract()
	}
	split := cfg.TestSplit
	if split <= 0 || split >= 1 {
		split = 0.2
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = 42
	}

	if len(rows) < 10 {
		return nil, Evaluation{}, fmt.Errorf("not enough training rows: %d", len(rows))
	}

	cats := make([][]string, len(rows))
	nums := make([][]float64, len(rows))
	y := make([]int, len(rows))
	nCat := len(contract.Categorical)
	for i, row := range rows {
		ordered, err := contract.Reorder(row.FeatureMap())
		if err != nil {
			return nil, Evaluation{}, fmt.Errorf("row %d: %w", i, err)
		}
		catRow := make([]string, nCat)
		for j := 0; j < nCat; j++ {
			catRow[j] = fmt.Sprint(ordered[j])
		}
		numRow := make([]float64, len(contract.Numerical))
		for j := range numRow {
			v, err := toFloat(ordered[nCat+j])
			if err != nil {
				return nil, Evaluation{}, fmt.Errorf("row %d column %s: %w", i, contract.Numerical[j], err)
			}
			numRow[j] = v
		}
		cats[i] = catRow
		nums[i] = numRow
		y[i] = row.Target
	}

	trainIdx, testIdx := stratifiedSplit(y, split, seed)

	pipeline := NewPipeline(contract)
	if err := pipeline.Fit(pick(cats, trainIdx), pickFloats(nums, trainIdx)); err != nil {
		return nil, Evaluation{}, fmt.Errorf("fit pipeline: %w", err)
	}

	XTrain, err := pipeline.Transform(pick(cats, trainIdx), pickFloats(nums, trainIdx))
	if err != nil {
		return nil, Evaluation{}, fmt.Errorf("transform train set: %w", err)
	}
	XTest, err := pipeline.Transform(pick(cats, testIdx), pickFloats(nums, testIdx))
	if err != nil {
		return nil, Evaluation{}, fmt.Errorf("transform test set: %w", err)
	}
	yTrain := pickInts(y, trainIdx)
	yTest := pickInts(y, testIdx)

	estimator := NewLogisticRegression()
	if err := estimator.Fit(XTrain, yTrain); err != nil {
		return nil, Evaluation{}, fmt.Errorf("fit estimator: %w", err)
	}

	eval := Evaluation{
		TrainSamples:  len(trainIdx),
		TestSamples:   len(testIdx),
		TrainAccuracy: accuracy(estimator.Predict(XTrain), yTrain),
	}
	predTest := estimator.Predict(XTest)
	eval.TestAccuracy = accuracy(predTest, yTest)
	for i, pred := range predTest {
		eval.Confusion[yTest[i]][pred]++
	}
	tp := float64(eval.Confusion[1][1])
	fp := float64(eval.Confusion[0][1])
	fn := float64(eval.Confusion[1][0])
	if tp+fp > 0 {
		eval.Precision = tp / (tp + fp)
	}
	if tp+fn > 0 {
		eval.Recall = tp / (tp + fn)
	}

	log.Info().
		Int("train_samples", eval.TrainSamples).
		Int("test_samples", eval.TestSamples).
		Float64("train_accuracy", eval.TrainAccuracy).
		Float64("test_accuracy", eval.TestAccuracy).
		Float64("precision", eval.Precision).
		Float64("recall", eval.Recall).
		Msg("model trained")

	model := &Model{
		Estimator: estimator,
		Pipeline:  pipeline,
		Contract:  contract,
		TrainedAt: time.Now().UTC(),
	}
	return model, eval, nil
}

// stratifiedSplit shuffles indices per label and holds out the requested
// fraction of each label class.
func stratifiedSplit(y []int, testFraction float64, seed int64) (train, test []int) {
	rng := rand.New(rand.NewSource(seed))
	byLabel := map[int][]int{}
	for i, label := range y {
		byLabel[label] = append(byLabel[label], i)
	}
	for _, idx := range byLabel {
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
		cut := int(float64(len(idx)) * testFraction)
		test = append(test, idx[:cut]...)
		train = append(train, idx[cut:]...)
	}
	rng.Shuffle(len(train), func(i, j int) { train[i], train[j] = train[j], train[i] })
	rng.Shuffle(len(test), func(i, j int) { test[i], test[j] = test[j], test[i] })
	return train, test
}

func accuracy(pred, actual []int) float64 {
	if len(actual) == 0 {
		return 0
	}
	hits := 0
	for i := range actual {
		if pred[i] == actual[i] {
			hits++
		}
	}
	return float64(hits) / float64(len(actual))
}

func pick(rows [][]string, idx []int) [][]string {
	out := make([][]string, len(idx))
	for i, j := range idx {
		out[i] = rows[j]
	}
	return out
}

func pickFloats(rows [][]float64, idx []int) [][]float64 {
	out := make([][]float64, len(idx))
	for i, j := range idx {
		out[i] = rows[j]
	}
	return out
}

func pickInts(vals []int, idx []int) []int {
	out := make([]int, len(idx))
	for i, j := range idx {
		out[i] = vals[j]
	}
	return out
}
