package main

import (
	"context"
	"flag"

	"ipl-predictor/internal/cfg"
	"ipl-predictor/internal/dataset"
	"ipl-predictor/internal/features"
	"ipl-predictor/internal/ingest"
	"ipl-predictor/internal/metrics"
	"ipl-predictor/internal/ml"
	"ipl-predictor/internal/storage"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	godotenv.Load()
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	var (
		csvPath   = flag.String("csv", "", "path to the raw ball-by-ball CSV (overrides config)")
		outPath   = flag.String("out", "", "path to write the model artifact (overrides config)")
		download  = flag.Bool("download", false, "download the dataset from the configured URL first")
		scrubOnly = flag.String("scrub", "", "scrub the raw CSV into the given output path and exit")
		fromStore = flag.Bool("from-store", false, "retrain from summaries persisted in the feature store instead of a CSV")
	)
	flag.Parse()

	c, err := cfg.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	if *csvPath != "" {
		c.RawCSVPath = *csvPath
	}
	if *outPath != "" {
		c.ModelPath = *outPath
	}

	if *scrubOnly != "" {
		report, err := dataset.ScrubRawCSV(c.RawCSVPath, *scrubOnly)
		if err != nil {
			log.Fatal().Err(err).Msg("scrub failed")
		}
		log.Info().Int("rows", report.Rows).Msg("scrub complete")
		return
	}

	m := metrics.New()

	var summaries []features.InningsSummary
	if *fromStore {
		summaries = loadStoredSummaries(c)
	} else {
		if *download {
			if c.DatasetURL == "" {
				log.Fatal().Msg("no dataset URL configured")
			}
			client := ingest.NewClient(c.RESTTimeout)
			if err := client.Download(context.Background(), c.DatasetURL, c.RawCSVPath); err != nil {
				log.Fatal().Err(err).Msg("dataset download failed")
			}
		}

		deliveries, loadReport, err := dataset.LoadDeliveries(c.RawCSVPath)
		if err != nil {
			log.Fatal().Err(err).Msg("dataset load failed")
		}

		var aggReport features.AggregateReport
		summaries, aggReport, err = features.Aggregate(deliveries)
		if err != nil {
			log.Fatal().Err(err).Msg("aggregation failed")
		}
		m.ObserveAggregateReport(aggReport.SkippedRows + loadReport.Skipped)
		log.Info().
			Int("deliveries", aggReport.TotalDeliveries).
			Int("skipped", aggReport.SkippedRows+loadReport.Skipped).
			Int("innings", aggReport.Groups).
			Msg("features aggregated")
	}

	cleaned, cleanReport := features.Clean(summaries, features.CleanConfig{RunRateMax: c.RunRateMax})
	m.ObserveCleanReport(cleanReport.DroppedMissing, cleanReport.DroppedZeroOvers,
		cleanReport.DroppedOutliers, cleanReport.DroppedDuplicate)
	log.Info().
		Int("removed", cleanReport.Removed()).
		Int("training_rows", cleanReport.Output).
		Msg("training data ready")

	if !*fromStore {
		persistSummaries(c, cleaned)
	}

	model, eval, err := ml.Train(cleaned, ml.TrainConfig{
		TestSplit: c.TestSplit,
		Seed:      c.Seed,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("training failed")
	}

	log.Info().
		Float64("test_accuracy", eval.TestAccuracy).
		Float64("precision", eval.Precision).
		Float64("recall", eval.Recall).
		Ints("confusion_row_loss", []int{eval.Confusion[0][0], eval.Confusion[0][1]}).
		Ints("confusion_row_win", []int{eval.Confusion[1][0], eval.Confusion[1][1]}).
		Msg("evaluation complete")

	if err := ml.SaveModel(model, c.ModelPath); err != nil {
		log.Fatal().Err(err).Msg("model save failed")
	}
	log.Info().Str("model_path", c.ModelPath).Msg("training pipeline complete")
}

// loadStoredSummaries reads every innings summary persisted by an earlier
// training run, for retraining without re-parsing the raw CSV.
func loadStoredSummaries(c cfg.Settings) []features.InningsSummary {
	if c.DataPath == "" {
		log.Fatal().Msg("from-store requires DATA_PATH to be configured")
	}
	store, err := storage.New(c.DataPath)
	if err != nil {
		log.Fatal().Err(err).Msg("feature store unavailable")
	}
	defer store.Close()

	summaries, err := store.AllSummaries()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read stored summaries")
	}
	if len(summaries) == 0 {
		log.Fatal().Msg("feature store holds no innings summaries, run a CSV training pass first")
	}
	log.Info().Int("innings", len(summaries)).Msg("summaries loaded from feature store")
	return summaries
}

// persistSummaries keeps the cleaned training rows in the feature store
// for later inspection, when storage is configured.
func persistSummaries(c cfg.Settings, rows []features.InningsSummary) {
	if c.DataPath == "" {
		return
	}
	store, err := storage.New(c.DataPath)
	if err != nil {
		log.Warn().Err(err).Msg("feature store unavailable, skipping persistence")
		return
	}
	defer store.Close()
	if err := store.StoreSummaries(rows); err != nil {
		log.Warn().Err(err).Msg("failed to persist innings summaries")
	}
}
