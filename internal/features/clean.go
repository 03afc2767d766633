package features

import "github.com/rs/zerolog/log"

// DefaultRunRateMax is the outlier bound for run rate. Anything above it
// is treated as a data-entry error and dropped.
const DefaultRunRateMax = 50.0

// UnknownCity is the fill value for summaries with no recorded city.
const UnknownCity = "Unknown"

// CleanConfig tunes the cleaning policy.
type CleanConfig struct {
	RunRateMax float64 // 0 means DefaultRunRateMax
}

// CleanReport exposes the rows removed at each stage, for data-quality
// monitoring. Stages apply in the order of the fields below.
type CleanReport struct {
	Input            int
	DroppedMissing   int
	DroppedZeroOvers int
	DroppedOutliers  int
	DroppedDuplicate int
	FilledCity       int
	Output           int
}

// Removed returns the total number of rows removed across all stages.
func (r CleanReport) Removed() int {
	return r.DroppedMissing + r.DroppedZeroOvers + r.DroppedOutliers + r.DroppedDuplicate
}

// Clean applies the training-data validity and outlier policy to aggregated
// innings summaries. Malformed rows are filtered, never rejected with an
// error; each stage strictly reduces or transforms the set. Clean is
// idempotent: a second pass removes nothing further.
func Clean(rows []InningsSummary, cfg CleanConfig) ([]InningsSummary, CleanReport) {
	runRateMax := cfg.RunRateMax
	if runRateMax <= 0 {
		runRateMax = DefaultRunRateMax
	}

	report := CleanReport{Input: len(rows)}
	out := make([]InningsSummary, 0, len(rows))
	seen := make(map[InningsSummary]struct{}, len(rows))

	for _, row := range rows {
		// Unusable for supervised training without identity fields.
		if row.BattingTeam == "" || row.BowlingTeam == "" || row.Venue == "" {
			report.DroppedMissing++
			continue
		}
		// Zero-ball innings carry no signal.
		if row.OversPlayed <= 0 {
			report.DroppedZeroOvers++
			continue
		}
		if row.RunRate > runRateMax {
			report.DroppedOutliers++
			continue
		}

		if row.City == "" {
			row.City = UnknownCity
			report.FilledCity++
		}
		if row.ExtrasTotal < 0 {
			row.ExtrasTotal = 0
		}

		if _, dup := seen[row]; dup {
			report.DroppedDuplicate++
			continue
		}
		seen[row] = struct{}{}
		out = append(out, row)
	}

	report.Output = len(out)
	log.Info().
		Int("input", report.Input).
		Int("output", report.Output).
		Int("dropped_missing", report.DroppedMissing).
		Int("dropped_zero_overs", report.DroppedZeroOvers).
		Int("dropped_outliers", report.DroppedOutliers).
		Int("dropped_duplicates", report.DroppedDuplicate).
		Msg("cleaned innings summaries")

	return out, report
}
