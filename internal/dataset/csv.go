// Package dataset reads the raw ball-by-ball CSV and prepares it for the
// feature pipeline. It also carries the raw-file scrub pass that strips
// non-predictive columns before the data is shared around.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/rs/zerolog/log"

	"ipl-predictor/internal/features"
)

// nullLiteral is what the scrub pass writes for absent values; the loader
// treats it the same as an empty cell.
const nullLiteral = "None"

// requiredColumns must each appear in the CSV header. Missing any of them
// means the file cannot be aggregated at all.
var requiredColumns = []string{
	"match_id", "innings", "batting_team", "bowling_team",
	"runs_batter", "runs_extras", "wicket_kind", "match_won_by",
	"venue", "city", "season",
}

// LoadReport accounts for every row read: parsed, or skipped with a reason
// visible to the caller rather than defaulted into misleading zeros.
type LoadReport struct {
	Rows    int
	Skipped int
}

// LoadDeliveries parses the ball-by-ball CSV at path. The header must
// contain every required column or a SchemaError is returned; individual
// malformed rows are skipped and counted in the report.
func LoadDeliveries(path string) ([]features.Delivery, LoadReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, LoadReport{}, fmt.Errorf("open dataset %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, LoadReport{}, fmt.Errorf("read header of %s: %w", path, err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[name] = i
	}
	var missing []string
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, LoadReport{}, &features.SchemaError{Columns: missing}
	}

	var deliveries []features.Delivery
	var report LoadReport
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			report.Skipped++
			continue
		}
		report.Rows++

		d, ok := parseDelivery(record, cols)
		if !ok {
			report.Skipped++
			continue
		}
		deliveries = append(deliveries, d)
	}

	log.Info().
		Str("path", path).
		Int("rows", report.Rows).
		Int("skipped", report.Skipped).
		Msg("deliveries loaded")
	return deliveries, report, nil
}

func parseDelivery(record []string, cols map[string]int) (features.Delivery, bool) {
	field := func(name string) string {
		i := cols[name]
		if i >= len(record) {
			return ""
		}
		v := record[i]
		if v == nullLiteral {
			return ""
		}
		return v
	}

	innings, err := strconv.Atoi(field("innings"))
	if err != nil {
		return features.Delivery{}, false
	}
	runsBatter, err := parseRuns(field("runs_batter"))
	if err != nil {
		return features.Delivery{}, false
	}
	runsExtras, err := parseRuns(field("runs_extras"))
	if err != nil {
		return features.Delivery{}, false
	}

	return features.Delivery{
		MatchID:     field("match_id"),
		Innings:     innings,
		BattingTeam: field("batting_team"),
		BowlingTeam: field("bowling_team"),
		Venue:       field("venue"),
		City:        field("city"),
		Season:      field("season"),
		RunsBatter:  runsBatter,
		RunsExtras:  runsExtras,
		WicketKind:  field("wicket_kind"),
		MatchWonBy:  field("match_won_by"),
	}, true
}

// parseRuns accepts integers or float-formatted integers; empty means 0.
func parseRuns(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	if i, err := strconv.Atoi(v); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}
