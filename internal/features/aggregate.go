package features

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

// SchemaError indicates a required column was absent from every input
// record, making aggregation impossible. Not recoverable within a run.
type SchemaError struct {
	Columns []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema error: missing required columns: %s", strings.Join(e.Columns, ", "))
}

// AggregateReport carries observable side effects of an aggregation pass:
// rows skipped because their grouping key was incomplete are counted here,
// never silently folded into a misleading zero.
type AggregateReport struct {
	TotalDeliveries int
	SkippedRows     int
	Groups          int
}

type inningsKey struct {
	matchID     string
	innings     int
	battingTeam string
}

// Aggregate buckets deliveries by (match_id, innings, batting_team) in a
// single pass and computes per-innings accumulated and derived features.
// Output order follows first appearance of each group in the input.
//
// Within a group the first observed value of the constant fields (season,
// venue, city, bowling team, winner) is authoritative.
func Aggregate(deliveries []Delivery) ([]InningsSummary, AggregateReport, error) {
	report := AggregateReport{TotalDeliveries: len(deliveries)}

	if len(deliveries) == 0 {
		return nil, report, &SchemaError{Columns: []string{"match_id", "innings", "batting_team"}}
	}

	groups := make(map[inningsKey]*InningsSummary)
	order := make([]inningsKey, 0)

	for _, d := range deliveries {
		if d.MatchID == "" || d.Innings == 0 || d.BattingTeam == "" {
			report.SkippedRows++
			continue
		}

		key := inningsKey{d.MatchID, d.Innings, d.BattingTeam}
		s, ok := groups[key]
		if !ok {
			s = &InningsSummary{
				MatchID:     d.MatchID,
				Innings:     d.Innings,
				Season:      d.Season,
				Venue:       d.Venue,
				City:        d.City,
				BattingTeam: d.BattingTeam,
				BowlingTeam: d.BowlingTeam,
				Winner:      d.MatchWonBy,
			}
			groups[key] = s
			order = append(order, key)
		}

		s.RunsOffBatTotal += d.RunsBatter
		s.ExtrasTotal += d.RunsExtras
		if d.WicketKind != "" {
			s.TotalWickets++
		}
		s.BallsFaced++
	}

	if len(groups) == 0 {
		return nil, report, &SchemaError{Columns: []string{"match_id", "innings", "batting_team"}}
	}

	summaries := make([]InningsSummary, 0, len(groups))
	for _, key := range order {
		s := groups[key]
		s.TotalRuns = s.RunsOffBatTotal + s.ExtrasTotal
		s.OversPlayed = float64(s.BallsFaced) / 6
		if s.OversPlayed > 0 {
			s.RunRate = float64(s.TotalRuns) / s.OversPlayed
		}
		if s.BattingTeam == s.Winner && s.Winner != "" {
			s.Target = 1
		}
		summaries = append(summaries, *s)
	}
	report.Groups = len(summaries)

	if report.SkippedRows > 0 {
		log.Warn().
			Int("skipped", report.SkippedRows).
			Int("total", report.TotalDeliveries).
			Msg("deliveries skipped due to incomplete grouping key")
	}

	return summaries, report, nil
}
