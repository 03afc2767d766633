// Package features turns raw ball-by-ball delivery records into
// match-innings-level training rows. It implements the aggregation,
// derived-metric computation, and cleaning/outlier policy shared by the
// offline training job and the serving path.
package features

// Delivery is one ball bowled, as parsed from the raw dataset.
// Empty WicketKind means no wicket fell on this ball; empty MatchWonBy
// means the match had no result.
type Delivery struct {
	MatchID     string `json:"match_id"`
	Innings     int    `json:"innings"`
	BattingTeam string `json:"batting_team"`
	BowlingTeam string `json:"bowling_team"`
	Venue       string `json:"venue"`
	City        string `json:"city"`
	Season      string `json:"season"`
	RunsBatter  int    `json:"runs_batter"`
	RunsExtras  int    `json:"runs_extras"`
	WicketKind  string `json:"wicket_kind"`
	MatchWonBy  string `json:"match_won_by"`
}

// InningsSummary is one row per (match, innings, batting team): the
// accumulated and derived features plus the supervised target label.
type InningsSummary struct {
	MatchID     string `json:"match_id"`
	Innings     int    `json:"innings"`
	Season      string `json:"season"`
	Venue       string `json:"venue"`
	City        string `json:"city"`
	BattingTeam string `json:"batting_team"`
	BowlingTeam string `json:"bowling_team"`

	RunsOffBatTotal int `json:"runs_off_bat_total"`
	ExtrasTotal     int `json:"extras_total"`
	TotalWickets    int `json:"total_wickets"`
	BallsFaced      int `json:"balls_faced"`

	TotalRuns   int     `json:"total_runs"`
	OversPlayed float64 `json:"overs_played"`
	RunRate     float64 `json:"run_rate"`

	Winner string `json:"winner"`
	Target int    `json:"target"`
}

// FeatureMap exposes the summary's feature-contract columns as a generic
// mapping, the shape the contract enforcer and estimator pipeline consume.
func (s InningsSummary) FeatureMap() map[string]any {
	return map[string]any{
		"batting_team":  s.BattingTeam,
		"bowling_team":  s.BowlingTeam,
		"venue":         s.Venue,
		"city":          s.City,
		"total_runs":    float64(s.TotalRuns),
		"total_wickets": float64(s.TotalWickets),
		"run_rate":      s.RunRate,
		"extras_total":  float64(s.ExtrasTotal),
		"overs_played":  s.OversPlayed,
	}
}
