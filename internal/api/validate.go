package api

import (
	"fmt"
	"math"
	"strconv"

	"ipl-predictor/internal/features"
	"ipl-predictor/internal/ml"
)

// requiredFields is the request schema, in reporting order.
var requiredFields = []string{
	"batting_team", "bowling_team", "venue", "city",
	"total_runs", "total_wickets", "overs_played",
	"extras_total", "run_rate",
}

var numericFields = []string{
	"total_runs", "total_wickets", "overs_played", "extras_total", "run_rate",
}

var stringFields = []string{
	"batting_team", "bowling_team", "venue", "city",
}

const (
	maxWickets = 10
	maxOvers   = 20
)

// validateRequest checks a decoded request body against the input schema
// and business rules. It returns the validated mapping with numeric fields
// coerced to float64, ready for the predictor and for echoing back.
// All rule checks happen here, before any inference.
func validateRequest(data map[string]any) (map[string]any, error) {
	var missing []string
	for _, field := range requiredFields {
		if _, ok := data[field]; !ok {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, &features.MissingFeatureError{Columns: missing}
	}

	validated := make(map[string]any, len(requiredFields))

	for _, field := range stringFields {
		s, ok := data[field].(string)
		if !ok || s == "" {
			return nil, &ml.ValidationError{Field: field, Reason: "must be a non-empty string"}
		}
		validated[field] = s
	}

	for _, field := range numericFields {
		v, err := coerceNumber(data[field])
		if err != nil {
			return nil, &ml.ValidationError{Field: field, Reason: "must be a valid number"}
		}
		if v < 0 {
			return nil, &ml.ValidationError{Field: field, Reason: "cannot be negative"}
		}
		validated[field] = v
	}

	wickets := validated["total_wickets"].(float64)
	if wickets != math.Trunc(wickets) {
		return nil, &ml.ValidationError{Field: "total_wickets", Reason: "must be an integer"}
	}
	if wickets > maxWickets {
		return nil, &ml.ValidationError{Field: "total_wickets", Reason: fmt.Sprintf("cannot exceed %d", maxWickets)}
	}
	if validated["overs_played"].(float64) > maxOvers {
		return nil, &ml.ValidationError{Field: "overs_played", Reason: fmt.Sprintf("cannot exceed %d in T20 cricket", maxOvers)}
	}
	if validated["batting_team"] == validated["bowling_team"] {
		return nil, &ml.ValidationError{Field: "bowling_team", Reason: "batting_team and bowling_team must be different"}
	}

	return validated, nil
}

func coerceNumber(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case string:
		return strconv.ParseFloat(x, 64)
	default:
		return 0, fmt.Errorf("not a number: %T", v)
	}
}
