package features

import (
	"fmt"
	"strings"
)

// MissingFeatureError lists every contract column absent from an input,
// so a caller can report all validation problems in one response.
type MissingFeatureError struct {
	Columns []string
}

func (e *MissingFeatureError) Error() string {
	return fmt.Sprintf("missing required features: %s", strings.Join(e.Columns, ", "))
}

// Contract is the fixed ordered schema shared by training-time column
// selection and inference-time column reordering. Any mismatch between an
// input's keys and the contract is a hard validation failure, never a
// silent default. Treat as immutable once constructed.
type Contract struct {
	Categorical []string `json:"categorical_features"`
	Numerical   []string `json:"numerical_features"`
}

// DefaultContract returns the schema the match-win classifier is trained
// and served with.
func DefaultContract() Contract {
	return Contract{
		Categorical: []string{"batting_team", "bowling_team", "venue", "city"},
		Numerical:   []string{"total_runs", "total_wickets", "run_rate", "extras_total", "overs_played"},
	}
}

// Columns returns the full ordered column list, categoricals first.
func (c Contract) Columns() []string {
	cols := make([]string, 0, len(c.Categorical)+len(c.Numerical))
	cols = append(cols, c.Categorical...)
	cols = append(cols, c.Numerical...)
	return cols
}

// Reorder projects an arbitrary column mapping into exactly the contract's
// column order, dropping extra keys. Returns a MissingFeatureError naming
// every absent contract column.
func (c Contract) Reorder(input map[string]any) ([]any, error) {
	cols := c.Columns()
	var missing []string
	ordered := make([]any, 0, len(cols))
	for _, col := range cols {
		v, ok := input[col]
		if !ok {
			missing = append(missing, col)
			continue
		}
		ordered = append(ordered, v)
	}
	if len(missing) > 0 {
		return nil, &MissingFeatureError{Columns: missing}
	}
	return ordered, nil
}
