package features

import (
	"errors"
	"reflect"
	"testing"
)

func TestContract_Columns(t *testing.T) {
	c := DefaultContract()
	want := []string{
		"batting_team", "bowling_team", "venue", "city",
		"total_runs", "total_wickets", "run_rate", "extras_total", "overs_played",
	}
	if got := c.Columns(); !reflect.DeepEqual(got, want) {
		t.Errorf("Columns() = %v, want %v", got, want)
	}
}

func TestContract_ReorderDropsExtras(t *testing.T) {
	c := DefaultContract()
	input := validRow().FeatureMap()
	input["stray_column"] = 42.0

	ordered, err := c.Reorder(input)
	if err != nil {
		t.Fatalf("Reorder returned error: %v", err)
	}
	if len(ordered) != len(c.Columns()) {
		t.Errorf("Expected %d values, got %d", len(c.Columns()), len(ordered))
	}
	if ordered[0] != "Team A" || ordered[4] != 160.0 {
		t.Errorf("Values out of contract order: %v", ordered)
	}
}

func TestContract_ReorderListsAllMissing(t *testing.T) {
	c := DefaultContract()
	input := validRow().FeatureMap()
	delete(input, "venue")
	delete(input, "run_rate")

	_, err := c.Reorder(input)
	var missingErr *MissingFeatureError
	if !errors.As(err, &missingErr) {
		t.Fatalf("Expected MissingFeatureError, got %v", err)
	}
	if !reflect.DeepEqual(missingErr.Columns, []string{"venue", "run_rate"}) {
		t.Errorf("Missing columns = %v, want both absent columns in contract order", missingErr.Columns)
	}
}

func TestContract_ReorderEmptyInput(t *testing.T) {
	c := DefaultContract()
	_, err := c.Reorder(map[string]any{})
	var missingErr *MissingFeatureError
	if !errors.As(err, &missingErr) {
		t.Fatalf("Expected MissingFeatureError, got %v", err)
	}
	if len(missingErr.Columns) != len(c.Columns()) {
		t.Errorf("Expected every column reported missing, got %v", missingErr.Columns)
	}
}
