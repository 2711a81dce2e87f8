// Package vdot converts race times to fitness scores and back, derives
// training paces for a score and spaces phase targets between two scores.
//
// Every function is pure: tables are passed in and never modified.
package vdot

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/briangreenhill/marathoncoach/internal/table"
	"github.com/briangreenhill/marathoncoach/internal/timefmt"
)

// Column names of the fitness-vs-time table.
const (
	Column5K       = "5000m"
	Column10K      = "10000m"
	ColumnHalf     = "HalfMarathon"
	ColumnMarathon = "Marathon"
)

// ErrUnknownCategory is returned when a race category cannot be resolved to a
// table column.
var ErrUnknownCategory = errors.New("unknown race category")

var categoryAliases = map[string]string{
	"5km":          Column5K,
	"5k":           Column5K,
	"5000m":        Column5K,
	"10km":         Column10K,
	"10k":          Column10K,
	"10000m":       Column10K,
	"half":         ColumnHalf,
	"halfmarathon": ColumnHalf,
	"ハーフ":          ColumnHalf,
	"ハーフマラソン":      ColumnHalf,
	"full":         ColumnMarathon,
	"marathon":     ColumnMarathon,
	"フル":           ColumnMarathon,
	"フルマラソン":       ColumnMarathon,
	"マラソン":         ColumnMarathon,
}

// ResolveCategory maps a user-facing race category to its table column.
// Matching ignores case and surrounding whitespace. Names that are not
// aliases are returned unchanged so exact column names keep working.
func ResolveCategory(category string) string {
	key := strings.ToLower(strings.TrimSpace(category))
	if col, ok := categoryAliases[key]; ok {
		return col
	}
	return strings.TrimSpace(category)
}

// FitnessResult is a score computed from a race time.
type FitnessResult struct {
	Score    float64             `json:"score"`
	Category string              `json:"category"`
	Trace    table.DurationTrace `json:"trace"`
}

// TimeToFitness interpolates the fitness score for a race of seconds in
// category. Out-of-range times resolve to the nearest row; the trace outcome
// says so.
func TimeToFitness(t *table.Table, category string, seconds int) (FitnessResult, error) {
	col := ResolveCategory(category)
	if !t.HasColumn(col) {
		return FitnessResult{}, fmt.Errorf("%w %q", ErrUnknownCategory, category)
	}
	res, err := t.IndexForDuration(col, seconds)
	if err != nil {
		return FitnessResult{}, fmt.Errorf("time to fitness: %w", err)
	}
	return FitnessResult{Score: res.Index, Category: col, Trace: res.Trace}, nil
}

// FitnessToSeconds interpolates the marathon time in seconds for score.
func FitnessToSeconds(t *table.Table, score float64) (float64, table.BlendTrace, error) {
	res, err := t.BlendAt(score, ColumnMarathon)
	if err != nil {
		return 0, table.BlendTrace{}, fmt.Errorf("fitness to time: %w", err)
	}
	v, ok := res.Values[ColumnMarathon]
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, res.Trace, fmt.Errorf("fitness to time: %w at %v", table.ErrNoData, score)
	}
	return v, res.Trace, nil
}

// FitnessToTime renders the marathon time for score as H:MM:SS, or
// timefmt.NotAvailable when the table cannot answer.
func FitnessToTime(t *table.Table, score float64) string {
	v, _, err := FitnessToSeconds(t, score)
	if err != nil {
		return timefmt.NotAvailable
	}
	return timefmt.Format(v, true)
}

// ValidateTimeTable checks that t can serve every lookup in this package.
func ValidateTimeTable(t *table.Table) error {
	return t.Require(ColumnMarathon)
}
