package table

import (
	"fmt"
	"math"
	"sort"
)

// Outcome says how a lookup arrived at its result.
type Outcome string

const (
	// Interpolated means the result was blended between two rows.
	Interpolated Outcome = "interpolated"
	// Exact means the query landed on a row and no blending was needed.
	Exact Outcome = "exact"
	// ClampedLow means the query fell below the table and the boundary row was used.
	ClampedLow Outcome = "clamped_low"
	// ClampedHigh means the query fell above the table and the boundary row was used.
	ClampedHigh Outcome = "clamped_high"
)

// Clamped reports whether the result came from a boundary row with no interpolation.
func (o Outcome) Clamped() bool { return o == ClampedLow || o == ClampedHigh }

// Bracket is one row used by a duration lookup.
type Bracket struct {
	Index   int `json:"index"`
	Seconds int `json:"seconds"`
}

// DurationTrace records how IndexForDuration reached its result.
type DurationTrace struct {
	Table    string  `json:"table"`
	Column   string  `json:"column"`
	Query    int     `json:"query_seconds"`
	Outcome  Outcome `json:"outcome"`
	Slower   Bracket `json:"slower"`
	Faster   Bracket `json:"faster"`
	Fraction float64 `json:"fraction"`
	Raw      float64 `json:"raw"`
}

// IndexResult is the ability index for a duration, rounded to two decimals.
type IndexResult struct {
	Index float64       `json:"index"`
	Trace DurationTrace `json:"trace"`
}

// IndexForDuration maps a duration in column to an ability index.
//
// Rows are walked slowest first. The first row at least as fast as the query
// and the row before it bracket the query. A query slower than every row
// resolves to the slowest row and a query faster than every row to the
// fastest; neither is extrapolated.
func (t *Table) IndexForDuration(column string, seconds int) (IndexResult, error) {
	if !t.HasColumn(column) {
		return IndexResult{}, fmt.Errorf("%s: %w %q", t.name, ErrUnknownColumn, column)
	}
	if seconds < 0 {
		return IndexResult{}, fmt.Errorf("%s: %w: negative duration %d", t.name, ErrInvalidQuery, seconds)
	}

	pairs := make([]Bracket, 0, len(t.rows))
	for _, r := range t.rows {
		if v, ok := r.Values[column]; ok {
			pairs = append(pairs, Bracket{Index: r.Index, Seconds: v})
		}
	}
	if len(pairs) == 0 {
		return IndexResult{}, fmt.Errorf("%s: %w %q", t.name, ErrNoData, column)
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		if pairs[i].Seconds != pairs[j].Seconds {
			return pairs[i].Seconds > pairs[j].Seconds
		}
		return pairs[i].Index < pairs[j].Index
	})

	trace := DurationTrace{Table: t.name, Column: column, Query: seconds}

	pos := -1
	for i, p := range pairs {
		if p.Seconds <= seconds {
			pos = i
			break
		}
	}

	switch {
	case pos < 0:
		fastest := pairs[len(pairs)-1]
		trace.Outcome = ClampedHigh
		trace.Slower, trace.Faster = fastest, fastest
		trace.Raw = float64(fastest.Index)
		return IndexResult{Index: trace.Raw, Trace: trace}, nil
	case pos == 0:
		slowest := pairs[0]
		trace.Outcome = ClampedLow
		if slowest.Seconds == seconds {
			trace.Outcome = Exact
		}
		trace.Slower, trace.Faster = slowest, slowest
		trace.Raw = float64(slowest.Index)
		return IndexResult{Index: trace.Raw, Trace: trace}, nil
	}

	slower, faster := pairs[pos-1], pairs[pos]
	trace.Slower, trace.Faster = slower, faster

	if slower.Seconds == faster.Seconds {
		trace.Outcome = Exact
		trace.Raw = float64(min(slower.Index, faster.Index))
		return IndexResult{Index: trace.Raw, Trace: trace}, nil
	}

	trace.Fraction = float64(slower.Seconds-seconds) / float64(slower.Seconds-faster.Seconds)
	trace.Raw = float64(slower.Index) + float64(faster.Index-slower.Index)*trace.Fraction
	trace.Outcome = Interpolated
	if faster.Seconds == seconds {
		trace.Outcome = Exact
	}
	return IndexResult{Index: Round2(trace.Raw), Trace: trace}, nil
}

// ColumnBlend is the per-column part of a BlendTrace.
type ColumnBlend struct {
	Column         string  `json:"column"`
	Floor          int     `json:"floor_seconds"`
	Ceiling        int     `json:"ceiling_seconds"`
	Value          float64 `json:"value"`
	CeilingMissing bool    `json:"ceiling_missing,omitempty"`
}

// BlendTrace records how BlendAt reached its result.
type BlendTrace struct {
	Table    string        `json:"table"`
	Query    float64       `json:"query"`
	Floor    int           `json:"floor"`
	Ceiling  int           `json:"ceiling"`
	Fraction float64       `json:"fraction"`
	Outcome  Outcome       `json:"outcome"`
	Columns  []ColumnBlend `json:"columns"`
	Skipped  []string      `json:"skipped,omitempty"`
}

// BlendResult maps each blended column to its value in seconds.
type BlendResult struct {
	Values map[string]float64 `json:"values"`
	Trace  BlendTrace         `json:"trace"`
}

// BlendAt blends the rows at floor(index) and floor(index)+1 by the
// fractional part of index, applying the same fraction to every column.
//
// An index above the last row uses the last row verbatim, as does an index
// whose ceiling row is missing. An index below the first row, or whose floor
// row is missing, is ErrRowNotFound. Columns without a value in the floor row
// are listed in Trace.Skipped.
func (t *Table) BlendAt(index float64, columns ...string) (BlendResult, error) {
	if math.IsNaN(index) || math.IsInf(index, 0) || index < 0 {
		return BlendResult{}, fmt.Errorf("%s: %w: index %v", t.name, ErrInvalidQuery, index)
	}
	if err := t.Require(columns...); err != nil {
		return BlendResult{}, err
	}

	trace := BlendTrace{Table: t.name, Query: index}

	floor := int(math.Floor(index))
	fraction := index - float64(floor)
	clamped := false
	if floor > t.MaxIndex() {
		floor, fraction, clamped = t.MaxIndex(), 0, true
	}

	lo, ok := t.byIndex[floor]
	if !ok {
		return BlendResult{}, fmt.Errorf("%s: %w at index %d", t.name, ErrRowNotFound, floor)
	}
	floorRow := t.rows[lo]
	ceilRow := floorRow
	if hi, ok := t.byIndex[floor+1]; ok && !clamped {
		ceilRow = t.rows[hi]
	} else if fraction > 0 {
		fraction, clamped = 0, true
	}

	switch {
	case clamped:
		trace.Outcome = ClampedHigh
	case fraction == 0:
		trace.Outcome = Exact
	default:
		trace.Outcome = Interpolated
	}

	trace.Floor, trace.Ceiling, trace.Fraction = floorRow.Index, ceilRow.Index, fraction

	values := make(map[string]float64, len(columns))
	for _, c := range columns {
		fv, ok := floorRow.Values[c]
		if !ok {
			trace.Skipped = append(trace.Skipped, c)
			continue
		}
		blend := ColumnBlend{Column: c, Floor: fv}
		cv, ok := ceilRow.Values[c]
		if !ok {
			cv = fv
			blend.CeilingMissing = true
		}
		blend.Ceiling = cv
		blend.Value = float64(fv) + float64(cv-fv)*fraction
		values[c] = blend.Value
		trace.Columns = append(trace.Columns, blend)
	}

	return BlendResult{Values: values, Trace: trace}, nil
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
