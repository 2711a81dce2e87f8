package vdot

import (
	"fmt"
	"math"

	"github.com/briangreenhill/marathoncoach/internal/table"
	"github.com/briangreenhill/marathoncoach/internal/timefmt"
)

// PaceKind names a column of the fitness-vs-pace table.
type PaceKind string

// Pace columns. EasyMin is the slower end of the easy range.
const (
	EasyMin    PaceKind = "E_min"
	EasyMax    PaceKind = "E_max"
	Marathon   PaceKind = "M"
	Threshold  PaceKind = "T"
	Interval   PaceKind = "I"
	Repetition PaceKind = "R"
)

// PaceKinds lists every pace column in display order.
var PaceKinds = []PaceKind{EasyMin, EasyMax, Marathon, Threshold, Interval, Repetition}

func paceColumns() []string {
	cols := make([]string, len(PaceKinds))
	for i, k := range PaceKinds {
		cols[i] = string(k)
	}
	return cols
}

// Pace is seconds per kilometre.
type Pace struct {
	Seconds int    `json:"seconds"`
	Display string `json:"display"`
}

// PaceSet holds the paces derived from one fitness score.
type PaceSet struct {
	Score float64           `json:"score"`
	Paces map[PaceKind]Pace `json:"paces"`
}

// Get returns the pace for kind.
func (p PaceSet) Get(kind PaceKind) (Pace, bool) {
	v, ok := p.Paces[kind]
	return v, ok
}

// Display returns the rendered pace for kind or timefmt.NotAvailable.
func (p PaceSet) Display(kind PaceKind) string {
	if v, ok := p.Paces[kind]; ok {
		return v.Display
	}
	return timefmt.NotAvailable
}

// Easy renders the easy range as "slower~faster".
func (p PaceSet) Easy() string {
	lo, okLo := p.Paces[EasyMin]
	hi, okHi := p.Paces[EasyMax]
	if !okLo || !okHi {
		return timefmt.NotAvailable
	}
	return lo.Display + "~" + hi.Display
}

// FitnessToPaces blends every pace column at score with a single fraction so
// the paces stay consistent with each other. A score below the table is an
// error; a score at or past the top row uses that row.
func FitnessToPaces(t *table.Table, score float64) (PaceSet, table.BlendTrace, error) {
	res, err := t.BlendAt(score, paceColumns()...)
	if err != nil {
		return PaceSet{}, table.BlendTrace{}, fmt.Errorf("fitness to paces: %w", err)
	}

	set := PaceSet{Score: score, Paces: make(map[PaceKind]Pace, len(PaceKinds))}
	for _, k := range PaceKinds {
		v, ok := res.Values[string(k)]
		if !ok {
			continue
		}
		sec := int(math.Round(v))
		set.Paces[k] = Pace{Seconds: sec, Display: timefmt.Format(float64(sec), false)}
	}
	return set, res.Trace, nil
}

// ValidatePaceTable checks that t carries every pace column.
func ValidatePaceTable(t *table.Table) error {
	return t.Require(paceColumns()...)
}
