// Package report renders lookup traces and plans as plain text tables for
// the command line.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/briangreenhill/marathoncoach/internal/plan"
	"github.com/briangreenhill/marathoncoach/internal/table"
	"github.com/briangreenhill/marathoncoach/internal/timefmt"
	"github.com/briangreenhill/marathoncoach/internal/vdot"
)

// WriteDurationTrace prints how a duration was mapped to a score.
func WriteDurationTrace(w io.Writer, tr table.DurationTrace) {
	fmt.Fprintf(w, "%s[%s] %s -> %s\n", tr.Table, tr.Column, timefmt.Format(float64(tr.Query), false), tr.Outcome)
	fmt.Fprintln(w, "Row | VDOT | Time")
	fmt.Fprintln(w, "----|------|-----")
	fmt.Fprintf(w, "slower | %d | %s\n", tr.Slower.Index, timefmt.Format(float64(tr.Slower.Seconds), false))
	fmt.Fprintf(w, "faster | %d | %s\n", tr.Faster.Index, timefmt.Format(float64(tr.Faster.Seconds), false))
	if tr.Outcome == table.Interpolated {
		fmt.Fprintf(w, "fraction %.4f, raw %.4f\n", tr.Fraction, tr.Raw)
	}
}

// WriteBlendTrace prints the per-column blend of a score lookup.
func WriteBlendTrace(w io.Writer, tr table.BlendTrace) {
	fmt.Fprintf(w, "%s @ %.2f -> %s (rows %d..%d, fraction %.2f)\n",
		tr.Table, tr.Query, tr.Outcome, tr.Floor, tr.Ceiling, tr.Fraction)
	fmt.Fprintln(w, "Column | Floor | Ceiling | Value")
	fmt.Fprintln(w, "-------|-------|---------|------")
	for _, c := range tr.Columns {
		ceil := timefmt.Format(float64(c.Ceiling), false)
		if c.CeilingMissing {
			ceil = "-"
		}
		fmt.Fprintf(w, "%s | %s | %s | %.1f\n", c.Column, timefmt.Format(float64(c.Floor), false), ceil, c.Value)
	}
	if len(tr.Skipped) > 0 {
		fmt.Fprintf(w, "skipped: %s\n", strings.Join(tr.Skipped, ", "))
	}
}

// WritePaces prints one line per pace kind, easy range first.
func WritePaces(w io.Writer, set vdot.PaceSet) {
	fmt.Fprintf(w, "VDOT %.2f\n", set.Score)
	fmt.Fprintf(w, "E  %s/km\n", set.Easy())
	for _, k := range []vdot.PaceKind{vdot.Marathon, vdot.Threshold, vdot.Interval, vdot.Repetition} {
		fmt.Fprintf(w, "%-2s %s/km\n", k, set.Display(k))
	}
}

// WritePlan prints a plan summary: scores, window, phases and warnings.
func WritePlan(w io.Writer, p *plan.Plan) {
	fmt.Fprintf(w, "Current VDOT %.2f (%s %s)\n", p.Current.Score, p.Current.Category, p.Request.CurrentTime)
	fmt.Fprintf(w, "Target VDOT  %.2f (Marathon %s)\n", p.Target.Score, p.Request.TargetTime)
	if p.Cap.Adjusted {
		fmt.Fprintf(w, "This cycle   %.2f (Marathon %s, max +%.2f)\n", p.EffectiveTarget, p.EffectiveMarathon, p.Cap.MaxImprovement)
	}
	fmt.Fprintf(w, "Window       %s to %s, %d weeks\n",
		p.Window.Start.Format(plan.DateLayout), p.RaceDate.Format(plan.DateLayout), p.Window.Weeks)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Phase | Weeks | VDOT | E | M | T | I | R")
	fmt.Fprintln(w, "------|-------|------|---|---|---|---|--")
	for _, ph := range p.Phases {
		fmt.Fprintf(w, "%d %s | %d-%d | %.2f | %s | %s | %s | %s | %s\n",
			ph.Number, ph.Name, ph.FirstWeek, ph.LastWeek, ph.Score,
			ph.Paces.Easy(),
			ph.Paces.Display(vdot.Marathon),
			ph.Paces.Display(vdot.Threshold),
			ph.Paces.Display(vdot.Interval),
			ph.Paces.Display(vdot.Repetition),
		)
	}

	if len(p.Warnings) > 0 {
		fmt.Fprintln(w)
		for _, warn := range p.Warnings {
			fmt.Fprintf(w, "! %s\n", warn.Message)
		}
	}
}
