package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/briangreenhill/marathoncoach/internal/plan"
	"github.com/briangreenhill/marathoncoach/internal/policy"
	"github.com/briangreenhill/marathoncoach/internal/schedule"
	"github.com/briangreenhill/marathoncoach/internal/table"
	"github.com/briangreenhill/marathoncoach/internal/vdot"
)

func TestWriteDurationTrace(t *testing.T) {
	var buf bytes.Buffer
	WriteDurationTrace(&buf, table.DurationTrace{
		Table:    "vdot_list",
		Column:   "Marathon",
		Query:    11538,
		Outcome:  table.Interpolated,
		Slower:   table.Bracket{Index: 49, Seconds: 11636},
		Faster:   table.Bracket{Index: 50, Seconds: 11440},
		Fraction: 0.5,
		Raw:      49.5,
	})

	out := buf.String()
	for _, want := range []string{"vdot_list[Marathon] 3:12:18 -> interpolated", "slower | 49 | 3:13:56", "faster | 50 | 3:10:40", "fraction 0.5000"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestWriteDurationTraceClampedOmitsFraction(t *testing.T) {
	var buf bytes.Buffer
	WriteDurationTrace(&buf, table.DurationTrace{Table: "t", Column: "c", Query: 1, Outcome: table.ClampedHigh})
	if strings.Contains(buf.String(), "fraction") {
		t.Errorf("Clamped trace should not print a fraction:\n%s", buf.String())
	}
}

func TestWriteBlendTrace(t *testing.T) {
	var buf bytes.Buffer
	WriteBlendTrace(&buf, table.BlendTrace{
		Table: "vdot_pace", Query: 50.5, Floor: 50, Ceiling: 51, Fraction: 0.5, Outcome: table.Interpolated,
		Columns: []table.ColumnBlend{
			{Column: "M", Floor: 271, Ceiling: 267, Value: 269},
			{Column: "T", Floor: 255, Ceiling: 255, Value: 255, CeilingMissing: true},
		},
		Skipped: []string{"R"},
	})

	out := buf.String()
	for _, want := range []string{"vdot_pace @ 50.50 -> interpolated (rows 50..51", "M | 4:31 | 4:27 | 269.0", "T | 4:15 | - | 255.0", "skipped: R"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestWritePaces(t *testing.T) {
	set := vdot.PaceSet{Score: 50, Paces: map[vdot.PaceKind]vdot.Pace{
		vdot.EasyMin:  {Seconds: 338, Display: "5:38"},
		vdot.EasyMax:  {Seconds: 307, Display: "5:07"},
		vdot.Marathon: {Seconds: 271, Display: "4:31"},
	}}
	var buf bytes.Buffer
	WritePaces(&buf, set)

	out := buf.String()
	if !strings.Contains(out, "E  5:38~5:07/km") {
		t.Errorf("Missing easy range:\n%s", out)
	}
	if !strings.Contains(out, "M  4:31/km") || !strings.Contains(out, "T  N/A/km") {
		t.Errorf("Unexpected pace lines:\n%s", out)
	}
}

func TestWritePlan(t *testing.T) {
	start := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	p := &plan.Plan{
		Request:           plan.Request{CurrentTime: "3:30:00", TargetTime: "3:00:00"},
		RaceDate:          time.Date(2026, 11, 22, 0, 0, 0, 0, time.UTC),
		Current:           vdot.FitnessResult{Score: 44.56, Category: vdot.ColumnMarathon},
		Target:            vdot.FitnessResult{Score: 53.53, Category: vdot.ColumnMarathon},
		Cap:               policy.Capped{Target: 47.56, Requested: 53.53, MaxImprovement: 3, Adjusted: true},
		EffectiveTarget:   47.56,
		EffectiveMarathon: "3:18:53",
		Window:            schedule.Window{Start: start, Weeks: 12, RemainingWeeks: 5, StartsInPast: true},
		Phases: []plan.Phase{
			{PhaseRange: schedule.PhaseRange{Number: 1, Name: "Base", FirstWeek: 1, LastWeek: 3, Weeks: 3}, Score: 44.56},
		},
		Warnings: []plan.Warning{{Code: plan.WarnLateStart, Message: "Only 5 weeks remain."}},
	}

	var buf bytes.Buffer
	WritePlan(&buf, p)

	out := buf.String()
	for _, want := range []string{
		"Current VDOT 44.56 (Marathon 3:30:00)",
		"This cycle   47.56 (Marathon 3:18:53, max +3.00)",
		"Window       2026-08-24 to 2026-11-22, 12 weeks",
		"1 Base | 1-3 | 44.56 | N/A | N/A",
		"! Only 5 weeks remain.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, out)
		}
	}
}
