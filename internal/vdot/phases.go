package vdot

import (
	"fmt"

	"github.com/briangreenhill/marathoncoach/internal/table"
)

// MaxPhases bounds phase counts taken from user input: one phase per week of
// a year-long plan.
const MaxPhases = 52

// PhaseTargets spaces n fitness targets from current to target. The first
// phase trains at current ability, so element 0 is current and the last
// element is target; the ones between are evenly stepped and rounded to two
// decimals. A single phase yields just current.
//
// n < 1 is a caller bug and panics.
func PhaseTargets(current, target float64, n int) []float64 {
	if n < 1 {
		panic(fmt.Sprintf("vdot: phase count must be at least 1, got %d", n))
	}
	out := make([]float64, n)
	out[0] = current
	if n == 1 {
		return out
	}
	step := (target - current) / float64(n-1)
	for i := 1; i < n-1; i++ {
		out[i] = table.Round2(current + step*float64(i))
	}
	out[n-1] = target
	return out
}
