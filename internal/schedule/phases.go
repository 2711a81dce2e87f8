package schedule

import "fmt"

// PhaseRange is the block of weeks one phase occupies. Weeks are numbered
// from 1.
type PhaseRange struct {
	Number    int    `json:"number"`
	Name      string `json:"name"`
	Focus     string `json:"focus,omitempty"`
	FirstWeek int    `json:"first_week"`
	LastWeek  int    `json:"last_week"`
	Weeks     int    `json:"weeks"`
}

var fourPhases = [4]struct{ name, focus string }{
	{"Base", "Mostly E pace; build the aerobic base"},
	{"Build", "Introduce T and I sessions; build endurance"},
	{"Race-specific", "More M pace; race simulation"},
	{"Taper", "Reduce load and shed fatigue before race day"},
}

// PhaseRanges splits weeks into phases blocks of weeks/phases weeks each.
// The last block absorbs the remainder. Blocks are empty when there are
// fewer weeks than phases.
//
// phases < 1 panics.
func PhaseRanges(weeks, phases int) []PhaseRange {
	if phases < 1 {
		panic(fmt.Sprintf("schedule: phase count must be at least 1, got %d", phases))
	}
	weeks = max(weeks, 0)
	per := weeks / phases

	out := make([]PhaseRange, phases)
	next := 1
	for i := range out {
		n := per
		if i == phases-1 {
			n = weeks - per*(phases-1)
		}
		r := PhaseRange{
			Number:    i + 1,
			Name:      fmt.Sprintf("Phase %d", i+1),
			FirstWeek: next,
			LastWeek:  next + n - 1,
			Weeks:     n,
		}
		if phases == len(fourPhases) {
			r.Name, r.Focus = fourPhases[i].name, fourPhases[i].focus
		}
		out[i] = r
		next += n
	}
	return out
}
