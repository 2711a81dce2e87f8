package plan

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/briangreenhill/marathoncoach/internal/timefmt"
	"github.com/briangreenhill/marathoncoach/internal/vdot"
)

// DateLayout is the format of Request.RaceDate.
const DateLayout = "2006-01-02"

// ErrInvalidRequest is wrapped by every Request validation error.
var ErrInvalidRequest = errors.New("invalid plan request")

// Request is what a runner submits. Free-text fields are passed through to
// the prompt unchanged.
type Request struct {
	Name   string `json:"name"`
	Age    int    `json:"age,omitempty"`
	Gender string `json:"gender,omitempty"`

	// CurrentTime is a recent race result in CurrentCategory, which
	// defaults to the marathon.
	CurrentTime     string `json:"current_time"`
	CurrentCategory string `json:"current_category,omitempty"`
	// TargetTime is the marathon goal.
	TargetTime string `json:"target_time"`

	RaceName      string `json:"race_name"`
	RaceDate      string `json:"race_date"`
	PracticeRaces string `json:"practice_races,omitempty"`

	WeeklyDistance  string `json:"weekly_distance,omitempty"`
	TrainingDays    string `json:"training_days,omitempty"`
	QualitySessions string `json:"quality_sessions,omitempty"`
	Concerns        string `json:"concerns,omitempty"`
}

// FieldErrors maps request fields to what is wrong with them.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + f[k]
	}
	return fmt.Sprintf("%s: %s", ErrInvalidRequest, strings.Join(parts, "; "))
}

func (f FieldErrors) Unwrap() error { return ErrInvalidRequest }

type parsed struct {
	current  int
	target   int
	category string
	raceDate time.Time
}

func (r Request) parse(loc *time.Location) (parsed, error) {
	var p parsed
	errs := FieldErrors{}

	var ok bool
	if p.current, ok = timefmt.ParseDuration(r.CurrentTime); !ok {
		errs["current_time"] = fmt.Sprintf("cannot parse %q, use H:MM:SS", r.CurrentTime)
	}
	if p.target, ok = timefmt.ParseDuration(r.TargetTime); !ok {
		errs["target_time"] = fmt.Sprintf("cannot parse %q, use H:MM:SS", r.TargetTime)
	}
	p.category = r.CurrentCategory
	if strings.TrimSpace(p.category) == "" {
		p.category = vdot.ColumnMarathon
	}
	d, err := time.ParseInLocation(DateLayout, strings.TrimSpace(r.RaceDate), loc)
	if err != nil {
		errs["race_date"] = fmt.Sprintf("cannot parse %q, use YYYY-MM-DD", r.RaceDate)
	}
	p.raceDate = d
	if r.Age < 0 {
		errs["age"] = "must not be negative"
	}

	if len(errs) > 0 {
		return parsed{}, errs
	}
	return p, nil
}
