package policy

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Condition fields reported in a Shortfall.
const (
	FieldWeeklyKm        = "weekly_km"
	FieldSessions        = "sessions"
	FieldQualitySessions = "quality_sessions"
)

// Conditions are the training conditions a runner can commit to.
type Conditions struct {
	WeeklyKm        float64 `json:"weekly_km"`
	Sessions        float64 `json:"sessions"`
	QualitySessions float64 `json:"quality_sessions"`
}

// Shortfall is one condition below its minimum.
type Shortfall struct {
	Field    string  `json:"field"`
	Supplied float64 `json:"supplied"`
	Required float64 `json:"required"`
}

// Validation is the result of ValidateConditions.
type Validation struct {
	Valid      bool         `json:"valid"`
	Shortfalls []Shortfall  `json:"shortfalls,omitempty"`
	Minimums   Requirements `json:"minimums"`
}

// ValidateConditions compares c with the minimums for target and reports
// every shortfall. Negative and non-finite values count as zero.
func (p Policy) ValidateConditions(target float64, c Conditions) Validation {
	req := p.MinRequirements(target)
	v := Validation{Minimums: req}

	check := func(field string, supplied, required float64) {
		supplied = sanitize(supplied)
		if supplied < required {
			v.Shortfalls = append(v.Shortfalls, Shortfall{Field: field, Supplied: supplied, Required: required})
		}
	}
	check(FieldWeeklyKm, c.WeeklyKm, req.WeeklyKm)
	check(FieldSessions, c.Sessions, float64(req.Sessions))
	check(FieldQualitySessions, c.QualitySessions, float64(req.QualitySessions))

	v.Valid = len(v.Shortfalls) == 0
	return v
}

func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

var numberPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)

// ParseAmount reads the first number in free text such as "50km" or "4-5".
// Text without a number is zero.
func ParseAmount(text string) float64 {
	m := numberPattern.FindString(strings.TrimSpace(text))
	if m == "" {
		return 0
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	return v
}

// ParseConditions builds Conditions from form text.
func ParseConditions(weeklyKm, sessions, qualitySessions string) Conditions {
	return Conditions{
		WeeklyKm:        ParseAmount(weeklyKm),
		Sessions:        ParseAmount(sessions),
		QualitySessions: ParseAmount(qualitySessions),
	}
}
