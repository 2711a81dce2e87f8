// Package policy decides how much fitness improvement one training cycle can
// safely target and what training volume a target requires.
package policy

import (
	"errors"
	"fmt"
	"math"

	"github.com/briangreenhill/marathoncoach/internal/table"
)

// Tier is a half-open score range [Lower, Upper) carrying a value.
// Use math.Inf(1) for an unbounded top tier.
type Tier[T any] struct {
	Lower float64 `yaml:"lower"`
	Upper float64 `yaml:"upper"`
	Value T       `yaml:"value"`
}

// Contains reports whether score falls inside the tier.
func (t Tier[T]) Contains(score float64) bool {
	return score >= t.Lower && score < t.Upper
}

func lookup[T any](tiers []Tier[T], score float64, fallback T) T {
	for _, t := range tiers {
		if t.Contains(score) {
			return t.Value
		}
	}
	return fallback
}

// Requirements are the minimum weekly training conditions for a target.
type Requirements struct {
	WeeklyKm        float64 `json:"weekly_km" yaml:"weekly_km"`
	Sessions        int     `json:"sessions" yaml:"sessions"`
	QualitySessions int     `json:"quality_sessions" yaml:"quality_sessions"`
}

// Policy holds the tier tables and cycle scaling. The zero value is not
// usable; start from Default.
type Policy struct {
	BaselineWeeks       float64              `yaml:"baseline_weeks"`
	MaxMultiplier       float64              `yaml:"max_multiplier"`
	Tolerance           []Tier[float64]      `yaml:"tolerance"`
	Requirements        []Tier[Requirements] `yaml:"requirements"`
	DefaultRequirements Requirements         `yaml:"default_requirements"`
}

// Default returns the built-in policy.
func Default() Policy {
	inf := math.Inf(1)
	return Policy{
		BaselineWeeks: 12,
		MaxMultiplier: 1.5,
		Tolerance: []Tier[float64]{
			{Lower: 0, Upper: 40, Value: 4.0},
			{Lower: 40, Upper: 55, Value: 3.0},
			{Lower: 55, Upper: 65, Value: 2.0},
			{Lower: 65, Upper: 75, Value: 1.0},
			{Lower: 75, Upper: inf, Value: 0.5},
		},
		Requirements: []Tier[Requirements]{
			{Lower: 30, Upper: 40, Value: Requirements{WeeklyKm: 20, Sessions: 3, QualitySessions: 1}},
			{Lower: 40, Upper: 50, Value: Requirements{WeeklyKm: 35, Sessions: 4, QualitySessions: 1}},
			{Lower: 50, Upper: 55, Value: Requirements{WeeklyKm: 50, Sessions: 5, QualitySessions: 2}},
			{Lower: 55, Upper: 60, Value: Requirements{WeeklyKm: 65, Sessions: 5, QualitySessions: 2}},
			{Lower: 60, Upper: 70, Value: Requirements{WeeklyKm: 80, Sessions: 6, QualitySessions: 2}},
			{Lower: 70, Upper: inf, Value: Requirements{WeeklyKm: 100, Sessions: 6, QualitySessions: 3}},
		},
		DefaultRequirements: Requirements{WeeklyKm: 20, Sessions: 3, QualitySessions: 1},
	}
}

var errUnsortedTiers = errors.New("tiers must be ordered and non-overlapping")

// Validate checks the policy is internally consistent.
func (p Policy) Validate() error {
	if p.BaselineWeeks < 1 {
		return fmt.Errorf("policy: baseline_weeks must be >= 1, got %v", p.BaselineWeeks)
	}
	if p.MaxMultiplier < 1 {
		return fmt.Errorf("policy: max_multiplier must be >= 1, got %v", p.MaxMultiplier)
	}
	if len(p.Tolerance) == 0 {
		return errors.New("policy: at least one tolerance tier is required")
	}
	if err := checkTiers(p.Tolerance); err != nil {
		return fmt.Errorf("policy: tolerance: %w", err)
	}
	if err := checkTiers(p.Requirements); err != nil {
		return fmt.Errorf("policy: requirements: %w", err)
	}
	return nil
}

func checkTiers[T any](tiers []Tier[T]) error {
	for i, t := range tiers {
		if !(t.Lower < t.Upper) {
			return fmt.Errorf("%w: tier %d has lower %v >= upper %v", errUnsortedTiers, i, t.Lower, t.Upper)
		}
		if i > 0 && t.Lower < tiers[i-1].Upper {
			return fmt.Errorf("%w: tier %d starts at %v before %v", errUnsortedTiers, i, t.Lower, tiers[i-1].Upper)
		}
	}
	return nil
}

// BaseTolerance is the per-cycle improvement allowed at the baseline cycle
// length for a runner at current. Scores below every tier get the first
// tier's value.
func (p Policy) BaseTolerance(current float64) float64 {
	fallback := 0.0
	if len(p.Tolerance) > 0 {
		fallback = p.Tolerance[0].Value
	}
	return lookup(p.Tolerance, current, fallback)
}

// CycleMultiplier scales tolerance by sqrt(weeks / baseline), capped at
// MaxMultiplier. Non-positive or non-finite cycles scale to zero.
func (p Policy) CycleMultiplier(cycleWeeks float64) float64 {
	if math.IsNaN(cycleWeeks) || cycleWeeks <= 0 {
		return 0
	}
	return math.Min(math.Sqrt(cycleWeeks/p.BaselineWeeks), p.MaxMultiplier)
}

// MaxImprovement is the largest fitness gain one cycle of cycleWeeks should
// target, rounded to two decimals.
func (p Policy) MaxImprovement(current float64, cycleWeeks float64) float64 {
	return table.Round2(p.BaseTolerance(current) * p.CycleMultiplier(cycleWeeks))
}

// MinRequirements returns the training minimums for a target score. Targets
// outside every tier get DefaultRequirements.
func (p Policy) MinRequirements(target float64) Requirements {
	return lookup(p.Requirements, target, p.DefaultRequirements)
}

// Capped is the outcome of CapTarget.
type Capped struct {
	Target         float64 `json:"target"`
	Requested      float64 `json:"requested"`
	MaxImprovement float64 `json:"max_improvement"`
	Adjusted       bool    `json:"adjusted"`
}

// CapTarget limits target to current plus the cycle's max improvement. The
// requested target is kept for display.
func (p Policy) CapTarget(current, target float64, cycleWeeks float64) Capped {
	maxGain := p.MaxImprovement(current, cycleWeeks)
	c := Capped{Target: target, Requested: target, MaxImprovement: maxGain}
	if target-current > maxGain {
		c.Target = table.Round2(current + maxGain)
		c.Adjusted = true
	}
	return c
}
