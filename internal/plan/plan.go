// Package plan turns a runner's request into fitness targets, paces and a
// calendar window, ready to be rendered into a generation prompt.
package plan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/briangreenhill/marathoncoach/internal/policy"
	"github.com/briangreenhill/marathoncoach/internal/refdata"
	"github.com/briangreenhill/marathoncoach/internal/schedule"
	"github.com/briangreenhill/marathoncoach/internal/table"
	"github.com/briangreenhill/marathoncoach/internal/timefmt"
	"github.com/briangreenhill/marathoncoach/internal/vdot"
)

// Warning codes.
const (
	WarnLateStart    = "late_start"
	WarnTargetCapped = "target_capped"
	WarnConditions   = "conditions_below_minimum"
	WarnOutOfRange   = "out_of_table_range"
	WarnRacePassed   = "race_passed"
)

// Warning is a condition the runner should see next to the plan.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Phase is one block of the plan with its fitness target and paces.
type Phase struct {
	schedule.PhaseRange
	Score float64      `json:"score"`
	Paces vdot.PaceSet `json:"paces"`
	// Error is set when paces could not be derived for Score.
	Error string `json:"error,omitempty"`
}

// Plan is everything computed for one Request.
type Plan struct {
	Request  Request   `json:"request"`
	Built    time.Time `json:"built"`
	RaceDate time.Time `json:"race_date"`

	Current vdot.FitnessResult `json:"current"`
	Target  vdot.FitnessResult `json:"target"`
	Cap     policy.Capped      `json:"cap"`
	// EffectiveTarget is the score the final phase trains for.
	EffectiveTarget float64 `json:"effective_target"`
	// EffectiveMarathon is the marathon time for EffectiveTarget.
	EffectiveMarathon string `json:"effective_marathon"`

	Paces     vdot.PaceSet     `json:"paces"`
	PaceTrace table.BlendTrace `json:"pace_trace"`

	Window     schedule.Window   `json:"window"`
	Phases     []Phase           `json:"phases"`
	Conditions policy.Validation `json:"conditions"`
	Warnings   []Warning         `json:"warnings,omitempty"`
}

// Gap is the requested improvement before capping.
func (p *Plan) Gap() float64 {
	return table.Round2(p.Target.Score - p.Current.Score)
}

// HasWarning reports whether a warning with code was raised.
func (p *Plan) HasWarning(code string) bool {
	for _, w := range p.Warnings {
		if w.Code == code {
			return true
		}
	}
	return false
}

// Builder computes plans. It holds only read-only data and is safe for
// concurrent use.
type Builder struct {
	Tables   refdata.Tables
	Policy   policy.Policy
	MinWeeks int
	Phases   int
	// Now defaults to time.Now.
	Now func() time.Time
	Log zerolog.Logger
}

// NewBuilder returns a Builder with the default policy, 12 minimum weeks and
// four phases.
func NewBuilder(tables refdata.Tables, log zerolog.Logger) *Builder {
	return &Builder{
		Tables:   tables,
		Policy:   policy.Default(),
		MinWeeks: 12,
		Phases:   4,
		Now:      time.Now,
		Log:      log,
	}
}

func (b *Builder) now() time.Time {
	if b.Now != nil {
		return b.Now()
	}
	return time.Now()
}

func (b *Builder) logger(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &b.Log
}

// Build validates req and computes its plan. Validation problems come back
// as FieldErrors; a score the tables cannot serve is a wrapped table error.
func (b *Builder) Build(ctx context.Context, req Request) (*Plan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log := b.logger(ctx)
	now := b.now()

	in, err := req.parse(now.Location())
	if err != nil {
		return nil, err
	}

	p := &Plan{Request: req, Built: now, RaceDate: in.raceDate}

	p.Current, err = vdot.TimeToFitness(b.Tables.Times, in.category, in.current)
	if err != nil {
		if errors.Is(err, vdot.ErrUnknownCategory) {
			return nil, FieldErrors{"current_category": err.Error()}
		}
		return nil, fmt.Errorf("current fitness: %w", err)
	}
	p.Target, err = vdot.TimeToFitness(b.Tables.Times, vdot.ColumnMarathon, in.target)
	if err != nil {
		return nil, fmt.Errorf("target fitness: %w", err)
	}
	for _, r := range []struct {
		name string
		res  vdot.FitnessResult
	}{{"current", p.Current}, {"target", p.Target}} {
		if r.res.Trace.Outcome.Clamped() {
			log.Warn().Str("which", r.name).Int("seconds", r.res.Trace.Query).Float64("score", r.res.Score).
				Msg("time outside reference table, used nearest row")
			p.warn(WarnOutOfRange, fmt.Sprintf("The %s time %s is outside the reference table; VDOT %.2f (nearest row) was used without interpolation.",
				r.name, timefmt.Format(float64(r.res.Trace.Query), true), r.res.Score))
		}
	}

	p.Paces, p.PaceTrace, err = vdot.FitnessToPaces(b.Tables.Paces, p.Current.Score)
	if err != nil {
		return nil, fmt.Errorf("current paces: %w", err)
	}

	p.Window = schedule.TrainingWindow(in.raceDate, now, b.MinWeeks)
	if p.Window.RemainingWeeks < 0 {
		p.warn(WarnRacePassed, fmt.Sprintf("The race date %s has already passed.", in.raceDate.Format(DateLayout)))
	}
	if p.Window.StartsInPast {
		p.warn(WarnLateStart, fmt.Sprintf(
			"Only %d weeks remain before the race, fewer than the recommended %d. The plan covers %d weeks starting %s, which is in the past; skip the weeks already gone and start from the current week.",
			max(p.Window.RemainingWeeks, 0), b.MinWeeks, p.Window.Weeks, p.Window.Start.Format(DateLayout)))
	}

	p.Cap = b.Policy.CapTarget(p.Current.Score, p.Target.Score, float64(p.Window.Weeks))
	p.EffectiveTarget = p.Cap.Target
	p.EffectiveMarathon = vdot.FitnessToTime(b.Tables.Times, p.EffectiveTarget)
	if p.Cap.Adjusted {
		log.Info().Float64("requested", p.Cap.Requested).Float64("effective", p.Cap.Target).
			Float64("max_improvement", p.Cap.MaxImprovement).Int("weeks", p.Window.Weeks).
			Msg("target capped")
		p.warn(WarnTargetCapped, fmt.Sprintf(
			"The gap between current VDOT %.2f and target VDOT %.2f is %.2f, more than the %.2f one %d-week cycle supports. This plan aims for an intermediate VDOT %.2f (marathon %s); target %s in a later cycle.",
			p.Current.Score, p.Target.Score, p.Gap(), p.Cap.MaxImprovement, p.Window.Weeks,
			p.EffectiveTarget, p.EffectiveMarathon, req.TargetTime))
	}

	p.Conditions = b.Policy.ValidateConditions(p.EffectiveTarget,
		policy.ParseConditions(req.WeeklyDistance, req.TrainingDays, req.QualitySessions))
	if !p.Conditions.Valid {
		for _, s := range p.Conditions.Shortfalls {
			p.warn(WarnConditions, fmt.Sprintf("%s is %g, below the %g recommended for VDOT %.2f.",
				s.Field, s.Supplied, s.Required, p.EffectiveTarget))
		}
	}

	p.Phases = b.phases(p, log)

	log.Debug().Float64("current", p.Current.Score).Float64("target", p.EffectiveTarget).
		Int("weeks", p.Window.Weeks).Int("warnings", len(p.Warnings)).Msg("plan built")
	return p, nil
}

func (b *Builder) phases(p *Plan, log *zerolog.Logger) []Phase {
	targets := vdot.PhaseTargets(p.Current.Score, p.EffectiveTarget, b.Phases)
	ranges := schedule.PhaseRanges(p.Window.Weeks, b.Phases)

	out := make([]Phase, len(targets))
	for i, score := range targets {
		ph := Phase{PhaseRange: ranges[i], Score: score}
		paces, _, err := vdot.FitnessToPaces(b.Tables.Paces, score)
		if err != nil {
			log.Warn().Err(err).Int("phase", i+1).Float64("score", score).Msg("no paces for phase")
			ph.Error = err.Error()
		}
		ph.Paces = paces
		out[i] = ph
	}
	return out
}

func (p *Plan) warn(code, msg string) {
	p.Warnings = append(p.Warnings, Warning{Code: code, Message: msg})
}
