package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/briangreenhill/marathoncoach/internal/llm"
	"github.com/briangreenhill/marathoncoach/internal/plan"
	"github.com/briangreenhill/marathoncoach/internal/prompt"
	"github.com/briangreenhill/marathoncoach/internal/refdata"
	"github.com/briangreenhill/marathoncoach/internal/report"
	"github.com/briangreenhill/marathoncoach/internal/schedule"
	"github.com/briangreenhill/marathoncoach/internal/store"
	"github.com/briangreenhill/marathoncoach/internal/timefmt"
	"github.com/briangreenhill/marathoncoach/internal/vdot"
)

// splitTrace removes a --trace flag from args.
func splitTrace(args []string) ([]string, bool) {
	out := args[:0:0]
	trace := false
	for _, a := range args {
		if a == "--trace" {
			trace = true
			continue
		}
		out = append(out, a)
	}
	return out, trace
}

func parseScore(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid VDOT %q", s)
	}
	return v, nil
}

func (c *cli) vdot(args []string) error {
	args, trace := splitTrace(args)
	if len(args) != 2 {
		return errors.New("usage: vdot <category> <time>")
	}
	secs, ok := timefmt.ParseDuration(args[1])
	if !ok {
		return fmt.Errorf("invalid time %q, use H:MM:SS", args[1])
	}
	res, err := vdot.TimeToFitness(c.app.Tables.Times, args[0], secs)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "VDOT %.2f\n", res.Score)
	if res.Trace.Outcome.Clamped() {
		fmt.Fprintln(c.out, "(outside the reference table, nearest row used)")
	}
	if trace {
		report.WriteDurationTrace(c.out, res.Trace)
	}
	return nil
}

func (c *cli) marathonTime(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: time <vdot>")
	}
	score, err := parseScore(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Marathon %s\n", vdot.FitnessToTime(c.app.Tables.Times, score))
	return nil
}

func (c *cli) paces(args []string) error {
	args, trace := splitTrace(args)
	if len(args) != 1 {
		return errors.New("usage: paces <vdot>")
	}
	score, err := parseScore(args[0])
	if err != nil {
		return err
	}
	set, tr, err := vdot.FitnessToPaces(c.app.Tables.Paces, score)
	if err != nil {
		return err
	}
	report.WritePaces(c.out, set)
	if trace {
		report.WriteBlendTrace(c.out, tr)
	}
	return nil
}

func (c *cli) phases(args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return errors.New("usage: phases <current> <target> [n]")
	}
	current, err := parseScore(args[0])
	if err != nil {
		return err
	}
	target, err := parseScore(args[1])
	if err != nil {
		return err
	}
	n := c.app.Builder.Phases
	if len(args) == 3 {
		if n, err = strconv.Atoi(args[2]); err != nil || n < 1 || n > vdot.MaxPhases {
			return fmt.Errorf("phase count must be an integer from 1 to %d, got %q", vdot.MaxPhases, args[2])
		}
	}
	for i, v := range vdot.PhaseTargets(current, target, n) {
		fmt.Fprintf(c.out, "Phase %d: VDOT %.2f\n", i+1, v)
	}
	return nil
}

func (c *cli) window(args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return errors.New("usage: window <YYYY-MM-DD> [min-weeks]")
	}
	now := c.now()
	race, err := time.ParseInLocation(plan.DateLayout, args[0], now.Location())
	if err != nil {
		return fmt.Errorf("invalid race date %q, use YYYY-MM-DD", args[0])
	}
	minWeeks := c.app.Builder.MinWeeks
	if len(args) == 2 {
		if minWeeks, err = strconv.Atoi(args[1]); err != nil || minWeeks < 1 {
			return fmt.Errorf("min weeks must be a positive integer, got %q", args[1])
		}
	}
	w := schedule.TrainingWindow(race, now, minWeeks)
	fmt.Fprintf(c.out, "Start %s, %d weeks (%d remaining)\n", w.Start.Format(plan.DateLayout), w.Weeks, w.RemainingWeeks)
	if w.StartsInPast {
		fmt.Fprintln(c.out, "The start date is in the past; begin from the current week.")
	}
	return nil
}

// planFlags binds the plan request flags shared by plan and prompt.
func planFlags(name string, req *plan.Request) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&req.Name, "name", "", "runner nickname")
	fs.IntVar(&req.Age, "age", 0, "runner age")
	fs.StringVar(&req.Gender, "gender", "", "runner gender")
	fs.StringVar(&req.CurrentTime, "current", "", "recent race time (H:MM:SS)")
	fs.StringVar(&req.CurrentCategory, "category", "", "category of the recent race (default marathon)")
	fs.StringVar(&req.TargetTime, "target", "", "marathon goal time (H:MM:SS)")
	fs.StringVar(&req.RaceName, "race", "", "race name")
	fs.StringVar(&req.RaceDate, "date", "", "race date (YYYY-MM-DD)")
	fs.StringVar(&req.PracticeRaces, "practice", "", "practice races")
	fs.StringVar(&req.WeeklyDistance, "weekly", "", "weekly distance in km")
	fs.StringVar(&req.TrainingDays, "days", "", "training days per week")
	fs.StringVar(&req.QualitySessions, "quality", "", "quality sessions per week")
	fs.StringVar(&req.Concerns, "concerns", "", "requests and concerns")
	return fs
}

func (c *cli) buildPlan(req plan.Request) (*plan.Plan, error) {
	p, err := c.app.Builder.Build(context.Background(), req)
	var fields plan.FieldErrors
	if errors.As(err, &fields) {
		return nil, fmt.Errorf("%w (see --help)", err)
	}
	return p, err
}

func (c *cli) plan(args []string) error {
	var req plan.Request
	fs := planFlags("plan", &req)
	fs.SetOutput(c.errOut)
	asJSON := fs.Bool("json", false, "print the plan as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	p, err := c.buildPlan(req)
	if err != nil {
		return err
	}
	if *asJSON {
		enc := json.NewEncoder(c.out)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	}
	report.WritePlan(c.out, p)
	return nil
}

func (c *cli) prompt(args []string) error {
	var req plan.Request
	fs := planFlags("prompt", &req)
	fs.SetOutput(c.errOut)
	generate := fs.Bool("generate", false, "send the prompt to GENERATOR_ENDPOINT and print the plan")
	if err := fs.Parse(args); err != nil {
		return err
	}
	p, err := c.buildPlan(req)
	if err != nil {
		return err
	}
	text, err := c.app.Prompts.GenerateWithFallback(p)
	if err != nil {
		return err
	}
	if !*generate {
		fmt.Fprint(c.out, text)
		return nil
	}

	client, err := llm.NewFromConfig(c.cfg.Generator, c.out)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.Generator.Timeout)
	defer cancel()
	out, err := client.Generate(ctx, text)
	if err != nil {
		return fmt.Errorf("generate plan: %w", err)
	}
	if c.cfg.HasGenerator() {
		fmt.Fprint(c.out, prompt.Sanitize(out))
	}
	return nil
}

func (c *cli) seed(args []string) error {
	if c.cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required for seed")
	}
	if len(args) > 1 {
		return errors.New("usage: seed [dir]")
	}
	ctx := context.Background()

	tables := c.app.Tables
	if len(args) == 1 {
		t, err := refdata.DirSource{Dir: args[0]}.Load(ctx)
		if err != nil {
			return err
		}
		tables = t
	}

	pool, err := pgxpool.New(ctx, c.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("unable to connect to database: %w", err)
	}
	defer pool.Close()

	n, err := store.Seed(ctx, pool, tables)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Stored %d reference cells\n", n)
	return nil
}
