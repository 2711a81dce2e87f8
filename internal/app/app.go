// Package app wires configuration into the components the binaries share:
// reference tables, the planning policy, the plan builder and the prompt
// generator.
package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/briangreenhill/marathoncoach/internal/config"
	"github.com/briangreenhill/marathoncoach/internal/plan"
	"github.com/briangreenhill/marathoncoach/internal/policy"
	"github.com/briangreenhill/marathoncoach/internal/prompt"
	"github.com/briangreenhill/marathoncoach/internal/refdata"
	"github.com/briangreenhill/marathoncoach/internal/store"
)

// App holds the long-lived, read-only components built from a Config.
type App struct {
	Config  config.Config
	Log     zerolog.Logger
	Tables  refdata.Tables
	Policy  policy.Policy
	Builder *plan.Builder
	Prompts *prompt.Generator

	pool *pgxpool.Pool
}

// New loads the reference tables from the configured source and builds the
// planning components. Close releases the database pool, if one was opened.
func New(ctx context.Context, cfg config.Config, log zerolog.Logger, version string) (*App, error) {
	a := &App{Config: cfg, Log: log}

	reg := refdata.NewRegistry()
	reg.Register(refdata.EmbeddedSource{})
	reg.Register(refdata.DirSource{Dir: cfg.Tables.Dir})
	if cfg.Tables.Source == config.SourcePostgres {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("unable to connect to database: %w", err)
		}
		a.pool = pool
		reg.Register(store.Source{Q: store.New(pool)})
	}

	tables, err := reg.Load(ctx, cfg.Tables.Source)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Tables = tables

	a.Policy, err = LoadPolicy(cfg.Training)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Builder = NewBuilder(cfg.Training, a.Tables, a.Policy, log)
	a.Prompts = prompt.NewGenerator(cfg.Prompt, version, log)

	log.Info().
		Str("tables", cfg.Tables.Source).
		Int("min_weeks", cfg.Training.MinWeeks).
		Int("phases", cfg.Training.Phases).
		Msg("planner ready")
	return a, nil
}

// Close releases resources held by the App.
func (a *App) Close() {
	if a.pool != nil {
		a.pool.Close()
		a.pool = nil
	}
}

// LoadPolicy returns the YAML policy at cfg.PolicyPath when set, otherwise
// the default policy with the configured cycle scaling.
func LoadPolicy(cfg config.TrainingConfig) (policy.Policy, error) {
	if cfg.PolicyPath != "" {
		return policy.Load(cfg.PolicyPath)
	}
	p := policy.Default()
	p.BaselineWeeks = cfg.BaselineWeeks
	p.MaxMultiplier = cfg.MaxMultiplier
	if err := p.Validate(); err != nil {
		return policy.Policy{}, err
	}
	return p, nil
}

// NewBuilder returns a plan builder using cfg's schedule settings.
func NewBuilder(cfg config.TrainingConfig, tables refdata.Tables, p policy.Policy, log zerolog.Logger) *plan.Builder {
	b := plan.NewBuilder(tables, log)
	b.Policy = p
	b.MinWeeks = cfg.MinWeeks
	b.Phases = cfg.Phases
	return b
}
