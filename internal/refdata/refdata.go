// Package refdata loads the fitness-vs-time and fitness-vs-pace reference
// tables from one of several sources.
package refdata

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/briangreenhill/marathoncoach/internal/table"
	"github.com/briangreenhill/marathoncoach/internal/vdot"
)

// Table names used in errors, traces and storage.
const (
	TimesTable = "vdot_list"
	PacesTable = "vdot_pace"
)

// File names inside a table directory.
const (
	TimesFile = TimesTable + ".csv"
	PacesFile = PacesTable + ".csv"
)

var (
	// ErrMissingColumn is returned when a source lacks a required column.
	ErrMissingColumn = errors.New("missing required column")
	// ErrUnknownSource is returned by Registry.Load for unregistered names.
	ErrUnknownSource = errors.New("unknown table source")
)

// Tables is the pair of reference tables every calculation needs.
type Tables struct {
	Times *table.Table
	Paces *table.Table
}

// NewTables checks that times and paces carry the columns the calculators
// read.
func NewTables(times, paces *table.Table) (Tables, error) {
	if times == nil || paces == nil {
		return Tables{}, errors.New("refdata: both tables are required")
	}
	if err := vdot.ValidateTimeTable(times); err != nil {
		return Tables{}, fmt.Errorf("%w: %w", ErrMissingColumn, err)
	}
	if err := vdot.ValidatePaceTable(paces); err != nil {
		return Tables{}, fmt.Errorf("%w: %w", ErrMissingColumn, err)
	}
	return Tables{Times: times, Paces: paces}, nil
}

// Source produces reference tables.
type Source interface {
	// Name identifies the source in configuration, e.g. "embedded".
	Name() string

	// Load reads and validates both tables.
	Load(ctx context.Context) (Tables, error)
}

// Registry holds the table sources a binary can be configured with.
type Registry struct {
	sources map[string]Source
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sources: make(map[string]Source)}
}

// Register adds a source, replacing any with the same name.
func (r *Registry) Register(s Source) {
	r.sources[s.Name()] = s
}

// Source returns the source registered under name.
func (r *Registry) Source(name string) (Source, bool) {
	s, ok := r.sources[name]
	return s, ok
}

// List returns the registered names in sorted order.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load loads tables from the named source.
func (r *Registry) Load(ctx context.Context, name string) (Tables, error) {
	s, ok := r.Source(name)
	if !ok {
		return Tables{}, fmt.Errorf("%w %q (have %v)", ErrUnknownSource, name, r.List())
	}
	t, err := s.Load(ctx)
	if err != nil {
		return Tables{}, fmt.Errorf("load %s tables: %w", name, err)
	}
	return t, nil
}
