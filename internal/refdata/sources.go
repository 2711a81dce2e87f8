package refdata

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"os"
	"path/filepath"
)

//go:embed data/vdot_list.csv data/vdot_pace.csv
var embedded embed.FS

// EmbeddedSource serves the tables compiled into the binary.
type EmbeddedSource struct{}

// Name implements Source.
func (EmbeddedSource) Name() string { return "embedded" }

// Load implements Source.
func (EmbeddedSource) Load(context.Context) (Tables, error) {
	times, err := embedded.ReadFile("data/" + TimesFile)
	if err != nil {
		return Tables{}, err
	}
	paces, err := embedded.ReadFile("data/" + PacesFile)
	if err != nil {
		return Tables{}, err
	}
	return ParseTables(bytes.NewReader(times), bytes.NewReader(paces))
}

// MustEmbedded loads the compiled-in tables and panics if they are broken.
func MustEmbedded() Tables {
	t, err := EmbeddedSource{}.Load(context.Background())
	if err != nil {
		panic(fmt.Sprintf("refdata: embedded tables: %v", err))
	}
	return t
}

// DirSource reads vdot_list.csv and vdot_pace.csv from a directory.
type DirSource struct {
	Dir string
}

// Name implements Source.
func (DirSource) Name() string { return "dir" }

// Load implements Source.
func (s DirSource) Load(context.Context) (Tables, error) {
	times, err := os.Open(filepath.Join(s.Dir, TimesFile))
	if err != nil {
		return Tables{}, fmt.Errorf("open times table: %w", err)
	}
	defer times.Close()

	paces, err := os.Open(filepath.Join(s.Dir, PacesFile))
	if err != nil {
		return Tables{}, fmt.Errorf("open pace table: %w", err)
	}
	defer paces.Close()

	return ParseTables(times, paces)
}
