package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/briangreenhill/marathoncoach/internal/config"
	"github.com/briangreenhill/marathoncoach/internal/refdata"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg, err := config.ParseEnviron(map[string]string{})
	require.NoError(t, err)
	return cfg
}

func TestNewEmbedded(t *testing.T) {
	cfg := testConfig(t)
	cfg.Training.MinWeeks = 16
	cfg.Training.Phases = 3

	a, err := New(context.Background(), cfg, zerolog.Nop(), "test")
	require.NoError(t, err)
	defer a.Close()

	assert.NotNil(t, a.Tables.Times)
	assert.Equal(t, 16, a.Builder.MinWeeks)
	assert.Equal(t, 3, a.Builder.Phases)
	assert.NotNil(t, a.Prompts)
}

func TestNewDirSource(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{refdata.TimesFile, refdata.PacesFile} {
		data, err := os.ReadFile(filepath.Join("..", "refdata", "data", name))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o600))
	}

	cfg := testConfig(t)
	cfg.Tables.Source = config.SourceDir
	cfg.Tables.Dir = dir

	a, err := New(context.Background(), cfg, zerolog.Nop(), "test")
	require.NoError(t, err)
	assert.Equal(t, refdata.MustEmbedded().Times.Len(), a.Tables.Times.Len())
}

func TestNewMissingDir(t *testing.T) {
	cfg := testConfig(t)
	cfg.Tables.Source = config.SourceDir
	cfg.Tables.Dir = filepath.Join(t.TempDir(), "missing")

	_, err := New(context.Background(), cfg, zerolog.Nop(), "test")
	assert.Error(t, err)
}

func TestLoadPolicy(t *testing.T) {
	p, err := LoadPolicy(config.TrainingConfig{BaselineWeeks: 16, MaxMultiplier: 2})
	require.NoError(t, err)
	assert.Equal(t, 16.0, p.BaselineWeeks)
	assert.Equal(t, 2.0, p.MaxMultiplier)

	_, err = LoadPolicy(config.TrainingConfig{BaselineWeeks: 0, MaxMultiplier: 2})
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("baseline_weeks: 10\n"), 0o600))
	p, err = LoadPolicy(config.TrainingConfig{PolicyPath: path, BaselineWeeks: 16, MaxMultiplier: 2})
	require.NoError(t, err)
	assert.Equal(t, 10.0, p.BaselineWeeks, "policy file wins over environment scaling")
	assert.Equal(t, 1.5, p.MaxMultiplier)
}
