package config

import (
	"strings"
	"testing"
	"time"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := ParseEnviron(map[string]string{})
	if err != nil {
		t.Fatalf("ParseEnviron() failed: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Expected Port '8080', got '%s'", cfg.Port)
	}
	if cfg.Tables.Source != SourceEmbedded {
		t.Errorf("Expected embedded table source, got '%s'", cfg.Tables.Source)
	}
	if cfg.Training.MinWeeks != 12 || cfg.Training.Phases != 4 {
		t.Errorf("Expected 12 weeks / 4 phases, got %d / %d", cfg.Training.MinWeeks, cfg.Training.Phases)
	}
	if cfg.Training.MaxMultiplier != 1.5 {
		t.Errorf("Expected multiplier 1.5, got %v", cfg.Training.MaxMultiplier)
	}
	if cfg.Generator.MaxOutputTokens != 32768 || cfg.Generator.Timeout != 2*time.Minute {
		t.Errorf("Unexpected generator defaults: %+v", cfg.Generator)
	}
	if cfg.Queue.Retention != 24*time.Hour {
		t.Errorf("Expected 24h retention, got %v", cfg.Queue.Retention)
	}
	if cfg.HasGenerator() {
		t.Error("Should not have a generator configured")
	}
}

func TestParseOverrides(t *testing.T) {
	cfg, err := ParseEnviron(map[string]string{
		"PORT":                    "9000",
		"TRAINING_MIN_WEEKS":      "16",
		"TRAINING_PHASES":         "5",
		"TRAINING_MAX_MULTIPLIER": "2",
		"TABLES_SOURCE":           "postgres",
		"DATABASE_URL":            "postgres://localhost/marathon",
		"GENERATOR_ENDPOINT":      "http://localhost:9999/generate",
		"GENERATOR_TIMEOUT":       "30s",
		"QUEUE_CONCURRENCY":       "2",
	})
	if err != nil {
		t.Fatalf("ParseEnviron() failed: %v", err)
	}
	if cfg.Port != "9000" {
		t.Errorf("Expected Port '9000', got '%s'", cfg.Port)
	}
	if cfg.Training.MinWeeks != 16 || cfg.Training.Phases != 5 {
		t.Errorf("Expected 16 weeks / 5 phases, got %d / %d", cfg.Training.MinWeeks, cfg.Training.Phases)
	}
	if cfg.Generator.Timeout != 30*time.Second {
		t.Errorf("Expected 30s timeout, got %v", cfg.Generator.Timeout)
	}
	if !cfg.HasGenerator() {
		t.Error("Should have a generator configured")
	}
}

func TestParseInvalidNumber(t *testing.T) {
	if _, err := ParseEnviron(map[string]string{"TRAINING_PHASES": "four"}); err == nil {
		t.Error("Expected error for non-numeric TRAINING_PHASES")
	}
	if _, err := ParseEnviron(map[string]string{"TRAINING_PHASES": "0"}); err == nil {
		t.Error("Expected validation error for TRAINING_PHASES=0")
	}
}

func TestParseReadsProcessEnvironment(t *testing.T) {
	t.Setenv("TRAINING_MIN_WEEKS", "20")
	t.Setenv("TABLES_SOURCE", "dir")

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	if cfg.Training.MinWeeks != 20 {
		t.Errorf("Expected 20 weeks, got %d", cfg.Training.MinWeeks)
	}
}

func TestValidate(t *testing.T) {
	valid := Config{
		Tables:   TablesConfig{Source: SourceEmbedded},
		Training: TrainingConfig{MinWeeks: 12, Phases: 4, BaselineWeeks: 12, MaxMultiplier: 1.5},
		Queue:    QueueConfig{Concurrency: 1},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Should not error with valid config: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"zero phases", func(c *Config) { c.Training.Phases = 0 }, "TRAINING_PHASES"},
		{"zero weeks", func(c *Config) { c.Training.MinWeeks = 0 }, "TRAINING_MIN_WEEKS"},
		{"zero baseline", func(c *Config) { c.Training.BaselineWeeks = 0 }, "TRAINING_BASELINE_WEEKS"},
		{"multiplier below one", func(c *Config) { c.Training.MaxMultiplier = 0.9 }, "TRAINING_MAX_MULTIPLIER"},
		{"unknown source", func(c *Config) { c.Tables.Source = "s3" }, "TABLES_SOURCE"},
		{"postgres without url", func(c *Config) { c.Tables.Source = SourcePostgres }, "DATABASE_URL"},
		{"no workers", func(c *Config) { c.Queue.Concurrency = 0 }, "QUEUE_CONCURRENCY"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error mentioning %s, got %v", tt.want, err)
			}
		})
	}
}

func TestValidateReportsAllProblems(t *testing.T) {
	err := Config{Tables: TablesConfig{Source: SourceDir}}.Validate()
	if err == nil {
		t.Fatal("Expected validation error")
	}
	for _, want := range []string{"TRAINING_PHASES", "TRAINING_MIN_WEEKS", "QUEUE_CONCURRENCY"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Expected error mentioning %s, got %v", want, err)
		}
	}
}
