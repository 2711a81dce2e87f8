// Package config handles application configuration from environment variables
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Table sources accepted in TABLES_SOURCE.
const (
	SourceEmbedded = "embedded"
	SourceDir      = "dir"
	SourcePostgres = "postgres"
)

// Config holds all application configuration
type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	RedisAddr   string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	DatabaseURL string `env:"DATABASE_URL"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty   bool   `env:"LOG_PRETTY" envDefault:"false"`

	Tables    TablesConfig
	Training  TrainingConfig
	Prompt    PromptConfig
	Generator GeneratorConfig
	Queue     QueueConfig
}

// TablesConfig selects where reference tables come from
type TablesConfig struct {
	Source string `env:"TABLES_SOURCE" envDefault:"embedded"`
	Dir    string `env:"TABLES_DIR" envDefault:"data"`
}

// TrainingConfig holds the planning policy knobs
type TrainingConfig struct {
	MinWeeks      int     `env:"TRAINING_MIN_WEEKS" envDefault:"12"`
	Phases        int     `env:"TRAINING_PHASES" envDefault:"4"`
	BaselineWeeks float64 `env:"TRAINING_BASELINE_WEEKS" envDefault:"12"`
	MaxMultiplier float64 `env:"TRAINING_MAX_MULTIPLIER" envDefault:"1.5"`
	PolicyPath    string  `env:"TRAINING_POLICY_PATH"`
}

// PromptConfig holds prompt template overrides
type PromptConfig struct {
	CustomPath string `env:"COACHING_PROMPT_PATH"`
}

// GeneratorConfig configures the text generation gateway
type GeneratorConfig struct {
	Endpoint        string        `env:"GENERATOR_ENDPOINT"`
	APIKey          string        `env:"GENERATOR_API_KEY"`
	Model           string        `env:"GENERATOR_MODEL"`
	Temperature     float64       `env:"GENERATOR_TEMPERATURE" envDefault:"0.7"`
	TopP            float64       `env:"GENERATOR_TOP_P" envDefault:"0.95"`
	MaxOutputTokens int           `env:"GENERATOR_MAX_OUTPUT_TOKENS" envDefault:"32768"`
	Timeout         time.Duration `env:"GENERATOR_TIMEOUT" envDefault:"2m"`
	CacheDir        string        `env:"GENERATOR_CACHE_DIR"`
	CacheTTL        time.Duration `env:"GENERATOR_CACHE_TTL" envDefault:"24h"`
}

// QueueConfig configures background plan generation
type QueueConfig struct {
	Concurrency int           `env:"QUEUE_CONCURRENCY" envDefault:"4"`
	MaxRetry    int           `env:"QUEUE_MAX_RETRY" envDefault:"3"`
	Retention   time.Duration `env:"QUEUE_RETENTION" envDefault:"24h"`
}

// Load reads configuration from a .env file, if present, and the environment
func Load() (Config, error) {
	_ = godotenv.Load()
	return Parse()
}

// Parse reads configuration from the environment only
func Parse() (Config, error) {
	return ParseEnviron(env.ToMap(os.Environ()))
}

// ParseEnviron reads configuration from an explicit variable map
func ParseEnviron(environ map[string]string) (Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](env.Options{Environment: environ})
	if err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// HasGenerator returns true if a generation endpoint is configured
func (c Config) HasGenerator() bool {
	return c.Generator.Endpoint != ""
}

// Validate checks value ranges and cross-field requirements
func (c Config) Validate() error {
	var errs []error
	if c.Training.Phases < 1 {
		errs = append(errs, fmt.Errorf("TRAINING_PHASES must be >= 1, got %d", c.Training.Phases))
	}
	if c.Training.MinWeeks < 1 {
		errs = append(errs, fmt.Errorf("TRAINING_MIN_WEEKS must be >= 1, got %d", c.Training.MinWeeks))
	}
	if c.Training.BaselineWeeks < 1 {
		errs = append(errs, fmt.Errorf("TRAINING_BASELINE_WEEKS must be >= 1, got %v", c.Training.BaselineWeeks))
	}
	if c.Training.MaxMultiplier < 1 {
		errs = append(errs, fmt.Errorf("TRAINING_MAX_MULTIPLIER must be >= 1, got %v", c.Training.MaxMultiplier))
	}
	switch c.Tables.Source {
	case SourceEmbedded, SourceDir:
	case SourcePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when TABLES_SOURCE=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("TABLES_SOURCE must be one of embedded, dir, postgres, got %q", c.Tables.Source))
	}
	if c.Queue.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("QUEUE_CONCURRENCY must be >= 1, got %d", c.Queue.Concurrency))
	}
	return errors.Join(errs...)
}
