package main

import (
	"context"
	"os"

	"github.com/hibiken/asynq"

	"github.com/briangreenhill/marathoncoach/internal/app"
	"github.com/briangreenhill/marathoncoach/internal/config"
	"github.com/briangreenhill/marathoncoach/internal/jobs"
	"github.com/briangreenhill/marathoncoach/internal/llm"
	"github.com/briangreenhill/marathoncoach/internal/logging"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := logging.New("info", false)
		boot.Fatal().Err(err).Msg("config error")
	}
	logger := logging.New(cfg.LogLevel, cfg.LogPretty)

	a, err := app.New(context.Background(), cfg, logger, version)
	if err != nil {
		logger.Fatal().Err(err).Msg("startup failed")
	}
	defer a.Close()

	if !cfg.HasGenerator() {
		logger.Warn().Msg("GENERATOR_ENDPOINT not set, tasks will store the prompt itself")
	}
	client, err := llm.NewFromConfig(cfg.Generator, os.Stderr)
	if err != nil {
		logger.Fatal().Err(err).Msg("generator setup failed")
	}

	srv := asynq.NewServer(asynq.RedisClientOpt{Addr: cfg.RedisAddr}, asynq.Config{
		Concurrency: cfg.Queue.Concurrency,
		Queues: map[string]int{
			jobs.QueuePlans: 10,
		},
		Logger:   asynqLogger{logger},
		LogLevel: asynq.InfoLevel,
	})
	mux := asynq.NewServeMux()
	mux.Handle(jobs.TaskGeneratePlan, &jobs.Handler{
		Builder: a.Builder,
		Prompts: a.Prompts,
		LLM:     client,
		Log:     logger.With().Str("component", "worker").Logger(),
	})

	logger.Info().Int("concurrency", cfg.Queue.Concurrency).Msg("worker running")
	if err := srv.Run(mux); err != nil {
		logger.Fatal().Err(err).Msg("worker stopped")
	}
}
