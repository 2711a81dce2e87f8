// cmd/api/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"time"

	scs "github.com/alexedwards/scs/v2"
	"github.com/hibiken/asynq"

	"github.com/briangreenhill/marathoncoach/internal/app"
	"github.com/briangreenhill/marathoncoach/internal/config"
	"github.com/briangreenhill/marathoncoach/internal/http/routes"
	"github.com/briangreenhill/marathoncoach/internal/jobs"
	"github.com/briangreenhill/marathoncoach/internal/logging"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := logging.New("info", false)
		boot.Fatal().Err(err).Msg("config error")
	}

	// Logger
	logger := logging.New(cfg.LogLevel, cfg.LogPretty)
	logger.Info().Str("port", cfg.Port).Str("version", version).Msg("starting api")

	a, err := app.New(context.Background(), cfg, logger, version)
	if err != nil {
		logger.Fatal().Err(err).Msg("startup failed")
	}
	defer a.Close()

	// Queue
	redis := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	client := asynq.NewClient(redis)
	defer func() {
		if err := client.Close(); err != nil {
			logger.Error().Err(err).Msg("close asynq client")
		}
	}()
	inspector := asynq.NewInspector(redis)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Error().Err(err).Msg("close asynq inspector")
		}
	}()

	// Sessions
	sess := scs.New()
	sess.Lifetime = 12 * time.Hour
	sess.Cookie.HttpOnly = true
	sess.Cookie.SameSite = http.SameSiteLaxMode
	sess.Cookie.Secure = false

	// Router / server
	s := routes.New(routes.ServerOptions{
		Sess:    sess,
		Tables:  a.Tables,
		Builder: a.Builder,
		Prompts: a.Prompts,
		Queue:   client,
		Tasks:   inspector,
		TaskOpts: jobs.TaskOptions{
			MaxRetry:  cfg.Queue.MaxRetry,
			Timeout:   cfg.Generator.Timeout + time.Minute,
			Retention: cfg.Queue.Retention,
		},
		Log: logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logger.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
