// Package jobs defines the background plan generation task and its handler.
package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/briangreenhill/marathoncoach/internal/llm"
	"github.com/briangreenhill/marathoncoach/internal/plan"
	"github.com/briangreenhill/marathoncoach/internal/prompt"
)

// Handler generates a plan document for a GeneratePlanPayload.
type Handler struct {
	Builder *plan.Builder
	Prompts *prompt.Generator
	LLM     llm.Client
	Log     zerolog.Logger
}

// ProcessTask implements asynq.Handler.
func (h *Handler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	return h.Process(ctx, t.Payload(), t.ResultWriter())
}

// Process decodes payload, generates the plan document and writes it to w.
// Errors that cannot succeed on retry are wrapped with asynq.SkipRetry.
func (h *Handler) Process(ctx context.Context, payload []byte, w io.Writer) error {
	var p GeneratePlanPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		h.Log.Error().Err(err).Msg("bad payload")
		return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
	}

	log := h.Log.With().Str("race", p.Request.RaceName).Str("race_date", p.Request.RaceDate).Logger()
	ctx = log.WithContext(ctx)
	log.Info().Msg("generate start")
	start := time.Now()

	text, err := h.Generate(ctx, p.Request)
	duration := time.Since(start)
	if err != nil {
		if IsRetryable(err) {
			log.Warn().Err(err).Dur("duration", duration).Msg("retryable error")
			return err
		}
		log.Error().Err(err).Dur("duration", duration).Msg("permanent error, dropping job")
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	if _, err := io.WriteString(w, text); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	log.Info().Dur("duration", duration).Int("bytes", len(text)).Msg("generate done")
	return nil
}

// Generate builds the plan for req, renders its prompt and asks the
// generator for the plan document.
func (h *Handler) Generate(ctx context.Context, req plan.Request) (string, error) {
	p, err := h.Builder.Build(ctx, req)
	if err != nil {
		return "", fmt.Errorf("build plan: %w", err)
	}
	text, err := h.Prompts.GenerateWithFallback(p)
	if err != nil {
		return "", err
	}
	out, err := h.LLM.Generate(ctx, text)
	if err != nil {
		return "", err
	}
	return prompt.Sanitize(out), nil
}

// IsRetryable determines if an error should trigger a job retry
func IsRetryable(err error) bool {
	if errors.Is(err, plan.ErrInvalidRequest) || errors.Is(err, llm.ErrEmptyResponse) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var se *llm.StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}

	errStr := strings.ToLower(err.Error())

	// Network/connectivity issues - should retry
	if strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "connection") ||
		strings.Contains(errStr, "network") ||
		strings.Contains(errStr, "dns") {
		return true
	}

	// Everything else (bad requests, template errors, etc.) - don't retry
	return false
}
