// Package llm sends rendered prompts to a text generation service.
package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/briangreenhill/marathoncoach/internal/config"
)

// ErrEmptyResponse is returned when the service answers without text.
var ErrEmptyResponse = errors.New("generator returned no text")

// Client generates text for a prompt.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// StatusError is a non-2xx response from the generation service.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("generator status %d: %s", e.Code, e.Body)
}

// Temporary reports whether retrying the same request may succeed.
func (e *StatusError) Temporary() bool {
	return e.Code == 429 || e.Code >= 500
}

// StdoutClient prints the prompt for the user to paste into a chat
// assistant and returns it unchanged. It stands in when no endpoint is
// configured.
type StdoutClient struct {
	W io.Writer
}

// Generate implements Client.
func (c StdoutClient) Generate(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	w := c.W
	if w == nil {
		w = os.Stdout
	}
	if _, err := fmt.Fprintf(w, "--- Copy and paste this prompt ---\n\n%s\n", prompt); err != nil {
		return "", err
	}
	return prompt, nil
}

// NewFromConfig returns an HTTPClient for cfg, wrapped in a CachingClient
// when a cache directory is set. Without an endpoint it returns a
// StdoutClient writing to w.
func NewFromConfig(cfg config.GeneratorConfig, w io.Writer) (Client, error) {
	if cfg.Endpoint == "" {
		return StdoutClient{W: w}, nil
	}
	c, err := New(cfg.Endpoint, cfg.APIKey,
		WithTimeout(cfg.Timeout),
		WithModel(cfg.Model),
		WithSampling(cfg.Temperature, cfg.TopP, cfg.MaxOutputTokens),
	)
	if err != nil {
		return nil, err
	}
	if cfg.CacheDir == "" {
		return c, nil
	}
	fc, err := NewFileCache(cfg.CacheDir)
	if err != nil {
		return nil, fmt.Errorf("generator cache: %w", err)
	}
	return &CachingClient{Next: c, Cache: fc, TTL: cfg.CacheTTL, Model: cfg.Model}, nil
}
