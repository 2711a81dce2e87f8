package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// APIKeyHeader carries the API key on every request.
const APIKeyHeader = "X-API-Key"

// maxErrorBody caps how much of an error response is kept.
const maxErrorBody = 2048

// HTTPClient posts prompts as JSON to a generation endpoint. The endpoint
// receives {prompt, model, temperature, top_p, max_output_tokens} and must
// answer {"text": "..."}.
type HTTPClient struct {
	http     *http.Client
	endpoint *url.URL
	apiKey   string

	model           string
	temperature     float64
	topP            float64
	maxOutputTokens int
}

type Option func(*HTTPClient)

func WithHTTPClient(h *http.Client) Option {
	return func(c *HTTPClient) { c.http = h }
}

func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) {
		if d > 0 {
			c.http = &http.Client{Timeout: d}
		}
	}
}

func WithModel(model string) Option {
	return func(c *HTTPClient) { c.model = model }
}

// WithSampling sets temperature, top_p and the output token limit.
func WithSampling(temperature, topP float64, maxOutputTokens int) Option {
	return func(c *HTTPClient) {
		c.temperature, c.topP, c.maxOutputTokens = temperature, topP, maxOutputTokens
	}
}

// New returns a client for endpoint.
func New(endpoint, apiKey string, opts ...Option) (*HTTPClient, error) {
	if endpoint == "" {
		return nil, errors.New("endpoint required")
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("endpoint %q must be http or https", endpoint)
	}
	c := &HTTPClient{
		http:            http.DefaultClient,
		endpoint:        u,
		apiKey:          apiKey,
		temperature:     0.7,
		topP:            0.95,
		maxOutputTokens: 32768,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

type generateRequest struct {
	Prompt          string  `json:"prompt"`
	Model           string  `json:"model,omitempty"`
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"top_p"`
	MaxOutputTokens int     `json:"max_output_tokens"`
}

type generateResponse struct {
	Text string `json:"text"`
}

// Generate implements Client.
func (c *HTTPClient) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Prompt:          prompt,
		Model:           c.model,
		Temperature:     c.temperature,
		TopP:            c.topP,
		MaxOutputTokens: c.maxOutputTokens,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set(APIKeyHeader, c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode generator response: %w", err)
	}
	if strings.TrimSpace(out.Text) == "" {
		return "", ErrEmptyResponse
	}
	return out.Text, nil
}
