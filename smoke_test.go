package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	scs "github.com/alexedwards/scs/v2"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/briangreenhill/marathoncoach/internal/config"
	"github.com/briangreenhill/marathoncoach/internal/http/routes"
	"github.com/briangreenhill/marathoncoach/internal/jobs"
	"github.com/briangreenhill/marathoncoach/internal/llm"
	"github.com/briangreenhill/marathoncoach/internal/plan"
	"github.com/briangreenhill/marathoncoach/internal/prompt"
	"github.com/briangreenhill/marathoncoach/internal/refdata"
)

// MockGenerator stands in for the text generation endpoint
type MockGenerator struct {
	server *httptest.Server
	calls  atomic.Int32
}

func NewMockGenerator() *MockGenerator {
	m := &MockGenerator{}
	m.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.calls.Add(1)
		var body struct {
			Prompt string `json:"prompt"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Prompt == "" {
			http.Error(w, "prompt required", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"text": "# Week 1\n<hr>\n- Easy 8km\n",
		})
	}))
	return m
}

func (m *MockGenerator) Close() {
	m.server.Close()
}

// TestSmokeTest runs a plan request through the API, the queue and the worker
func TestSmokeTest(t *testing.T) {
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		t.Skip("REDIS_ADDR not set, skipping smoke test")
	}

	ctx := context.Background()
	logger := zerolog.New(zerolog.NewTestWriter(t))
	tables := refdata.MustEmbedded()
	builder := plan.NewBuilder(tables, logger)
	prompts := prompt.NewGenerator(config.PromptConfig{}, version, logger)

	gen := NewMockGenerator()
	defer gen.Close()
	client, err := llm.New(gen.server.URL, "test-key", llm.WithTimeout(10*time.Second))
	require.NoError(t, err)

	// Worker
	redis := asynq.RedisClientOpt{Addr: redisAddr}
	srv := asynq.NewServer(redis, asynq.Config{
		Concurrency: 1,
		Queues:      map[string]int{jobs.QueuePlans: 1},
		LogLevel:    asynq.WarnLevel,
	})
	mux := asynq.NewServeMux()
	mux.Handle(jobs.TaskGeneratePlan, &jobs.Handler{Builder: builder, Prompts: prompts, LLM: client, Log: logger})
	require.NoError(t, srv.Start(mux))
	defer srv.Shutdown()

	queue := asynq.NewClient(redis)
	defer func() {
		if err := queue.Close(); err != nil {
			t.Logf("close asynq client: %v", err)
		}
	}()
	inspector := asynq.NewInspector(redis)
	defer func() {
		if err := inspector.Close(); err != nil {
			t.Logf("close asynq inspector: %v", err)
		}
	}()

	// API
	s := routes.New(routes.ServerOptions{
		Sess:     scs.New(),
		Tables:   tables,
		Builder:  builder,
		Prompts:  prompts,
		Queue:    queue,
		Tasks:    inspector,
		TaskOpts: jobs.TaskOptions{MaxRetry: 1, Timeout: time.Minute, Retention: time.Hour},
		Log:      logger,
	})
	api := httptest.NewServer(s.Handler())
	defer api.Close()

	t.Run("generate_and_download", func(t *testing.T) {
		body, err := json.Marshal(plan.Request{
			Name:        "Smoke Runner",
			CurrentTime: "3:30:00",
			TargetTime:  "3:20:00",
			RaceName:    "Smoke Marathon",
			RaceDate:    time.Now().AddDate(0, 5, 0).Format(plan.DateLayout),
		})
		require.NoError(t, err)

		// 1. Queue a generation
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, api.URL+"/api/plans/generate", bytes.NewReader(body))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusAccepted, resp.StatusCode)

		var queued struct {
			TaskID string `json:"task_id"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&queued))
		require.NotEmpty(t, queued.TaskID)
		cookies := resp.Cookies()
		require.NotEmpty(t, cookies, "session cookie should be set")

		// 2. The session remembers the task
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, api.URL+"/api/plans/generate/latest", nil)
		require.NoError(t, err)
		for _, c := range cookies {
			req.AddCookie(c)
		}
		latest, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		latest.Body.Close()
		require.Equal(t, http.StatusOK, latest.StatusCode)

		// 3. Wait for the worker
		var status jobs.Status
		require.Eventually(t, func() bool {
			r, err := http.Get(api.URL + "/api/plans/generate/" + queued.TaskID)
			if err != nil {
				return false
			}
			defer r.Body.Close()
			if err := json.NewDecoder(r.Body).Decode(&status); err != nil {
				return false
			}
			return status.Done()
		}, 30*time.Second, 200*time.Millisecond, "task should complete")
		require.Equal(t, int32(1), gen.calls.Load())
		require.NotContains(t, status.Result, "<hr>")

		// 4. Download the document
		dl, err := http.Get(api.URL + "/api/plans/generate/" + queued.TaskID + "?download=1")
		require.NoError(t, err)
		defer dl.Body.Close()
		require.Equal(t, http.StatusOK, dl.StatusCode)
		require.Contains(t, dl.Header.Get("Content-Disposition"), "training_plan_Smoke_Runner_")

		var doc bytes.Buffer
		_, err = doc.ReadFrom(dl.Body)
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(doc.String(), "\ufeff# Week 1"))

		t.Logf("generated plan %s (%d bytes)", queued.TaskID, doc.Len())
	})
}
