package routes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	scs "github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	appmw "github.com/briangreenhill/marathoncoach/internal/http/middleware"
	"github.com/briangreenhill/marathoncoach/internal/jobs"
	"github.com/briangreenhill/marathoncoach/internal/plan"
	"github.com/briangreenhill/marathoncoach/internal/prompt"
	"github.com/briangreenhill/marathoncoach/internal/refdata"
	"github.com/briangreenhill/marathoncoach/internal/schedule"
	"github.com/briangreenhill/marathoncoach/internal/timefmt"
	"github.com/briangreenhill/marathoncoach/internal/vdot"
)

// Session key holding the last generation task enqueued from this browser.
const lastTaskKey = "last_task_id"

const maxBodyBytes = 1 << 20

// Enqueuer is satisfied by *asynq.Client.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// TaskLookup is satisfied by *asynq.Inspector.
type TaskLookup interface {
	GetTaskInfo(queue, id string) (*asynq.TaskInfo, error)
}

type Server struct {
	Router   *chi.Mux
	Sess     *scs.SessionManager
	Tables   refdata.Tables
	Builder  *plan.Builder
	Prompts  *prompt.Generator
	Queue    Enqueuer   // nil disables background generation
	Tasks    TaskLookup // nil disables task status
	TaskOpts jobs.TaskOptions
}

type ServerOptions struct {
	Sess     *scs.SessionManager
	Tables   refdata.Tables
	Builder  *plan.Builder
	Prompts  *prompt.Generator
	Queue    Enqueuer
	Tasks    TaskLookup
	TaskOpts jobs.TaskOptions
	Log      zerolog.Logger
}

func New(opts ServerOptions) *Server {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(hlog.NewHandler(opts.Log))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Stringer("url", r.URL).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	}))
	r.Use(chimw.Recoverer)

	s := &Server{
		Router:   r,
		Sess:     opts.Sess,
		Tables:   opts.Tables,
		Builder:  opts.Builder,
		Prompts:  opts.Prompts,
		Queue:    opts.Queue,
		Tasks:    opts.Tasks,
		TaskOpts: opts.TaskOpts,
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("ok")); err != nil {
			hlog.FromRequest(r).Error().Err(err).Msg("write health check response")
		}
	})

	r.Route("/api", func(api chi.Router) {
		api.Get("/vdot/{score}/marathon", s.handleMarathonTime)
		api.Get("/paces/{score}", s.handlePaces)
		api.Get("/plans/generate/latest", s.handleLatestTask)
		api.Get("/plans/generate/{taskID}", s.handleTaskStatus)

		api.Group(func(pr chi.Router) {
			pr.Use(appmw.RequireJSON)
			pr.Post("/vdot", s.handleVDOT)
			pr.Post("/phases", s.handlePhases)
			pr.Post("/window", s.handleWindow)
			pr.Post("/plans", s.handlePlan)
			pr.Post("/plans/prompt", s.handlePrompt)
			pr.Post("/plans/generate", s.handleGenerate)
		})
	})

	return s
}

// Handler returns the router wrapped with session loading.
func (s *Server) Handler() http.Handler {
	if s.Sess == nil {
		return s.Router
	}
	return s.Sess.LoadAndSave(s.Router)
}

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("encode response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	body := errorBody{Error: err.Error()}
	var fields plan.FieldErrors
	if errors.As(err, &fields) {
		body.Error = plan.ErrInvalidRequest.Error()
		body.Fields = fields
	}
	writeJSON(w, r, status, body)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		writeError(w, r, http.StatusBadRequest, fmt.Errorf("decode body: %w", err))
		return false
	}
	return true
}

func scoreParam(w http.ResponseWriter, r *http.Request) (float64, bool) {
	raw := chi.URLParam(r, "score")
	score, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, fmt.Errorf("invalid score %q", raw))
		return 0, false
	}
	return score, true
}

type vdotRequest struct {
	Category string `json:"category"`
	Time     string `json:"time"`
}

func (s *Server) handleVDOT(w http.ResponseWriter, r *http.Request) {
	var in vdotRequest
	if !decode(w, r, &in) {
		return
	}
	if strings.TrimSpace(in.Category) == "" {
		in.Category = vdot.ColumnMarathon
	}
	secs, ok := timefmt.ParseDuration(in.Time)
	if !ok {
		writeError(w, r, http.StatusUnprocessableEntity, plan.FieldErrors{"time": fmt.Sprintf("cannot parse %q, use H:MM:SS", in.Time)})
		return
	}
	res, err := vdot.TimeToFitness(s.Tables.Times, in.Category, secs)
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (s *Server) handleMarathonTime(w http.ResponseWriter, r *http.Request) {
	score, ok := scoreParam(w, r)
	if !ok {
		return
	}
	secs, trace, err := vdot.FitnessToSeconds(s.Tables.Times, score)
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"score":    score,
		"marathon": timefmt.Format(secs, true),
		"seconds":  secs,
		"trace":    trace,
	})
}

func (s *Server) handlePaces(w http.ResponseWriter, r *http.Request) {
	score, ok := scoreParam(w, r)
	if !ok {
		return
	}
	set, trace, err := vdot.FitnessToPaces(s.Tables.Paces, score)
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"score": score,
		"paces": set.Paces,
		"easy":  set.Easy(),
		"trace": trace,
	})
}

type phasesRequest struct {
	Current float64 `json:"current"`
	Target  float64 `json:"target"`
	Phases  *int    `json:"phases"`
}

func (s *Server) handlePhases(w http.ResponseWriter, r *http.Request) {
	var in phasesRequest
	if !decode(w, r, &in) {
		return
	}
	n := s.Builder.Phases
	if in.Phases != nil {
		n = *in.Phases
	}
	if n < 1 || n > vdot.MaxPhases {
		writeError(w, r, http.StatusBadRequest, fmt.Errorf("phases must be between 1 and %d, got %d", vdot.MaxPhases, n))
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"targets": vdot.PhaseTargets(in.Current, in.Target, n)})
}

type windowRequest struct {
	RaceDate string `json:"race_date"`
	MinWeeks *int   `json:"min_weeks"`
}

type windowResponse struct {
	StartDate      string `json:"start_date"`
	EndDate        string `json:"end_date"`
	Weeks          int    `json:"weeks"`
	RemainingWeeks int    `json:"remaining_weeks"`
	StartsInPast   bool   `json:"starts_in_past"`
}

func (s *Server) handleWindow(w http.ResponseWriter, r *http.Request) {
	var in windowRequest
	if !decode(w, r, &in) {
		return
	}
	minWeeks := s.Builder.MinWeeks
	if in.MinWeeks != nil {
		minWeeks = *in.MinWeeks
	}
	if minWeeks < 1 {
		writeError(w, r, http.StatusBadRequest, fmt.Errorf("min_weeks must be at least 1, got %d", minWeeks))
		return
	}
	now := time.Now()
	if s.Builder.Now != nil {
		now = s.Builder.Now()
	}
	race, err := time.ParseInLocation(plan.DateLayout, strings.TrimSpace(in.RaceDate), now.Location())
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, plan.FieldErrors{"race_date": fmt.Sprintf("cannot parse %q, use YYYY-MM-DD", in.RaceDate)})
		return
	}
	win := schedule.TrainingWindow(race, now, minWeeks)
	writeJSON(w, r, http.StatusOK, windowResponse{
		StartDate:      win.Start.Format(plan.DateLayout),
		EndDate:        win.End().Format(plan.DateLayout),
		Weeks:          win.Weeks,
		RemainingWeeks: win.RemainingWeeks,
		StartsInPast:   win.StartsInPast,
	})
}

func (s *Server) build(w http.ResponseWriter, r *http.Request) (*plan.Plan, bool) {
	var req plan.Request
	if !decode(w, r, &req) {
		return nil, false
	}
	p, err := s.Builder.Build(r.Context(), req)
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, err)
		return nil, false
	}
	return p, true
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	p, ok := s.build(w, r)
	if !ok {
		return
	}
	writeJSON(w, r, http.StatusOK, p)
}

func (s *Server) handlePrompt(w http.ResponseWriter, r *http.Request) {
	p, ok := s.build(w, r)
	if !ok {
		return
	}
	text, err := s.Prompts.GenerateWithFallback(p)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("render prompt")
		writeError(w, r, http.StatusInternalServerError, errors.New("could not render prompt"))
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if _, err := w.Write([]byte(text)); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("write prompt")
	}
}
