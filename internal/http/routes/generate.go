package routes

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/hlog"

	"github.com/briangreenhill/marathoncoach/internal/jobs"
	"github.com/briangreenhill/marathoncoach/internal/prompt"
)

var errQueueDisabled = errors.New("background generation is not configured")

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if s.Queue == nil {
		writeError(w, r, http.StatusServiceUnavailable, errQueueDisabled)
		return
	}
	// Build once here so invalid requests are rejected before they are queued.
	p, ok := s.build(w, r)
	if !ok {
		return
	}

	task, err := jobs.NewGeneratePlanTask(p.Request, s.TaskOpts)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("failed to build generate task")
		writeError(w, r, http.StatusInternalServerError, errors.New("failed to queue generation"))
		return
	}
	info, err := s.Queue.EnqueueContext(r.Context(), task)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("failed to enqueue generate task")
		writeError(w, r, http.StatusInternalServerError, errors.New("failed to queue generation"))
		return
	}

	if s.Sess != nil {
		s.Sess.Put(r.Context(), lastTaskKey, info.ID)
	}
	hlog.FromRequest(r).Info().Str("task_id", info.ID).Msg("generate task queued")
	writeJSON(w, r, http.StatusAccepted, map[string]string{"task_id": info.ID})
}

func (s *Server) handleLatestTask(w http.ResponseWriter, r *http.Request) {
	var id string
	if s.Sess != nil {
		id = s.Sess.GetString(r.Context(), lastTaskKey)
	}
	if id == "" {
		writeError(w, r, http.StatusNotFound, errors.New("no generation requested in this session"))
		return
	}
	s.writeTaskStatus(w, r, id)
}

func (s *Server) handleTaskStatus(w http.ResponseWriter, r *http.Request) {
	s.writeTaskStatus(w, r, chi.URLParam(r, "taskID"))
}

func (s *Server) writeTaskStatus(w http.ResponseWriter, r *http.Request, id string) {
	if s.Tasks == nil {
		writeError(w, r, http.StatusServiceUnavailable, errQueueDisabled)
		return
	}
	info, err := s.Tasks.GetTaskInfo(jobs.QueuePlans, id)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskNotFound) || errors.Is(err, asynq.ErrQueueNotFound) {
			writeError(w, r, http.StatusNotFound, errors.New("task not found"))
			return
		}
		hlog.FromRequest(r).Error().Err(err).Str("task_id", id).Msg("task lookup failed")
		writeError(w, r, http.StatusInternalServerError, errors.New("task lookup failed"))
		return
	}
	status := jobs.StatusFromInfo(info)

	if r.URL.Query().Get("download") != "1" {
		writeJSON(w, r, http.StatusOK, status)
		return
	}
	if !status.Done() {
		writeJSON(w, r, http.StatusConflict, status)
		return
	}

	var payload jobs.GeneratePlanPayload
	if err := json.Unmarshal(info.Payload, &payload); err != nil {
		hlog.FromRequest(r).Warn().Err(err).Str("task_id", id).Msg("decode task payload, using default filename")
	}
	day := time.Now()
	if status.CompletedAt != nil {
		day = *status.CompletedAt
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+prompt.Filename(payload.Request.Name, day)+`"`)
	if _, err := w.Write(prompt.Markdown(status.Result)); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("write download")
	}
}
