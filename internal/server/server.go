// Package server exposes the scoring service over HTTP.
package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"creator-score/internal/common/config"
	"creator-score/internal/common/errors"
	"creator-score/internal/common/logger"
	"creator-score/internal/common/validation"
	"creator-score/internal/models"
	"creator-score/internal/scoring"
	"creator-score/internal/tasks"
)

var scoreRequestSchema = validation.Schema{
	"username": {Type: "string", Required: true, MinLength: 1, MaxLength: 128},
	"keyword":  {Type: "string", Required: false, MaxLength: 256},
}

// Server wires the HTTP surface over the orchestrator and the sync pipeline.
type Server struct {
	orchestrator *tasks.Orchestrator
	pipeline     *scoring.Pipeline
	cfg          config.ServerConfig
	logger       logger.Logger
	httpServer   *http.Server
}

func New(orchestrator *tasks.Orchestrator, pipeline *scoring.Pipeline, cfg config.ServerConfig, log logger.Logger) *Server {
	s := &Server{
		orchestrator: orchestrator,
		pipeline:     pipeline,
		cfg:          cfg,
		logger:       log,
	}
	s.httpServer = &http.Server{
		Addr:    cfg.Addr(),
		Handler: s.Routes(),
		// The sync endpoint can run for the full timeout; leave headroom.
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      config.GetDuration(cfg.SyncTimeout) + 30*time.Second,
	}
	return s
}

// Routes builds the router. Exposed for handler tests.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Post("/submit_task", s.handleSubmitTask)
	r.Get("/task_status/{task_id}", s.handleTaskStatus)
	r.Get("/tasks", s.handleListTasks)
	r.Post("/calculate_score", s.handleCalculateScore)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	s.logger.Info("http server listening", map[string]interface{}{"addr": s.cfg.Addr()})
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

type submitResponse struct {
	Success bool              `json:"success"`
	TaskID  string            `json:"task_id"`
	Status  models.TaskStatus `json:"status"`
}

type taskResponse struct {
	Success bool `json:"success"`
	models.Task
}

type taskSummary struct {
	TaskID      string            `json:"task_id"`
	Status      models.TaskStatus `json:"status"`
	Username    string            `json:"username"`
	Keyword     string            `json:"keyword,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
	Score       *float64          `json:"score,omitempty"`
}

type listResponse struct {
	Success bool          `json:"success"`
	Total   int           `json:"total"`
	Tasks   []taskSummary `json:"tasks"`
}

type scoreResponse struct {
	Success bool                  `json:"success"`
	Score   models.ScoreBreakdown `json:"score"`
}

type errorResponse struct {
	Success bool                   `json:"success"`
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (s *Server) handleSubmitTask(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeScoreRequest(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	task, err := s.orchestrator.Submit(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusAccepted, submitResponse{
		Success: true,
		TaskID:  task.ID,
		Status:  task.Status,
	})
}

// handleTaskStatus reports the task snapshot. A failed task is still a
// successful status lookup; success:false is reserved for request errors.
func (s *Server) handleTaskStatus(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "task_id")
	if taskID == "" {
		s.writeError(w, errors.NewInvalidInput("task_id is required"))
		return
	}

	task, err := s.orchestrator.Status(r.Context(), taskID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, taskResponse{Success: true, Task: task})
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	list, err := s.orchestrator.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	summaries := make([]taskSummary, 0, len(list))
	for _, task := range list {
		sum := taskSummary{
			TaskID:      task.ID,
			Status:      task.Status,
			Username:    task.Username,
			Keyword:     task.Keyword,
			CreatedAt:   task.CreatedAt,
			CompletedAt: task.CompletedAt,
		}
		if task.Result != nil {
			score := task.Result.FinalScore
			sum.Score = &score
		}
		summaries = append(summaries, sum)
	}

	s.writeJSON(w, http.StatusOK, listResponse{Success: true, Total: len(summaries), Tasks: summaries})
}

// handleCalculateScore is the legacy synchronous endpoint. It runs the whole
// pipeline inside the request, bounded by the configured timeout.
func (s *Server) handleCalculateScore(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Deprecation", "true")
	w.Header().Set("Link", `</submit_task>; rel="successor-version"`)

	req, err := s.decodeScoreRequest(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	breakdown, err := s.pipeline.RunWithTimeout(r.Context(), req.Username, req.Keyword, config.GetDuration(s.cfg.SyncTimeout))
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, scoreResponse{Success: true, Score: breakdown})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"status":  "ok",
	})
}

func (s *Server) decodeScoreRequest(r *http.Request) (models.ScoreRequest, error) {
	var body map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return models.ScoreRequest{}, errors.NewInvalidInput("request body is not valid JSON").WithCause(err)
	}

	if violations := validation.ValidateInput(body, scoreRequestSchema); len(violations) > 0 {
		return models.ScoreRequest{}, errors.NewInvalidInput("invalid request body").
			WithDetails("violations", violations)
	}

	req := models.ScoreRequest{}
	if v, ok := body["username"].(string); ok {
		req.Username = v
	}
	if v, ok := body["keyword"].(string); ok {
		req.Keyword = v
	}
	return req, nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.WithError(err).Error("failed to encode response", nil)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.CodeOf(err)

	resp := errorResponse{
		Success: false,
		Code:    code,
		Message: err.Error(),
	}
	var se *errors.StandardError
	if stderrors.As(err, &se) {
		resp.Message = se.Message
		resp.Details = se.Details
	}

	s.writeJSON(w, httpStatus(code), resp)
}

func httpStatus(code string) int {
	switch code {
	case errors.CodeInvalidInput:
		return http.StatusBadRequest
	case errors.CodeNotFound:
		return http.StatusNotFound
	case errors.CodeNoMatchingContent:
		return http.StatusUnprocessableEntity
	case errors.CodeTimeout:
		return http.StatusGatewayTimeout
	case errors.CodeUpstreamFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
