// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/hirein/engine/internal/adapters/repository"
	service "github.com/hirein/engine/internal/app"
	"github.com/hirein/engine/internal/domain/lifecycle"
	"github.com/hirein/engine/internal/domain/model"
	"github.com/hirein/engine/internal/domain/token"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Applications.
	CreateApplication(ctx context.Context, jobID, candidateID string) (model.Application, error)
	GetApplication(ctx context.Context, id string) (model.Application, error)
	AdvanceApplication(ctx context.Context, id string, event lifecycle.ApplicationEvent) (model.Application, error)

	// Interviews.
	ScheduleInterview(ctx context.Context, req service.ScheduleRequest) (model.Interview, error)
	GetInterview(ctx context.Context, id string) (model.Interview, error)
	InviteCandidate(ctx context.Context, id string) (model.Interview, error)
	ConfirmInterview(ctx context.Context, id string) (model.Interview, error)
	RescheduleInterview(ctx context.Context, id string, newTime time.Time) (model.Interview, error)
	CancelInterview(ctx context.Context, id string) (model.Interview, error)
	JoinInterview(ctx context.Context, id, tok string) (model.Interview, error)
	StartInterview(ctx context.Context, id string) (model.Interview, error)
	CompleteInterview(ctx context.Context, id string) (model.Interview, error)
	DeleteInterview(ctx context.Context, id string) error

	// Chat session.
	AskQuestion(ctx context.Context, interviewID, question string) (model.ChatTurn, error)
	SubmitAnswer(ctx context.Context, turnID, answer string) (model.ChatTurn, error)
	ListTurns(ctx context.Context, interviewID string) ([]model.ChatTurn, error)
	RetryJudging(ctx context.Context, interviewID string) (int, error)

	// Results.
	Aggregate(ctx context.Context, interviewID string) (model.InterviewResult, bool, error)
	GetResult(ctx context.Context, interviewID string) (model.InterviewResult, error)
	ListEvaluations(ctx context.Context, interviewID string) ([]model.Evaluation, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler       *HealthHandler
	statsHandler        *StatsHandler
	applicationsHandler *ApplicationsHandler
	interviewsHandler   *InterviewsHandler
	sessionHandler      *SessionHandler
	resultsHandler      *ResultsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:       NewHealthHandler(),
		statsHandler:        NewStatsHandler(statsProvider),
		applicationsHandler: NewApplicationsHandler(deps),
		interviewsHandler:   NewInterviewsHandler(deps),
		sessionHandler:      NewSessionHandler(deps),
		resultsHandler:      NewResultsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("POST /applications", MetricsMiddleware(s.applicationsHandler.HandleCreate, "applications"))
	mux.HandleFunc("GET /applications/{id}", MetricsMiddleware(s.applicationsHandler.HandleGet, "applications"))
	mux.HandleFunc("POST /applications/{id}/advance", MetricsMiddleware(s.applicationsHandler.HandleAdvance, "applications"))

	mux.HandleFunc("POST /interviews", MetricsMiddleware(s.interviewsHandler.HandleSchedule, "interviews"))
	mux.HandleFunc("GET /interviews/{id}", MetricsMiddleware(s.interviewsHandler.HandleGet, "interviews"))
	mux.HandleFunc("DELETE /interviews/{id}", MetricsMiddleware(s.interviewsHandler.HandleDelete, "interviews"))
	mux.HandleFunc("POST /interviews/{id}/invite", MetricsMiddleware(s.interviewsHandler.HandleInvite, "invite"))
	mux.HandleFunc("POST /interviews/{id}/confirm", MetricsMiddleware(s.interviewsHandler.HandleConfirm, "confirm"))
	mux.HandleFunc("POST /interviews/{id}/reschedule", MetricsMiddleware(s.interviewsHandler.HandleReschedule, "reschedule"))
	mux.HandleFunc("POST /interviews/{id}/cancel", MetricsMiddleware(s.interviewsHandler.HandleCancel, "cancel"))
	mux.HandleFunc("POST /interviews/{id}/start", MetricsMiddleware(s.interviewsHandler.HandleStart, "start"))
	mux.HandleFunc("POST /interviews/{id}/complete", MetricsMiddleware(s.interviewsHandler.HandleComplete, "complete"))
	mux.HandleFunc("POST /join", MetricsMiddleware(s.interviewsHandler.HandleJoin, "join"))

	mux.HandleFunc("POST /interviews/{id}/turns", MetricsMiddleware(s.sessionHandler.HandleAskQuestion, "turns"))
	mux.HandleFunc("GET /interviews/{id}/turns", MetricsMiddleware(s.sessionHandler.HandleListTurns, "turns"))
	mux.HandleFunc("POST /turns/{id}/answer", MetricsMiddleware(s.sessionHandler.HandleSubmitAnswer, "answer"))
	mux.HandleFunc("POST /interviews/{id}/retry-judging", MetricsMiddleware(s.sessionHandler.HandleRetryJudging, "retry"))

	mux.HandleFunc("POST /interviews/{id}/aggregate", MetricsMiddleware(s.resultsHandler.HandleAggregate, "aggregate"))
	mux.HandleFunc("GET /interviews/{id}/result", MetricsMiddleware(s.resultsHandler.HandleGetResult, "result"))
	mux.HandleFunc("GET /interviews/{id}/evaluations", MetricsMiddleware(s.resultsHandler.HandleListEvaluations, "evaluations"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeDomainError maps domain sentinel kinds onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, repository.ErrAlreadyExists):
		writeError(w, http.StatusConflict, "already_exists", err)
	case errors.Is(err, repository.ErrDuplicateSession),
		errors.Is(err, repository.ErrAlreadyAnswered),
		errors.Is(err, repository.ErrAlreadyScored):
		writeError(w, http.StatusConflict, "conflict", err)
	case errors.Is(err, repository.ErrInvalidScore):
		writeError(w, http.StatusBadRequest, "invalid_score", err)
	case errors.Is(err, lifecycle.ErrIllegalTransition):
		writeError(w, http.StatusConflict, "illegal_transition", err)
	case errors.Is(err, service.ErrVerdictPending):
		writeError(w, http.StatusConflict, "verdict_pending", err)
	case errors.Is(err, service.ErrResultRequired):
		writeError(w, http.StatusConflict, "result_required", err)
	case errors.Is(err, service.ErrQueueFull):
		writeError(w, http.StatusTooManyRequests, "backpressure", ErrBackpressure)
	case errors.Is(err, token.ErrRejected),
		errors.Is(err, token.ErrExpired),
		errors.Is(err, token.ErrConsumed):
		// Candidate-facing: one generic message regardless of the cause.
		writeError(w, http.StatusForbidden, "join_rejected", token.ErrRejected)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
