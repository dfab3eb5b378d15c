// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	service "github.com/hirein/engine/internal/app"
	"github.com/hirein/engine/internal/domain/model"
)

// InterviewsHandler handles interview lifecycle requests.
type InterviewsHandler struct {
	deps Dependencies
}

// NewInterviewsHandler creates a new interviews handler.
func NewInterviewsHandler(deps Dependencies) *InterviewsHandler {
	return &InterviewsHandler{deps: deps}
}

type scheduleRequest struct {
	ApplicationID string `json:"application_id"`
	CandidateID   string `json:"candidate_id"`
	JobID         string `json:"job_id"`
	ScheduledByID string `json:"scheduled_by_id"`
	Type          string `json:"type"`
	ScheduledAt   string `json:"scheduled_at"`
	DurationMin   int    `json:"duration_minutes"`
}

func (r scheduleRequest) validate() error {
	switch {
	case strings.TrimSpace(r.CandidateID) == "":
		return errors.New("missing candidate_id")
	case strings.TrimSpace(r.ScheduledAt) == "":
		return errors.New("missing scheduled_at")
	}
	if _, err := time.Parse(time.RFC3339, r.ScheduledAt); err != nil {
		return errors.New("invalid scheduled_at; must be RFC3339")
	}
	return nil
}

// interviewResponse hides the join token; it travels to the candidate via
// the notification channel, never through the recruiter API.
type interviewResponse struct {
	ID            string     `json:"id"`
	CandidateID   string     `json:"candidate_id"`
	ApplicationID string     `json:"application_id,omitempty"`
	JobID         string     `json:"job_id,omitempty"`
	Type          string     `json:"type,omitempty"`
	Status        string     `json:"status"`
	ScheduledAt   time.Time  `json:"scheduled_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

func toInterviewResponse(iv model.Interview) interviewResponse {
	return interviewResponse{
		ID:            iv.ID,
		CandidateID:   iv.CandidateID,
		ApplicationID: iv.ApplicationID,
		JobID:         iv.JobID,
		Type:          string(iv.Type),
		Status:        string(iv.Status),
		ScheduledAt:   iv.ScheduledAt,
		CompletedAt:   iv.CompletedAt,
	}
}

// HandleSchedule handles POST /interviews requests.
func (h *InterviewsHandler) HandleSchedule(w http.ResponseWriter, r *http.Request) {
	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	at, _ := time.Parse(time.RFC3339, req.ScheduledAt)

	iv, err := h.deps.ScheduleInterview(r.Context(), service.ScheduleRequest{
		ApplicationID: req.ApplicationID,
		CandidateID:   req.CandidateID,
		JobID:         req.JobID,
		ScheduledByID: req.ScheduledByID,
		Type:          model.InterviewType(req.Type),
		ScheduledAt:   at,
		Duration:      time.Duration(req.DurationMin) * time.Minute,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toInterviewResponse(iv))
}

// HandleGet handles GET /interviews/{id} requests.
func (h *InterviewsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	iv, err := h.deps.GetInterview(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toInterviewResponse(iv))
}

// HandleDelete handles DELETE /interviews/{id} requests.
func (h *InterviewsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.DeleteInterview(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// transition wraps the one-line action handlers.
func (h *InterviewsHandler) transition(w http.ResponseWriter, r *http.Request, fn func() (model.Interview, error)) {
	iv, err := fn()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toInterviewResponse(iv))
}

// HandleInvite handles POST /interviews/{id}/invite requests.
func (h *InterviewsHandler) HandleInvite(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func() (model.Interview, error) {
		return h.deps.InviteCandidate(r.Context(), r.PathValue("id"))
	})
}

// HandleConfirm handles POST /interviews/{id}/confirm requests.
func (h *InterviewsHandler) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func() (model.Interview, error) {
		return h.deps.ConfirmInterview(r.Context(), r.PathValue("id"))
	})
}

type rescheduleRequest struct {
	ScheduledAt string `json:"scheduled_at"`
}

// HandleReschedule handles POST /interviews/{id}/reschedule requests.
func (h *InterviewsHandler) HandleReschedule(w http.ResponseWriter, r *http.Request) {
	var req rescheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	at, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("invalid scheduled_at; must be RFC3339"))
		return
	}
	h.transition(w, r, func() (model.Interview, error) {
		return h.deps.RescheduleInterview(r.Context(), r.PathValue("id"), at)
	})
}

// HandleCancel handles POST /interviews/{id}/cancel requests.
func (h *InterviewsHandler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func() (model.Interview, error) {
		return h.deps.CancelInterview(r.Context(), r.PathValue("id"))
	})
}

// HandleStart handles POST /interviews/{id}/start requests.
func (h *InterviewsHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func() (model.Interview, error) {
		return h.deps.StartInterview(r.Context(), r.PathValue("id"))
	})
}

// HandleComplete handles POST /interviews/{id}/complete requests.
func (h *InterviewsHandler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func() (model.Interview, error) {
		return h.deps.CompleteInterview(r.Context(), r.PathValue("id"))
	})
}

type joinRequest struct {
	InterviewID string `json:"interview_id"`
	Token       string `json:"token"`
}

// HandleJoin handles POST /join requests. Failures are deliberately
// uniform so a caller cannot probe token state.
func (h *InterviewsHandler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	if strings.TrimSpace(req.InterviewID) == "" || strings.TrimSpace(req.Token) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("missing interview_id or token"))
		return
	}
	h.transition(w, r, func() (model.Interview, error) {
		return h.deps.JoinInterview(r.Context(), req.InterviewID, req.Token)
	})
}
