// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/hirein/engine/internal/domain/lifecycle"
)

// ApplicationsHandler handles application requests.
type ApplicationsHandler struct {
	deps Dependencies
}

// NewApplicationsHandler creates a new applications handler.
func NewApplicationsHandler(deps Dependencies) *ApplicationsHandler {
	return &ApplicationsHandler{deps: deps}
}

type createApplicationRequest struct {
	JobID       string `json:"job_id"`
	CandidateID string `json:"candidate_id"`
}

func (r createApplicationRequest) validate() error {
	switch {
	case strings.TrimSpace(r.JobID) == "":
		return errors.New("missing job_id")
	case strings.TrimSpace(r.CandidateID) == "":
		return errors.New("missing candidate_id")
	}
	return nil
}

// HandleCreate handles POST /applications requests.
func (h *ApplicationsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	app, err := h.deps.CreateApplication(r.Context(), req.JobID, req.CandidateID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, app)
}

// HandleGet handles GET /applications/{id} requests.
func (h *ApplicationsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	app, err := h.deps.GetApplication(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

type advanceApplicationRequest struct {
	Event string `json:"event"`
}

// HandleAdvance handles POST /applications/{id}/advance requests.
func (h *ApplicationsHandler) HandleAdvance(w http.ResponseWriter, r *http.Request) {
	var req advanceApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	if strings.TrimSpace(req.Event) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("missing event"))
		return
	}
	app, err := h.deps.AdvanceApplication(r.Context(), r.PathValue("id"), lifecycle.ApplicationEvent(req.Event))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}
