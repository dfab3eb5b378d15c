// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/hirein/engine/internal/domain/model"
)

// SessionHandler handles chat session requests.
type SessionHandler struct {
	deps Dependencies
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(deps Dependencies) *SessionHandler {
	return &SessionHandler{deps: deps}
}

type turnResponse struct {
	ID          string     `json:"id"`
	InterviewID string     `json:"interview_id"`
	Question    string     `json:"question"`
	Answer      *string    `json:"answer,omitempty"`
	Score       *int       `json:"score,omitempty"`
	Level       int        `json:"level"`
	AskedAt     time.Time  `json:"asked_at"`
	AnsweredAt  *time.Time `json:"answered_at,omitempty"`
}

func toTurnResponse(t model.ChatTurn) turnResponse {
	return turnResponse{
		ID:          t.ID,
		InterviewID: t.InterviewID,
		Question:    t.Question,
		Answer:      t.Answer,
		Score:       t.Score,
		Level:       t.Level,
		AskedAt:     t.AskedAt,
		AnsweredAt:  t.AnsweredAt,
	}
}

type askQuestionRequest struct {
	Question string `json:"question"`
}

// HandleAskQuestion handles POST /interviews/{id}/turns requests.
func (h *SessionHandler) HandleAskQuestion(w http.ResponseWriter, r *http.Request) {
	var req askQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("missing question"))
		return
	}
	turn, err := h.deps.AskQuestion(r.Context(), r.PathValue("id"), req.Question)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTurnResponse(turn))
}

// HandleListTurns handles GET /interviews/{id}/turns requests.
func (h *SessionHandler) HandleListTurns(w http.ResponseWriter, r *http.Request) {
	turns, err := h.deps.ListTurns(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]turnResponse, len(turns))
	for i, t := range turns {
		out[i] = toTurnResponse(t)
	}
	writeJSON(w, http.StatusOK, out)
}

type submitAnswerRequest struct {
	Answer string `json:"answer"`
}

// HandleSubmitAnswer handles POST /turns/{id}/answer requests. The answer
// is accepted for asynchronous judging; the returned turn has no score yet.
func (h *SessionHandler) HandleSubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req submitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	if strings.TrimSpace(req.Answer) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("missing answer"))
		return
	}
	turn, err := h.deps.SubmitAnswer(r.Context(), r.PathValue("id"), req.Answer)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, toTurnResponse(turn))
}

type retryResponse struct {
	Requeued int `json:"requeued"`
}

// HandleRetryJudging handles POST /interviews/{id}/retry-judging requests.
func (h *SessionHandler) HandleRetryJudging(w http.ResponseWriter, r *http.Request) {
	n, err := h.deps.RetryJudging(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, retryResponse{Requeued: n})
}
