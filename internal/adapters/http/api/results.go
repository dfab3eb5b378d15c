// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"time"

	"github.com/hirein/engine/internal/domain/model"
)

// ResultsHandler handles aggregation and result requests.
type ResultsHandler struct {
	deps Dependencies
}

// NewResultsHandler creates a new results handler.
func NewResultsHandler(deps Dependencies) *ResultsHandler {
	return &ResultsHandler{deps: deps}
}

type resultResponse struct {
	InterviewID   string `json:"interview_id"`
	CandidateID   string `json:"candidate_id"`
	ApplicationID string `json:"application_id,omitempty"`
	JobID         string `json:"job_id,omitempty"`

	EvaluatedCount int `json:"evaluated_count"`
	TotalQuestions int `json:"total_questions"`

	AverageFactualAccuracy float64 `json:"average_factual_accuracy"`
	AverageCompleteness    float64 `json:"average_completeness"`
	AverageRelevance       float64 `json:"average_relevance"`
	AverageCoherence       float64 `json:"average_coherence"`
	AverageScore           float64 `json:"average_score"`

	PassStatus      string `json:"pass_status"`
	SummaryResult   string `json:"summary_result,omitempty"`
	KnowledgeLevel  string `json:"knowledge_level"`
	Recommendations string `json:"recommendations,omitempty"`

	ComputedAt time.Time `json:"computed_at"`
}

func toResultResponse(res model.InterviewResult) resultResponse {
	return resultResponse{
		InterviewID:   res.InterviewID,
		CandidateID:   res.CandidateID,
		ApplicationID: res.ApplicationID,
		JobID:         res.JobID,

		EvaluatedCount: res.EvaluatedCount,
		TotalQuestions: res.TotalQuestions,

		AverageFactualAccuracy: res.AverageFactualAccuracy,
		AverageCompleteness:    res.AverageCompleteness,
		AverageRelevance:       res.AverageRelevance,
		AverageCoherence:       res.AverageCoherence,
		AverageScore:           res.AverageScore,

		PassStatus:      string(res.PassStatus),
		SummaryResult:   res.SummaryResult,
		KnowledgeLevel:  string(res.KnowledgeLevel),
		Recommendations: res.Recommendations,

		ComputedAt: res.ComputedAt,
	}
}

type aggregateResponse struct {
	Aggregated bool            `json:"aggregated"`
	Result     *resultResponse `json:"result,omitempty"`
}

// HandleAggregate handles POST /interviews/{id}/aggregate requests.
// Idempotent: repeated calls recompute from the same evaluations.
func (h *ResultsHandler) HandleAggregate(w http.ResponseWriter, r *http.Request) {
	res, ok, err := h.deps.Aggregate(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusOK, aggregateResponse{Aggregated: false})
		return
	}
	out := toResultResponse(res)
	writeJSON(w, http.StatusOK, aggregateResponse{Aggregated: true, Result: &out})
}

// HandleGetResult handles GET /interviews/{id}/result requests.
func (h *ResultsHandler) HandleGetResult(w http.ResponseWriter, r *http.Request) {
	res, err := h.deps.GetResult(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toResultResponse(res))
}

type evaluationResponse struct {
	ID          string  `json:"id"`
	InterviewID string  `json:"interview_id"`
	Question    string  `json:"question"`
	Answer      string  `json:"answer"`
	Score       float64 `json:"score"`

	FactualAccuracy float64 `json:"factual_accuracy"`
	Completeness    float64 `json:"completeness"`
	Relevance       float64 `json:"relevance"`
	Coherence       float64 `json:"coherence"`

	EvaluatedAt time.Time `json:"evaluated_at"`
}

// HandleListEvaluations handles GET /interviews/{id}/evaluations requests.
func (h *ResultsHandler) HandleListEvaluations(w http.ResponseWriter, r *http.Request) {
	evals, err := h.deps.ListEvaluations(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]evaluationResponse, len(evals))
	for i, ev := range evals {
		out[i] = evaluationResponse{
			ID:          ev.ID,
			InterviewID: ev.InterviewID,
			Question:    ev.Question,
			Answer:      ev.Answer,
			Score:       ev.Score,

			FactualAccuracy: ev.Scores.FactualAccuracy,
			Completeness:    ev.Scores.Completeness,
			Relevance:       ev.Scores.Relevance,
			Coherence:       ev.Scores.Coherence,

			EvaluatedAt: ev.EvaluatedAt,
		}
	}
	writeJSON(w, http.StatusOK, out)
}
