// Package narrative defines the optional summary-generation capability.
//
// The aggregator supplies computed statistics and stores whatever text comes
// back as an opaque string; when the narrator is unavailable the aggregation
// still commits with empty narrative fields.
package narrative

import (
	"context"
	"fmt"

	"github.com/hirein/engine/internal/domain/model"
	"github.com/hirein/engine/internal/domain/verdict"
)

// Narrative is the generated text pair attached to an interview result.
type Narrative struct {
	Summary         string
	Recommendations string
}

// Narrator produces narrative text from computed statistics.
type Narrator interface {
	Summarize(ctx context.Context, s verdict.Summary) (Narrative, error)
}

// TemplateNarrator is the default Narrator: fixed wording keyed on the
// verdict, no external calls.
type TemplateNarrator struct{}

// NewTemplateNarrator creates the default narrator.
func NewTemplateNarrator() *TemplateNarrator {
	return &TemplateNarrator{}
}

// Summarize renders the verdict into recruiter-facing wording.
func (n *TemplateNarrator) Summarize(_ context.Context, s verdict.Summary) (Narrative, error) {
	var summary string
	switch {
	case s.PassStatus == model.PassStatusPass && s.KnowledgeLevel == model.KnowledgeExpert:
		summary = "Candidate passed with excellent performance"
	case s.PassStatus == model.PassStatusPass:
		summary = "Candidate passed with good performance"
	case s.KnowledgeLevel == model.KnowledgeBeginner:
		summary = "Candidate failed with poor or incomplete answers"
	default:
		summary = "Candidate did not reach the pass threshold"
	}

	rec := fmt.Sprintf(
		"Answered %d of %d questions with an average score of %.2f (%s).",
		s.EvaluatedCount, s.TotalQuestions, s.AverageScore, s.KnowledgeLevel,
	)
	return Narrative{Summary: summary, Recommendations: rec}, nil
}
