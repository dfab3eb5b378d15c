// Package verdict turns a set of judged answers into interview-level
// statistics, a pass verdict, and a knowledge-level classification.
//
// Everything here is pure arithmetic over already-recorded evaluations; the
// judging and narrative capabilities stay behind their own interfaces so
// this logic tests without invoking either.
package verdict

import (
	"fmt"

	"github.com/hirein/engine/internal/domain/model"
)

// Default classification constants, on the normalized [0,1] scale.
const (
	DefaultPassThreshold = 0.7

	defaultIntermediateCut = 0.4
	defaultAdvancedCut     = 0.6
	defaultExpertCut       = 0.8
)

// Option applies a configuration option to the Computer.
type Option func(*Computer)

// WithPassThreshold sets the minimum average score for a PASS verdict.
func WithPassThreshold(t float64) Option {
	return func(c *Computer) {
		if t > 0 && t <= 1 {
			c.passThreshold = t
		}
	}
}

// WithKnowledgeCuts sets the lower bounds of the Intermediate, Advanced and
// Expert buckets. Ignored unless strictly increasing and inside (0,1].
func WithKnowledgeCuts(intermediate, advanced, expert float64) Option {
	return func(c *Computer) {
		if intermediate > 0 && intermediate < advanced && advanced < expert && expert <= 1 {
			c.intermediateCut = intermediate
			c.advancedCut = advanced
			c.expertCut = expert
		}
	}
}

// Computer computes aggregate verdicts with configured thresholds.
type Computer struct {
	passThreshold   float64
	intermediateCut float64
	advancedCut     float64
	expertCut       float64
}

// NewComputer creates a Computer with default thresholds.
func NewComputer(opts ...Option) *Computer {
	c := &Computer{
		passThreshold:   DefaultPassThreshold,
		intermediateCut: defaultIntermediateCut,
		advancedCut:     defaultAdvancedCut,
		expertCut:       defaultExpertCut,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Summary holds the computed statistics for one interview.
type Summary struct {
	EvaluatedCount int
	TotalQuestions int

	AverageFactualAccuracy float64
	AverageCompleteness    float64
	AverageRelevance       float64
	AverageCoherence       float64
	AverageScore           float64

	PassStatus     model.PassStatus
	KnowledgeLevel model.KnowledgeLevel
}

// Compute aggregates the evaluations for one interview.
//
// totalQuestions is the number of chat turns asked, answered or not.
// The second return value is false when there is nothing to aggregate
// (no fully scored evaluation yet); that is a defined non-error outcome
// and no Summary is produced for it.
func (c *Computer) Compute(evals []model.Evaluation, totalQuestions int) (Summary, bool, error) {
	var (
		n   int
		sum model.DimensionScores
	)
	for _, ev := range evals {
		// Defensive: only evaluations that carry all four axes count.
		if ev.EvaluatedAt.IsZero() || !ev.Scores.Valid() {
			continue
		}
		n++
		sum.FactualAccuracy += ev.Scores.FactualAccuracy
		sum.Completeness += ev.Scores.Completeness
		sum.Relevance += ev.Scores.Relevance
		sum.Coherence += ev.Scores.Coherence
	}

	if n == 0 {
		return Summary{}, false, nil
	}
	if n > totalQuestions {
		return Summary{}, false, fmt.Errorf("%d evaluations for %d questions: %w", n, totalQuestions, ErrInconsistent)
	}

	s := Summary{
		EvaluatedCount:         n,
		TotalQuestions:         totalQuestions,
		AverageFactualAccuracy: sum.FactualAccuracy / float64(n),
		AverageCompleteness:    sum.Completeness / float64(n),
		AverageRelevance:       sum.Relevance / float64(n),
		AverageCoherence:       sum.Coherence / float64(n),
	}
	// Equal weighting across the four axes.
	s.AverageScore = (s.AverageFactualAccuracy + s.AverageCompleteness + s.AverageRelevance + s.AverageCoherence) / 4
	s.PassStatus = c.Pass(s.AverageScore)
	s.KnowledgeLevel = c.Knowledge(s.AverageScore)
	return s, true, nil
}

// Pass applies the configured pass threshold to an average score.
func (c *Computer) Pass(avg float64) model.PassStatus {
	if avg >= c.passThreshold {
		return model.PassStatusPass
	}
	return model.PassStatusFail
}

// Knowledge buckets an average score into the ordered knowledge scale.
func (c *Computer) Knowledge(avg float64) model.KnowledgeLevel {
	switch {
	case avg >= c.expertCut:
		return model.KnowledgeExpert
	case avg >= c.advancedCut:
		return model.KnowledgeAdvanced
	case avg >= c.intermediateCut:
		return model.KnowledgeIntermediate
	default:
		return model.KnowledgeBeginner
	}
}
