// Package judge defines the contract for scoring one candidate answer.
package judge

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/hirein/engine/internal/domain/model"
)

// Default judging configuration constants.
const (
	defaultMinLatency = 80 * time.Millisecond
	defaultMaxLatency = 150 * time.Millisecond

	quickScoreMax = 5
)

// Input is one question/answer pair to score.
type Input struct {
	Question string
	Answer   string
}

// Result is the judge's full evaluation of one answer.
type Result struct {
	Scores       model.DimensionScores
	Explanations model.DimensionExplanations
	// QuickScore is the coarse 1-5 rating attached to the chat turn.
	QuickScore  int
	FinalRemark string
	Tokens      model.TokenCounts
}

// Overall returns the equal-weight mean of the four axes.
func (r Result) Overall() float64 {
	return r.Scores.Mean()
}

// Judge scores an answer. Implementations may call an external model and
// must honor ctx for cancellation; a failed call means no evaluation is
// recorded, never a partial one.
type Judge interface {
	Score(ctx context.Context, in Input) (Result, error)
}

// QuickScore buckets a normalized [0,1] score onto the 1-5 turn scale.
func QuickScore(overall float64) int {
	s := int(math.Ceil(overall * quickScoreMax))
	if s < 1 {
		s = 1
	}
	if s > quickScoreMax {
		s = quickScoreMax
	}
	return s
}

// Option applies a configuration option to the InMemoryJudge.
type Option func(*InMemoryJudge)

// WithLatencyRange sets the simulated latency range.
func WithLatencyRange(minLatency, maxLatency time.Duration) Option {
	return func(j *InMemoryJudge) {
		if minLatency > 0 && maxLatency > minLatency {
			j.minLatency = minLatency
			j.maxLatency = maxLatency
		}
	}
}

// InMemoryJudge implements Judge with a deterministic heuristic and
// simulated model latency. Scores depend only on the input, so repeated
// judging of the same answer yields identical evaluations.
type InMemoryJudge struct {
	minLatency time.Duration
	maxLatency time.Duration
}

// NewInMemoryJudge creates a new in-memory judge with configuration options.
func NewInMemoryJudge(opts ...Option) *InMemoryJudge {
	j := &InMemoryJudge{
		minLatency: defaultMinLatency,
		maxLatency: defaultMaxLatency,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Score judges the answer, honoring ctx during the simulated latency.
func (j *InMemoryJudge) Score(ctx context.Context, in Input) (Result, error) {
	// Latency is derived from the input hash so it is reproducible too.
	h := fnv.New64a()
	_, _ = h.Write([]byte(in.Question))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(in.Answer))
	seed := h.Sum64()

	rng := rand.New(rand.NewSource(int64(seed))) //nolint:gosec // deterministic scoring, not crypto

	latency := j.minLatency + time.Duration(rng.Int63n(int64(j.maxLatency-j.minLatency)))
	select {
	case <-ctx.Done():
		return Result{}, fmt.Errorf("judge: %w", ctx.Err())
	case <-time.After(latency):
	}

	base := answerBase(in.Answer)
	res := Result{
		Scores: model.DimensionScores{
			FactualAccuracy: jitter(rng, base),
			Completeness:    jitter(rng, base),
			Relevance:       jitter(rng, base),
			Coherence:       jitter(rng, base),
		},
		Explanations: model.DimensionExplanations{
			FactualAccuracy: "heuristic estimate from answer length",
			Completeness:    "heuristic estimate from answer length",
			Relevance:       "heuristic estimate from answer length",
			Coherence:       "heuristic estimate from answer length",
		},
		Tokens: model.TokenCounts{
			Prompt:     len(strings.Fields(in.Question)),
			Completion: len(strings.Fields(in.Answer)),
		},
	}
	res.QuickScore = QuickScore(res.Overall())
	res.FinalRemark = fmt.Sprintf("heuristic evaluation, overall %.2f", res.Overall())
	return res, nil
}

// answerBase maps answer length onto [0.2, 0.9]: empty answers bottom out,
// ~40 words and up saturate.
func answerBase(answer string) float64 {
	words := len(strings.Fields(answer))
	if words == 0 {
		return 0.2
	}
	base := 0.2 + 0.7*math.Min(1, float64(words)/40)
	return base
}

func jitter(rng *rand.Rand, base float64) float64 {
	v := base + (rng.Float64()-0.5)*0.1
	return math.Max(0, math.Min(1, v))
}
