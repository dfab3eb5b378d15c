// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/hirein/engine/internal/domain/lifecycle"
)

// InterviewType enumerates the interview formats the platform schedules.
type InterviewType string

// Interview types.
const (
	TypePhone      InterviewType = "PHONE"
	TypeVideo      InterviewType = "VIDEO"
	TypeInPerson   InterviewType = "IN_PERSON"
	TypeTechnical  InterviewType = "TECHNICAL"
	TypeBehavioral InterviewType = "BEHAVIORAL"
	TypePanel      InterviewType = "PANEL"
)

// DimensionScores holds the four quality axes of a judged answer.
// Each axis is normalized to [0,1].
type DimensionScores struct {
	FactualAccuracy float64
	Completeness    float64
	Relevance       float64
	Coherence       float64
}

// Mean returns the equal-weight average of the four axes.
func (d DimensionScores) Mean() float64 {
	return (d.FactualAccuracy + d.Completeness + d.Relevance + d.Coherence) / 4
}

// Valid reports whether every axis sits inside [0,1].
func (d DimensionScores) Valid() bool {
	for _, v := range []float64{d.FactualAccuracy, d.Completeness, d.Relevance, d.Coherence} {
		if v < 0 || v > 1 {
			return false
		}
	}
	return true
}

// DimensionExplanations carries the judge's free-text rationale per axis.
type DimensionExplanations struct {
	FactualAccuracy string
	Completeness    string
	Relevance       string
	Coherence       string
}

// TokenCounts tracks judge token usage for one evaluation.
type TokenCounts struct {
	Prompt     int
	Completion int
}

// Evaluation is one scored answer. Immutable once recorded; removed only by
// cascading deletion of its interview.
type Evaluation struct {
	ID           string
	InterviewID  string
	Question     string
	Answer       string
	Scores       DimensionScores
	Explanations DimensionExplanations
	// Score is derived: the mean of the four axes at record time.
	Score       float64
	Tokens      TokenCounts
	EvaluatedAt time.Time
}

// ChatTurn is one question/answer exchange in an interview's session.
// Answer and Score stay nil until the candidate answers and the judge
// scores; Level is a strictly increasing sequence number starting at 1.
type ChatTurn struct {
	ID          string
	InterviewID string
	Question    string
	Answer      *string
	Score       *int
	Level       int
	AskedAt     time.Time
	AnsweredAt  *time.Time
}

// Answered reports whether the turn has received its one answer.
func (t ChatTurn) Answered() bool {
	return t.Answer != nil
}

// PassStatus is the aggregate verdict for an interview.
type PassStatus string

// Pass statuses.
const (
	PassStatusPass PassStatus = "PASS"
	PassStatusFail PassStatus = "FAIL"
)

// KnowledgeLevel is the ordered classification of an interview's average score.
type KnowledgeLevel string

// Knowledge levels, weakest to strongest.
const (
	KnowledgeBeginner     KnowledgeLevel = "BEGINNER"
	KnowledgeIntermediate KnowledgeLevel = "INTERMEDIATE"
	KnowledgeAdvanced     KnowledgeLevel = "ADVANCED"
	KnowledgeExpert       KnowledgeLevel = "EXPERT"
)

// InterviewResult is the aggregation output; at most one per interview.
// Candidate, application, and job ids are denormalized for query locality.
type InterviewResult struct {
	InterviewID   string
	CandidateID   string
	ApplicationID string
	JobID         string

	EvaluatedCount int
	TotalQuestions int

	AverageFactualAccuracy float64
	AverageCompleteness    float64
	AverageRelevance       float64
	AverageCoherence       float64
	AverageScore           float64

	PassStatus      PassStatus
	SummaryResult   string
	KnowledgeLevel  KnowledgeLevel
	Recommendations string

	ComputedAt time.Time
}

// Interview is the scheduling and status envelope around one session.
type Interview struct {
	ID            string
	CandidateID   string
	ApplicationID string
	JobID         string
	ScheduledByID string
	Type          InterviewType
	Status        lifecycle.InterviewStatus

	ScheduledAt time.Time
	Duration    time.Duration

	JoinToken     string
	TokenExpiry   time.Time
	TokenConsumed bool

	Feedback string
	Rating   int

	CreatedAt   time.Time
	CompletedAt *time.Time
}

// Application is the hiring-pipeline envelope, one per (job, candidate) pair.
type Application struct {
	ID          string
	JobID       string
	CandidateID string
	Status      lifecycle.ApplicationStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// AnswerEvent is the payload queued for asynchronous judging after a
// candidate submits an answer.
type AnswerEvent struct {
	TurnID      string
	InterviewID string
	Question    string
	Answer      string
	SubmittedAt time.Time
}
