// Package repository defines the durable-state store interface and errors.
//
// The ledger, evaluations, and result for an interview are owned sub-objects
// of the interview record, keyed on its identity. The one-session-per-
// interview and one-result-per-interview invariants therefore hold
// structurally instead of relying on an after-the-fact uniqueness check.
package repository

import (
	"context"
	"time"

	"github.com/hirein/engine/internal/domain/model"
)

// Store provides read/write access to interviews, applications, chat
// sessions, evaluations, and aggregated results.
type Store interface {
	// Applications.
	CreateApplication(ctx context.Context, app model.Application) error
	GetApplication(ctx context.Context, id string) (model.Application, error)
	// UpdateApplication applies mutate atomically; when mutate errors the
	// stored record is left untouched and the error is returned unmodified.
	UpdateApplication(ctx context.Context, id string, mutate func(*model.Application) error) (model.Application, error)

	// Interviews.
	CreateInterview(ctx context.Context, iv model.Interview) error
	GetInterview(ctx context.Context, id string) (model.Interview, error)
	UpdateInterview(ctx context.Context, id string, mutate func(*model.Interview) error) (model.Interview, error)
	// DeleteInterview cascades: turns, evaluations, and the result go with it.
	DeleteInterview(ctx context.Context, id string) error
	// ConsumeJoinToken validates the supplied token and, in the same critical
	// section, marks it consumed and moves the interview to JOINED.
	ConsumeJoinToken(ctx context.Context, interviewID, tok string, now time.Time) (model.Interview, error)

	// Chat session ledger.
	StartSession(ctx context.Context, interviewID string) error
	AppendTurn(ctx context.Context, interviewID, question string) (model.ChatTurn, error)
	RecordAnswer(ctx context.Context, turnID, answer string, score *int) (model.ChatTurn, error)
	ScoreTurn(ctx context.Context, turnID string, score int) (model.ChatTurn, error)
	GetTurn(ctx context.Context, turnID string) (model.ChatTurn, error)
	ListTurns(ctx context.Context, interviewID string) ([]model.ChatTurn, error)

	// Evaluations.
	RecordEvaluation(ctx context.Context, ev model.Evaluation) (model.Evaluation, error)
	ListEvaluations(ctx context.Context, interviewID string) ([]model.Evaluation, error)
	// Snapshot returns evaluations and turns read under one lock, so the
	// aggregator sees a consistent view of both.
	Snapshot(ctx context.Context, interviewID string) ([]model.Evaluation, []model.ChatTurn, error)

	// Results.
	UpsertResult(ctx context.Context, res model.InterviewResult) error
	GetResult(ctx context.Context, interviewID string) (model.InterviewResult, error)
	// MarkNothingToAggregate records the zero-questions sentinel that, like a
	// stored result, unlocks the COMPLETED transition.
	MarkNothingToAggregate(ctx context.Context, interviewID string) error
	// HasVerdict reports whether a result or the sentinel exists.
	HasVerdict(ctx context.Context, interviewID string) (bool, error)

	// Counts reports store sizes for monitoring.
	Counts(ctx context.Context) (interviews, applications, results int)
}
