package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hirein/engine/internal/domain/lifecycle"
	"github.com/hirein/engine/internal/domain/model"
	"github.com/hirein/engine/internal/domain/token"
	"github.com/hirein/engine/pkg/metrics"
)

// In-memory Store implementation.
//
// Every interview maps to one record that owns its session flag, turns,
// evaluations, and result slot. Mutations on one interview serialize on the
// record mutex; different interviews never contend. Turn levels are assigned
// inside that critical section, so they reflect commit order and are
// gap-free by construction.

// interviewRecord bundles an interview with everything it owns.
type interviewRecord struct {
	mu sync.Mutex

	interview model.Interview

	sessionOpen bool
	turns       []model.ChatTurn
	turnIndex   map[string]int

	evaluations []model.Evaluation

	result             *model.InterviewResult
	nothingToAggregate bool
}

// MemStore implements Store with in-process maps.
type MemStore struct {
	mu           sync.RWMutex
	interviews   map[string]*interviewRecord
	applications map[string]model.Application

	// turnOwner maps turn ids to their interview. Only taken while no
	// record mutex is held.
	turnsMu   sync.RWMutex
	turnOwner map[string]string

	now func() time.Time
}

// MemOption applies a configuration option to the MemStore.
type MemOption func(*MemStore)

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) MemOption {
	return func(s *MemStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewMemStore creates an empty in-memory store.
func NewMemStore(_ context.Context, opts ...MemOption) *MemStore {
	s := &MemStore{
		interviews:   make(map[string]*interviewRecord),
		applications: make(map[string]model.Application),
		turnOwner:    make(map[string]string),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// record looks up the interview record or fails with ErrNotFound.
func (s *MemStore) record(id string) (*interviewRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.interviews[id]
	if !ok {
		return nil, fmt.Errorf("interview %s: %w", id, ErrNotFound)
	}
	return rec, nil
}

// CreateApplication stores a new application.
func (s *MemStore) CreateApplication(_ context.Context, app model.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.applications[app.ID]; ok {
		return fmt.Errorf("application %s: %w", app.ID, ErrAlreadyExists)
	}
	if app.CreatedAt.IsZero() {
		app.CreatedAt = s.now()
	}
	app.UpdatedAt = app.CreatedAt
	s.applications[app.ID] = app
	return nil
}

// GetApplication returns a copy of the stored application.
func (s *MemStore) GetApplication(_ context.Context, id string) (model.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	app, ok := s.applications[id]
	if !ok {
		return model.Application{}, fmt.Errorf("application %s: %w", id, ErrNotFound)
	}
	return app, nil
}

// UpdateApplication applies mutate under the store lock.
func (s *MemStore) UpdateApplication(_ context.Context, id string, mutate func(*model.Application) error) (model.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.applications[id]
	if !ok {
		return model.Application{}, fmt.Errorf("application %s: %w", id, ErrNotFound)
	}
	if err := mutate(&app); err != nil {
		return model.Application{}, err
	}
	app.UpdatedAt = s.now()
	s.applications[id] = app
	return app, nil
}

// CreateInterview stores a new interview with an empty ledger and result slot.
func (s *MemStore) CreateInterview(_ context.Context, iv model.Interview) error {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.interviews[iv.ID]; ok {
		return fmt.Errorf("interview %s: %w", iv.ID, ErrAlreadyExists)
	}
	if iv.CreatedAt.IsZero() {
		iv.CreatedAt = s.now()
	}
	if iv.Status == "" {
		iv.Status = lifecycle.InterviewNotScheduled
	}
	s.interviews[iv.ID] = &interviewRecord{
		interview: iv,
		turnIndex: make(map[string]int),
	}
	metrics.UpdateInterviewsTotal(len(s.interviews))
	return nil
}

// GetInterview returns a copy of the stored interview.
func (s *MemStore) GetInterview(_ context.Context, id string) (model.Interview, error) {
	rec, err := s.record(id)
	if err != nil {
		return model.Interview{}, err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.interview, nil
}

// UpdateInterview applies mutate atomically on the interview envelope.
func (s *MemStore) UpdateInterview(_ context.Context, id string, mutate func(*model.Interview) error) (model.Interview, error) {
	rec, err := s.record(id)
	if err != nil {
		return model.Interview{}, err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	iv := rec.interview
	if err := mutate(&iv); err != nil {
		return model.Interview{}, err
	}
	rec.interview = iv
	return iv, nil
}

// DeleteInterview removes the interview and everything it owns.
func (s *MemStore) DeleteInterview(_ context.Context, id string) error {
	s.mu.Lock()
	rec, ok := s.interviews[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("interview %s: %w", id, ErrNotFound)
	}
	delete(s.interviews, id)
	metrics.UpdateInterviewsTotal(len(s.interviews))
	s.mu.Unlock()

	rec.mu.Lock()
	ids := make([]string, 0, len(rec.turns))
	for _, t := range rec.turns {
		ids = append(ids, t.ID)
	}
	rec.mu.Unlock()

	s.turnsMu.Lock()
	for _, turnID := range ids {
		delete(s.turnOwner, turnID)
	}
	s.turnsMu.Unlock()
	return nil
}

// ConsumeJoinToken validates tok and commits consumption together with the
// JOINED transition. Mismatched tokens fail with the generic rejection kind;
// reuse and expiry surface their specific kinds for diagnostics.
func (s *MemStore) ConsumeJoinToken(_ context.Context, interviewID, tok string, now time.Time) (model.Interview, error) {
	rec, err := s.record(interviewID)
	if err != nil {
		return model.Interview{}, err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()

	iv := rec.interview
	if iv.JoinToken == "" || tok != iv.JoinToken {
		return model.Interview{}, fmt.Errorf("interview %s: %w", interviewID, token.ErrRejected)
	}
	if iv.TokenConsumed {
		return model.Interview{}, fmt.Errorf("interview %s: %w", interviewID, token.ErrConsumed)
	}
	if token.Expired(iv.TokenExpiry, now) {
		return model.Interview{}, fmt.Errorf("interview %s: %w", interviewID, token.ErrExpired)
	}
	next, err := lifecycle.NextInterview(iv.Status, lifecycle.EventJoin)
	if err != nil {
		return model.Interview{}, err
	}

	iv.TokenConsumed = true
	iv.Status = next
	rec.interview = iv
	metrics.RecordTokenConsumed()
	return iv, nil
}

// StartSession binds the single chat session for the interview.
func (s *MemStore) StartSession(_ context.Context, interviewID string) error {
	rec, err := s.record(interviewID)
	if err != nil {
		return err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.sessionOpen {
		return fmt.Errorf("interview %s: %w", interviewID, ErrDuplicateSession)
	}
	rec.sessionOpen = true
	return nil
}

// AppendTurn appends the next question. Level assignment happens inside the
// record critical section; concurrent appends commit in some order and the
// levels follow that order without gaps.
func (s *MemStore) AppendTurn(_ context.Context, interviewID, question string) (model.ChatTurn, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Milliseconds()))
	}()

	rec, err := s.record(interviewID)
	if err != nil {
		return model.ChatTurn{}, err
	}

	rec.mu.Lock()
	if !rec.sessionOpen {
		rec.mu.Unlock()
		return model.ChatTurn{}, fmt.Errorf("interview %s has no chat session: %w", interviewID, ErrNotFound)
	}
	turn := model.ChatTurn{
		ID:          uuid.NewString(),
		InterviewID: interviewID,
		Question:    question,
		Level:       len(rec.turns) + 1,
		AskedAt:     s.now(),
	}
	rec.turnIndex[turn.ID] = len(rec.turns)
	rec.turns = append(rec.turns, turn)
	rec.mu.Unlock()

	// Registered after the record mutex is released; the id escapes to the
	// caller only on return, so no lookup can race this.
	s.turnsMu.Lock()
	s.turnOwner[turn.ID] = interviewID
	s.turnsMu.Unlock()

	return turn, nil
}

// owner resolves a turn id to its interview record.
func (s *MemStore) owner(turnID string) (*interviewRecord, error) {
	s.turnsMu.RLock()
	interviewID, ok := s.turnOwner[turnID]
	s.turnsMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("turn %s: %w", turnID, ErrNotFound)
	}
	return s.record(interviewID)
}

// RecordAnswer sets the turn's one answer. The quick score may arrive with
// the answer or later via ScoreTurn once the judge finishes.
func (s *MemStore) RecordAnswer(_ context.Context, turnID, answer string, score *int) (model.ChatTurn, error) {
	rec, err := s.owner(turnID)
	if err != nil {
		return model.ChatTurn{}, err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()

	idx, ok := rec.turnIndex[turnID]
	if !ok {
		return model.ChatTurn{}, fmt.Errorf("turn %s: %w", turnID, ErrNotFound)
	}
	turn := rec.turns[idx]
	if turn.Answered() {
		return model.ChatTurn{}, fmt.Errorf("turn %s: %w", turnID, ErrAlreadyAnswered)
	}
	now := s.now()
	turn.Answer = &answer
	turn.AnsweredAt = &now
	if score != nil {
		v := *score
		turn.Score = &v
	}
	rec.turns[idx] = turn
	return turn, nil
}

// ScoreTurn attaches the judge's quick score to an answered turn.
func (s *MemStore) ScoreTurn(_ context.Context, turnID string, score int) (model.ChatTurn, error) {
	rec, err := s.owner(turnID)
	if err != nil {
		return model.ChatTurn{}, err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()

	idx, ok := rec.turnIndex[turnID]
	if !ok {
		return model.ChatTurn{}, fmt.Errorf("turn %s: %w", turnID, ErrNotFound)
	}
	turn := rec.turns[idx]
	if !turn.Answered() {
		return model.ChatTurn{}, fmt.Errorf("turn %s not answered: %w", turnID, ErrNotFound)
	}
	if turn.Score != nil {
		return model.ChatTurn{}, fmt.Errorf("turn %s: %w", turnID, ErrAlreadyScored)
	}
	turn.Score = &score
	rec.turns[idx] = turn
	return turn, nil
}

// GetTurn returns a copy of one turn.
func (s *MemStore) GetTurn(_ context.Context, turnID string) (model.ChatTurn, error) {
	rec, err := s.owner(turnID)
	if err != nil {
		return model.ChatTurn{}, err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	idx, ok := rec.turnIndex[turnID]
	if !ok {
		return model.ChatTurn{}, fmt.Errorf("turn %s: %w", turnID, ErrNotFound)
	}
	return rec.turns[idx], nil
}

// ListTurns returns the turns ordered by level.
func (s *MemStore) ListTurns(_ context.Context, interviewID string) ([]model.ChatTurn, error) {
	rec, err := s.record(interviewID)
	if err != nil {
		return nil, err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	out := make([]model.ChatTurn, len(rec.turns))
	copy(out, rec.turns)
	return out, nil
}

// RecordEvaluation appends one immutable scored answer.
func (s *MemStore) RecordEvaluation(_ context.Context, ev model.Evaluation) (model.Evaluation, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Milliseconds()))
	}()

	if !ev.Scores.Valid() {
		return model.Evaluation{}, fmt.Errorf("interview %s: %w", ev.InterviewID, ErrInvalidScore)
	}
	rec, err := s.record(ev.InterviewID)
	if err != nil {
		return model.Evaluation{}, err
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	ev.ID = uuid.NewString()
	if ev.EvaluatedAt.IsZero() {
		ev.EvaluatedAt = s.now()
	}
	ev.Score = ev.Scores.Mean()
	rec.evaluations = append(rec.evaluations, ev)
	metrics.RecordEvaluationStored()
	return ev, nil
}

// ListEvaluations returns evaluations in stable creation order.
func (s *MemStore) ListEvaluations(_ context.Context, interviewID string) ([]model.Evaluation, error) {
	rec, err := s.record(interviewID)
	if err != nil {
		return nil, err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	out := make([]model.Evaluation, len(rec.evaluations))
	copy(out, rec.evaluations)
	sort.SliceStable(out, func(i, j int) bool { return out[i].EvaluatedAt.Before(out[j].EvaluatedAt) })
	return out, nil
}

// Snapshot reads evaluations and turns under one lock.
func (s *MemStore) Snapshot(_ context.Context, interviewID string) ([]model.Evaluation, []model.ChatTurn, error) {
	rec, err := s.record(interviewID)
	if err != nil {
		return nil, nil, err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	evals := make([]model.Evaluation, len(rec.evaluations))
	copy(evals, rec.evaluations)
	turns := make([]model.ChatTurn, len(rec.turns))
	copy(turns, rec.turns)
	return evals, turns, nil
}

// UpsertResult replaces the interview's whole result row.
func (s *MemStore) UpsertResult(_ context.Context, res model.InterviewResult) error {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Milliseconds()))
	}()

	rec, err := s.record(res.InterviewID)
	if err != nil {
		return err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if res.ComputedAt.IsZero() {
		res.ComputedAt = s.now()
	}
	// Whole-row replace, never a field-by-field patch.
	rec.result = &res
	metrics.RecordResultUpsert()
	return nil
}

// GetResult returns a copy of the stored result.
func (s *MemStore) GetResult(_ context.Context, interviewID string) (model.InterviewResult, error) {
	rec, err := s.record(interviewID)
	if err != nil {
		return model.InterviewResult{}, err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.result == nil {
		return model.InterviewResult{}, fmt.Errorf("result for interview %s: %w", interviewID, ErrNotFound)
	}
	return *rec.result, nil
}

// MarkNothingToAggregate records the zero-questions sentinel.
func (s *MemStore) MarkNothingToAggregate(_ context.Context, interviewID string) error {
	rec, err := s.record(interviewID)
	if err != nil {
		return err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.nothingToAggregate = true
	return nil
}

// HasVerdict reports whether the COMPLETED gate is satisfied.
func (s *MemStore) HasVerdict(_ context.Context, interviewID string) (bool, error) {
	rec, err := s.record(interviewID)
	if err != nil {
		return false, err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.result != nil || rec.nothingToAggregate, nil
}

// Counts reports store sizes for monitoring.
func (s *MemStore) Counts(_ context.Context) (interviews, applications, results int) {
	s.mu.RLock()
	recs := make([]*interviewRecord, 0, len(s.interviews))
	for _, rec := range s.interviews {
		recs = append(recs, rec)
	}
	interviews = len(s.interviews)
	applications = len(s.applications)
	s.mu.RUnlock()

	for _, rec := range recs {
		rec.mu.Lock()
		if rec.result != nil {
			results++
		}
		rec.mu.Unlock()
	}
	return interviews, applications, results
}
