// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
//
// It owns the interview and application lifecycles, the asynchronous
// answer-judging pipeline, and the aggregation of evaluations into
// interview results.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	eventqueue "github.com/hirein/engine/internal/adapters/mq/queue"
	workerpool "github.com/hirein/engine/internal/adapters/mq/worker"
	"github.com/hirein/engine/internal/adapters/repository"
	"github.com/hirein/engine/internal/domain/guard"
	"github.com/hirein/engine/internal/domain/judge"
	"github.com/hirein/engine/internal/domain/lifecycle"
	"github.com/hirein/engine/internal/domain/model"
	"github.com/hirein/engine/internal/domain/narrative"
	"github.com/hirein/engine/internal/domain/token"
	"github.com/hirein/engine/internal/domain/verdict"
	"github.com/hirein/engine/pkg/logger"
	"github.com/hirein/engine/pkg/metrics"
)

// Service implements the API dependencies for the interview engine.
type Service struct {
	mu sync.RWMutex

	// Core components
	store    repository.Store
	queue    eventqueue.Queue
	judge    judge.Judge
	narrator narrative.Narrator
	notifier Notifier
	computer *verdict.Computer
	guard    *guard.Guard
	pool     *workerpool.Pool

	// appInterviews links applications to their scheduled interviews, for
	// the result gate on terminal application moves.
	appInterviews map[string][]string

	// Configuration
	workerCount     int
	queueSize       int
	passThreshold   float64
	intermediateCut float64
	advancedCut     float64
	expertCut       float64
	tokenTTL        time.Duration
	tokenLength     int
	// Judge latency configuration for the in-memory judge.
	judgeMinLatency time.Duration
	judgeMaxLatency time.Duration

	now func() time.Time

	// State
	started bool
	stopCh  chan struct{}

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of judging worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the answer-judging queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStore sets a custom store implementation.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithJudge sets a custom answer judge.
func WithJudge(j judge.Judge) Option {
	return func(s *Service) {
		if j != nil {
			s.judge = j
		}
	}
}

// WithNarrator sets a custom narrative generator.
func WithNarrator(n narrative.Narrator) Option {
	return func(s *Service) {
		if n != nil {
			s.narrator = n
		}
	}
}

// WithNotifier sets a custom notifier.
func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithPassThreshold sets the minimum average score for a PASS verdict.
func WithPassThreshold(t float64) Option {
	return func(s *Service) {
		if t > 0 && t <= 1 {
			s.passThreshold = t
		}
	}
}

// WithKnowledgeCuts sets the knowledge-level bucket bounds.
func WithKnowledgeCuts(intermediate, advanced, expert float64) Option {
	return func(s *Service) {
		if intermediate > 0 && intermediate < advanced && advanced < expert && expert <= 1 {
			s.intermediateCut = intermediate
			s.advancedCut = advanced
			s.expertCut = expert
		}
	}
}

// WithTokenTTL sets the join-token validity window.
func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.tokenTTL = ttl
		}
	}
}

// WithTokenLength sets the generated join-token length.
func WithTokenLength(length int) Option {
	return func(s *Service) {
		if length > 0 {
			s.tokenLength = length
		}
	}
}

// WithJudgeLatencyRange sets the simulated judge latency range.
func WithJudgeLatencyRange(minLatency, maxLatency time.Duration) Option {
	return func(s *Service) {
		if minLatency > 0 && maxLatency > minLatency {
			s.judgeMinLatency = minLatency
			s.judgeMaxLatency = maxLatency
		}
	}
}

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		appInterviews:   make(map[string][]string),
		workerCount:     runtime.NumCPU() * 2,
		queueSize:       10000,
		passThreshold:   verdict.DefaultPassThreshold,
		tokenTTL:        token.DefaultTTL,
		tokenLength:     token.DefaultLength,
		judgeMinLatency: 80 * time.Millisecond,
		judgeMaxLatency: 150 * time.Millisecond,
		now:             time.Now,
		stopCh:          make(chan struct{}),
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting interview engine...")

	if s.store == nil {
		s.store = repository.NewMemStore(ctx)
	}
	if s.queue == nil {
		s.queue = eventqueue.NewInMemoryQueue(
			eventqueue.WithCapacity(s.queueSize),
			eventqueue.WithBufferSize(s.queueSize),
		)
	}
	if s.judge == nil {
		s.judge = judge.NewInMemoryJudge(
			judge.WithLatencyRange(s.judgeMinLatency, s.judgeMaxLatency),
		)
	}
	if s.narrator == nil {
		s.narrator = narrative.NewTemplateNarrator()
	}
	if s.notifier == nil {
		s.notifier = NewLogNotifier()
	}

	computerOpts := []verdict.Option{verdict.WithPassThreshold(s.passThreshold)}
	if s.intermediateCut > 0 {
		computerOpts = append(computerOpts, verdict.WithKnowledgeCuts(s.intermediateCut, s.advancedCut, s.expertCut))
	}
	s.computer = verdict.NewComputer(computerOpts...)
	s.guard = guard.New()

	s.pool = workerpool.NewPool(s.workerCount, s.queue, s.judge, s)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "interview engine started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Float64("passThreshold", s.passThreshold),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping interview engine...")

	if s.pool != nil {
		s.pool.Stop()
	}
	if q, ok := s.queue.(*eventqueue.InMemoryQueue); ok {
		_ = q.Close()
	}

	select {
	case <-s.stopCh:
		// Channel already closed
	default:
		close(s.stopCh)
	}

	s.started = false
	s.logger.Info(context.Background(), "interview engine stopped")
}

// ---- Applications ----

// CreateApplication records a candidate applying to a job.
func (s *Service) CreateApplication(ctx context.Context, jobID, candidateID string) (model.Application, error) {
	app := model.Application{
		ID:          uuid.NewString(),
		JobID:       jobID,
		CandidateID: candidateID,
		Status:      lifecycle.ApplicationApplied,
		CreatedAt:   s.now(),
	}
	if err := s.store.CreateApplication(ctx, app); err != nil {
		return model.Application{}, err
	}
	s.logger.Debug(ctx, "application created",
		logger.String("applicationID", app.ID),
		logger.String("jobID", jobID),
		logger.String("candidateID", candidateID),
	)
	return app, nil
}

// GetApplication returns the stored application.
func (s *Service) GetApplication(ctx context.Context, id string) (model.Application, error) {
	return s.store.GetApplication(ctx, id)
}

// AdvanceApplication moves an application through its state machine.
// Terminal moves (offer, hire, reject) require a stored interview result
// once the application has a linked interview; a pre-interview rejection
// needs none.
func (s *Service) AdvanceApplication(ctx context.Context, id string, event lifecycle.ApplicationEvent) (model.Application, error) {
	if err := s.resultGate(ctx, id, event); err != nil {
		return model.Application{}, err
	}
	return s.store.UpdateApplication(ctx, id, func(app *model.Application) error {
		next, err := lifecycle.NextApplication(app.Status, event)
		if err != nil {
			metrics.RecordIllegalTransition()
			return err
		}
		metrics.RecordApplicationTransition(string(app.Status), string(next))
		app.Status = next
		return nil
	})
}

// resultGate blocks terminal application moves until at least one linked
// interview carries a verdict.
func (s *Service) resultGate(ctx context.Context, appID string, event lifecycle.ApplicationEvent) error {
	switch event {
	case lifecycle.EventAppOffer, lifecycle.EventAppHire, lifecycle.EventAppReject:
	default:
		return nil
	}

	s.mu.RLock()
	linked := append([]string(nil), s.appInterviews[appID]...)
	s.mu.RUnlock()

	if len(linked) == 0 {
		return nil
	}
	for _, interviewID := range linked {
		ok, err := s.store.HasVerdict(ctx, interviewID)
		if err == nil && ok {
			return nil
		}
	}
	return fmt.Errorf("application %s: %w", appID, ErrResultRequired)
}

// ---- Interviews ----

// ScheduleRequest carries the inputs for scheduling one interview.
type ScheduleRequest struct {
	ApplicationID string
	CandidateID   string
	JobID         string
	ScheduledByID string
	Type          model.InterviewType
	ScheduledAt   time.Time
	Duration      time.Duration
}

// ScheduleInterview creates a SCHEDULED interview with a fresh join token
// and moves the linked application to INTERVIEW.
func (s *Service) ScheduleInterview(ctx context.Context, req ScheduleRequest) (model.Interview, error) {
	// Flip the application first so an application that cannot be
	// interviewed never gets a dangling interview.
	if req.ApplicationID != "" {
		_, err := s.store.UpdateApplication(ctx, req.ApplicationID, func(app *model.Application) error {
			if app.Status == lifecycle.ApplicationInterview {
				return nil
			}
			next, terr := lifecycle.NextApplication(app.Status, lifecycle.EventAppInterview)
			if terr != nil {
				metrics.RecordIllegalTransition()
				return terr
			}
			metrics.RecordApplicationTransition(string(app.Status), string(next))
			app.Status = next
			return nil
		})
		if err != nil {
			return model.Interview{}, err
		}
	}

	tok, err := token.New(s.tokenLength)
	if err != nil {
		return model.Interview{}, fmt.Errorf("issue join token: %w", err)
	}
	now := s.now()
	status, err := lifecycle.NextInterview(lifecycle.InterviewNotScheduled, lifecycle.EventSchedule)
	if err != nil {
		return model.Interview{}, err
	}

	iv := model.Interview{
		ID:            uuid.NewString(),
		CandidateID:   req.CandidateID,
		ApplicationID: req.ApplicationID,
		JobID:         req.JobID,
		ScheduledByID: req.ScheduledByID,
		Type:          req.Type,
		Status:        status,
		ScheduledAt:   req.ScheduledAt,
		Duration:      req.Duration,
		JoinToken:     tok,
		TokenExpiry:   token.Expiry(now, s.tokenTTL),
		CreatedAt:     now,
	}
	if err := s.store.CreateInterview(ctx, iv); err != nil {
		return model.Interview{}, err
	}
	metrics.RecordInterviewTransition(string(lifecycle.InterviewNotScheduled), string(status))

	if req.ApplicationID != "" {
		s.mu.Lock()
		s.appInterviews[req.ApplicationID] = append(s.appInterviews[req.ApplicationID], iv.ID)
		s.mu.Unlock()
	}

	s.notify(ctx, NotifyScheduled, iv)
	return iv, nil
}

// transitionInterview applies one table-driven transition atomically.
func (s *Service) transitionInterview(ctx context.Context, id string, event lifecycle.InterviewEvent, mutate func(*model.Interview)) (model.Interview, error) {
	return s.store.UpdateInterview(ctx, id, func(iv *model.Interview) error {
		next, err := lifecycle.NextInterview(iv.Status, event)
		if err != nil {
			metrics.RecordIllegalTransition()
			return err
		}
		metrics.RecordInterviewTransition(string(iv.Status), string(next))
		iv.Status = next
		if mutate != nil {
			mutate(iv)
		}
		return nil
	})
}

// InviteCandidate sends the interview invitation.
func (s *Service) InviteCandidate(ctx context.Context, id string) (model.Interview, error) {
	iv, err := s.transitionInterview(ctx, id, lifecycle.EventInvite, nil)
	if err != nil {
		return model.Interview{}, err
	}
	s.notify(ctx, NotifyInvited, iv)
	return iv, nil
}

// ConfirmInterview records the candidate confirming attendance.
func (s *Service) ConfirmInterview(ctx context.Context, id string) (model.Interview, error) {
	iv, err := s.transitionInterview(ctx, id, lifecycle.EventConfirm, nil)
	if err != nil {
		return model.Interview{}, err
	}
	s.notify(ctx, NotifyConfirmed, iv)
	return iv, nil
}

// RescheduleInterview moves the interview to a new time and issues a fresh
// join token; the old token is dead regardless of its expiry.
func (s *Service) RescheduleInterview(ctx context.Context, id string, newTime time.Time) (model.Interview, error) {
	iv, err := s.store.UpdateInterview(ctx, id, func(iv *model.Interview) error {
		mid, terr := lifecycle.NextInterview(iv.Status, lifecycle.EventReschedule)
		if terr != nil {
			metrics.RecordIllegalTransition()
			return terr
		}
		next, terr := lifecycle.NextInterview(mid, lifecycle.EventSchedule)
		if terr != nil {
			metrics.RecordIllegalTransition()
			return terr
		}
		tok, terr := token.New(s.tokenLength)
		if terr != nil {
			return fmt.Errorf("issue join token: %w", terr)
		}
		metrics.RecordInterviewTransition(string(iv.Status), string(mid))
		metrics.RecordInterviewTransition(string(mid), string(next))
		iv.Status = next
		iv.ScheduledAt = newTime
		iv.JoinToken = tok
		iv.TokenExpiry = token.Expiry(s.now(), s.tokenTTL)
		iv.TokenConsumed = false
		return nil
	})
	if err != nil {
		return model.Interview{}, err
	}
	s.notify(ctx, NotifyRescheduled, iv)
	return iv, nil
}

// CancelInterview cancels from any non-terminal state.
func (s *Service) CancelInterview(ctx context.Context, id string) (model.Interview, error) {
	iv, err := s.transitionInterview(ctx, id, lifecycle.EventCancel, nil)
	if err != nil {
		return model.Interview{}, err
	}
	s.notify(ctx, NotifyCancelled, iv)
	return iv, nil
}

// JoinInterview consumes the join token and moves the interview to JOINED.
// Candidate-facing failures collapse to the generic rejection kind; reuse
// and expiry keep their specific kinds for server-side diagnostics.
func (s *Service) JoinInterview(ctx context.Context, id, tok string) (model.Interview, error) {
	if !token.ValidFormat(tok) {
		metrics.RecordJoinRejected()
		return model.Interview{}, fmt.Errorf("interview %s: %w", id, token.ErrRejected)
	}
	iv, err := s.store.ConsumeJoinToken(ctx, id, tok, s.now())
	if err != nil {
		metrics.RecordJoinRejected()
		return model.Interview{}, err
	}
	metrics.RecordInterviewTransition(string(lifecycle.InterviewScheduled), string(iv.Status))
	return iv, nil
}

// StartInterview opens the single chat session and moves to IN_PROGRESS.
func (s *Service) StartInterview(ctx context.Context, id string) (model.Interview, error) {
	iv, err := s.transitionInterview(ctx, id, lifecycle.EventStart, nil)
	if err != nil {
		return model.Interview{}, err
	}
	if err := s.store.StartSession(ctx, id); err != nil {
		return model.Interview{}, err
	}
	return iv, nil
}

// CompleteInterview closes the interview. The transition is gated on a
// stored result or the zero-questions sentinel; a last aggregation attempt
// runs first so an interview whose judging already finished completes
// without an explicit aggregate call.
func (s *Service) CompleteInterview(ctx context.Context, id string) (model.Interview, error) {
	var iv model.Interview
	err := s.guard.Do(ctx, id, func() error {
		ok, err := s.store.HasVerdict(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			if _, _, err := s.aggregateLocked(ctx, id); err != nil {
				return err
			}
			ok, err = s.store.HasVerdict(ctx, id)
			if err != nil {
				return err
			}
		}
		if !ok {
			return fmt.Errorf("interview %s: %w", id, ErrVerdictPending)
		}
		iv, err = s.transitionInterview(ctx, id, lifecycle.EventComplete, func(iv *model.Interview) {
			t := s.now()
			iv.CompletedAt = &t
		})
		return err
	})
	if err != nil {
		return model.Interview{}, err
	}
	s.notify(ctx, NotifyCompleted, iv)
	return iv, nil
}

// DeleteInterview removes the interview with its turns, evaluations, and
// result.
func (s *Service) DeleteInterview(ctx context.Context, id string) error {
	iv, err := s.store.GetInterview(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteInterview(ctx, id); err != nil {
		return err
	}
	if iv.ApplicationID != "" {
		s.mu.Lock()
		linked := s.appInterviews[iv.ApplicationID]
		for i, lid := range linked {
			if lid == id {
				s.appInterviews[iv.ApplicationID] = append(linked[:i], linked[i+1:]...)
				break
			}
		}
		s.mu.Unlock()
	}
	return nil
}

// GetInterview returns the stored interview.
func (s *Service) GetInterview(ctx context.Context, id string) (model.Interview, error) {
	return s.store.GetInterview(ctx, id)
}

// ---- Chat session ----

// AskQuestion appends the next question to the interview's session.
func (s *Service) AskQuestion(ctx context.Context, interviewID, question string) (model.ChatTurn, error) {
	return s.store.AppendTurn(ctx, interviewID, question)
}

// SubmitAnswer records the candidate's answer and queues it for judging.
// The answer is durable even when enqueueing fails; RetryJudging picks up
// answered, unscored turns later.
func (s *Service) SubmitAnswer(ctx context.Context, turnID, answer string) (model.ChatTurn, error) {
	turn, err := s.store.RecordAnswer(ctx, turnID, answer, nil)
	if err != nil {
		return model.ChatTurn{}, err
	}

	e := eventqueue.Event{
		TurnID:      turn.ID,
		InterviewID: turn.InterviewID,
		Question:    turn.Question,
		Answer:      answer,
		SubmittedAt: s.now(),
	}
	if !s.queue.Enqueue(ctx, e) {
		s.logger.Warn(ctx, "answer recorded but not enqueued",
			logger.String("turnID", turn.ID),
			logger.String("interviewID", turn.InterviewID),
		)
		return turn, fmt.Errorf("turn %s: %w", turnID, ErrQueueFull)
	}
	metrics.UpdateQueueSize(s.queue.Len(ctx))
	return turn, nil
}

// ListTurns returns the session's turns ordered by level.
func (s *Service) ListTurns(ctx context.Context, interviewID string) ([]model.ChatTurn, error) {
	return s.store.ListTurns(ctx, interviewID)
}

// RetryJudging re-enqueues answered turns the judge never scored.
// Returns how many turns were re-enqueued.
func (s *Service) RetryJudging(ctx context.Context, interviewID string) (int, error) {
	turns, err := s.store.ListTurns(ctx, interviewID)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, t := range turns {
		if !t.Answered() || t.Score != nil {
			continue
		}
		e := eventqueue.Event{
			TurnID:      t.ID,
			InterviewID: interviewID,
			Question:    t.Question,
			Answer:      *t.Answer,
			SubmittedAt: s.now(),
		}
		if s.queue.Enqueue(ctx, e) {
			n++
		}
	}
	return n, nil
}

// RecordJudgedAnswer persists one judged answer: the turn's quick score,
// the immutable evaluation, and a refreshed aggregate. Called by judging
// workers.
func (s *Service) RecordJudgedAnswer(ctx context.Context, e workerpool.Event, res judge.Result) error {
	if _, err := s.store.ScoreTurn(ctx, e.TurnID, res.QuickScore); err != nil {
		if errors.Is(err, repository.ErrAlreadyScored) {
			// Duplicate delivery after a retry raced the first judging run.
			s.logger.Debug(ctx, "turn already scored, skipping",
				logger.String("turnID", e.TurnID),
			)
			return nil
		}
		return err
	}

	ev := model.Evaluation{
		InterviewID:  e.InterviewID,
		Question:     e.Question,
		Answer:       e.Answer,
		Scores:       res.Scores,
		Explanations: res.Explanations,
		Tokens:       res.Tokens,
	}
	if _, err := s.store.RecordEvaluation(ctx, ev); err != nil {
		return err
	}

	_, _, err := s.Aggregate(ctx, e.InterviewID)
	return err
}

// ---- Evaluations and results ----

// ListEvaluations returns the interview's evaluations in creation order.
func (s *Service) ListEvaluations(ctx context.Context, interviewID string) ([]model.Evaluation, error) {
	return s.store.ListEvaluations(ctx, interviewID)
}

// GetResult returns the stored aggregate result.
func (s *Service) GetResult(ctx context.Context, interviewID string) (model.InterviewResult, error) {
	return s.store.GetResult(ctx, interviewID)
}

// Aggregate recomputes the interview result from its current evaluations.
// Idempotent; serialized per interview, parallel across interviews. The
// second return value is false when there was nothing to aggregate.
func (s *Service) Aggregate(ctx context.Context, interviewID string) (model.InterviewResult, bool, error) {
	var (
		res model.InterviewResult
		ok  bool
	)
	err := s.guard.Do(ctx, interviewID, func() error {
		var aerr error
		res, ok, aerr = s.aggregateLocked(ctx, interviewID)
		return aerr
	})
	return res, ok, err
}

// aggregateLocked runs one aggregation pass. Callers hold the interview's
// guard lock.
func (s *Service) aggregateLocked(ctx context.Context, interviewID string) (model.InterviewResult, bool, error) {
	start := time.Now()

	evals, turns, err := s.store.Snapshot(ctx, interviewID)
	if err != nil {
		metrics.RecordAggregationError()
		return model.InterviewResult{}, false, err
	}

	sum, ok, err := s.computer.Compute(evals, len(turns))
	if err != nil {
		metrics.RecordAggregationError()
		return model.InterviewResult{}, false, err
	}
	if !ok {
		if len(turns) == 0 {
			// Zero questions asked: record the sentinel so completion
			// is not blocked forever.
			if err := s.store.MarkNothingToAggregate(ctx, interviewID); err != nil {
				return model.InterviewResult{}, false, err
			}
			metrics.RecordNothingToAggregate()
		}
		return model.InterviewResult{}, false, nil
	}

	iv, err := s.store.GetInterview(ctx, interviewID)
	if err != nil {
		return model.InterviewResult{}, false, err
	}

	var nar narrative.Narrative
	if s.narrator != nil {
		n, nerr := s.narrator.Summarize(ctx, sum)
		if nerr != nil {
			// Narrative is optional; commit the numbers without it.
			s.logger.Warn(ctx, "narrative unavailable",
				logger.String("interviewID", interviewID),
				logger.Error(nerr),
			)
		} else {
			nar = n
		}
	}

	res := model.InterviewResult{
		InterviewID:   interviewID,
		CandidateID:   iv.CandidateID,
		ApplicationID: iv.ApplicationID,
		JobID:         iv.JobID,

		EvaluatedCount: sum.EvaluatedCount,
		TotalQuestions: sum.TotalQuestions,

		AverageFactualAccuracy: sum.AverageFactualAccuracy,
		AverageCompleteness:    sum.AverageCompleteness,
		AverageRelevance:       sum.AverageRelevance,
		AverageCoherence:       sum.AverageCoherence,
		AverageScore:           sum.AverageScore,

		PassStatus:      sum.PassStatus,
		SummaryResult:   nar.Summary,
		KnowledgeLevel:  sum.KnowledgeLevel,
		Recommendations: nar.Recommendations,

		ComputedAt: s.now(),
	}
	if err := s.store.UpsertResult(ctx, res); err != nil {
		metrics.RecordAggregationError()
		return model.InterviewResult{}, false, err
	}

	metrics.RecordAggregation()
	metrics.RecordAggregationLatency(float64(time.Since(start).Milliseconds()))
	return res, true, nil
}

// ---- Monitoring ----

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
	}

	if s.started {
		interviews, applications, results := s.store.Counts(ctx)
		queueLen := s.queue.Len(ctx)

		stats["interviews"] = interviews
		stats["applications"] = applications
		stats["results"] = results
		stats["queueLength"] = queueLen
		stats["guardedKeys"] = s.guard.Size()

		metrics.UpdateInterviewsTotal(interviews)
		metrics.UpdateResultsTotal(results)
		metrics.UpdateQueueSize(queueLen)
	}

	return stats
}
