package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/hirein/engine/internal/domain/judge"
	"github.com/hirein/engine/internal/domain/model"
	"github.com/hirein/engine/pkg/logger"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

// stubJudge returns a canned result or error.
type stubJudge struct {
	res judge.Result
	err error
}

func (s *stubJudge) Score(context.Context, judge.Input) (judge.Result, error) {
	return s.res, s.err
}

// captureRecorder collects recorded outcomes.
type captureRecorder struct {
	mu      sync.Mutex
	events  []Event
	results []judge.Result
	err     error
}

func (c *captureRecorder) RecordJudgedAnswer(_ context.Context, e Event, res judge.Result) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
	c.results = append(c.results, res)
	return c.err
}

func (c *captureRecorder) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

// chanQueue adapts a raw channel to the worker's queue contract.
type chanQueue chan Event

func (q chanQueue) Dequeue(context.Context) <-chan Event { return q }

func okResult() judge.Result {
	return judge.Result{
		Scores: model.DimensionScores{
			FactualAccuracy: 0.8, Completeness: 0.8, Relevance: 0.8, Coherence: 0.8,
		},
		QuickScore: 4,
	}
}

func TestJudgeWorker_ProcessesEvent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := make(chanQueue, 1)
	rec := &captureRecorder{}
	w := NewJudgeWorker(chanQueue(q), &stubJudge{res: okResult()}, rec, WithName("test-worker"))

	go w.Run(ctx)

	q <- Event{TurnID: "t-1", InterviewID: "iv-1", Question: "q", Answer: "a"}

	deadline := time.After(2 * time.Second)
	for rec.count() == 0 {
		select {
		case <-deadline:
			t.Fatal("event never recorded")
		case <-time.After(5 * time.Millisecond):
		}
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.events[0].TurnID != "t-1" {
		t.Errorf("wrong event recorded: %+v", rec.events[0])
	}
	if rec.results[0].QuickScore != 4 {
		t.Errorf("wrong result recorded: %+v", rec.results[0])
	}
}

func TestJudgeWorker_JudgeFailureSkipsRecording(t *testing.T) {
	ctx := context.Background()

	rec := &captureRecorder{}
	w := NewJudgeWorker(chanQueue(make(chan Event)), &stubJudge{err: judge.ErrUnavailable}, rec)

	err := w.processEvent(ctx, Event{TurnID: "t-1"})
	if !errors.Is(err, judge.ErrUnavailable) {
		t.Fatalf("expected judge error, got %v", err)
	}
	if rec.count() != 0 {
		t.Error("failed judging must not reach the recorder")
	}
}

func TestJudgeWorker_RecorderErrorPropagates(t *testing.T) {
	ctx := context.Background()

	boom := errors.New("store down")
	rec := &captureRecorder{err: boom}
	w := NewJudgeWorker(chanQueue(make(chan Event)), &stubJudge{res: okResult()}, rec)

	if err := w.processEvent(ctx, Event{TurnID: "t-1"}); !errors.Is(err, boom) {
		t.Fatalf("expected recorder error, got %v", err)
	}
}

func TestJudgeWorker_Shutdown(t *testing.T) {
	ctx := context.Background()
	w := NewJudgeWorker(chanQueue(make(chan Event)), &stubJudge{res: okResult()}, &captureRecorder{})

	go w.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := w.Shutdown(shutdownCtx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestPool_StartAndStop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := make(chanQueue, 8)
	rec := &captureRecorder{}
	pool := NewPool(4, chanQueue(q), &stubJudge{res: okResult()}, rec)

	pool.Start(ctx)

	for i := 0; i < 8; i++ {
		q <- Event{TurnID: "t"}
	}

	deadline := time.After(2 * time.Second)
	for rec.count() < 8 {
		select {
		case <-deadline:
			t.Fatalf("expected 8 recorded events, got %d", rec.count())
		case <-time.After(5 * time.Millisecond):
		}
	}

	pool.Stop()
}
