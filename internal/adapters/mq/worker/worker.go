// Package worker defines worker contracts for asynchronous answer judging.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/hirein/engine/internal/domain/judge"
	"github.com/hirein/engine/internal/domain/model"
	"github.com/hirein/engine/pkg/logger"
	"github.com/hirein/engine/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 4 // multiplier for runtime.NumCPU()
	workerShutdownTimeout   = 5 * time.Second
	poolShutdownTimeout     = 30 * time.Second
)

// Event is what workers read off the queue.
type Event = model.AnswerEvent

// Recorder persists the outcome of one judged answer: the turn's quick
// score, the evaluation record, and the refreshed interview result.
type Recorder interface {
	RecordJudgedAnswer(ctx context.Context, e Event, res judge.Result) error
}

// Queue defines how workers receive events.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Event
}

// Worker processes answer events using the provided judge and recorder.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	Shutdown(ctx context.Context) error
}

// JudgeWorker implements Worker for processing answer events.
type JudgeWorker struct {
	queue    Queue
	judge    judge.Judge
	recorder Recorder
	name     string

	shutdown chan struct{}
	stopOnce sync.Once
	done     chan struct{}

	logger logger.Logger
}

// NewJudgeWorker creates a new worker with configuration options.
func NewJudgeWorker(queue Queue, j judge.Judge, recorder Recorder, opts ...Option) *JudgeWorker {
	w := &JudgeWorker{
		queue:    queue,
		judge:    j,
		recorder: recorder,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *JudgeWorker) Run(ctx context.Context) {
	defer close(w.done)

	events := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case event, ok := <-events:
			if !ok {
				// Channel closed, worker should stop.
				return
			}
			if err := w.processEvent(ctx, event); err != nil {
				w.logger.Error(ctx, "error processing answer", logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker. Safe to call more than once.
func (w *JudgeWorker) Shutdown(ctx context.Context) error {
	w.stopOnce.Do(func() { close(w.shutdown) })
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// processEvent judges one answer and records the outcome. A judging failure
// leaves the turn unscored; the caller may re-enqueue it later.
func (w *JudgeWorker) processEvent(ctx context.Context, e Event) error {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	judgeStart := time.Now()
	res, err := w.judge.Score(ctx, judge.Input{Question: e.Question, Answer: e.Answer})
	metrics.RecordJudgeLatency(float64(time.Since(judgeStart).Milliseconds()))

	if err != nil {
		metrics.RecordJudgeError()
		metrics.RecordWorkerError()
		w.logger.Error(ctx, "judging failed, turn left unscored",
			logger.String("turnID", e.TurnID),
			logger.Error(err),
		)
		return fmt.Errorf("judge turn %s: %w", e.TurnID, err)
	}

	if err := w.recorder.RecordJudgedAnswer(ctx, e, res); err != nil {
		metrics.RecordWorkerError()
		w.logger.Error(ctx, "recording judged answer failed",
			logger.String("turnID", e.TurnID),
			logger.Error(err),
		)
		return fmt.Errorf("record judged answer for turn %s: %w", e.TurnID, err)
	}

	metrics.RecordTurnScored()
	return nil
}

// Pool manages multiple workers.
type Pool struct {
	workers []*JudgeWorker
	queue   Queue

	shutdown chan struct{}
	stopOnce sync.Once

	logger logger.Logger
}

// NewPool creates a new worker pool.
func NewPool(workerCount int, queue Queue, j judge.Judge, recorder Recorder) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	pool := &Pool{
		workers:  make([]*JudgeWorker, workerCount),
		queue:    queue,
		shutdown: make(chan struct{}),
		logger:   logger.Get().Named("worker-pool"),
	}
	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewJudgeWorker(
			queue,
			j,
			recorder,
			WithName("worker-"+strconv.Itoa(i)),
		)
	}

	metrics.UpdateWorkerCount(workerCount)
	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Stop gracefully stops all workers.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() { close(p.shutdown) })
	for _, w := range p.workers {
		ctx, cancel := context.WithTimeout(context.Background(), workerShutdownTimeout)
		_ = w.Shutdown(ctx)
		cancel()
	}
}

// Shutdown gracefully shuts down the entire pool, draining the queue first.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	p.stopOnce.Do(func() { close(p.shutdown) })

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		if err := w.Shutdown(shutdownCtx); err != nil {
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	return nil
}
