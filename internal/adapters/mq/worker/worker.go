// Package worker runs the asynchronous write path: it drains score events
// off the queue, resolves the current half-month leaderboard key, encodes
// the combined score, and upserts it into the board.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/pixelarc/rankboard/internal/domain/model"
	"github.com/pixelarc/rankboard/internal/domain/period"
	"github.com/pixelarc/rankboard/internal/domain/score"
	"github.com/pixelarc/rankboard/pkg/logger"
	"github.com/pixelarc/rankboard/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 4 // multiplier for runtime.NumCPU()
	workerShutdownTimeout   = 5 * time.Second
	poolShutdownTimeout     = 30 * time.Second
)

// Event abstracts what workers read off the queue.
type Event = model.ScoreEvent

// Board is the write side of the leaderboard store.
type Board interface {
	Upsert(ctx context.Context, key, member string, combined int64) error
}

// Queue defines how workers receive events.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Event
}

// Worker processes score events until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker for processing score events.
type InMemoryWorker struct {
	queue    Queue
	calendar *period.Calendar
	board    Board
	name     string

	// Shutdown control
	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, calendar *period.Calendar, board Board, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    queue,
		calendar: calendar,
		board:    board,
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
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	eventChan := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case event, ok := <-eventChan:
			if !ok {
				return
			}

			if err := w.processEvent(ctx, event); err != nil {
				w.logger.Error(ctx, "error processing event", logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// processEvent handles a single score event: key resolution, encoding, and
// the board write.
func (w *InMemoryWorker) processEvent(ctx context.Context, event Event) error { //nolint:gocritic // hugeParam: Event must be passed by value for channel semantics
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	key, periodEnd := w.calendar.RegularKey(event.Kind, true, event.OccurredAt)

	combined, err := score.Encode(event.Family, event.Metric, event.Rate, event.Trials, event.OccurredAt, periodEnd)
	if err != nil {
		metrics.RecordEncodeError()
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "encode_error")
		w.logger.Error(ctx, "encoding failed for event",
			logger.String("eventID", event.EventID),
			logger.String("key", key),
			logger.Error(err),
		)
		return fmt.Errorf("encode event %s: %w", event.EventID, err)
	}

	if err := w.board.Upsert(ctx, key, event.UserID, combined); err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "board_error")
		w.logger.Error(ctx, "board update failed for event",
			logger.String("eventID", event.EventID),
			logger.String("key", key),
			logger.Error(err),
		)
		return fmt.Errorf("upsert event %s: %w", event.EventID, err)
	}

	metrics.RecordEventProcessed()
	return nil
}

// Pool manages multiple workers.
type Pool struct {
	workers  []*InMemoryWorker
	queue    Queue
	calendar *period.Calendar
	board    Board

	shutdown chan struct{}

	logger logger.Logger
}

// NewPool creates a new worker pool. A workerCount below 1 defaults to a
// multiple of the CPU count.
func NewPool(workerCount int, queue Queue, calendar *period.Calendar, board Board) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	pool := &Pool{
		workers:  make([]*InMemoryWorker, workerCount),
		queue:    queue,
		calendar: calendar,
		board:    board,
		shutdown: make(chan struct{}),
		logger:   logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewInMemoryWorker(
			queue,
			calendar,
			board,
			WithName("worker-"+strconv.Itoa(i)),
		)
	}

	metrics.UpdateWorkerCount(workerCount)

	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, worker := range p.workers {
		go worker.Run(ctx)
	}
}

// Stop stops all workers, waiting briefly for each to drain.
func (p *Pool) Stop() {
	close(p.shutdown)

	for _, worker := range p.workers {
		close(worker.shutdown)
	}
	for _, worker := range p.workers {
		select {
		case <-worker.done:
		case <-time.After(workerShutdownTimeout):
		}
	}

	metrics.UpdateWorkerCount(0)
}

// Shutdown gracefully shuts down the entire worker pool: it closes the queue
// to stop intake, then waits for workers to finish in-flight events.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, worker := range p.workers {
		select {
		case <-worker.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}

	metrics.UpdateWorkerCount(0)
	return nil
}
