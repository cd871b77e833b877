// Package worker drains the ingestion queue and records games.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/okian/riftbalance/internal/adapters/mq/queue"
	"github.com/okian/riftbalance/pkg/logger"
	"github.com/okian/riftbalance/pkg/metrics"
)

const poolShutdownTimeout = 30 * time.Second

// Recorder stores a game and folds it into player stats.
type Recorder interface {
	RecordGame(ctx context.Context, g queue.Event) error
}

// Queue defines how workers receive games.
type Queue interface {
	Dequeue() <-chan queue.Event
}

// FailureHandler is called when a game could not be recorded.
type FailureHandler func(ctx context.Context, g queue.Event, err error)

// InMemoryWorker records games read from a queue.
type InMemoryWorker struct {
	queue     Queue
	recorder  Recorder
	name      string
	onFailure FailureHandler

	processed *atomic.Int64
	failed    *atomic.Int64

	done   chan struct{}
	logger logger.Logger
}

// NewInMemoryWorker creates a worker with configuration options.
func NewInMemoryWorker(q Queue, rec Recorder, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:     q,
		recorder:  rec,
		name:      "worker",
		processed: new(atomic.Int64),
		failed:    new(atomic.Int64),
		done:      make(chan struct{}),
		logger:    logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run processes games until the queue is closed and drained or ctx is
// cancelled.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	games := w.queue.Dequeue()
	for {
		select {
		case <-ctx.Done():
			return
		case g, ok := <-games:
			if !ok {
				return
			}
			metrics.RecordQueueDequeue()
			if err := w.process(ctx, g); err != nil {
				w.logger.Error(ctx, "error recording game", logger.GameID(g.ID), logger.Error(err))
			}
		}
	}
}

// Done is closed once Run returns.
func (w *InMemoryWorker) Done() <-chan struct{} { return w.done }

func (w *InMemoryWorker) process(ctx context.Context, g queue.Event) error { //nolint:gocritic // hugeParam: events travel by value
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	if err := w.recorder.RecordGame(ctx, g); err != nil {
		w.failed.Add(1)
		metrics.RecordWorkerError()
		metrics.RecordGameRejected()
		metrics.RecordErrorByComponent("worker", "record_failed")
		if w.onFailure != nil {
			w.onFailure(ctx, g, err)
		}
		return fmt.Errorf("record game %s: %w", g.ID, err)
	}
	w.processed.Add(1)
	metrics.RecordGameRecorded()
	return nil
}

// Pool manages a fixed set of workers sharing one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue

	processed atomic.Int64
	failed    atomic.Int64
	started   atomic.Bool

	logger logger.Logger
}

// NewPool creates workerCount workers. Values < 1 default to the number
// of CPUs. opts are applied to every worker.
func NewPool(workerCount int, q Queue, rec Recorder, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}
	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := range p.workers {
		wopts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		w := NewInMemoryWorker(q, rec, wopts...)
		w.processed, w.failed = &p.processed, &p.failed
		p.workers[i] = w
	}
	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Start launches every worker.
func (p *Pool) Start(ctx context.Context) {
	if !p.started.CompareAndSwap(false, true) {
		return
	}
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Processed returns the number of games recorded successfully.
func (p *Pool) Processed() int64 { return p.processed.Load() }

// Failed returns the number of games that could not be recorded.
func (p *Pool) Failed() int64 { return p.failed.Load() }

// Shutdown closes the queue and waits for workers to drain it.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	if !p.started.Load() {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			return fmt.Errorf("%w: %w", ErrShutdownTimeout, shutdownCtx.Err())
		}
	}
	metrics.UpdateWorkerCount(0)
	return nil
}
