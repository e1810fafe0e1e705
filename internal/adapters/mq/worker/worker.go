// Package worker normalizes queued match requests and hands the results to
// the store and the live stream.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/unisignals/internal/adapters/mq/queue"
	"github.com/okian/unisignals/internal/adapters/repository"
	"github.com/okian/unisignals/internal/domain/model"
	"github.com/okian/unisignals/internal/domain/signals"
	"github.com/okian/unisignals/pkg/logger"
	"github.com/okian/unisignals/pkg/metrics"
)

const defaultWorkerMultiplier = 2

// Normalizer computes the signal bundle for one match.
type Normalizer interface {
	Normalize(in model.RawMatchInput) signals.UniversalSignals
}

// Saver persists a computed bundle. It returns repository.ErrStale when a
// newer revision of the match is already stored.
type Saver interface {
	Save(ctx context.Context, matchID string, revision uint64, s signals.UniversalSignals) error
}

// Publisher fans a stored bundle out to live subscribers.
type Publisher interface {
	Publish(matchID string, s signals.UniversalSignals)
}

// Queue defines how workers receive requests.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Request
}

// Worker processes requests until its queue closes or it is stopped.
type Worker interface {
	Run(ctx context.Context)
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue      Queue
	normalizer Normalizer
	saver      Saver
	publisher  Publisher
	name       string

	// called after each successful request; set by the pool
	onProcessed func()

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker.
func NewInMemoryWorker(q Queue, n Normalizer, s Saver, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:      q,
		normalizer: n,
		saver:      s,
		name:       "worker",
		shutdown:   make(chan struct{}),
		done:       make(chan struct{}),
		logger:     logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop. It returns when ctx is done, Shutdown is
// called or the queue is closed and drained.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	requests := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case r, ok := <-requests:
			if !ok {
				return
			}
			if err := w.process(ctx, r); err != nil {
				w.logger.Error(ctx, "error processing match", logger.String("match_id", r.MatchID), logger.Error(err))
			}
		}
	}
}

// Shutdown stops the worker and waits for its loop to exit.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *InMemoryWorker) process(ctx context.Context, r queue.Request) error { //nolint:gocritic // hugeParam: value received from channel
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	out := w.normalizer.Normalize(r.Input)
	metrics.RecordNormalization(
		string(out.Sport), string(out.Confidence), string(out.Display.Edge.Direction),
		out.Display.Edge.Percentage, out.ClarityScore,
		float64(time.Since(start).Microseconds())/1000,
	)

	err := w.saver.Save(ctx, r.MatchID, r.Revision, out)
	if errors.Is(err, repository.ErrStale) {
		w.logger.Debug(ctx, "stale revision skipped",
			logger.String("match_id", r.MatchID),
			logger.Int("revision", int(r.Revision)),
		)
		return nil
	}
	if err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "store_error")
		return fmt.Errorf("save match %s: %w", r.MatchID, err)
	}

	if w.publisher != nil {
		w.publisher.Publish(r.MatchID, out)
	}
	if w.onProcessed != nil {
		w.onProcessed()
	}

	w.logger.Debug(ctx, "match normalized",
		logger.String("match_id", r.MatchID),
		logger.String("sport", string(out.Sport)),
		logger.Int("clarity", out.ClarityScore),
	)
	return nil
}

// Pool manages multiple workers.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue

	cancel    context.CancelFunc
	processed atomic.Int64

	logger logger.Logger
}

// NewPool creates a pool of workerCount workers. workerCount < 1 selects a
// CPU-based default.
func NewPool(workerCount int, q Queue, n Normalizer, s Saver, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := 0; i < workerCount; i++ {
		wopts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		w := NewInMemoryWorker(q, n, s, wopts...)
		w.onProcessed = func() { p.processed.Add(1) }
		p.workers[i] = w
	}

	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Start launches every worker.
func (p *Pool) Start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	var active atomic.Int64
	for _, w := range p.workers {
		go func(w *InMemoryWorker) {
			metrics.UpdateWorkerActiveCount(int(active.Add(1)))
			defer func() { metrics.UpdateWorkerActiveCount(int(active.Add(-1))) }()
			w.Run(runCtx)
		}(w)
	}
	p.logger.Info(ctx, "worker pool started", logger.Int("workers", len(p.workers)))
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Processed returns how many requests were normalized and stored.
func (p *Pool) Processed() int64 {
	return p.processed.Load()
}

// Shutdown closes the queue and waits for the workers to drain it. If ctx
// expires first the remaining workers are cancelled.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	var timedOut bool
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-ctx.Done():
			timedOut = true
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
		if timedOut {
			break
		}
	}
	if p.cancel != nil {
		p.cancel()
	}
	if timedOut {
		return fmt.Errorf("worker pool shutdown: %w", ctx.Err())
	}
	return nil
}
