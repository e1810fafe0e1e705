// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/unisignals/internal/adapters/http/api"
	"github.com/okian/unisignals/internal/adapters/mq/queue"
	"github.com/okian/unisignals/internal/adapters/mq/worker"
	"github.com/okian/unisignals/internal/adapters/repository"
	"github.com/okian/unisignals/internal/adapters/stream"
	"github.com/okian/unisignals/internal/domain/dedupe"
	"github.com/okian/unisignals/internal/domain/model"
	"github.com/okian/unisignals/internal/domain/signals"
	"github.com/okian/unisignals/pkg/logger"
	"github.com/okian/unisignals/pkg/metrics"
)

// matchNamespace seeds deterministic match IDs derived from fingerprints.
var matchNamespace = uuid.MustParse("8f0c6c1e-3b7a-5d51-9a4e-6f2d0c7b1a93")

// ErrNotStarted is returned by operations that need a running service.
var ErrNotStarted = errors.New("service not started")

// Service implements the API dependencies for the signals engine.
type Service struct {
	mu sync.RWMutex

	// Core components
	store   repository.Store
	deduper dedupe.Deduper
	queue   *queue.InMemoryQueue
	pool    *worker.Pool
	hub     *stream.Hub
	engine  signals.Engine

	// Configuration
	workerCount  int
	queueSize    int
	dedupeSize   int
	streamBuffer int

	// State
	started    bool
	startedAt  time.Time
	revision   atomic.Uint64 // orders resubmissions of one match
	cancel     context.CancelFunc
	hubStopped chan struct{}

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the submission queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many match IDs the deduper remembers.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithStreamBuffer sets the per-client websocket send buffer.
func WithStreamBuffer(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.streamBuffer = n
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:  runtime.NumCPU() * 2,
		queueSize:    10_000,
		dedupeSize:   100_000,
		streamBuffer: 64,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start builds the pipeline and launches the workers and the stream hub.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting signals service...")

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel

	s.store = repository.NewTreapStore()
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.hub = stream.NewHub(stream.WithBuffer(s.streamBuffer))

	s.hubStopped = make(chan struct{})
	go func(done chan struct{}) {
		defer close(done)
		s.hub.Run(runCtx)
	}(s.hubStopped)

	s.pool = worker.NewPool(s.workerCount, s.queue, s.engine, s.store, worker.WithPublisher(s.hub))
	s.pool.Start(runCtx)

	metrics.UpdateQueueCapacity(s.queueSize)

	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "signals service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queue_size", s.queueSize),
		logger.Int("dedupe_size", s.dedupeSize),
	)
	return nil
}

// Stop drains the queue, stops the workers and disconnects stream clients.
// Matches still queued when ctx expires are dropped.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping signals service...")

	err := s.pool.Shutdown(ctx)
	s.cancel()
	select {
	case <-s.hubStopped:
	case <-ctx.Done():
	}

	s.started = false
	if err != nil {
		return fmt.Errorf("stop workers: %w", err)
	}
	s.logger.Info(ctx, "signals service stopped", logger.Int("processed", int(s.pool.Processed())))
	return nil
}

// Normalize computes signals synchronously without storing them.
func (s *Service) Normalize(_ context.Context, in model.RawMatchInput) signals.UniversalSignals {
	start := time.Now()
	out := s.engine.Normalize(in)
	metrics.RecordNormalization(
		string(out.Sport),
		string(out.Confidence),
		string(out.Display.Edge.Direction),
		out.Display.Edge.Percentage,
		out.ClarityScore,
		float64(time.Since(start).Microseconds())/1000,
	)
	return out
}

// MatchID returns the ID a submission is stored under: the caller's ID when
// present, otherwise a UUID derived from the input fingerprint.
func MatchID(req model.MatchRequest) string { //nolint:gocritic // hugeParam: request passed by value across the API
	if req.MatchID != "" {
		return req.MatchID
	}
	return uuid.NewSHA1(matchNamespace, []byte(req.Input.Fingerprint())).String()
}

// Submit dedupes and enqueues a match for asynchronous normalization. A
// repeat of the last accepted payload for the same match ID is a duplicate;
// a changed payload is queued again and replaces the stored bundle.
func (s *Service) Submit(ctx context.Context, req model.MatchRequest) (api.Submission, error) { //nolint:gocritic // hugeParam: request passed by value across the API
	const op = "service.submit"

	// Held until the request is queued so Stop cannot close the queue under us.
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started || s.queue.IsClosed() {
		return api.Submission{}, api.Wrap(op, ErrNotStarted)
	}

	req.MatchID = MatchID(req)
	req.Revision = s.revision.Add(1)
	version := req.Input.ContentHash()
	duplicate := s.deduper.SeenAndRecord(ctx, req.MatchID, version)
	s.logger.Debug(ctx, "match submitted",
		logger.String("match_id", req.MatchID),
		logger.Bool("duplicate", duplicate),
	)
	if duplicate {
		metrics.RecordDuplicate()
		return api.Submission{MatchID: req.MatchID, Duplicate: true}, nil
	}

	if !s.queue.Enqueue(ctx, req) {
		// Let the caller retry the same ID.
		s.deduper.Unrecord(ctx, req.MatchID)
		if s.queue.IsClosed() {
			return api.Submission{}, api.Wrap(op, ErrNotStarted)
		}
		return api.Submission{}, api.WrapKind(op, api.ErrBackpressure,
			fmt.Errorf("queue full at %d of %d", s.queue.Len(ctx), s.queue.Capacity()))
	}
	metrics.UpdateQueueSize(s.queue.Len(ctx))
	return api.Submission{MatchID: req.MatchID}, nil
}

// Get returns the stored bundle for matchID.
func (s *Service) Get(ctx context.Context, matchID string) (repository.Entry, error) {
	store := s.storeOrNil()
	if store == nil {
		return repository.Entry{}, api.Wrap("service.get", ErrNotStarted)
	}
	return store.Get(ctx, matchID)
}

// TopN returns the n most decisive stored matches.
func (s *Service) TopN(ctx context.Context, n int) ([]repository.Entry, error) {
	store := s.storeOrNil()
	if store == nil {
		return nil, api.Wrap("service.top_n", ErrNotStarted)
	}
	return store.TopN(ctx, n)
}

func (s *Service) storeOrNil() repository.Store {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store
}

// StreamHandler returns the websocket endpoint, or nil before Start.
func (s *Service) StreamHandler() http.HandlerFunc {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.hub == nil {
		return nil
	}
	return s.hub.ServeWS
}

// RefreshGauges pushes the current queue and store sizes to metrics.
func (s *Service) RefreshGauges(ctx context.Context) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return
	}
	metrics.UpdateQueueSize(s.queue.Len(ctx))
	metrics.UpdateStoreRecords(s.store.Count(ctx))
	metrics.UpdateStreamClients(s.hub.ClientCount())
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]any{
		"started":        s.started,
		"worker_count":   s.workerCount,
		"queue_capacity": s.queueSize,
		"dedupe_size":    s.dedupeSize,
	}
	if s.started {
		stats["queue_length"] = s.queue.Len(ctx)
		stats["stored_matches"] = s.store.Count(ctx)
		stats["processed"] = s.pool.Processed()
		stats["dedupe_entries"] = s.deduper.Size()
		stats["stream_clients"] = s.hub.ClientCount()
		stats["uptime_seconds"] = int(time.Since(s.startedAt).Seconds())
	}
	return stats
}
