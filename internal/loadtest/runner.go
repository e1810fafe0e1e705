package loadtest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/okian/unisignals/pkg/logger"
)

// Run executes a complete load test against cfg.BaseURL.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	log := logger.Named("loadtest")

	log.Info(ctx, "starting load test",
		logger.String("base_url", cfg.BaseURL),
		logger.Int("count", cfg.Count),
		logger.Int("workers", cfg.Workers),
		logger.Duration("timeout", cfg.Timeout),
		logger.Int("top_n", cfg.TopN),
	)

	if cfg.Count < 1 || cfg.Workers < 1 {
		return stats, fmt.Errorf("count and workers must be positive")
	}

	client := newHTTPClient(cfg)

	// Step 1: check service health
	status, _, err := client.do(ctx, http.MethodGet, "/healthz", nil)
	if err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}
	if status != http.StatusOK {
		return stats, fmt.Errorf("service health check failed with status: %d", status)
	}

	// Step 2: generate
	subs, err := Generate(cfg.Seed, cfg.Count, true)
	if err != nil {
		return stats, fmt.Errorf("generation failed: %w", err)
	}
	stats.Generated = len(subs)

	// Step 3: submit concurrently
	ids := submitAll(ctx, cfg, client, subs, stats)

	// Step 4: wait for the workers
	settleCtx, cancel := context.WithTimeout(ctx, cfg.Settle)
	defer cancel()
	stored, err := client.waitStored(settleCtx, stats.Accepted)
	if err != nil {
		return stats, fmt.Errorf("waiting for processing: %w", err)
	}
	log.Info(ctx, "matches stored", logger.Int("stored", stored))

	// Step 5: read everything back and compare
	if err := retrieveAll(ctx, cfg, client, subs, ids, stats); err != nil {
		return stats, fmt.Errorf("verification failed: %w", err)
	}

	// Step 6: check ordering of the listing
	if err := verifyListing(ctx, cfg, client, stats); err != nil {
		return stats, fmt.Errorf("listing verification failed: %w", err)
	}

	stats.Duration = time.Since(stats.StartTime)
	logFinalStats(ctx, stats)
	return stats, nil
}

func logFinalStats(ctx context.Context, stats *Stats) {
	var perSecond float64
	if stats.Duration > 0 {
		perSecond = float64(stats.Submitted) / stats.Duration.Seconds()
	}
	logger.Named("loadtest").Info(ctx, "final statistics",
		logger.Int("generated", stats.Generated),
		logger.Int("submitted", stats.Submitted),
		logger.Int("accepted", stats.Accepted),
		logger.Int("duplicate", stats.Duplicate),
		logger.Int("throttled", stats.Throttled),
		logger.Int("failed", stats.Failed),
		logger.Int("retrieved", stats.Retrieved),
		logger.Int("listed", stats.Listed),
		logger.Duration("duration", stats.Duration),
		logger.Float64("submissions_per_second", perSecond),
	)
}
