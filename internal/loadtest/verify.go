package loadtest

import (
	"context"
	"fmt"
	"net/url"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/okian/unisignals/internal/domain/signals"
	"github.com/okian/unisignals/pkg/logger"
)

// retrieveAll fetches every acknowledged match and compares it with local
// normalization of the submitted input. Any difference is an error.
func retrieveAll(ctx context.Context, cfg *Config, client *httpClient, subs []Submission, ids []string, stats *Stats) error {
	log := logger.Named("loadtest")

	var retrieved, mismatched atomic.Int64
	var firstErr error
	var errOnce sync.Once

	jobs := make(chan int, cfg.Workers*workerChannelMultiplier)
	var wg sync.WaitGroup
	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				var e Entry
				if err := client.getJSON(ctx, "/v1/matches/"+url.PathEscape(ids[i]), &e); err != nil {
					errOnce.Do(func() { firstErr = err })
					continue
				}
				retrieved.Add(1)
				if want := signals.Normalize(subs[i].RawMatchInput); !reflect.DeepEqual(e.Signals, want) {
					mismatched.Add(1)
					log.Warn(ctx, "stored signals differ from local normalization", logger.String("match_id", ids[i]))
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i, id := range ids {
			if id == "" {
				continue
			}
			select {
			case <-ctx.Done():
				return
			case jobs <- i:
			}
		}
	}()
	wg.Wait()

	stats.Retrieved = int(retrieved.Load())
	stats.Mismatched = int(mismatched.Load())
	if firstErr != nil {
		log.Warn(ctx, "some matches could not be retrieved", logger.Error(firstErr))
	}
	if stats.Mismatched > 0 {
		return fmt.Errorf("%d stored matches differ from local normalization", stats.Mismatched)
	}
	return nil
}

// verifyListing checks GET /v1/matches is ordered by clarity desc then match
// ID asc with consecutive ranks.
func verifyListing(ctx context.Context, cfg *Config, client *httpClient, stats *Stats) error {
	var entries []Entry
	if err := client.getJSON(ctx, fmt.Sprintf("/v1/matches?limit=%d", cfg.TopN), &entries); err != nil {
		return err
	}
	stats.Listed = len(entries)

	for i, e := range entries {
		if e.Rank != i+1 {
			return fmt.Errorf("entry %d (%s) has rank %d", i, e.MatchID, e.Rank)
		}
		if i == 0 {
			continue
		}
		prev := entries[i-1]
		switch {
		case prev.Signals.ClarityScore < e.Signals.ClarityScore:
			return fmt.Errorf("entry %d has higher clarity than entry %d", i, i-1)
		case prev.Signals.ClarityScore == e.Signals.ClarityScore && prev.MatchID >= e.MatchID:
			return fmt.Errorf("entries %d and %d with equal clarity are not ordered by ID", i-1, i)
		}
	}

	if len(entries) > 0 {
		top := entries[0]
		logger.Named("loadtest").Info(ctx, "listing verified",
			logger.Int("entries", len(entries)),
			logger.String("top_match", top.MatchID),
			logger.Int("top_clarity", top.Signals.ClarityScore),
			logger.String("top_edge", top.Signals.StrengthEdge),
		)
	}
	return nil
}
