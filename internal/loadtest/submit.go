package loadtest

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/okian/unisignals/pkg/logger"
)

type submitResult int

const (
	resultAccepted submitResult = iota
	resultDuplicate
	resultThrottled
	resultFailed
)

// submitAll posts every submission using cfg.Workers goroutines and returns
// the IDs the server acknowledged, indexed like subs. Failed slots are empty.
func submitAll(ctx context.Context, cfg *Config, client *httpClient, subs []Submission, stats *Stats) []string {
	log := logger.Named("loadtest")
	log.Info(ctx, "submitting matches", logger.Int("count", len(subs)), logger.Int("workers", cfg.Workers))

	ids := make([]string, len(subs))
	var accepted, duplicate, throttled, failed atomic.Int64

	jobs := make(chan int, cfg.Workers*workerChannelMultiplier)
	var wg sync.WaitGroup
	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				id, res := submitOne(ctx, client, subs[i])
				switch res {
				case resultAccepted:
					accepted.Add(1)
					ids[i] = id
				case resultDuplicate:
					duplicate.Add(1)
					ids[i] = id
				case resultThrottled:
					throttled.Add(1)
				default:
					failed.Add(1)
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := range subs {
			select {
			case <-ctx.Done():
				return
			case jobs <- i:
			}
		}
	}()
	wg.Wait()

	stats.Accepted = int(accepted.Load())
	stats.Duplicate = int(duplicate.Load())
	stats.Throttled = int(throttled.Load())
	stats.Failed = int(failed.Load())
	stats.Submitted = stats.Accepted + stats.Duplicate + stats.Throttled + stats.Failed

	log.Info(ctx, "submission completed",
		logger.Int("accepted", stats.Accepted),
		logger.Int("duplicate", stats.Duplicate),
		logger.Int("throttled", stats.Throttled),
		logger.Int("failed", stats.Failed),
	)
	return ids
}

func submitOne(ctx context.Context, client *httpClient, s Submission) (string, submitResult) { //nolint:gocritic // hugeParam: read-only copy
	status, body, err := client.do(ctx, http.MethodPost, "/v1/matches", s)
	if err != nil {
		return "", resultFailed
	}

	var ack ackResponse
	_ = json.Unmarshal(body, &ack)
	switch status {
	case http.StatusAccepted:
		return ack.MatchID, resultAccepted
	case http.StatusOK:
		return ack.MatchID, resultDuplicate
	case http.StatusTooManyRequests:
		return "", resultThrottled
	default:
		return "", resultFailed
	}
}
