// Package loadtest drives a running signals service over HTTP: it submits
// synthetic matches concurrently, waits for the workers to store them and
// verifies every stored bundle against local normalization.
package loadtest

import (
	"runtime"
	"time"

	"github.com/okian/unisignals/internal/adapters/repository"
)

// Default configuration values.
const (
	DefaultBaseURL = "http://localhost:9080"
	DefaultCount   = 1000
	DefaultTopN    = 50
	DefaultTimeout = 30 * time.Second
	DefaultSettle  = 2 * time.Minute

	workerChannelMultiplier = 2
	pollInterval            = 250 * time.Millisecond
)

// Config holds configuration for a load test run.
type Config struct {
	BaseURL string        // Base URL of the service
	Count   int           // Number of matches to generate
	Seed    int64         // Generator seed
	TopN    int           // Entries to fetch from GET /v1/matches
	Workers int           // Concurrent HTTP workers
	RPS     float64       // Client-side request rate, 0 means unlimited
	Timeout time.Duration // Per-request timeout
	Settle  time.Duration // How long to wait for the workers to store everything
}

// NewConfig returns a Config with defaults applied.
func NewConfig() *Config {
	return &Config{
		BaseURL: DefaultBaseURL,
		Count:   DefaultCount,
		Seed:    1,
		TopN:    DefaultTopN,
		Workers: runtime.NumCPU() * 2,
		Timeout: DefaultTimeout,
		Settle:  DefaultSettle,
	}
}

// Stats holds run statistics.
type Stats struct {
	Generated  int
	Submitted  int
	Accepted   int
	Duplicate  int
	Throttled  int
	Failed     int
	Retrieved  int
	Mismatched int
	Listed     int
	StartTime  time.Time
	Duration   time.Duration
}

// ackResponse mirrors the POST /v1/matches acknowledgement.
type ackResponse struct {
	Status    string `json:"status"`
	MatchID   string `json:"match_id"`
	Duplicate bool   `json:"duplicate"`
}

// Entry is a stored match as served by the API.
type Entry = repository.Entry
