// Package config defines service configuration and its layered loader.
package config

import (
	"fmt"
	"runtime"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory match queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of normalization workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize bounds the submission dedupe window. Zero disables eviction.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxListLimit caps GET /v1/matches?limit.
	MaxListLimit int `koanf:"max_list_limit"`

	// CORSOrigins lists allowed browser origins. Empty allows all.
	CORSOrigins []string `koanf:"cors_origins"`

	// RateLimitRPS and RateLimitBurst configure the API token bucket.
	// RateLimitRPS <= 0 disables limiting.
	RateLimitRPS   float64 `koanf:"rate_limit_rps"`
	RateLimitBurst int     `koanf:"rate_limit_burst"`

	// StreamBuffer is the per-subscriber websocket send buffer.
	StreamBuffer int `koanf:"stream_buffer"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:       "info",
		Addr:           ":9080",
		QueueSize:      10_000,
		WorkerCount:    runtime.NumCPU() * 2,
		DedupeSize:     100_000,
		MaxListLimit:   100,
		CORSOrigins:    []string{},
		RateLimitRPS:   200,
		RateLimitBurst: 400,
		StreamBuffer:   64,
	}
}

// Validate reports the first invalid field wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.QueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be positive, got %d", ErrInvalidConfig, c.QueueSize)
	case c.WorkerCount <= 0:
		return fmt.Errorf("%w: worker_count must be positive, got %d", ErrInvalidConfig, c.WorkerCount)
	case c.MaxListLimit <= 0:
		return fmt.Errorf("%w: max_list_limit must be positive, got %d", ErrInvalidConfig, c.MaxListLimit)
	case c.RateLimitRPS > 0 && c.RateLimitBurst <= 0:
		return fmt.Errorf("%w: rate_limit_burst must be positive when rate limiting is on", ErrInvalidConfig)
	case c.StreamBuffer <= 0:
		return fmt.Errorf("%w: stream_buffer must be positive, got %d", ErrInvalidConfig, c.StreamBuffer)
	}
	return nil
}
