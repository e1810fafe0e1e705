package loadtest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// httpClient wraps http.Client with a timeout and optional pacing.
type httpClient struct {
	client  *http.Client
	limiter *rate.Limiter
	baseURL string
}

func newHTTPClient(cfg *Config) *httpClient {
	c := &httpClient{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
	}
	if cfg.RPS > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RPS), 1)
	}
	return c
}

func (c *httpClient) do(ctx context.Context, method, path string, body any) (int, []byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return 0, nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, data, nil
}

func (c *httpClient) getJSON(ctx context.Context, path string, v any) error {
	status, body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("GET %s: HTTP %d: %s", path, status, bytes.TrimSpace(body))
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("GET %s: failed to parse response: %w", path, err)
	}
	return nil
}

// waitStored polls /stats until stored_matches reaches want or ctx expires.
func (c *httpClient) waitStored(ctx context.Context, want int) (int, error) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	last := 0
	for {
		var stats map[string]any
		if err := c.getJSON(ctx, "/stats", &stats); err == nil {
			if n, ok := stats["stored_matches"].(float64); ok {
				last = int(n)
				if last >= want {
					return last, nil
				}
			}
		}
		select {
		case <-ctx.Done():
			return last, fmt.Errorf("stored %d of %d: %w", last, want, ctx.Err())
		case <-ticker.C:
		}
	}
}
