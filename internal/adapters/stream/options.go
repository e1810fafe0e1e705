package stream

import "time"

// Option configures a Hub.
type Option func(*Hub)

// WithBuffer sets the per-client send buffer. A client whose buffer is full
// is disconnected.
func WithBuffer(n int) Option {
	return func(h *Hub) {
		if n > 0 {
			h.buffer = n
		}
	}
}

// WithHeartbeat sets the heartbeat interval.
func WithHeartbeat(d time.Duration) Option {
	return func(h *Hub) {
		if d > 0 {
			h.heartbeat = d
		}
	}
}
