// Package dedupe tracks the last accepted payload version per match so an
// identical resubmission is normalized at most once while it is remembered.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

const defaultMaxSize = 50000

// Deduper records seen match keys and the payload version last accepted for
// each.
type Deduper interface {
	// SeenAndRecord atomically checks whether key was already recorded with
	// version. Returns true for an exact repeat. Otherwise it records version
	// as the latest for key and returns false.
	SeenAndRecord(ctx context.Context, key, version string) bool

	// Unrecord forgets a key so a rejected submission can be retried.
	Unrecord(ctx context.Context, key string)

	Size() int64
}

type entry struct {
	slot    int // position in ring, -1 in unbounded mode
	version string
}

// inMemoryDeduper keeps keys in a ring buffer and evicts the oldest when full.
// maxSize <= 0 disables eviction.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]entry
	ring    []string
	next    int
	maxSize int
	size    atomic.Int64
}

// NewInMemoryDeduper creates a new in-memory deduper.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]entry)
	if d.maxSize > 0 {
		d.ring = make([]string, d.maxSize)
	}
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, key, version string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if e, ok := d.seen[key]; ok {
		if e.version == version {
			return true
		}
		// Newer payload for a known key keeps its slot.
		e.version = version
		d.seen[key] = e
		return false
	}

	if d.maxSize <= 0 {
		d.seen[key] = entry{slot: -1, version: version}
		d.size.Add(1)
		return false
	}

	// The slot under next is the oldest entry once the ring has wrapped.
	if old := d.ring[d.next]; old != "" {
		if e, ok := d.seen[old]; ok && e.slot == d.next {
			delete(d.seen, old)
			d.size.Add(-1)
		}
	}
	d.ring[d.next] = key
	d.seen[key] = entry{slot: d.next, version: version}
	d.next = (d.next + 1) % d.maxSize
	d.size.Add(1)
	return false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	e, ok := d.seen[key]
	if !ok {
		return
	}
	delete(d.seen, key)
	if e.slot >= 0 {
		d.ring[e.slot] = ""
	}
	d.size.Add(-1)
}

// Size returns the number of remembered keys.
func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}
