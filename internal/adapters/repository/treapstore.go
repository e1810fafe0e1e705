package repository

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/okian/unisignals/internal/domain/signals"
	"github.com/okian/unisignals/pkg/metrics"
)

// Treap-based, in-memory Store implementation.
//
// Ordering: clarity DESC, then matchID ASC. "less" means ranks earlier, so an
// in-order walk lists the most decisive matches first. Subtree sizes give
// O(log n) rank lookups.

type record struct {
	signals   signals.UniversalSignals
	revision  uint64
	updatedAt time.Time
}

type node struct {
	id      string
	clarity int
	prio    uint64
	left    *node
	right   *node
	size    int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

func less(aClarity int, aID string, bClarity int, bID string) bool {
	if aClarity != bClarity {
		return aClarity > bClarity
	}
	return aID < bID
}

// priority hashes the ID so the tree shape is deterministic for a given set
// of matches.
func priority(id string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(id))
	return h.Sum64()
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

func insert(n *node, id string, clarity int) *node {
	if n == nil {
		return &node{id: id, clarity: clarity, prio: priority(id), size: 1}
	}
	if less(clarity, id, n.clarity, n.id) {
		n.left = insert(n.left, id, clarity)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, id, clarity)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, id string, clarity int) *node {
	if n == nil {
		return nil
	}
	switch {
	case clarity == n.clarity && id == n.id:
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, id, clarity)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, id, clarity)
		}
	case less(clarity, id, n.clarity, n.id):
		n.left = deleteNode(n.left, id, clarity)
	default:
		n.right = deleteNode(n.right, id, clarity)
	}
	fix(n)
	return n
}

// rankOf returns the 1-based position of (clarity, id), which must be present.
func rankOf(n *node, id string, clarity int) int {
	rank := 0
	for n != nil {
		switch {
		case clarity == n.clarity && id == n.id:
			return rank + nsize(n.left) + 1
		case less(clarity, id, n.clarity, n.id):
			n = n.left
		default:
			rank += nsize(n.left) + 1
			n = n.right
		}
	}
	return rank
}

// collectTopN appends up to limit nodes in rank order.
func collectTopN(n *node, limit int, out *[]*node) {
	if n == nil || len(*out) >= limit {
		return
	}
	collectTopN(n.left, limit, out)
	if len(*out) < limit {
		*out = append(*out, n)
	}
	collectTopN(n.right, limit, out)
}

// TreapStore implements Store.
type TreapStore struct {
	mu   sync.RWMutex
	root *node
	byID map[string]record
	now  func() time.Time
}

// NewTreapStore creates an empty store.
func NewTreapStore() *TreapStore {
	metrics.UpdateStoreRecords(0)
	return &TreapStore{byID: make(map[string]record), now: time.Now}
}

// Save stores out for matchID unless a newer revision is already stored.
func (s *TreapStore) Save(_ context.Context, matchID string, revision uint64, out signals.UniversalSignals) error {
	start := time.Now()
	defer func() {
		metrics.RecordStoreSaveLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	if matchID == "" {
		metrics.RecordErrorByComponent("repository", "empty_id")
		return ErrEmptyMatchID
	}

	s.mu.Lock()
	if old, ok := s.byID[matchID]; ok {
		if revision != 0 && old.revision > revision {
			s.mu.Unlock()
			metrics.RecordErrorByComponent("repository", "stale_revision")
			return ErrStale
		}
		s.root = deleteNode(s.root, matchID, old.signals.ClarityScore)
	}
	s.root = insert(s.root, matchID, out.ClarityScore)
	s.byID[matchID] = record{signals: out, revision: revision, updatedAt: s.now()}
	count := len(s.byID)
	s.mu.Unlock()

	metrics.UpdateStoreRecords(count)
	return nil
}

// Get returns the stored entry for matchID.
func (s *TreapStore) Get(_ context.Context, matchID string) (Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.byID[matchID]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return Entry{}, ErrNotFound
	}
	return Entry{
		Rank:      rankOf(s.root, matchID, rec.signals.ClarityScore),
		MatchID:   matchID,
		Signals:   rec.signals,
		UpdatedAt: rec.updatedAt,
	}, nil
}

// TopN returns the n most decisive matches.
func (s *TreapStore) TopN(_ context.Context, n int) ([]Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	nodes := make([]*node, 0, min(n, len(s.byID)))
	collectTopN(s.root, n, &nodes)

	out := make([]Entry, len(nodes))
	for i, nd := range nodes {
		rec := s.byID[nd.id]
		out[i] = Entry{Rank: i + 1, MatchID: nd.id, Signals: rec.signals, UpdatedAt: rec.updatedAt}
	}
	return out, nil
}

// Count returns the number of stored matches.
func (s *TreapStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
