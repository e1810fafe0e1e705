package repository

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"testing"

	"github.com/okian/unisignals/internal/domain/signals"
)

func bundle(clarity int) signals.UniversalSignals {
	return signals.UniversalSignals{ClarityScore: clarity, Confidence: signals.TierFor(clarity)}
}

func TestTreapStore_BasicOperations(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore()

	if count := store.Count(ctx); count != 0 {
		t.Errorf("expected count 0, got %d", count)
	}

	if err := store.Save(ctx, "m1", 0, bundle(75)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count := store.Count(ctx); count != 1 {
		t.Errorf("expected count 1, got %d", count)
	}

	entry, err := store.Get(ctx, "m1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Rank != 1 || entry.Signals.ClarityScore != 75 || entry.UpdatedAt.IsZero() {
		t.Errorf("unexpected entry %+v", entry)
	}

	entries, err := store.TopN(ctx, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 || entries[0].MatchID != "m1" {
		t.Errorf("unexpected top entries %+v", entries)
	}
}

func TestTreapStore_Errors(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore()

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.TopN(ctx, 0); !errors.Is(err, ErrInvalidLimit) {
		t.Errorf("expected ErrInvalidLimit, got %v", err)
	}
	if err := store.Save(ctx, "", 0, bundle(10)); !errors.Is(err, ErrEmptyMatchID) {
		t.Errorf("expected ErrEmptyMatchID, got %v", err)
	}
}

func TestTreapStore_Ordering(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore()

	for id, clarity := range map[string]int{"b": 50, "a": 50, "c": 100, "d": 20} {
		if err := store.Save(ctx, id, 0, bundle(clarity)); err != nil {
			t.Fatalf("save %s: %v", id, err)
		}
	}

	entries, err := store.TopN(ctx, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"c", "a", "b"}
	for i, e := range entries {
		if e.MatchID != want[i] || e.Rank != i+1 {
			t.Errorf("position %d: got %s rank %d, want %s rank %d", i, e.MatchID, e.Rank, want[i], i+1)
		}
	}

	entry, _ := store.Get(ctx, "d")
	if entry.Rank != 4 {
		t.Errorf("expected d at rank 4, got %d", entry.Rank)
	}
}

func TestTreapStore_Replace(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore()

	_ = store.Save(ctx, "m1", 0, bundle(100))
	_ = store.Save(ctx, "m2", 0, bundle(50))
	_ = store.Save(ctx, "m1", 0, bundle(20))

	if count := store.Count(ctx); count != 2 {
		t.Errorf("expected count 2 after replace, got %d", count)
	}
	entries, _ := store.TopN(ctx, 10)
	if len(entries) != 2 || entries[0].MatchID != "m2" || entries[1].Signals.ClarityScore != 20 {
		t.Errorf("replacement not reflected in order: %+v", entries)
	}
}

func TestTreapStore_Revisions(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore()

	if err := store.Save(ctx, "m1", 2, bundle(80)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Save(ctx, "m1", 1, bundle(20)); !errors.Is(err, ErrStale) {
		t.Fatalf("expected ErrStale for an older revision, got %v", err)
	}
	if entry, _ := store.Get(ctx, "m1"); entry.Signals.ClarityScore != 80 {
		t.Errorf("stale save replaced the bundle: %+v", entry)
	}

	if err := store.Save(ctx, "m1", 3, bundle(45)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry, _ := store.Get(ctx, "m1"); entry.Signals.ClarityScore != 45 {
		t.Errorf("newer revision not stored: %+v", entry)
	}
	if count := store.Count(ctx); count != 1 {
		t.Errorf("expected count 1, got %d", count)
	}
}

func TestTreapStore_MatchesSortedOrder(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore()
	rng := rand.New(rand.NewSource(42)) //nolint:gosec // deterministic fixtures

	latest := map[string]int{}
	for i := 0; i < 2000; i++ {
		id := fmt.Sprintf("m-%03d", rng.Intn(500))
		clarity := []int{0, 20, 25, 45, 50, 55, 70, 75, 80, 100}[rng.Intn(10)]
		latest[id] = clarity
		if err := store.Save(ctx, id, 0, bundle(clarity)); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	ids := make([]string, 0, len(latest))
	for id := range latest {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if latest[ids[i]] != latest[ids[j]] {
			return latest[ids[i]] > latest[ids[j]]
		}
		return ids[i] < ids[j]
	})

	entries, err := store.TopN(ctx, len(ids)+10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != len(ids) {
		t.Fatalf("expected %d entries, got %d", len(ids), len(entries))
	}
	for i, id := range ids {
		if entries[i].MatchID != id {
			t.Fatalf("position %d: got %s, want %s", i, entries[i].MatchID, id)
		}
		e, err := store.Get(ctx, id)
		if err != nil || e.Rank != i+1 {
			t.Fatalf("rank of %s: got %d (%v), want %d", id, e.Rank, err, i+1)
		}
	}
}

func TestTreapStore_Concurrent(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				_ = store.Save(ctx, fmt.Sprintf("m-%d-%d", g, i), 0, bundle(i%101))
				_, _ = store.TopN(ctx, 5)
			}
		}(g)
	}
	wg.Wait()

	if count := store.Count(ctx); count != 800 {
		t.Errorf("expected 800 records, got %d", count)
	}
}
