// Package repository keeps the latest signal bundle per match, ordered by
// how decisive the bundle is.
package repository

import (
	"context"
	"time"

	"github.com/okian/unisignals/internal/domain/signals"
)

// Entry is one stored match in rank order.
type Entry struct {
	Rank      int                      `json:"rank"`
	MatchID   string                   `json:"match_id"`
	Signals   signals.UniversalSignals `json:"signals"`
	UpdatedAt time.Time                `json:"updated_at"`
}

// Store provides read/write access to normalized matches.
type Store interface {
	// Save stores s as the latest bundle for matchID, replacing any older one.
	// Returns ErrStale if a higher revision is already stored. Revision 0
	// always replaces.
	Save(ctx context.Context, matchID string, revision uint64, s signals.UniversalSignals) error

	// Get returns the stored bundle and its rank. Returns ErrNotFound if the
	// match is unknown.
	Get(ctx context.Context, matchID string) (Entry, error)

	// TopN returns up to n entries by clarity desc, match ID asc.
	TopN(ctx context.Context, n int) ([]Entry, error)

	// Count returns the number of stored matches.
	Count(ctx context.Context) int
}
