package matching

import (
	"context"

	"github.com/erazemk/lostfound/internal/model"
)

// ItemStore reads lost and found reports. Lookups of a missing id return
// nil, nil.
type ItemStore interface {
	GetItem(ctx context.Context, id int64) (*model.Item, error)
	// ListActiveItems returns active items of the given direction ordered by id.
	ListActiveItems(ctx context.Context, status string) ([]model.Item, error)
}

// MatchStore persists matches. Lookups of a missing id return nil, nil.
type MatchStore interface {
	FindMatch(ctx context.Context, lostItemID, foundItemID int64) (*model.Match, error)
	// UpsertMatch inserts a pending match for the pair, or updates only the
	// score of the existing one. created reports whether a row was inserted.
	UpsertMatch(ctx context.Context, lostItemID, foundItemID int64, score float64) (m *model.Match, created bool, err error)
	GetMatch(ctx context.Context, id int64) (*model.Match, error)
	UpdateMatchStatus(ctx context.Context, id int64, status, notes string) (*model.Match, error)
	// ListMatchesForUser returns matches where userID owns either item,
	// ordered by score descending, then id ascending.
	ListMatchesForUser(ctx context.Context, userID int64) ([]model.Match, error)
}

// Notifier delivers a notification to a user.
type Notifier interface {
	Notify(ctx context.Context, n model.Notification) error
}
