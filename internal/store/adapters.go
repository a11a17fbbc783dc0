package store

import (
	"context"
	"database/sql"

	"github.com/erazemk/lostfound/internal/matching"
	"github.com/erazemk/lostfound/internal/model"
)

var (
	_ matching.ItemStore  = Items{}
	_ matching.MatchStore = Matches{}
)

// Items serves the matching engine's item reads from the database.
type Items struct {
	DB *sql.DB
}

func (s Items) GetItem(ctx context.Context, id int64) (*model.Item, error) {
	return GetItem(ctx, s.DB, id)
}

func (s Items) ListActiveItems(ctx context.Context, status string) ([]model.Item, error) {
	return ListActiveItems(ctx, s.DB, status)
}

// Matches persists the matching engine's matches in the database.
type Matches struct {
	DB *sql.DB
}

func (s Matches) FindMatch(ctx context.Context, lostItemID, foundItemID int64) (*model.Match, error) {
	return FindMatch(ctx, s.DB, lostItemID, foundItemID)
}

func (s Matches) UpsertMatch(ctx context.Context, lostItemID, foundItemID int64, score float64) (*model.Match, bool, error) {
	return UpsertMatch(ctx, s.DB, lostItemID, foundItemID, score)
}

func (s Matches) GetMatch(ctx context.Context, id int64) (*model.Match, error) {
	return GetMatch(ctx, s.DB, id)
}

func (s Matches) UpdateMatchStatus(ctx context.Context, id int64, status, notes string) (*model.Match, error) {
	return UpdateMatchStatus(ctx, s.DB, id, status, notes)
}

func (s Matches) ListMatchesForUser(ctx context.Context, userID int64) ([]model.Match, error) {
	return ListMatchesForUser(ctx, s.DB, userID)
}
