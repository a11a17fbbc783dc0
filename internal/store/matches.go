package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/lostfound/internal/model"
)

const matchSelect = `
SELECT m.id, m.lost_item_id, m.found_item_id, m.match_score, m.status, m.notes,
       m.created_at, m.updated_at,
       li.title, fi.title, li.user_id, fi.user_id, lu.username, fu.username
FROM matches m
JOIN items li ON li.id = m.lost_item_id
JOIN items fi ON fi.id = m.found_item_id
JOIN users lu ON lu.id = li.user_id
JOIN users fu ON fu.id = fi.user_id`

// UpsertMatch inserts a pending match for the pair, or updates the score of
// the existing match without touching its status. created reports whether a
// new row was inserted.
func UpsertMatch(ctx context.Context, db *sql.DB, lostItemID, foundItemID int64, score float64) (*model.Match, bool, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO matches (lost_item_id, found_item_id, match_score) VALUES (?, ?, ?)
		 ON CONFLICT (lost_item_id, found_item_id) DO NOTHING`,
		lostItemID, foundItemID, score,
	)
	if err != nil {
		return nil, false, fmt.Errorf("inserting match: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("checking inserted match: %w", err)
	}
	created := n == 1

	if !created {
		_, err = tx.ExecContext(ctx,
			`UPDATE matches SET match_score = ?, updated_at = CURRENT_TIMESTAMP
			 WHERE lost_item_id = ? AND found_item_id = ?`,
			score, lostItemID, foundItemID,
		)
		if err != nil {
			return nil, false, fmt.Errorf("updating match score: %w", err)
		}
	}

	var id int64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM matches WHERE lost_item_id = ? AND found_item_id = ?`,
		lostItemID, foundItemID,
	).Scan(&id)
	if err != nil {
		return nil, false, fmt.Errorf("getting match id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("committing match: %w", err)
	}

	m, err := GetMatch(ctx, db, id)
	if err != nil {
		return nil, false, err
	}
	return m, created, nil
}

// GetMatch returns a match by ID with item and owner details.
func GetMatch(ctx context.Context, db *sql.DB, id int64) (*model.Match, error) {
	m, err := scanMatch(db.QueryRowContext(ctx, matchSelect+` WHERE m.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting match: %w", err)
	}
	return m, nil
}

// FindMatch returns the match for a lost/found pair.
func FindMatch(ctx context.Context, db *sql.DB, lostItemID, foundItemID int64) (*model.Match, error) {
	m, err := scanMatch(db.QueryRowContext(ctx,
		matchSelect+` WHERE m.lost_item_id = ? AND m.found_item_id = ?`,
		lostItemID, foundItemID,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding match: %w", err)
	}
	return m, nil
}

// UpdateMatchStatus sets a match's status and notes. Empty notes clear them.
func UpdateMatchStatus(ctx context.Context, db *sql.DB, id int64, status, notes string) (*model.Match, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE matches SET status = ?, notes = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		status, nullString(notes), id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating match status: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("checking updated match: %w", err)
	}
	if n == 0 {
		return nil, nil
	}
	return GetMatch(ctx, db, id)
}

// ListMatchesForUser returns matches where the user owns the lost or the
// found item, best score first and oldest first among equal scores.
func ListMatchesForUser(ctx context.Context, db *sql.DB, userID int64) ([]model.Match, error) {
	rows, err := db.QueryContext(ctx,
		matchSelect+` WHERE li.user_id = ? OR fi.user_id = ?
		ORDER BY m.match_score DESC, m.id ASC`,
		userID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing matches: %w", err)
	}
	defer rows.Close()

	var matches []model.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning match: %w", err)
		}
		matches = append(matches, *m)
	}
	return matches, rows.Err()
}

func scanMatch(row rowScanner) (*model.Match, error) {
	m := &model.Match{}
	var notes sql.NullString
	err := row.Scan(&m.ID, &m.LostItemID, &m.FoundItemID, &m.MatchScore, &m.Status, &notes,
		&m.CreatedAt, &m.UpdatedAt,
		&m.LostItemTitle, &m.FoundItemTitle, &m.LostOwnerID, &m.FoundOwnerID,
		&m.LostOwnerName, &m.FoundOwnerName)
	if err != nil {
		return nil, err
	}
	m.Notes = notes.String
	return m, nil
}
