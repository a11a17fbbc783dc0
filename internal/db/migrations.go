package db

import (
	"database/sql"
	"fmt"
)

// migrations is a list of SQL statements applied in order after schema creation.
// Each migration must be idempotent. Append new migrations at the end.
var migrations = []string{
	// Migration 1: candidate scans filter on direction and lifecycle status.
	`CREATE INDEX IF NOT EXISTS idx_items_status_active
	     ON items(status, item_status)`,
	// Migration 2: listing a user's matches joins through the item owner.
	`CREATE INDEX IF NOT EXISTS idx_items_user ON items(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_matches_found ON matches(found_item_id)`,
	// Migration 3: notification inbox.
	`CREATE INDEX IF NOT EXISTS idx_notifications_user
	     ON notifications(user_id, is_read)`,
}

// Migrate creates the schema and runs the migrations.
func Migrate(db *sql.DB) error {
	if err := EnsureSchema(db); err != nil {
		return err
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}

	return nil
}
