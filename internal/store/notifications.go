package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/lostfound/internal/model"
)

// CreateNotification stores an unread notification.
func CreateNotification(ctx context.Context, db *sql.DB, n *model.Notification) (*model.Notification, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO notifications (user_id, type, title, message, link) VALUES (?, ?, ?, ?, ?)`,
		n.UserID, n.Type, n.Title, n.Message, nullString(n.Link),
	)
	if err != nil {
		return nil, fmt.Errorf("creating notification: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting notification id: %w", err)
	}

	out := &model.Notification{}
	var link sql.NullString
	err = db.QueryRowContext(ctx,
		`SELECT id, user_id, type, title, message, link, is_read, created_at
		 FROM notifications WHERE id = ?`, id,
	).Scan(&out.ID, &out.UserID, &out.Type, &out.Title, &out.Message, &link, &out.IsRead, &out.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("getting notification: %w", err)
	}
	out.Link = link.String
	return out, nil
}

// ListNotifications returns a user's notifications, newest first.
func ListNotifications(ctx context.Context, db *sql.DB, userID int64, unreadOnly bool) ([]model.Notification, error) {
	query := `SELECT id, user_id, type, title, message, link, is_read, created_at
	          FROM notifications WHERE user_id = ?`
	if unreadOnly {
		query += ` AND is_read = 0`
	}
	query += ` ORDER BY id DESC`

	rows, err := db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	defer rows.Close()

	var out []model.Notification
	for rows.Next() {
		var n model.Notification
		var link sql.NullString
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &link, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning notification: %w", err)
		}
		n.Link = link.String
		out = append(out, n)
	}
	return out, rows.Err()
}

// CountUnreadNotifications returns how many unread notifications a user has.
func CountUnreadNotifications(ctx context.Context, db *sql.DB, userID int64) (int, error) {
	var n int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = ? AND is_read = 0`, userID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting notifications: %w", err)
	}
	return n, nil
}

// MarkNotificationRead marks one of the user's notifications as read. It
// reports false when the user has no such notification.
func MarkNotificationRead(ctx context.Context, db *sql.DB, id, userID int64) (bool, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE notifications SET is_read = 1 WHERE id = ? AND user_id = ?`, id, userID,
	)
	if err != nil {
		return false, fmt.Errorf("marking notification read: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("marking notification read: %w", err)
	}
	return n > 0, nil
}

// MarkAllNotificationsRead marks all of the user's notifications as read and
// returns how many changed.
func MarkAllNotificationsRead(ctx context.Context, db *sql.DB, userID int64) (int64, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE notifications SET is_read = 1 WHERE user_id = ? AND is_read = 0`, userID,
	)
	if err != nil {
		return 0, fmt.Errorf("marking notifications read: %w", err)
	}
	return result.RowsAffected()
}

// DeleteNotification deletes one of the user's notifications. It reports
// false when the user has no such notification.
func DeleteNotification(ctx context.Context, db *sql.DB, id, userID int64) (bool, error) {
	result, err := db.ExecContext(ctx,
		`DELETE FROM notifications WHERE id = ? AND user_id = ?`, id, userID,
	)
	if err != nil {
		return false, fmt.Errorf("deleting notification: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deleting notification: %w", err)
	}
	return n > 0, nil
}
