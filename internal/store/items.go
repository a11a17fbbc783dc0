package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/erazemk/lostfound/internal/model"
)

const itemColumns = `id, user_id, title, description, category, status, item_status,
	location_lost, location_found, color, brand, image_mime, created_at, updated_at`

// ItemFilter narrows ListItems. Empty fields match everything.
type ItemFilter struct {
	Status     string
	ItemStatus string
	Category   string
	UserID     int64
}

// CreateItem creates a new active item from the reported fields.
func CreateItem(ctx context.Context, db *sql.DB, in *model.Item) (*model.Item, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO items (user_id, title, description, category, status,
		                    location_lost, location_found, color, brand)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.UserID, in.Title, nullString(in.Description), in.Category, in.Status,
		nullString(in.LocationLost), nullString(in.LocationFound),
		nullString(in.Color), nullString(in.Brand),
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	return GetItem(ctx, db, id)
}

// GetItem returns an item by ID.
func GetItem(ctx context.Context, db *sql.DB, id int64) (*model.Item, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ?`, id,
	)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// ListItems returns items matching the filter, newest first.
func ListItems(ctx context.Context, db *sql.DB, f ItemFilter) ([]model.Item, error) {
	var where []string
	var args []any
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}
	if f.ItemStatus != "" {
		where = append(where, "item_status = ?")
		args = append(args, f.ItemStatus)
	}
	if f.Category != "" {
		where = append(where, "category = ?")
		args = append(args, f.Category)
	}
	if f.UserID != 0 {
		where = append(where, "user_id = ?")
		args = append(args, f.UserID)
	}

	query := `SELECT ` + itemColumns + ` FROM items`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY id DESC`

	return queryItems(ctx, db, query, args...)
}

// ListActiveItems returns the active items of one direction ordered by ID.
func ListActiveItems(ctx context.Context, db *sql.DB, status string) ([]model.Item, error) {
	return queryItems(ctx, db,
		`SELECT `+itemColumns+` FROM items
		 WHERE status = ? AND item_status = 'active' ORDER BY id`, status,
	)
}

// UpdateItem updates an item's reported fields. Direction, owner and
// lifecycle status are left alone.
func UpdateItem(ctx context.Context, db *sql.DB, item *model.Item) error {
	_, err := db.ExecContext(ctx,
		`UPDATE items SET title = ?, description = ?, category = ?,
		        location_lost = ?, location_found = ?, color = ?, brand = ?,
		        updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		item.Title, nullString(item.Description), item.Category,
		nullString(item.LocationLost), nullString(item.LocationFound),
		nullString(item.Color), nullString(item.Brand), item.ID,
	)
	if err != nil {
		return fmt.Errorf("updating item: %w", err)
	}
	return nil
}

// SetItemStatus sets an item's lifecycle status.
func SetItemStatus(ctx context.Context, db *sql.DB, id int64, itemStatus string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE items SET item_status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		itemStatus, id,
	)
	if err != nil {
		return fmt.Errorf("setting item status: %w", err)
	}
	return nil
}

// DeleteItem deletes an item together with its matches.
func DeleteItem(ctx context.Context, db *sql.DB, id int64) error {
	_, err := db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	return nil
}

// SetItemImage sets an item's image data.
func SetItemImage(ctx context.Context, db *sql.DB, id int64, image []byte, mime string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE items SET image = ?, image_mime = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		image, mime, id,
	)
	if err != nil {
		return fmt.Errorf("setting item image: %w", err)
	}
	return nil
}

// GetItemImage returns an item's image data and MIME type.
func GetItemImage(ctx context.Context, db *sql.DB, id int64) ([]byte, string, error) {
	var image []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT image, image_mime FROM items WHERE id = ?`, id,
	).Scan(&image, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting item image: %w", err)
	}
	return image, mime.String, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*model.Item, error) {
	item := &model.Item{}
	var description, locLost, locFound, color, brand, imageMime sql.NullString
	err := row.Scan(&item.ID, &item.UserID, &item.Title, &description, &item.Category,
		&item.Status, &item.ItemStatus, &locLost, &locFound, &color, &brand, &imageMime,
		&item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	item.Description = description.String
	item.LocationLost = locLost.String
	item.LocationFound = locFound.String
	item.Color = color.String
	item.Brand = brand.String
	item.ImageMime = imageMime.String
	return item, nil
}

func queryItems(ctx context.Context, db *sql.DB, query string, args ...any) ([]model.Item, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// nullString stores empty strings as NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
