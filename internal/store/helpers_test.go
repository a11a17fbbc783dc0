package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/erazemk/lostfound/internal/model"
)

func seedUser(t *testing.T, database *sql.DB, username string) *model.User {
	t.Helper()
	u, err := CreateUser(context.Background(), database, username, "hash", model.RoleUser)
	if err != nil {
		t.Fatalf("CreateUser(%q): %v", username, err)
	}
	return u
}

func seedItem(t *testing.T, database *sql.DB, userID int64, status, title string) *model.Item {
	t.Helper()
	in := &model.Item{
		UserID:      userID,
		Title:       title,
		Description: title + " description",
		Category:    model.CategoryElectronics,
		Status:      status,
	}
	if status == model.StatusLost {
		in.LocationLost = "Library"
	} else {
		in.LocationFound = "Library"
	}
	item, err := CreateItem(context.Background(), database, in)
	if err != nil {
		t.Fatalf("CreateItem(%q): %v", title, err)
	}
	return item
}
