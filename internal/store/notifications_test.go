package store

import (
	"context"
	"testing"

	"github.com/erazemk/lostfound/internal/db"
	"github.com/erazemk/lostfound/internal/model"
)

func TestNotificationInbox(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	alice := seedUser(t, database, "alice")
	bob := seedUser(t, database, "bob")

	first, err := CreateNotification(ctx, database, &model.Notification{
		UserID:  alice.ID,
		Type:    model.NotificationTypeMatch,
		Title:   "Potential Match Found!",
		Message: "A potential match for your lost item \"Phone\" was found!",
		Link:    "/matches/1",
	})
	if err != nil {
		t.Fatalf("CreateNotification: %v", err)
	}
	if first.IsRead {
		t.Error("expected new notification to be unread")
	}
	if first.Link != "/matches/1" {
		t.Errorf("expected link '/matches/1', got %q", first.Link)
	}

	second, _ := CreateNotification(ctx, database, &model.Notification{
		UserID: alice.ID, Type: model.NotificationTypeMatch, Title: "Second", Message: "m",
	})
	CreateNotification(ctx, database, &model.Notification{
		UserID: bob.ID, Type: model.NotificationTypeMatch, Title: "Bob's", Message: "m",
	})

	list, err := ListNotifications(ctx, database, alice.ID, false)
	if err != nil {
		t.Fatalf("ListNotifications: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(list))
	}
	if list[0].ID != second.ID {
		t.Errorf("expected newest first, got %d", list[0].ID)
	}

	// Bob cannot mark Alice's notification.
	ok, err := MarkNotificationRead(ctx, database, first.ID, bob.ID)
	if err != nil {
		t.Fatalf("MarkNotificationRead: %v", err)
	}
	if ok {
		t.Error("expected other user's notification to be untouched")
	}

	ok, _ = MarkNotificationRead(ctx, database, first.ID, alice.ID)
	if !ok {
		t.Error("expected notification to be marked read")
	}

	unread, _ := ListNotifications(ctx, database, alice.ID, true)
	if len(unread) != 1 || unread[0].ID != second.ID {
		t.Errorf("expected only notification %d unread, got %+v", second.ID, unread)
	}

	count, _ := CountUnreadNotifications(ctx, database, alice.ID)
	if count != 1 {
		t.Errorf("expected 1 unread, got %d", count)
	}

	n, err := MarkAllNotificationsRead(ctx, database, alice.ID)
	if err != nil {
		t.Fatalf("MarkAllNotificationsRead: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 changed, got %d", n)
	}

	ok, _ = DeleteNotification(ctx, database, second.ID, alice.ID)
	if !ok {
		t.Error("expected notification to be deleted")
	}
	list, _ = ListNotifications(ctx, database, alice.ID, false)
	if len(list) != 1 {
		t.Errorf("expected 1 notification left, got %d", len(list))
	}

	bobCount, _ := CountUnreadNotifications(ctx, database, bob.ID)
	if bobCount != 1 {
		t.Errorf("expected bob's notification untouched, got %d unread", bobCount)
	}
}
