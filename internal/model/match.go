package model

import "time"

// Match pairs one lost item with one found item.
type Match struct {
	ID          int64     `json:"id"`
	LostItemID  int64     `json:"lost_item_id"`
	FoundItemID int64     `json:"found_item_id"`
	MatchScore  float64   `json:"match_score"`
	Status      string    `json:"status"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Joined fields (not always populated).
	LostItemTitle  string `json:"lost_item_title,omitempty"`
	FoundItemTitle string `json:"found_item_title,omitempty"`
	LostOwnerID    int64  `json:"lost_owner_id,omitempty"`
	FoundOwnerID   int64  `json:"found_owner_id,omitempty"`
	LostOwnerName  string `json:"lost_owner_name,omitempty"`
	FoundOwnerName string `json:"found_owner_name,omitempty"`
}

// Match statuses.
const (
	MatchStatusPending   = "pending"
	MatchStatusConfirmed = "confirmed"
	MatchStatusRejected  = "rejected"
)
