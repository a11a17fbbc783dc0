package model

import "time"

// Item is a lost or found report.
type Item struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Category      string    `json:"category"`
	Status        string    `json:"status"`
	ItemStatus    string    `json:"item_status"`
	LocationLost  string    `json:"location_lost,omitempty"`
	LocationFound string    `json:"location_found,omitempty"`
	Color         string    `json:"color,omitempty"`
	Brand         string    `json:"brand,omitempty"`
	ImageMime     string    `json:"image_mime,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Report directions.
const (
	StatusLost  = "lost"
	StatusFound = "found"
)

// Item lifecycle statuses. Only active items take part in matching.
const (
	ItemStatusActive   = "active"
	ItemStatusReunited = "reunited"
	ItemStatusClosed   = "closed"
)

// Categories offered by the item form.
const (
	CategoryElectronics = "electronics"
	CategoryDocuments   = "documents"
	CategoryKeys        = "keys"
	CategoryBags        = "bags"
	CategoryClothing    = "clothing"
	CategoryAccessories = "accessories"
	CategoryBooks       = "books"
	CategoryOther       = "other"
)

// ValidStatus reports whether s is a report direction.
func ValidStatus(s string) bool {
	return s == StatusLost || s == StatusFound
}

// OppositeStatus returns the direction candidates are drawn from.
func OppositeStatus(s string) string {
	if s == StatusLost {
		return StatusFound
	}
	return StatusLost
}

// ValidItemStatus reports whether s is a known lifecycle status.
func ValidItemStatus(s string) bool {
	switch s {
	case ItemStatusActive, ItemStatusReunited, ItemStatusClosed:
		return true
	}
	return false
}

// ValidCategory reports whether c is one of the known categories.
func ValidCategory(c string) bool {
	switch c {
	case CategoryElectronics, CategoryDocuments, CategoryKeys, CategoryBags,
		CategoryClothing, CategoryAccessories, CategoryBooks, CategoryOther:
		return true
	}
	return false
}
