package model

import "time"

// Item is a single physical piece of equipment.
type Item struct {
	ID                  int64     `json:"id"`
	InventoryNumber     string    `json:"inventory_number"`
	Name                string    `json:"name"`
	CategoryID          int64     `json:"category_id"`
	StatusID            int64     `json:"status_id"`
	ConditionID         *int64    `json:"condition_id,omitempty"`
	IntegrityPercentage int       `json:"integrity_percentage"`
	PurchaseDate        Date      `json:"purchase_date"`
	Notes               string    `json:"notes,omitempty"`
	ImageMime           string    `json:"image_mime,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// ItemInput holds the editable attributes of an item. When CategoryID is zero
// the category is looked up by CategoryName and created if missing, in the
// same transaction as the item write.
type ItemInput struct {
	InventoryNumber     string `json:"inventory_number"`
	Name                string `json:"name"`
	CategoryID          int64  `json:"category_id"`
	CategoryName        string `json:"category_name,omitempty"`
	StatusID            int64  `json:"status_id"`
	IntegrityPercentage int    `json:"integrity_percentage"`
	PurchaseDate        Date   `json:"purchase_date"`
	Notes               string `json:"notes"`
}

// ItemDetail is the joined, display-ready projection of an item.
type ItemDetail struct {
	ID                  int64  `json:"id"`
	InventoryNumber     string `json:"inventory_number"`
	Name                string `json:"name"`
	CategoryID          int64  `json:"category_id"`
	CategoryName        string `json:"category_name"`
	StatusID            int64  `json:"status_id"`
	StatusName          string `json:"status_name"`
	ConditionName       string `json:"condition_name,omitempty"`
	IntegrityPercentage int    `json:"integrity_percentage"`
	PurchaseDate        Date   `json:"purchase_date"`
	Notes               string `json:"notes,omitempty"`
	Critical            bool   `json:"critical"`
}

// ItemFilter narrows ListItemDetails. Zero values disable a filter.
type ItemFilter struct {
	Search     string
	CategoryID int64
	StatusID   int64
}

// Integrity bounds.
const (
	MinIntegrity = 0
	MaxIntegrity = 100
)

// DefaultCriticalIntegrity is the integrity below which an item is flagged critical.
const DefaultCriticalIntegrity = 20

// ValidIntegrity reports whether p is a valid integrity percentage.
func ValidIntegrity(p int) bool {
	return p >= MinIntegrity && p <= MaxIntegrity
}
