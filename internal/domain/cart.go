package domain

import (
	"time"

	"github.com/google/uuid"
)

// Cart is a user's mutable collection of sized line items. Carts are
// created once at registration and emptied rather than deleted.
type Cart struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	Items     []CartItem `json:"items"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

// CartItem is a single line in a cart. Repeated adds for the same
// product and size append distinct lines; the storage layer never
// merges them.
type CartItem struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	ProductID    uuid.UUID       `json:"product_id" db:"product_id"`
	SelectedSize Size            `json:"selected_size" db:"selected_size"`
	Quantity     int             `json:"quantity" db:"quantity"`
	AddedAt      time.Time       `json:"added_at" db:"added_at"`
	Product      *ProductSummary `json:"product,omitempty"`
}
