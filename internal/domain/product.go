package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Size is one of the five apparel sizes a product can be stocked in.
type Size string

const (
	SizeXS Size = "xs"
	SizeS  Size = "s"
	SizeM  Size = "m"
	SizeL  Size = "l"
	SizeXL Size = "xl"
)

// AllSizes lists every valid size in display order.
var AllSizes = []Size{SizeXS, SizeS, SizeM, SizeL, SizeXL}

// Valid reports whether s is one of the enumerated sizes.
func (s Size) Valid() bool {
	switch s {
	case SizeXS, SizeS, SizeM, SizeL, SizeXL:
		return true
	}
	return false
}

// Product represents a catalog item with per-size stock counts.
// The cart subsystem treats products as read-only reference data;
// stock is only ever decremented at order creation.
type Product struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	Title       string          `json:"title" db:"title"`
	Description string          `json:"description" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Category    string          `json:"category" db:"category"`
	Image       string          `json:"image" db:"image"`
	Sizes       map[Size]int    `json:"sizes"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// ProductSummary carries the display fields joined onto cart and order
// lines (title, price, category, image).
type ProductSummary struct {
	ID       uuid.UUID       `json:"id"`
	Title    string          `json:"title"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category"`
	Image    string          `json:"image"`
}

// Summary returns the display projection of the product.
func (p *Product) Summary() ProductSummary {
	return ProductSummary{
		ID:       p.ID,
		Title:    p.Title,
		Price:    p.Price,
		Category: p.Category,
		Image:    p.Image,
	}
}
