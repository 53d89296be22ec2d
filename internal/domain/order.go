package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether next is a legal single-step move from
// s. Fulfilment advances pending -> processing -> shipped -> delivered;
// cancellation is only reachable from pending.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return next == OrderStatusProcessing || next == OrderStatusCancelled
	case OrderStatusProcessing:
		return next == OrderStatusShipped
	case OrderStatusShipped:
		return next == OrderStatusDelivered
	}
	return false
}

// Order is an immutable priced snapshot of checked-out line items.
// TotalAmount is computed once at creation and never re-derived, even
// if catalog prices change afterwards.
type Order struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	UserID      uuid.UUID       `json:"user_id" db:"user_id"`
	Items       []OrderItem     `json:"items"`
	Address     string          `json:"address" db:"address"`
	Phone       string          `json:"phone" db:"phone"`
	TotalAmount decimal.Decimal `json:"total_amount" db:"total_amount"`
	Status      OrderStatus     `json:"status" db:"status"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

// OrderItem is a snapshot line inside an order. Product carries the
// CURRENT catalog display data when joined on reads, so the displayed
// unit price may diverge from the frozen total.
type OrderItem struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	ProductID    uuid.UUID       `json:"product_id" db:"product_id"`
	SelectedSize Size            `json:"selected_size" db:"selected_size"`
	Quantity     int             `json:"quantity" db:"quantity"`
	Product      *ProductSummary `json:"product,omitempty"`
}
