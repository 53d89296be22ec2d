package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"threadline/internal/domain"
	"threadline/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrEmptyOrder              = errors.New("no items provided for order")
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
)

// OrderLineInput is a checkout line as submitted by the client. Unit
// prices are NOT part of the input: they are re-derived from the
// catalog at creation time so a client can never under-price an order.
type OrderLineInput struct {
	ProductID    uuid.UUID
	SelectedSize domain.Size
	Quantity     int
}

// OrderService defines the business logic for the order lifecycle.
// All user-facing reads and the cancel path are scoped to the calling
// user's identity, which is always passed in explicitly.
type OrderService interface {
	Create(ctx context.Context, userID uuid.UUID, address, phone string, items []OrderLineInput) (*domain.Order, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error)
	Get(ctx context.Context, orderID, userID uuid.UUID) (*domain.Order, error)
	Cancel(ctx context.Context, orderID, userID uuid.UUID) error
	AdvanceStatus(ctx context.Context, orderID uuid.UUID, next domain.OrderStatus) (*domain.Order, error)
}

type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
}

// NewOrderService creates a new instance of OrderService
func NewOrderService(orderRepo repository.OrderRepository, productRepo repository.ProductRepository) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
	}
}

// Create prices the submitted lines from the catalog, snapshots them
// into a pending order with a frozen total, and atomically decrements
// stock for every line. The originating cart is untouched; clearing it
// remains the caller's responsibility.
func (s *orderService) Create(ctx context.Context, userID uuid.UUID, address, phone string, items []OrderLineInput) (*domain.Order, error) {
	if len(items) == 0 {
		return nil, ErrEmptyOrder
	}

	total := decimal.Zero
	orderItems := make([]domain.OrderItem, 0, len(items))

	for _, line := range items {
		if line.Quantity < 1 {
			return nil, ErrQuantityTooLow
		}

		product, err := s.productRepo.FindByID(ctx, line.ProductID)
		if err != nil {
			if err == repository.ErrProductNotFound {
				return nil, err
			}
			return nil, fmt.Errorf("failed to price order line: %w", err)
		}

		if !line.SelectedSize.Valid() {
			return nil, ErrSizeNotFound
		}
		if _, ok := product.Sizes[line.SelectedSize]; !ok {
			return nil, ErrSizeNotFound
		}

		total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		orderItems = append(orderItems, domain.OrderItem{
			ID:           uuid.New(),
			ProductID:    line.ProductID,
			SelectedSize: line.SelectedSize,
			Quantity:     line.Quantity,
		})
	}

	order := &domain.Order{
		ID:          uuid.New(),
		UserID:      userID,
		Items:       orderItems,
		Address:     address,
		Phone:       phone,
		TotalAmount: total,
		Status:      domain.OrderStatusPending,
		CreatedAt:   time.Now(),
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		if err == repository.ErrInsufficientStock {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	return s.orderRepo.FindByIDForUser(ctx, order.ID, userID)
}

// ListForUser returns the user's orders, newest first. A user with no
// orders gets an empty slice, not an error.
func (s *orderService) ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// Get returns one of the user's own orders. Foreign and missing orders
// both surface as not found so order IDs leak no existence info.
func (s *orderService) Get(ctx context.Context, orderID, userID uuid.UUID) (*domain.Order, error) {
	order, err := s.orderRepo.FindByIDForUser(ctx, orderID, userID)
	if err != nil {
		if err == repository.ErrOrderNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return order, nil
}

// Cancel deletes the user's own pending order. Orders that have moved
// past pending can no longer be cancelled.
func (s *orderService) Cancel(ctx context.Context, orderID, userID uuid.UUID) error {
	if err := s.orderRepo.DeleteOwned(ctx, orderID, userID); err != nil {
		if err == repository.ErrOrderNotFound || err == repository.ErrOrderNotCancellable {
			return err
		}
		return fmt.Errorf("failed to cancel order: %w", err)
	}
	return nil
}

// AdvanceStatus moves an order one step along the fulfilment
// lifecycle. Only forward single-step transitions are legal.
func (s *orderService) AdvanceStatus(ctx context.Context, orderID uuid.UUID, next domain.OrderStatus) (*domain.Order, error) {
	if !next.Valid() {
		return nil, ErrInvalidStatusTransition
	}

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if err == repository.ErrOrderNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find order: %w", err)
	}

	if !order.Status.CanTransitionTo(next) {
		return nil, ErrInvalidStatusTransition
	}

	if err := s.orderRepo.UpdateStatus(ctx, orderID, next); err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	order.Status = next
	return order, nil
}
