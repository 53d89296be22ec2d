package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"threadline/internal/domain"
	"threadline/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrQuantityTooLow = errors.New("quantity must be at least 1")
	ErrSizeNotFound   = errors.New("selected size not found")
)

// CartService defines the business logic for cart mutations. Every
// mutation re-validates the requested quantity against current catalog
// stock; stock itself is never changed by cart operations.
type CartService interface {
	GetCart(ctx context.Context, cartID uuid.UUID) (*domain.Cart, error)
	AddItem(ctx context.Context, cartID, productID uuid.UUID, size domain.Size, quantity int) (*domain.Cart, error)
	UpdateQuantity(ctx context.Context, cartID, productID uuid.UUID, size domain.Size, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, cartID, productID uuid.UUID) (*domain.Cart, error)
}

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

// NewCartService creates a new instance of CartService
func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// GetCart returns the cart with product display fields joined onto
// each line.
func (s *cartService) GetCart(ctx context.Context, cartID uuid.UUID) (*domain.Cart, error) {
	cart, err := s.cartRepo.FindByID(ctx, cartID)
	if err != nil {
		if err == repository.ErrCartNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	return cart, nil
}

// AddItem appends a new line after validating the product, size bucket
// and stock. Identical product+size lines are appended, not merged.
func (s *cartService) AddItem(ctx context.Context, cartID, productID uuid.UUID, size domain.Size, quantity int) (*domain.Cart, error) {
	if quantity < 1 {
		return nil, ErrQuantityTooLow
	}

	product, err := s.validateStock(ctx, productID, size, quantity)
	if err != nil {
		return nil, err
	}

	item := &domain.CartItem{
		ID:           uuid.New(),
		ProductID:    product.ID,
		SelectedSize: size,
		Quantity:     quantity,
		AddedAt:      time.Now(),
	}

	if err := s.cartRepo.AddItem(ctx, cartID, item); err != nil {
		if err == repository.ErrCartNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to add item to cart: %w", err)
	}

	return s.GetCart(ctx, cartID)
}

// UpdateQuantity sets the quantity on the earliest matching line.
// Quantities below 1 are rejected; remove is the way to drop a line.
func (s *cartService) UpdateQuantity(ctx context.Context, cartID, productID uuid.UUID, size domain.Size, quantity int) (*domain.Cart, error) {
	if quantity < 1 {
		return nil, ErrQuantityTooLow
	}

	if _, err := s.validateStock(ctx, productID, size, quantity); err != nil {
		return nil, err
	}

	if err := s.cartRepo.UpdateItemQuantity(ctx, cartID, productID, size, quantity); err != nil {
		if err == repository.ErrCartItemNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}

	return s.GetCart(ctx, cartID)
}

// RemoveItem deletes every line referencing the product, regardless of
// size. Removing an absent product is a no-op.
func (s *cartService) RemoveItem(ctx context.Context, cartID, productID uuid.UUID) (*domain.Cart, error) {
	if err := s.cartRepo.RemoveProduct(ctx, cartID, productID); err != nil {
		if err == repository.ErrCartNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to remove item from cart: %w", err)
	}

	return s.GetCart(ctx, cartID)
}

// validateStock loads the product and checks the size bucket against
// the requested quantity. The stock numbers are a point-in-time check;
// nothing is reserved until order creation decrements them.
func (s *cartService) validateStock(ctx context.Context, productID uuid.UUID, size domain.Size, quantity int) (*domain.Product, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if err == repository.ErrProductNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}

	if !size.Valid() {
		return nil, ErrSizeNotFound
	}
	if _, ok := product.Sizes[size]; !ok {
		return nil, ErrSizeNotFound
	}

	if !SizeAvailable(product.Sizes, size, quantity) {
		return nil, repository.ErrInsufficientStock
	}

	return product, nil
}
