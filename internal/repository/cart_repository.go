package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"threadline/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrCartNotFound     = errors.New("cart not found")
	ErrCartItemNotFound = errors.New("product not found in cart")
)

// CartRepository defines data access for carts and their line items.
// Adds append distinct rows; merging identical product+size lines is
// deliberately left to display layers.
type CartRepository interface {
	Create(ctx context.Context, cart *domain.Cart) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Cart, error)
	AddItem(ctx context.Context, cartID uuid.UUID, item *domain.CartItem) error
	UpdateItemQuantity(ctx context.Context, cartID, productID uuid.UUID, size domain.Size, quantity int) error
	RemoveProduct(ctx context.Context, cartID, productID uuid.UUID) error
}

type cartRepository struct {
	db *sql.DB
}

// NewCartRepository creates a new instance of CartRepository
func NewCartRepository(db *sql.DB) CartRepository {
	return &cartRepository{db: db}
}

// Create inserts an empty cart. Called once per user at registration.
func (r *cartRepository) Create(ctx context.Context, cart *domain.Cart) error {
	query := `INSERT INTO carts (id, created_at) VALUES ($1, $2)`

	_, err := r.db.ExecContext(ctx, query, cart.ID, cart.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create cart: %w", err)
	}

	return nil
}

// FindByID retrieves a cart with each line joined to product display
// fields (title, price, category, image).
func (r *cartRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Cart, error) {
	cart := &domain.Cart{}
	err := r.db.QueryRowContext(
		ctx,
		`SELECT id, created_at FROM carts WHERE id = $1`,
		id,
	).Scan(&cart.ID, &cart.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to find cart by ID: %w", err)
	}

	query := `
		SELECT ci.id, ci.product_id, ci.selected_size, ci.quantity, ci.added_at,
		       p.title, p.price, p.category, p.image
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.added_at ASC, ci.id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart items: %w", err)
	}
	defer rows.Close()

	cart.Items = []domain.CartItem{}
	for rows.Next() {
		item := domain.CartItem{Product: &domain.ProductSummary{}}
		err := rows.Scan(
			&item.ID,
			&item.ProductID,
			&item.SelectedSize,
			&item.Quantity,
			&item.AddedAt,
			&item.Product.Title,
			&item.Product.Price,
			&item.Product.Category,
			&item.Product.Image,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		item.Product.ID = item.ProductID
		cart.Items = append(cart.Items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}

	return cart, nil
}

// AddItem appends a new line to the cart. Identical product+size lines
// are never merged at this layer.
func (r *cartRepository) AddItem(ctx context.Context, cartID uuid.UUID, item *domain.CartItem) error {
	if err := r.ensureCartExists(ctx, cartID); err != nil {
		return err
	}

	query := `
		INSERT INTO cart_items (id, cart_id, product_id, selected_size, quantity, added_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		item.ID,
		cartID,
		item.ProductID,
		string(item.SelectedSize),
		item.Quantity,
		item.AddedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to add cart item: %w", err)
	}

	return nil
}

// UpdateItemQuantity sets the quantity on the earliest line matching
// product+size, mirroring how the cart's update targets the first
// matching entry when duplicates exist.
func (r *cartRepository) UpdateItemQuantity(ctx context.Context, cartID, productID uuid.UUID, size domain.Size, quantity int) error {
	query := `
		UPDATE cart_items
		SET quantity = $4
		WHERE id = (
			SELECT id FROM cart_items
			WHERE cart_id = $1 AND product_id = $2 AND selected_size = $3
			ORDER BY added_at ASC, id ASC
			LIMIT 1
		)
	`

	result, err := r.db.ExecContext(ctx, query, cartID, productID, string(size), quantity)
	if err != nil {
		return fmt.Errorf("failed to update cart item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrCartItemNotFound
	}

	return nil
}

// RemoveProduct deletes every line for the product regardless of size.
// Removing an absent product is not an error.
func (r *cartRepository) RemoveProduct(ctx context.Context, cartID, productID uuid.UUID) error {
	if err := r.ensureCartExists(ctx, cartID); err != nil {
		return err
	}

	query := `DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2`

	if _, err := r.db.ExecContext(ctx, query, cartID, productID); err != nil {
		return fmt.Errorf("failed to remove cart items: %w", err)
	}

	return nil
}

func (r *cartRepository) ensureCartExists(ctx context.Context, cartID uuid.UUID) error {
	var exists bool
	err := r.db.QueryRowContext(
		ctx,
		`SELECT EXISTS (SELECT 1 FROM carts WHERE id = $1)`,
		cartID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check cart existence: %w", err)
	}
	if !exists {
		return ErrCartNotFound
	}
	return nil
}
