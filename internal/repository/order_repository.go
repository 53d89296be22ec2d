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
	// ErrOrderNotFound covers both a genuinely missing order and an
	// order owned by someone else; callers must not be able to tell
	// the two apart.
	ErrOrderNotFound       = errors.New("order not found")
	ErrOrderNotCancellable = errors.New("order can no longer be cancelled")
)

// OrderRepository defines data access for orders and their snapshot
// line items.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	FindByIDForUser(ctx context.Context, id, userID uuid.UUID) (*domain.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error)
	DeleteOwned(ctx context.Context, id, userID uuid.UUID) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error
}

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new instance of OrderRepository
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

// Create persists an order and its items in a single transaction,
// atomically decrementing catalog stock for every line. The decrement
// is guarded by `stock >= quantity` so two concurrent orders can never
// jointly oversell a size; any shortfall aborts the whole order.
func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	decrementQuery := `
		UPDATE product_sizes
		SET stock = stock - $3
		WHERE product_id = $1 AND size = $2 AND stock >= $3
	`

	for _, item := range order.Items {
		result, err := tx.ExecContext(ctx, decrementQuery, item.ProductID, string(item.SelectedSize), item.Quantity)
		if err != nil {
			return fmt.Errorf("failed to decrement stock: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}

		if rowsAffected == 0 {
			return ErrInsufficientStock
		}
	}

	orderQuery := `
		INSERT INTO orders (id, user_id, address, phone, total_amount, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = tx.ExecContext(
		ctx,
		orderQuery,
		order.ID,
		order.UserID,
		order.Address,
		order.Phone,
		order.TotalAmount,
		string(order.Status),
		order.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (id, order_id, product_id, selected_size, quantity)
		VALUES ($1, $2, $3, $4, $5)
	`

	for _, item := range order.Items {
		_, err := tx.ExecContext(
			ctx,
			itemQuery,
			item.ID,
			order.ID,
			item.ProductID,
			string(item.SelectedSize),
			item.Quantity,
		)
		if err != nil {
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit order: %w", err)
	}

	return nil
}

// FindByID retrieves an order regardless of owner. Reserved for admin
// flows; user-facing reads go through FindByIDForUser.
func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return r.findOne(ctx, `WHERE id = $1`, id)
}

// FindByIDForUser retrieves an order only when it belongs to userID.
// A foreign order yields the same ErrOrderNotFound as a missing one.
func (r *orderRepository) FindByIDForUser(ctx context.Context, id, userID uuid.UUID) (*domain.Order, error) {
	return r.findOne(ctx, `WHERE id = $1 AND user_id = $2`, id, userID)
}

func (r *orderRepository) findOne(ctx context.Context, where string, args ...interface{}) (*domain.Order, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, address, phone, total_amount, status, created_at
		FROM orders
		%s
	`, where)

	order := &domain.Order{}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&order.ID,
		&order.UserID,
		&order.Address,
		&order.Phone,
		&order.TotalAmount,
		&order.Status,
		&order.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order: %w", err)
	}

	order.Items, err = r.loadItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	return order, nil
}

// ListByUser retrieves all of a user's orders, newest first, each line
// joined to current product display data.
func (r *orderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	query := `
		SELECT id, user_id, address, phone, total_amount, status, created_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []*domain.Order{}
	for rows.Next() {
		order := &domain.Order{}
		err := rows.Scan(
			&order.ID,
			&order.UserID,
			&order.Address,
			&order.Phone,
			&order.TotalAmount,
			&order.Status,
			&order.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	for _, order := range orders {
		order.Items, err = r.loadItems(ctx, order.ID)
		if err != nil {
			return nil, err
		}
	}

	return orders, nil
}

// DeleteOwned cancels (deletes) an order when it belongs to userID and
// is still pending. Missing and foreign orders are indistinguishable.
func (r *orderRepository) DeleteOwned(ctx context.Context, id, userID uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var status domain.OrderStatus
	err = tx.QueryRowContext(
		ctx,
		`SELECT status FROM orders WHERE id = $1 AND user_id = $2 FOR UPDATE`,
		id, userID,
	).Scan(&status)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrOrderNotFound
		}
		return fmt.Errorf("failed to find order for cancellation: %w", err)
	}

	if status != domain.OrderStatusPending {
		return ErrOrderNotCancellable
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit cancellation: %w", err)
	}

	return nil
}

// UpdateStatus sets the order's lifecycle state. Transition legality is
// checked by the service layer.
func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error {
	result, err := r.db.ExecContext(
		ctx,
		`UPDATE orders SET status = $2 WHERE id = $1`,
		id, string(status),
	)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrOrderNotFound
	}

	return nil
}

func (r *orderRepository) loadItems(ctx context.Context, orderID uuid.UUID) ([]domain.OrderItem, error) {
	query := `
		SELECT oi.id, oi.product_id, oi.selected_size, oi.quantity,
		       p.title, p.price, p.category, p.image
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = $1
		ORDER BY oi.id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order items: %w", err)
	}
	defer rows.Close()

	items := []domain.OrderItem{}
	for rows.Next() {
		item := domain.OrderItem{Product: &domain.ProductSummary{}}
		err := rows.Scan(
			&item.ID,
			&item.ProductID,
			&item.SelectedSize,
			&item.Quantity,
			&item.Product.Title,
			&item.Product.Price,
			&item.Product.Category,
			&item.Product.Image,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		item.Product.ID = item.ProductID
		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return items, nil
}
