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
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock available")
)

// ProductRepository defines read access to the catalog. Products are
// reference data: the only write paths are seeding and the atomic
// stock decrement performed by order creation.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Count(ctx context.Context) (int, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	List(ctx context.Context, category string) ([]*domain.Product, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

// Create inserts a product and its per-size stock rows. Used by the
// startup seeder.
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO products (id, title, description, price, category, image, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = tx.ExecContext(
		ctx,
		query,
		product.ID,
		product.Title,
		product.Description,
		product.Price,
		product.Category,
		product.Image,
		product.CreatedAt,
		product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	sizeQuery := `INSERT INTO product_sizes (product_id, size, stock) VALUES ($1, $2, $3)`
	for _, size := range domain.AllSizes {
		stock, ok := product.Sizes[size]
		if !ok {
			continue
		}
		if _, err := tx.ExecContext(ctx, sizeQuery, product.ID, string(size), stock); err != nil {
			return fmt.Errorf("failed to create product size %s: %w", size, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit product: %w", err)
	}

	return nil
}

// Count returns the number of products in the catalog.
func (r *productRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}

// FindByID retrieves a product with its size-stock map.
func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := `
		SELECT id, title, description, price, category, image, created_at, updated_at
		FROM products
		WHERE id = $1
	`

	product := &domain.Product{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&product.ID,
		&product.Title,
		&product.Description,
		&product.Price,
		&product.Category,
		&product.Image,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	product.Sizes, err = r.loadSizes(ctx, product.ID)
	if err != nil {
		return nil, err
	}

	return product, nil
}

// List retrieves catalog products, optionally filtered by category.
func (r *productRepository) List(ctx context.Context, category string) ([]*domain.Product, error) {
	query := `
		SELECT id, title, description, price, category, image, created_at, updated_at
		FROM products
	`
	args := []interface{}{}
	if category != "" {
		query += ` WHERE category = $1`
		args = append(args, category)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product := &domain.Product{}
		err := rows.Scan(
			&product.ID,
			&product.Title,
			&product.Description,
			&product.Price,
			&product.Category,
			&product.Image,
			&product.CreatedAt,
			&product.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	for _, product := range products {
		product.Sizes, err = r.loadSizes(ctx, product.ID)
		if err != nil {
			return nil, err
		}
	}

	return products, nil
}

func (r *productRepository) loadSizes(ctx context.Context, productID uuid.UUID) (map[domain.Size]int, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT size, stock FROM product_sizes WHERE product_id = $1`,
		productID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load product sizes: %w", err)
	}
	defer rows.Close()

	sizes := make(map[domain.Size]int)
	for rows.Next() {
		var size string
		var stock int
		if err := rows.Scan(&size, &stock); err != nil {
			return nil, fmt.Errorf("failed to scan product size: %w", err)
		}
		sizes[domain.Size(size)] = stock
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product sizes: %w", err)
	}

	return sizes, nil
}
