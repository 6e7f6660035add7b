package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"stayraw/internal/domain"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// ProductRepository defines the interface for product data access. FindByID
// returns ErrProductNotFound as an expected condition; callers treat it as a
// normal branch (dangling order references resolve to "product deleted").
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	ListByCategory(ctx context.Context, categoryID int64) ([]*domain.Product, error)
	List(ctx context.Context) ([]*domain.Product, error)
	Search(ctx context.Context, query string) ([]*domain.Product, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `id, category_id, name, description, price, discount_price, stock, image_url, rating, review_count, is_assured, sizes, created_at, updated_at`

// Create inserts a new product. The id is assigned by the database sequence
// and written back onto the product.
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	sizes, err := json.Marshal(product.Sizes)
	if err != nil {
		return fmt.Errorf("failed to encode sizes: %w", err)
	}

	query := `
		INSERT INTO products (category_id, name, description, price, discount_price, stock, image_url, rating, review_count, is_assured, sizes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`

	err = r.db.QueryRowContext(
		ctx,
		query,
		product.CategoryID,
		product.Name,
		product.Description,
		product.Price,
		product.DiscountPrice,
		product.Stock,
		product.ImageURL,
		product.Rating,
		product.ReviewCount,
		product.IsAssured,
		sizes,
		product.CreatedAt,
		product.UpdatedAt,
	).Scan(&product.ID)

	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// Update replaces the mutable columns of an existing product. Rating and
// review count are owned by the review flow and are not touched here.
func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	sizes, err := json.Marshal(product.Sizes)
	if err != nil {
		return fmt.Errorf("failed to encode sizes: %w", err)
	}

	query := `
		UPDATE products
		SET category_id = $2, name = $3, description = $4, price = $5,
		    discount_price = $6, stock = $7, image_url = $8, is_assured = $9,
		    sizes = $10, updated_at = $11
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.CategoryID,
		product.Name,
		product.Description,
		product.Price,
		product.DiscountPrice,
		product.Stock,
		product.ImageURL,
		product.IsAssured,
		sizes,
		product.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// Delete removes a product. Deletion does not cascade to order items, which
// keep their product_id reference.
func (r *productRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// FindByID retrieves a product by ID.
func (r *productRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE id = $1`, productColumns)

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

// ListByCategory retrieves the products of one category in insertion order.
// Out-of-stock products are not filtered out.
func (r *productRepository) ListByCategory(ctx context.Context, categoryID int64) ([]*domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE category_id = $1 ORDER BY id`, productColumns)
	return r.queryProducts(ctx, query, categoryID)
}

// List retrieves all products in insertion order.
func (r *productRepository) List(ctx context.Context) ([]*domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products ORDER BY id`, productColumns)
	return r.queryProducts(ctx, query)
}

// Search performs a case-insensitive substring search over name and
// description. An empty query returns all products.
func (r *productRepository) Search(ctx context.Context, query string) ([]*domain.Product, error) {
	if strings.TrimSpace(query) == "" {
		return r.List(ctx)
	}

	pattern := "%" + query + "%"
	q := fmt.Sprintf(`
		SELECT %s FROM products
		WHERE name ILIKE $1 OR description ILIKE $1
		ORDER BY id
	`, productColumns)

	return r.queryProducts(ctx, q, pattern)
}

func (r *productRepository) queryProducts(ctx context.Context, query string, args ...interface{}) ([]*domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	product := &domain.Product{}
	var sizes []byte

	err := row.Scan(
		&product.ID,
		&product.CategoryID,
		&product.Name,
		&product.Description,
		&product.Price,
		&product.DiscountPrice,
		&product.Stock,
		&product.ImageURL,
		&product.Rating,
		&product.ReviewCount,
		&product.IsAssured,
		&sizes,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(sizes) > 0 {
		if err := json.Unmarshal(sizes, &product.Sizes); err != nil {
			return nil, fmt.Errorf("failed to decode sizes: %w", err)
		}
	}

	return product, nil
}
