package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"stayraw/internal/domain"
)

var (
	ErrReviewNotFound = errors.New("review not found")
)

// ReviewRepository defines the interface for review data access. Create
// must be atomic with the product aggregate recompute: no reader may see a
// review inserted while the product still carries the old rating.
type ReviewRepository interface {
	Create(ctx context.Context, review *domain.Review) error
	ListByProduct(ctx context.Context, productID int64) ([]*domain.Review, error)
	HasUserReviewed(ctx context.Context, userID, productID int64) (bool, error)
}

type reviewRepository struct {
	db *sql.DB
}

// NewReviewRepository creates a new instance of ReviewRepository
func NewReviewRepository(db *sql.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

// Create inserts the review and recomputes the product's rating (mean of all
// ratings, one decimal) and review count inside one transaction.
func (r *reviewRepository) Create(ctx context.Context, review *domain.Review) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO reviews (product_id, user_id, user_name, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err = tx.QueryRowContext(
		ctx,
		query,
		review.ProductID,
		review.UserID,
		review.UserName,
		review.Rating,
		review.Comment,
		review.CreatedAt,
	).Scan(&review.ID)
	if err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}

	recompute := `
		UPDATE products p
		SET rating = agg.avg_rating, review_count = agg.cnt
		FROM (
			SELECT ROUND(AVG(rating)::numeric, 1) AS avg_rating, COUNT(*) AS cnt
			FROM reviews
			WHERE product_id = $1
		) agg
		WHERE p.id = $1
	`

	if _, err := tx.ExecContext(ctx, recompute, review.ProductID); err != nil {
		return fmt.Errorf("failed to recompute product rating: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit review: %w", err)
	}

	return nil
}

// ListByProduct retrieves a product's reviews, newest first.
func (r *reviewRepository) ListByProduct(ctx context.Context, productID int64) ([]*domain.Review, error) {
	query := `
		SELECT id, product_id, user_id, user_name, rating, comment, created_at
		FROM reviews
		WHERE product_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.db.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	reviews := []*domain.Review{}
	for rows.Next() {
		review := &domain.Review{}
		err := rows.Scan(
			&review.ID,
			&review.ProductID,
			&review.UserID,
			&review.UserName,
			&review.Rating,
			&review.Comment,
			&review.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, review)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reviews: %w", err)
	}

	return reviews, nil
}

// HasUserReviewed reports whether the user already reviewed the product.
func (r *reviewRepository) HasUserReviewed(ctx context.Context, userID, productID int64) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM reviews WHERE user_id = $1 AND product_id = $2)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, userID, productID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check existing review: %w", err)
	}

	return exists, nil
}
