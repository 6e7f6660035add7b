package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"stayraw/internal/domain"
)

var (
	ErrCouponNotFound = errors.New("coupon not found")
)

// CouponRepository defines the interface for discount coupon data access.
// FindActiveByCode matches case-insensitively and only returns coupons with
// the active flag set; inactive or unknown codes yield ErrCouponNotFound.
type CouponRepository interface {
	Create(ctx context.Context, coupon *domain.Coupon) error
	Update(ctx context.Context, coupon *domain.Coupon) error
	Delete(ctx context.Context, id int64) error
	FindActiveByCode(ctx context.Context, code string) (*domain.Coupon, error)
	List(ctx context.Context) ([]*domain.Coupon, error)
}

type couponRepository struct {
	db *sql.DB
}

// NewCouponRepository creates a new instance of CouponRepository
func NewCouponRepository(db *sql.DB) CouponRepository {
	return &couponRepository{db: db}
}

func (r *couponRepository) Create(ctx context.Context, coupon *domain.Coupon) error {
	query := `
		INSERT INTO coupons (code, type, value, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := r.db.QueryRowContext(ctx, query, coupon.Code, coupon.Type, coupon.Value, coupon.IsActive).Scan(&coupon.ID)
	if err != nil {
		return fmt.Errorf("failed to create coupon: %w", err)
	}

	return nil
}

func (r *couponRepository) Update(ctx context.Context, coupon *domain.Coupon) error {
	query := `UPDATE coupons SET code = $2, type = $3, value = $4, is_active = $5 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, coupon.ID, coupon.Code, coupon.Type, coupon.Value, coupon.IsActive)
	if err != nil {
		return fmt.Errorf("failed to update coupon: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrCouponNotFound
	}

	return nil
}

func (r *couponRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM coupons WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete coupon: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrCouponNotFound
	}

	return nil
}

func (r *couponRepository) FindActiveByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	query := `
		SELECT id, code, type, value, is_active
		FROM coupons
		WHERE UPPER(code) = UPPER($1) AND is_active = TRUE
	`

	coupon := &domain.Coupon{}
	err := r.db.QueryRowContext(ctx, query, code).Scan(
		&coupon.ID,
		&coupon.Code,
		&coupon.Type,
		&coupon.Value,
		&coupon.IsActive,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCouponNotFound
		}
		return nil, fmt.Errorf("failed to find coupon by code: %w", err)
	}

	return coupon, nil
}

func (r *couponRepository) List(ctx context.Context) ([]*domain.Coupon, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, code, type, value, is_active FROM coupons ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list coupons: %w", err)
	}
	defer rows.Close()

	coupons := []*domain.Coupon{}
	for rows.Next() {
		coupon := &domain.Coupon{}
		if err := rows.Scan(&coupon.ID, &coupon.Code, &coupon.Type, &coupon.Value, &coupon.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan coupon: %w", err)
		}
		coupons = append(coupons, coupon)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating coupons: %w", err)
	}

	return coupons, nil
}
