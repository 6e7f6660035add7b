package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"stayraw/internal/domain"
	"stayraw/internal/repository"
)

var (
	ErrInvalidCouponType  = errors.New("coupon type must be percentage or fixed")
	ErrInvalidCouponValue = errors.New("coupon value must be greater than zero")
	ErrEmptyCouponCode    = errors.New("coupon code must not be empty")
)

// CouponService defines the interface for the admin coupon CRUD. Codes are
// stored uppercased; the cart engine matches them case-insensitively.
type CouponService interface {
	ListCoupons(ctx context.Context) ([]*domain.Coupon, error)
	AddCoupon(ctx context.Context, coupon *domain.Coupon) error
	UpdateCoupon(ctx context.Context, coupon *domain.Coupon) error
	DeleteCoupon(ctx context.Context, id int64) error
}

type couponService struct {
	couponRepo repository.CouponRepository
}

// NewCouponService creates a new instance of CouponService
func NewCouponService(couponRepo repository.CouponRepository) CouponService {
	return &couponService{couponRepo: couponRepo}
}

func (s *couponService) ListCoupons(ctx context.Context) ([]*domain.Coupon, error) {
	return s.couponRepo.List(ctx)
}

func (s *couponService) AddCoupon(ctx context.Context, coupon *domain.Coupon) error {
	if err := validateCoupon(coupon); err != nil {
		return err
	}

	if err := s.couponRepo.Create(ctx, coupon); err != nil {
		return fmt.Errorf("failed to add coupon: %w", err)
	}

	return nil
}

func (s *couponService) UpdateCoupon(ctx context.Context, coupon *domain.Coupon) error {
	if err := validateCoupon(coupon); err != nil {
		return err
	}

	return s.couponRepo.Update(ctx, coupon)
}

func (s *couponService) DeleteCoupon(ctx context.Context, id int64) error {
	return s.couponRepo.Delete(ctx, id)
}

func validateCoupon(coupon *domain.Coupon) error {
	coupon.Code = strings.ToUpper(strings.TrimSpace(coupon.Code))
	if coupon.Code == "" {
		return ErrEmptyCouponCode
	}
	if coupon.Type != domain.CouponPercentage && coupon.Type != domain.CouponFixed {
		return ErrInvalidCouponType
	}
	if !coupon.Value.IsPositive() {
		return ErrInvalidCouponValue
	}
	return nil
}
