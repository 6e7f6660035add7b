package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"stayraw/internal/domain"
	"stayraw/internal/repository"

	"go.uber.org/zap"
)

var (
	ErrNotEligibleToReview = errors.New("user is not eligible to review this product")
	ErrInvalidRating       = errors.New("rating must be between 1 and 5")
	ErrEmptyComment        = errors.New("review comment must not be empty")
)

// ReviewService defines the interface for review business logic. Eligibility
// gates every write: the user must have a Delivered order containing the
// product and must not have reviewed it before.
type ReviewService interface {
	CanReview(ctx context.Context, userID, productID int64) (bool, error)
	AddReview(ctx context.Context, review *domain.Review) error
	GetReviewsByProduct(ctx context.Context, productID int64) ([]*domain.Review, error)
}

type reviewService struct {
	reviewRepo repository.ReviewRepository
	orderRepo  repository.OrderRepository
	logger     *zap.Logger
}

// NewReviewService creates a new instance of ReviewService
func NewReviewService(reviewRepo repository.ReviewRepository, orderRepo repository.OrderRepository, logger *zap.Logger) ReviewService {
	return &reviewService{
		reviewRepo: reviewRepo,
		orderRepo:  orderRepo,
		logger:     logger,
	}
}

// CanReview reports whether the user purchased-and-received the product and
// has not reviewed it yet.
func (s *reviewService) CanReview(ctx context.Context, userID, productID int64) (bool, error) {
	purchased, err := s.orderRepo.HasDeliveredProduct(ctx, userID, productID)
	if err != nil {
		return false, fmt.Errorf("failed to check purchase history: %w", err)
	}
	if !purchased {
		return false, nil
	}

	reviewed, err := s.reviewRepo.HasUserReviewed(ctx, userID, productID)
	if err != nil {
		return false, fmt.Errorf("failed to check existing review: %w", err)
	}

	return !reviewed, nil
}

// AddReview validates the review and appends it. The repository recomputes
// the product's aggregate rating and review count atomically with the
// insert.
func (s *reviewService) AddReview(ctx context.Context, review *domain.Review) error {
	if review.Rating < 1 || review.Rating > 5 {
		return ErrInvalidRating
	}
	if strings.TrimSpace(review.Comment) == "" {
		return ErrEmptyComment
	}

	eligible, err := s.CanReview(ctx, review.UserID, review.ProductID)
	if err != nil {
		return err
	}
	if !eligible {
		return ErrNotEligibleToReview
	}

	if review.CreatedAt.IsZero() {
		review.CreatedAt = time.Now().UTC()
	}

	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return fmt.Errorf("failed to add review: %w", err)
	}

	s.logger.Info("Review added",
		zap.Int64("product_id", review.ProductID),
		zap.Int64("user_id", review.UserID),
		zap.Int("rating", review.Rating),
	)

	return nil
}

// GetReviewsByProduct retrieves a product's reviews, newest first.
func (s *reviewService) GetReviewsByProduct(ctx context.Context, productID int64) ([]*domain.Review, error) {
	return s.reviewRepo.ListByProduct(ctx, productID)
}
