package service

import (
	"context"
	"errors"
	"sort"
	"testing"

	"stayraw/internal/domain"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// mockReviewRepository mirrors the store's insert-and-recompute behavior
// against an in-memory product table.
type mockReviewRepository struct {
	reviews  []*domain.Review
	products map[int64]*domain.Product
	nextID   int64
}

func newMockReviewRepository(products map[int64]*domain.Product) *mockReviewRepository {
	return &mockReviewRepository{products: products}
}

func (m *mockReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	m.nextID++
	review.ID = m.nextID
	m.reviews = append(m.reviews, review)

	if product, ok := m.products[review.ProductID]; ok {
		sum := 0
		count := 0
		for _, r := range m.reviews {
			if r.ProductID == review.ProductID {
				sum += r.Rating
				count++
			}
		}
		product.Rating = decimal.NewFromInt(int64(sum)).
			Div(decimal.NewFromInt(int64(count))).
			Round(1)
		product.ReviewCount = count
	}
	return nil
}

func (m *mockReviewRepository) ListByProduct(ctx context.Context, productID int64) ([]*domain.Review, error) {
	var reviews []*domain.Review
	for _, r := range m.reviews {
		if r.ProductID == productID {
			reviews = append(reviews, r)
		}
	}
	sort.Slice(reviews, func(i, j int) bool {
		return reviews[i].CreatedAt.After(reviews[j].CreatedAt)
	})
	return reviews, nil
}

func (m *mockReviewRepository) HasUserReviewed(ctx context.Context, userID, productID int64) (bool, error) {
	for _, r := range m.reviews {
		if r.UserID == userID && r.ProductID == productID {
			return true, nil
		}
	}
	return false, nil
}

type reviewFixture struct {
	service  ReviewService
	reviews  *mockReviewRepository
	orders   *mockOrderRepository
	products map[int64]*domain.Product
}

func newReviewFixture() *reviewFixture {
	products := map[int64]*domain.Product{
		1: {ID: 1, Name: "Oversized Tee", Price: mustDecimal("799")},
	}
	reviews := newMockReviewRepository(products)
	orders := newMockOrderRepository()

	return &reviewFixture{
		service:  NewReviewService(reviews, orders, zap.NewNop()),
		reviews:  reviews,
		orders:   orders,
		products: products,
	}
}

// deliverProduct records a Delivered order so the user becomes eligible.
func (f *reviewFixture) deliverProduct(userID, productID int64) {
	id := "SR-" + string(rune('a'+len(f.orders.orders)))
	f.orders.orders[id] = &domain.Order{
		ID:     id,
		UserID: userID,
		Status: domain.OrderStatusDelivered,
		Items:  []domain.OrderItem{{ProductID: productID, Quantity: 1}},
	}
}

func TestCanReviewRequiresDeliveredOrder(t *testing.T) {
	f := newReviewFixture()

	can, err := f.service.CanReview(context.Background(), 1, 1)
	if err != nil {
		t.Fatalf("CanReview failed: %v", err)
	}
	if can {
		t.Error("user without a delivered order must not be eligible")
	}

	f.deliverProduct(1, 1)

	can, err = f.service.CanReview(context.Background(), 1, 1)
	if err != nil {
		t.Fatalf("CanReview failed: %v", err)
	}
	if !can {
		t.Error("user with a delivered order must be eligible")
	}
}

func TestAddReviewValidation(t *testing.T) {
	f := newReviewFixture()
	f.deliverProduct(1, 1)

	tests := []struct {
		name    string
		rating  int
		comment string
		wantErr error
	}{
		{"rating too low", 0, "nice", ErrInvalidRating},
		{"rating too high", 6, "nice", ErrInvalidRating},
		{"blank comment", 4, "   ", ErrEmptyComment},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.service.AddReview(context.Background(), &domain.Review{
				ProductID: 1,
				UserID:    1,
				UserName:  "John Doe",
				Rating:    tt.rating,
				Comment:   tt.comment,
			})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("AddReview error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAddReviewRejectsIneligibleUser(t *testing.T) {
	f := newReviewFixture()

	err := f.service.AddReview(context.Background(), &domain.Review{
		ProductID: 1,
		UserID:    1,
		UserName:  "John Doe",
		Rating:    5,
		Comment:   "great fit",
	})
	if !errors.Is(err, ErrNotEligibleToReview) {
		t.Errorf("expected ErrNotEligibleToReview, got %v", err)
	}
}

func TestAddReviewOncePerUserAndProduct(t *testing.T) {
	f := newReviewFixture()
	f.deliverProduct(1, 1)

	review := &domain.Review{ProductID: 1, UserID: 1, UserName: "John Doe", Rating: 5, Comment: "great fit"}
	if err := f.service.AddReview(context.Background(), review); err != nil {
		t.Fatalf("first AddReview failed: %v", err)
	}

	err := f.service.AddReview(context.Background(), &domain.Review{
		ProductID: 1,
		UserID:    1,
		UserName:  "John Doe",
		Rating:    2,
		Comment:   "changed my mind",
	})
	if !errors.Is(err, ErrNotEligibleToReview) {
		t.Errorf("expected ErrNotEligibleToReview on second review, got %v", err)
	}

	reviews, err := f.service.GetReviewsByProduct(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetReviewsByProduct failed: %v", err)
	}
	if len(reviews) != 1 {
		t.Errorf("reviews = %d, want 1", len(reviews))
	}
}

func TestAddReviewUpdatesAggregateRating(t *testing.T) {
	f := newReviewFixture()
	f.deliverProduct(1, 1)
	f.deliverProduct(2, 1)

	if err := f.service.AddReview(context.Background(), &domain.Review{
		ProductID: 1, UserID: 1, UserName: "John Doe", Rating: 5, Comment: "great fit",
	}); err != nil {
		t.Fatalf("AddReview failed: %v", err)
	}
	if err := f.service.AddReview(context.Background(), &domain.Review{
		ProductID: 1, UserID: 2, UserName: "Jane Roe", Rating: 4, Comment: "runs large",
	}); err != nil {
		t.Fatalf("AddReview failed: %v", err)
	}

	product := f.products[1]
	assertDecimal(t, "rating", product.Rating, "4.5")
	if product.ReviewCount != 2 {
		t.Errorf("review count = %d, want 2", product.ReviewCount)
	}
}

func TestProperty_AggregateRatingIsMeanToOneDecimal(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("product rating is the mean of all ratings rounded to one decimal", prop.ForAll(
		func(ratings []int) bool {
			f := newReviewFixture()

			sum := 0
			for i, rating := range ratings {
				userID := int64(i + 1)
				f.deliverProduct(userID, 1)
				if err := f.service.AddReview(context.Background(), &domain.Review{
					ProductID: 1,
					UserID:    userID,
					UserName:  "Shopper",
					Rating:    rating,
					Comment:   "ok",
				}); err != nil {
					t.Logf("FAIL: AddReview returned error: %v", err)
					return false
				}
				sum += rating
			}

			product := f.products[1]
			want := decimal.NewFromInt(int64(sum)).
				Div(decimal.NewFromInt(int64(len(ratings)))).
				Round(1)
			if !product.Rating.Equal(want) {
				t.Logf("FAIL: rating %s, want %s for %v", product.Rating, want, ratings)
				return false
			}
			return product.ReviewCount == len(ratings)
		},
		gen.SliceOfN(5, gen.IntRange(1, 5)),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
