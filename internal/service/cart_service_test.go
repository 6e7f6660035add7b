package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"stayraw/internal/domain"
	"stayraw/internal/repository"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
)

// Mock coupon repository for testing
type mockCouponRepository struct {
	coupons map[string]*domain.Coupon
}

func newMockCouponRepository() *mockCouponRepository {
	return &mockCouponRepository{
		coupons: make(map[string]*domain.Coupon),
	}
}

func (m *mockCouponRepository) add(coupon *domain.Coupon) {
	m.coupons[strings.ToUpper(coupon.Code)] = coupon
}

func (m *mockCouponRepository) Create(ctx context.Context, coupon *domain.Coupon) error {
	m.add(coupon)
	return nil
}

func (m *mockCouponRepository) Update(ctx context.Context, coupon *domain.Coupon) error {
	m.add(coupon)
	return nil
}

func (m *mockCouponRepository) Delete(ctx context.Context, id int64) error {
	for code, coupon := range m.coupons {
		if coupon.ID == id {
			delete(m.coupons, code)
			return nil
		}
	}
	return repository.ErrCouponNotFound
}

func (m *mockCouponRepository) FindActiveByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	coupon, exists := m.coupons[strings.ToUpper(code)]
	if !exists || !coupon.IsActive {
		return nil, repository.ErrCouponNotFound
	}
	return coupon, nil
}

func (m *mockCouponRepository) List(ctx context.Context) ([]*domain.Coupon, error) {
	coupons := make([]*domain.Coupon, 0, len(m.coupons))
	for _, coupon := range m.coupons {
		coupons = append(coupons, coupon)
	}
	return coupons, nil
}

func testProduct(id int64, price int64, stock int) domain.Product {
	return domain.Product{
		ID:    id,
		Name:  "Oversized Tee",
		Price: decimal.NewFromInt(price),
		Stock: stock,
		Sizes: []string{"S", "M", "L"},
	}
}

func TestProperty_GrandTotalIdentityHolds(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("grand total equals subtotal + gst + delivery - discount", prop.ForAll(
		func(prices []int, quantities []int, discountValue int) bool {
			couponRepo := newMockCouponRepository()
			couponRepo.add(&domain.Coupon{
				ID:       1,
				Code:     "SAVE",
				Type:     domain.CouponFixed,
				Value:    decimal.NewFromInt(int64(discountValue)),
				IsActive: true,
			})
			service := NewCartService(couponRepo)

			n := len(prices)
			if len(quantities) < n {
				n = len(quantities)
			}
			for i := 0; i < n; i++ {
				product := testProduct(int64(i+1), int64(prices[i]), 100)
				if _, err := service.AddToCart(1, product, quantities[i], "M"); err != nil {
					t.Logf("FAIL: AddToCart returned error: %v", err)
					return false
				}
			}

			view, err := service.ApplyDiscountCode(context.Background(), 1, "save")
			if err != nil {
				t.Logf("FAIL: ApplyDiscountCode returned error: %v", err)
				return false
			}

			totals := view.Totals
			want := totals.Subtotal.
				Add(totals.GSTAmount).
				Add(totals.DeliveryCharge).
				Sub(totals.DiscountAmount)
			if !totals.GrandTotal.Equal(want) {
				t.Logf("FAIL: GrandTotal %s, want %s", totals.GrandTotal, want)
				return false
			}

			// The discount may never exceed what it discounts.
			if totals.DiscountAmount.GreaterThan(totals.Subtotal) {
				t.Logf("FAIL: discount %s exceeds subtotal %s", totals.DiscountAmount, totals.Subtotal)
				return false
			}
			if totals.DiscountAmount.IsNegative() {
				t.Logf("FAIL: negative discount %s", totals.DiscountAmount)
				return false
			}

			return true
		},
		gen.SliceOfN(4, gen.IntRange(1, 5000)),
		gen.SliceOfN(4, gen.IntRange(1, 10)),
		gen.IntRange(1, 100000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_SetQuantityClampsToStock(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("quantity is clamped to [1, stock]", prop.ForAll(
		func(stock int, requested int) bool {
			couponRepo := newMockCouponRepository()
			service := NewCartService(couponRepo)

			product := testProduct(1, 799, stock)
			if _, err := service.AddToCart(1, product, 1, "M"); err != nil {
				t.Logf("FAIL: AddToCart returned error: %v", err)
				return false
			}

			lineID := domain.CartItemID(1, "M")
			view, err := service.SetQuantity(1, lineID, requested)
			if err != nil {
				t.Logf("FAIL: SetQuantity returned error: %v", err)
				return false
			}

			if requested <= 0 {
				// Zero or less removes the line entirely.
				return len(view.Items) == 0
			}

			if len(view.Items) != 1 {
				t.Logf("FAIL: expected one line, got %d", len(view.Items))
				return false
			}

			got := view.Items[0].Quantity
			if got < 1 || got > stock {
				t.Logf("FAIL: quantity %d outside [1, %d]", got, stock)
				return false
			}
			if requested <= stock && got != requested {
				t.Logf("FAIL: quantity %d, want requested %d", got, requested)
				return false
			}
			if requested > stock && got != stock {
				t.Logf("FAIL: quantity %d, want stock cap %d", got, stock)
				return false
			}

			return true
		},
		gen.IntRange(1, 50),
		gen.IntRange(-5, 100),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_CartsAreIsolatedPerUser(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("one user's cart never leaks into another's", prop.ForAll(
		func(quantityA int, quantityB int) bool {
			couponRepo := newMockCouponRepository()
			service := NewCartService(couponRepo)

			product := testProduct(1, 499, 100)
			if _, err := service.AddToCart(1, product, quantityA, "S"); err != nil {
				return false
			}
			if _, err := service.AddToCart(2, product, quantityB, "S"); err != nil {
				return false
			}

			viewA := service.Get(1)
			viewB := service.Get(2)

			if viewA.CartCount != quantityA {
				t.Logf("FAIL: user 1 count %d, want %d", viewA.CartCount, quantityA)
				return false
			}
			if viewB.CartCount != quantityB {
				t.Logf("FAIL: user 2 count %d, want %d", viewB.CartCount, quantityB)
				return false
			}

			service.Clear(1)
			if got := service.Get(2).CartCount; got != quantityB {
				t.Logf("FAIL: clearing user 1 changed user 2's count to %d", got)
				return false
			}

			return true
		},
		gen.IntRange(1, 10),
		gen.IntRange(1, 10),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestAddToCartMergesSamePairAndSplitsSizes(t *testing.T) {
	service := NewCartService(newMockCouponRepository())
	product := testProduct(7, 799, 10)

	if _, err := service.AddToCart(1, product, 1, "M"); err != nil {
		t.Fatalf("AddToCart failed: %v", err)
	}
	if _, err := service.AddToCart(1, product, 2, "M"); err != nil {
		t.Fatalf("AddToCart failed: %v", err)
	}
	view, err := service.AddToCart(1, product, 1, "L")
	if err != nil {
		t.Fatalf("AddToCart failed: %v", err)
	}

	if len(view.Items) != 2 {
		t.Fatalf("expected 2 distinct lines, got %d", len(view.Items))
	}
	if view.CartCount != 4 {
		t.Errorf("cart count = %d, want 4", view.CartCount)
	}

	for _, item := range view.Items {
		switch item.ID {
		case domain.CartItemID(7, "M"):
			if item.Quantity != 3 {
				t.Errorf("size M quantity = %d, want 3", item.Quantity)
			}
		case domain.CartItemID(7, "L"):
			if item.Quantity != 1 {
				t.Errorf("size L quantity = %d, want 1", item.Quantity)
			}
		default:
			t.Errorf("unexpected line id %q", item.ID)
		}
	}
}

func TestAddToCartRejectsNonPositiveQuantity(t *testing.T) {
	service := NewCartService(newMockCouponRepository())

	if _, err := service.AddToCart(1, testProduct(1, 799, 10), 0, "M"); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("expected ErrInvalidQuantity, got %v", err)
	}
}

func TestSetQuantityUnknownLine(t *testing.T) {
	service := NewCartService(newMockCouponRepository())

	_, err := service.SetQuantity(1, "99-XL", 2)
	if !errors.Is(err, ErrCartLineNotFound) {
		t.Errorf("expected ErrCartLineNotFound, got %v", err)
	}
}

func TestCartTotalsWorkedExample(t *testing.T) {
	couponRepo := newMockCouponRepository()
	couponRepo.add(&domain.Coupon{
		ID:       1,
		Code:     "SAVE50",
		Type:     domain.CouponFixed,
		Value:    decimal.NewFromInt(50),
		IsActive: true,
	})
	service := NewCartService(couponRepo)

	view, err := service.AddToCart(1, testProduct(1, 799, 10), 1, "M")
	if err != nil {
		t.Fatalf("AddToCart failed: %v", err)
	}

	assertDecimal(t, "subtotal", view.Totals.Subtotal, "799")
	assertDecimal(t, "gst", view.Totals.GSTAmount, "39.95")
	assertDecimal(t, "delivery", view.Totals.DeliveryCharge, "50")
	assertDecimal(t, "grand total", view.Totals.GrandTotal, "888.95")

	view, err = service.ApplyDiscountCode(context.Background(), 1, "save50")
	if err != nil {
		t.Fatalf("ApplyDiscountCode failed: %v", err)
	}

	if view.AppliedCode != "SAVE50" {
		t.Errorf("applied code = %q, want SAVE50", view.AppliedCode)
	}
	assertDecimal(t, "discount", view.Totals.DiscountAmount, "50")
	assertDecimal(t, "grand total", view.Totals.GrandTotal, "838.95")
}

func TestEmptyCartHasNoDeliveryCharge(t *testing.T) {
	service := NewCartService(newMockCouponRepository())

	view := service.Get(1)
	if !view.Totals.DeliveryCharge.IsZero() {
		t.Errorf("delivery charge on empty cart = %s, want 0", view.Totals.DeliveryCharge)
	}
	if !view.Totals.GrandTotal.IsZero() {
		t.Errorf("grand total on empty cart = %s, want 0", view.Totals.GrandTotal)
	}
}

func TestFixedDiscountClampsToSubtotal(t *testing.T) {
	couponRepo := newMockCouponRepository()
	couponRepo.add(&domain.Coupon{
		ID:       1,
		Code:     "MEGA",
		Type:     domain.CouponFixed,
		Value:    decimal.NewFromInt(10000),
		IsActive: true,
	})
	service := NewCartService(couponRepo)

	if _, err := service.AddToCart(1, testProduct(1, 100, 10), 1, ""); err != nil {
		t.Fatalf("AddToCart failed: %v", err)
	}

	view, err := service.ApplyDiscountCode(context.Background(), 1, "MEGA")
	if err != nil {
		t.Fatalf("ApplyDiscountCode failed: %v", err)
	}

	assertDecimal(t, "discount", view.Totals.DiscountAmount, "100")
	// 100 + 5 GST + 50 delivery - 100 discount
	assertDecimal(t, "grand total", view.Totals.GrandTotal, "55")
}

func TestInvalidDiscountCodeThenValidRecovers(t *testing.T) {
	couponRepo := newMockCouponRepository()
	couponRepo.add(&domain.Coupon{
		ID:       1,
		Code:     "STAYRAW10",
		Type:     domain.CouponPercentage,
		Value:    decimal.NewFromInt(10),
		IsActive: true,
	})
	couponRepo.add(&domain.Coupon{
		ID:       2,
		Code:     "FREESHIP",
		Type:     domain.CouponFixed,
		Value:    decimal.NewFromInt(50),
		IsActive: false,
	})
	service := NewCartService(couponRepo)

	if _, err := service.AddToCart(1, testProduct(1, 1000, 10), 1, "M"); err != nil {
		t.Fatalf("AddToCart failed: %v", err)
	}

	// Inactive coupons behave exactly like unknown codes.
	view, err := service.ApplyDiscountCode(context.Background(), 1, "FREESHIP")
	if !errors.Is(err, ErrInvalidDiscountCode) {
		t.Fatalf("expected ErrInvalidDiscountCode, got %v", err)
	}
	if view.DiscountError == "" {
		t.Error("expected discount error recorded on the cart")
	}
	if !view.Totals.DiscountAmount.IsZero() {
		t.Errorf("discount after failed apply = %s, want 0", view.Totals.DiscountAmount)
	}

	view, err = service.ApplyDiscountCode(context.Background(), 1, "stayraw10")
	if err != nil {
		t.Fatalf("ApplyDiscountCode failed: %v", err)
	}
	if view.DiscountError != "" {
		t.Errorf("discount error not cleared after valid apply: %q", view.DiscountError)
	}
	if view.AppliedCode != "STAYRAW10" {
		t.Errorf("applied code = %q, want STAYRAW10", view.AppliedCode)
	}
	assertDecimal(t, "discount", view.Totals.DiscountAmount, "100")
}

func TestFailedApplyClearsPreviousDiscount(t *testing.T) {
	couponRepo := newMockCouponRepository()
	couponRepo.add(&domain.Coupon{
		ID:       1,
		Code:     "SAVE50",
		Type:     domain.CouponFixed,
		Value:    decimal.NewFromInt(50),
		IsActive: true,
	})
	service := NewCartService(couponRepo)

	if _, err := service.AddToCart(1, testProduct(1, 500, 10), 1, "M"); err != nil {
		t.Fatalf("AddToCart failed: %v", err)
	}
	if _, err := service.ApplyDiscountCode(context.Background(), 1, "SAVE50"); err != nil {
		t.Fatalf("ApplyDiscountCode failed: %v", err)
	}

	view, err := service.ApplyDiscountCode(context.Background(), 1, "NOPE")
	if !errors.Is(err, ErrInvalidDiscountCode) {
		t.Fatalf("expected ErrInvalidDiscountCode, got %v", err)
	}
	if view.AppliedCode != "" {
		t.Errorf("applied code after failed apply = %q, want empty", view.AppliedCode)
	}
	if !view.Totals.DiscountAmount.IsZero() {
		t.Errorf("discount after failed apply = %s, want 0", view.Totals.DiscountAmount)
	}
}

func TestRemoveDiscountRestoresFullTotal(t *testing.T) {
	couponRepo := newMockCouponRepository()
	couponRepo.add(&domain.Coupon{
		ID:       1,
		Code:     "SAVE50",
		Type:     domain.CouponFixed,
		Value:    decimal.NewFromInt(50),
		IsActive: true,
	})
	service := NewCartService(couponRepo)

	if _, err := service.AddToCart(1, testProduct(1, 799, 10), 1, "M"); err != nil {
		t.Fatalf("AddToCart failed: %v", err)
	}
	if _, err := service.ApplyDiscountCode(context.Background(), 1, "SAVE50"); err != nil {
		t.Fatalf("ApplyDiscountCode failed: %v", err)
	}

	view := service.RemoveDiscount(1)
	if view.AppliedCode != "" {
		t.Errorf("applied code = %q, want empty", view.AppliedCode)
	}
	assertDecimal(t, "grand total", view.Totals.GrandTotal, "888.95")
}

func TestClearDropsCartAndDiscount(t *testing.T) {
	couponRepo := newMockCouponRepository()
	couponRepo.add(&domain.Coupon{
		ID:       1,
		Code:     "SAVE50",
		Type:     domain.CouponFixed,
		Value:    decimal.NewFromInt(50),
		IsActive: true,
	})
	service := NewCartService(couponRepo)

	if _, err := service.AddToCart(1, testProduct(1, 799, 10), 2, "M"); err != nil {
		t.Fatalf("AddToCart failed: %v", err)
	}
	if _, err := service.ApplyDiscountCode(context.Background(), 1, "SAVE50"); err != nil {
		t.Fatalf("ApplyDiscountCode failed: %v", err)
	}

	service.Clear(1)

	view := service.Get(1)
	if len(view.Items) != 0 {
		t.Errorf("items after clear = %d, want 0", len(view.Items))
	}
	if view.AppliedCode != "" {
		t.Errorf("applied code after clear = %q, want empty", view.AppliedCode)
	}
	if !view.Totals.GrandTotal.IsZero() {
		t.Errorf("grand total after clear = %s, want 0", view.Totals.GrandTotal)
	}
}

func TestDiscountReclampedAfterLineRemoval(t *testing.T) {
	couponRepo := newMockCouponRepository()
	couponRepo.add(&domain.Coupon{
		ID:       1,
		Code:     "SAVE500",
		Type:     domain.CouponFixed,
		Value:    decimal.NewFromInt(500),
		IsActive: true,
	})
	service := NewCartService(couponRepo)

	if _, err := service.AddToCart(1, testProduct(1, 600, 10), 1, "M"); err != nil {
		t.Fatalf("AddToCart failed: %v", err)
	}
	if _, err := service.AddToCart(1, testProduct(2, 100, 10), 1, "M"); err != nil {
		t.Fatalf("AddToCart failed: %v", err)
	}
	if _, err := service.ApplyDiscountCode(context.Background(), 1, "SAVE500"); err != nil {
		t.Fatalf("ApplyDiscountCode failed: %v", err)
	}

	// Dropping the big line leaves a 100 subtotal against a 500 discount.
	view := service.RemoveLine(1, domain.CartItemID(1, "M"))

	assertDecimal(t, "subtotal", view.Totals.Subtotal, "100")
	assertDecimal(t, "discount", view.Totals.DiscountAmount, "100")
	if view.Totals.GrandTotal.IsNegative() {
		t.Errorf("grand total went negative: %s", view.Totals.GrandTotal)
	}
}

func assertDecimal(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()
	w, err := decimal.NewFromString(want)
	if err != nil {
		t.Fatalf("bad expectation %q: %v", want, err)
	}
	if !got.Equal(w) {
		t.Errorf("%s = %s, want %s", name, got, want)
	}
}
