package service

import (
	"testing"

	"stayraw/internal/domain"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
)

func wishlistProduct(id int64, name string) domain.Product {
	return domain.Product{
		ID:    id,
		Name:  name,
		Price: decimal.NewFromInt(499),
		Stock: 5,
	}
}

func TestWishlistAddRemoveContains(t *testing.T) {
	service := NewWishlistService()

	if service.Contains(1, 10) {
		t.Error("empty wishlist must not contain anything")
	}

	items := service.Add(1, wishlistProduct(10, "Oversized Tee"))
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
	if !service.Contains(1, 10) {
		t.Error("added product not reported by Contains")
	}

	items = service.Remove(1, 10)
	if len(items) != 0 {
		t.Errorf("items after remove = %d, want 0", len(items))
	}
	if service.Contains(1, 10) {
		t.Error("removed product still reported by Contains")
	}
}

func TestWishlistAddIsIdempotent(t *testing.T) {
	service := NewWishlistService()

	service.Add(1, wishlistProduct(10, "Oversized Tee"))
	items := service.Add(1, wishlistProduct(10, "Oversized Tee"))
	if len(items) != 1 {
		t.Errorf("items after duplicate add = %d, want 1", len(items))
	}
}

func TestWishlistKeepsInsertionOrder(t *testing.T) {
	service := NewWishlistService()

	service.Add(1, wishlistProduct(10, "Oversized Tee"))
	service.Add(1, wishlistProduct(20, "Cargo Pants"))
	service.Add(1, wishlistProduct(30, "Snapback"))
	service.Remove(1, 20)

	items := service.List(1)
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}
	if items[0].ID != 10 || items[1].ID != 30 {
		t.Errorf("order = [%d %d], want [10 30]", items[0].ID, items[1].ID)
	}
}

func TestWishlistRemoveUnknownIsNoop(t *testing.T) {
	service := NewWishlistService()

	service.Add(1, wishlistProduct(10, "Oversized Tee"))
	items := service.Remove(1, 999)
	if len(items) != 1 {
		t.Errorf("items = %d, want 1", len(items))
	}
}

func TestProperty_WishlistsAreIsolatedPerUser(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("one user's adds never leak into another's list", prop.ForAll(
		func(productIDs []int64) bool {
			service := NewWishlistService()
			for _, id := range productIDs {
				service.Add(1, wishlistProduct(id, "Item"))
			}

			if len(service.List(2)) != 0 {
				t.Log("FAIL: user 2 sees user 1's wishlist")
				return false
			}

			seen := map[int64]bool{}
			for _, id := range productIDs {
				seen[id] = true
			}
			return len(service.List(1)) == len(seen)
		},
		gen.SliceOfN(6, gen.Int64Range(1, 4)),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
