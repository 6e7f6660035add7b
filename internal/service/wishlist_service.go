package service

import (
	"sync"

	"stayraw/internal/domain"
)

// WishlistService owns the per-user wishlists for the duration of a browsing
// session. Entries are product snapshots in insertion order; adding a product
// that is already listed is a no-op.
type WishlistService interface {
	List(userID int64) []domain.Product
	Add(userID int64, product domain.Product) []domain.Product
	Remove(userID int64, productID int64) []domain.Product
	Contains(userID int64, productID int64) bool
}

type wishlistService struct {
	mu    sync.Mutex
	lists map[int64][]domain.Product
}

// NewWishlistService creates a new instance of WishlistService
func NewWishlistService() WishlistService {
	return &wishlistService{
		lists: make(map[int64][]domain.Product),
	}
}

func (s *wishlistService) List(userID int64) []domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshot(userID)
}

func (s *wishlistService) Add(userID int64, product domain.Product) []domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range s.lists[userID] {
		if item.ID == product.ID {
			return s.snapshot(userID)
		}
	}
	s.lists[userID] = append(s.lists[userID], product)
	return s.snapshot(userID)
}

func (s *wishlistService) Remove(userID int64, productID int64) []domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.lists[userID]
	for i, item := range items {
		if item.ID == productID {
			s.lists[userID] = append(items[:i], items[i+1:]...)
			break
		}
	}
	return s.snapshot(userID)
}

func (s *wishlistService) Contains(userID int64, productID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range s.lists[userID] {
		if item.ID == productID {
			return true
		}
	}
	return false
}

// snapshot copies the list so callers never share the backing array. Callers
// must hold the lock.
func (s *wishlistService) snapshot(userID int64) []domain.Product {
	items := s.lists[userID]
	out := make([]domain.Product, len(items))
	copy(out, items)
	return out
}
