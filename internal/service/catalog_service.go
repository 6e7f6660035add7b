package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stayraw/internal/domain"
	"stayraw/internal/repository"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidPrice         = errors.New("price must be greater than zero")
	ErrInvalidDiscountPrice = errors.New("discount price must be positive and below the list price")
	ErrInvalidStock         = errors.New("stock must not be negative")
)

// ProductUpdate carries a partial admin edit; nil fields are left unchanged.
// Rating and review count are derived values and cannot be edited here.
type ProductUpdate struct {
	CategoryID    *int64
	Name          *string
	Description   *string
	Price         *decimal.Decimal
	DiscountPrice *decimal.NullDecimal
	Stock         *int
	ImageURL      *string
	IsAssured     *bool
	Sizes         *[]string
}

// CatalogService defines the interface for catalog lookups and the admin
// back-office CRUD over products, categories and banners.
type CatalogService interface {
	GetProductByID(ctx context.Context, id int64) (*domain.Product, error)
	GetProductsByCategory(ctx context.Context, categoryID int64) ([]*domain.Product, error)
	ListProducts(ctx context.Context) ([]*domain.Product, error)
	SearchProducts(ctx context.Context, query string) ([]*domain.Product, error)
	AddProduct(ctx context.Context, product *domain.Product) error
	UpdateProduct(ctx context.Context, id int64, update ProductUpdate) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) error

	ListCategories(ctx context.Context) ([]*domain.Category, error)
	AddCategory(ctx context.Context, category *domain.Category) error
	UpdateCategory(ctx context.Context, category *domain.Category) error
	DeleteCategory(ctx context.Context, id int64) error

	ListBanners(ctx context.Context) ([]*domain.Banner, error)
	AddBanner(ctx context.Context, banner *domain.Banner) error
	UpdateBanner(ctx context.Context, banner *domain.Banner) error
	DeleteBanner(ctx context.Context, id int64) error
}

type catalogService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	bannerRepo   repository.BannerRepository
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	bannerRepo repository.BannerRepository,
) CatalogService {
	return &catalogService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		bannerRepo:   bannerRepo,
	}
}

func (s *catalogService) GetProductByID(ctx context.Context, id int64) (*domain.Product, error) {
	return s.productRepo.FindByID(ctx, id)
}

func (s *catalogService) GetProductsByCategory(ctx context.Context, categoryID int64) ([]*domain.Product, error) {
	return s.productRepo.ListByCategory(ctx, categoryID)
}

func (s *catalogService) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	return s.productRepo.List(ctx)
}

func (s *catalogService) SearchProducts(ctx context.Context, query string) ([]*domain.Product, error) {
	return s.productRepo.Search(ctx, query)
}

// AddProduct creates a product with derived fields zeroed; the id is
// assigned by the store.
func (s *catalogService) AddProduct(ctx context.Context, product *domain.Product) error {
	if err := validateProductMoney(product.Price, product.DiscountPrice, product.Stock); err != nil {
		return err
	}

	now := time.Now().UTC()
	product.Rating = decimal.Zero
	product.ReviewCount = 0
	product.CreatedAt = now
	product.UpdatedAt = now

	if err := s.productRepo.Create(ctx, product); err != nil {
		return fmt.Errorf("failed to add product: %w", err)
	}

	return nil
}

// UpdateProduct applies a partial edit over the stored product. Id and
// creation time never change.
func (s *catalogService) UpdateProduct(ctx context.Context, id int64, update ProductUpdate) (*domain.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.CategoryID != nil {
		product.CategoryID = *update.CategoryID
	}
	if update.Name != nil {
		product.Name = *update.Name
	}
	if update.Description != nil {
		product.Description = *update.Description
	}
	if update.Price != nil {
		product.Price = *update.Price
	}
	if update.DiscountPrice != nil {
		product.DiscountPrice = *update.DiscountPrice
	}
	if update.Stock != nil {
		product.Stock = *update.Stock
	}
	if update.ImageURL != nil {
		product.ImageURL = *update.ImageURL
	}
	if update.IsAssured != nil {
		product.IsAssured = *update.IsAssured
	}
	if update.Sizes != nil {
		product.Sizes = *update.Sizes
	}

	if err := validateProductMoney(product.Price, product.DiscountPrice, product.Stock); err != nil {
		return nil, err
	}

	product.UpdatedAt = time.Now().UTC()

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return product, nil
}

// DeleteProduct removes the product. Existing orders keep their dangling
// reference; the display layer renders those items as deleted products.
func (s *catalogService) DeleteProduct(ctx context.Context, id int64) error {
	return s.productRepo.Delete(ctx, id)
}

func (s *catalogService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return s.categoryRepo.List(ctx)
}

func (s *catalogService) AddCategory(ctx context.Context, category *domain.Category) error {
	return s.categoryRepo.Create(ctx, category)
}

func (s *catalogService) UpdateCategory(ctx context.Context, category *domain.Category) error {
	return s.categoryRepo.Update(ctx, category)
}

func (s *catalogService) DeleteCategory(ctx context.Context, id int64) error {
	return s.categoryRepo.Delete(ctx, id)
}

func (s *catalogService) ListBanners(ctx context.Context) ([]*domain.Banner, error) {
	return s.bannerRepo.List(ctx)
}

func (s *catalogService) AddBanner(ctx context.Context, banner *domain.Banner) error {
	return s.bannerRepo.Create(ctx, banner)
}

func (s *catalogService) UpdateBanner(ctx context.Context, banner *domain.Banner) error {
	return s.bannerRepo.Update(ctx, banner)
}

func (s *catalogService) DeleteBanner(ctx context.Context, id int64) error {
	return s.bannerRepo.Delete(ctx, id)
}

func validateProductMoney(price decimal.Decimal, discountPrice decimal.NullDecimal, stock int) error {
	if !price.IsPositive() {
		return ErrInvalidPrice
	}
	if discountPrice.Valid {
		dp := discountPrice.Decimal
		if !dp.IsPositive() || dp.GreaterThanOrEqual(price) {
			return ErrInvalidDiscountPrice
		}
	}
	if stock < 0 {
		return ErrInvalidStock
	}
	return nil
}
