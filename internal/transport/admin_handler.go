package transport

import (
	"errors"
	"net/http"

	"stayraw/internal/domain"
	"stayraw/internal/middleware"
	"stayraw/internal/repository"
	"stayraw/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateProductRequest represents the admin product creation payload.
type CreateProductRequest struct {
	CategoryID    int64    `json:"cat_id" validate:"required"`
	Name          string   `json:"name" validate:"required"`
	Description   string   `json:"description"`
	Price         string   `json:"price" validate:"required"`
	DiscountPrice *string  `json:"discount_price"`
	Stock         int      `json:"stock" validate:"gte=0"`
	ImageURL      string   `json:"image_url"`
	IsAssured     bool     `json:"is_assured"`
	Sizes         []string `json:"sizes"`
}

// UpdateProductRequest carries a partial product edit; absent fields are
// left unchanged. A discount_price of "" clears the discount.
type UpdateProductRequest struct {
	CategoryID    *int64    `json:"cat_id"`
	Name          *string   `json:"name"`
	Description   *string   `json:"description"`
	Price         *string   `json:"price"`
	DiscountPrice *string   `json:"discount_price"`
	Stock         *int      `json:"stock"`
	ImageURL      *string   `json:"image_url"`
	IsAssured     *bool     `json:"is_assured"`
	Sizes         *[]string `json:"sizes"`
}

// CategoryRequest represents the category create/update payload.
type CategoryRequest struct {
	Name     string `json:"name" validate:"required"`
	ImageURL string `json:"image"`
}

// BannerRequest represents the banner create/update payload.
type BannerRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	ImageURL    string `json:"image" validate:"required"`
	Link        string `json:"link"`
}

// CouponRequest represents the coupon create/update payload.
type CouponRequest struct {
	Code     string `json:"code" validate:"required"`
	Type     string `json:"type" validate:"required,oneof=percentage fixed"`
	Value    string `json:"value" validate:"required"`
	IsActive bool   `json:"is_active"`
}

// AdminHandler handles the back-office CRUD over products, categories,
// banners and coupons.
type AdminHandler struct {
	catalogService service.CatalogService
	couponService  service.CouponService
	logger         *zap.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(catalogService service.CatalogService, couponService service.CouponService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		catalogService: catalogService,
		couponService:  couponService,
		logger:         logger,
	}
}

// RegisterRoutes registers the admin routes. Every route requires an
// authenticated admin user.
func (h *AdminHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/admin/products", func(r chi.Router) {
		r.Use(authMiddleware, middleware.RequireAdmin)
		r.Post("/", h.CreateProduct)
		r.Patch("/{productID}", h.UpdateProduct)
		r.Delete("/{productID}", h.DeleteProduct)
	})

	r.Route("/api/admin/categories", func(r chi.Router) {
		r.Use(authMiddleware, middleware.RequireAdmin)
		r.Post("/", h.CreateCategory)
		r.Put("/{categoryID}", h.UpdateCategory)
		r.Delete("/{categoryID}", h.DeleteCategory)
	})

	r.Route("/api/admin/banners", func(r chi.Router) {
		r.Use(authMiddleware, middleware.RequireAdmin)
		r.Post("/", h.CreateBanner)
		r.Put("/{bannerID}", h.UpdateBanner)
		r.Delete("/{bannerID}", h.DeleteBanner)
	})

	r.Route("/api/admin/coupons", func(r chi.Router) {
		r.Use(authMiddleware, middleware.RequireAdmin)
		r.Get("/", h.ListCoupons)
		r.Post("/", h.CreateCoupon)
		r.Put("/{couponID}", h.UpdateCoupon)
		r.Delete("/{couponID}", h.DeleteCoupon)
	})
}

// CreateProduct adds a product to the catalog.
func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid price")
		return
	}

	discountPrice, err := parseOptionalDecimal(req.DiscountPrice)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid discount price")
		return
	}

	product := &domain.Product{
		CategoryID:    req.CategoryID,
		Name:          req.Name,
		Description:   req.Description,
		Price:         price,
		DiscountPrice: discountPrice,
		Stock:         req.Stock,
		ImageURL:      req.ImageURL,
		IsAssured:     req.IsAssured,
		Sizes:         req.Sizes,
	}

	if err := h.catalogService.AddProduct(r.Context(), product); err != nil {
		h.respondCatalogError(w, err, "failed to create product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

// UpdateProduct applies a partial edit to a product.
func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := parseID(r, "productID")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req UpdateProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	update := service.ProductUpdate{
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: req.Description,
		Stock:       req.Stock,
		ImageURL:    req.ImageURL,
		IsAssured:   req.IsAssured,
		Sizes:       req.Sizes,
	}

	if req.Price != nil {
		price, err := decimal.NewFromString(*req.Price)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid price")
			return
		}
		update.Price = &price
	}

	if req.DiscountPrice != nil {
		discountPrice, err := parseOptionalDecimal(req.DiscountPrice)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid discount price")
			return
		}
		update.DiscountPrice = &discountPrice
	}

	product, err := h.catalogService.UpdateProduct(r.Context(), productID, update)
	if err != nil {
		h.respondCatalogError(w, err, "failed to update product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// DeleteProduct removes a product from the catalog.
func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := parseID(r, "productID")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := h.catalogService.DeleteProduct(r.Context(), productID); err != nil {
		h.respondCatalogError(w, err, "failed to delete product")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CreateCategory adds a category.
func (h *AdminHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	category := &domain.Category{Name: req.Name, ImageURL: req.ImageURL}
	if err := h.catalogService.AddCategory(r.Context(), category); err != nil {
		h.logger.Error("Category creation failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create category")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, category)
}

// UpdateCategory replaces a category's fields.
func (h *AdminHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, err := parseID(r, "categoryID")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	var req CategoryRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	category := &domain.Category{ID: categoryID, Name: req.Name, ImageURL: req.ImageURL}
	if err := h.catalogService.UpdateCategory(r.Context(), category); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "category not found")
			return
		}
		h.logger.Error("Category update failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update category")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, category)
}

// DeleteCategory removes a category. Products keep their category id.
func (h *AdminHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, err := parseID(r, "categoryID")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	if err := h.catalogService.DeleteCategory(r.Context(), categoryID); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "category not found")
			return
		}
		h.logger.Error("Category deletion failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete category")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CreateBanner adds a storefront banner.
func (h *AdminHandler) CreateBanner(w http.ResponseWriter, r *http.Request) {
	var req BannerRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	banner := &domain.Banner{
		Title:       req.Title,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Link:        req.Link,
	}
	if err := h.catalogService.AddBanner(r.Context(), banner); err != nil {
		h.logger.Error("Banner creation failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create banner")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, banner)
}

// UpdateBanner replaces a banner's fields.
func (h *AdminHandler) UpdateBanner(w http.ResponseWriter, r *http.Request) {
	bannerID, err := parseID(r, "bannerID")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid banner id")
		return
	}

	var req BannerRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	banner := &domain.Banner{
		ID:          bannerID,
		Title:       req.Title,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Link:        req.Link,
	}
	if err := h.catalogService.UpdateBanner(r.Context(), banner); err != nil {
		if errors.Is(err, repository.ErrBannerNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "banner not found")
			return
		}
		h.logger.Error("Banner update failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update banner")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, banner)
}

// DeleteBanner removes a banner.
func (h *AdminHandler) DeleteBanner(w http.ResponseWriter, r *http.Request) {
	bannerID, err := parseID(r, "bannerID")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid banner id")
		return
	}

	if err := h.catalogService.DeleteBanner(r.Context(), bannerID); err != nil {
		if errors.Is(err, repository.ErrBannerNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "banner not found")
			return
		}
		h.logger.Error("Banner deletion failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete banner")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListCoupons returns every coupon, active or not.
func (h *AdminHandler) ListCoupons(w http.ResponseWriter, r *http.Request) {
	coupons, err := h.couponService.ListCoupons(r.Context())
	if err != nil {
		h.logger.Error("Coupon listing failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list coupons")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, coupons)
}

// CreateCoupon adds a discount code.
func (h *AdminHandler) CreateCoupon(w http.ResponseWriter, r *http.Request) {
	coupon, ok := h.decodeCoupon(w, r, 0)
	if !ok {
		return
	}

	if err := h.couponService.AddCoupon(r.Context(), coupon); err != nil {
		h.respondCouponError(w, err, "failed to create coupon")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, coupon)
}

// UpdateCoupon replaces a coupon's fields.
func (h *AdminHandler) UpdateCoupon(w http.ResponseWriter, r *http.Request) {
	couponID, err := parseID(r, "couponID")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid coupon id")
		return
	}

	coupon, ok := h.decodeCoupon(w, r, couponID)
	if !ok {
		return
	}

	if err := h.couponService.UpdateCoupon(r.Context(), coupon); err != nil {
		h.respondCouponError(w, err, "failed to update coupon")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, coupon)
}

// DeleteCoupon removes a discount code.
func (h *AdminHandler) DeleteCoupon(w http.ResponseWriter, r *http.Request) {
	couponID, err := parseID(r, "couponID")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid coupon id")
		return
	}

	if err := h.couponService.DeleteCoupon(r.Context(), couponID); err != nil {
		if errors.Is(err, repository.ErrCouponNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "coupon not found")
			return
		}
		h.logger.Error("Coupon deletion failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete coupon")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) decodeCoupon(w http.ResponseWriter, r *http.Request, id int64) (*domain.Coupon, bool) {
	var req CouponRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return nil, false
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return nil, false
	}

	value, err := decimal.NewFromString(req.Value)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid coupon value")
		return nil, false
	}

	return &domain.Coupon{
		ID:       id,
		Code:     req.Code,
		Type:     domain.CouponType(req.Type),
		Value:    value,
		IsActive: req.IsActive,
	}, true
}

func (h *AdminHandler) respondCatalogError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, repository.ErrProductNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "product not found")
	case errors.Is(err, service.ErrInvalidPrice),
		errors.Is(err, service.ErrInvalidDiscountPrice),
		errors.Is(err, service.ErrInvalidStock):
		middleware.RespondWithError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		h.logger.Error("Catalog operation failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, fallback)
	}
}

func (h *AdminHandler) respondCouponError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, repository.ErrCouponNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "coupon not found")
	case errors.Is(err, service.ErrEmptyCouponCode),
		errors.Is(err, service.ErrInvalidCouponType),
		errors.Is(err, service.ErrInvalidCouponValue):
		middleware.RespondWithError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		h.logger.Error("Coupon operation failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, fallback)
	}
}

func parseOptionalDecimal(s *string) (decimal.NullDecimal, error) {
	if s == nil || *s == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}, nil
}
