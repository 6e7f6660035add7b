package transport

import (
	"errors"
	"net/http"
	"strconv"

	"stayraw/internal/middleware"
	"stayraw/internal/repository"
	"stayraw/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CatalogHandler handles the public storefront reads: products, categories
// and promotional banners.
type CatalogHandler struct {
	catalogService service.CatalogService
	logger         *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalogService service.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// RegisterRoutes registers the public catalog routes
func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/products", h.ListProducts)
	r.Get("/api/products/{productID}", h.GetProduct)
	r.Get("/api/categories", h.ListCategories)
	r.Get("/api/banners", h.ListBanners)
}

// ListProducts lists products, optionally filtered by ?category= or
// searched by ?q=.
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	if q := r.URL.Query().Get("q"); q != "" {
		products, err := h.catalogService.SearchProducts(r.Context(), q)
		if err != nil {
			h.logger.Error("Product search failed", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to search products")
			return
		}
		middleware.RespondWithJSON(w, http.StatusOK, products)
		return
	}

	if cat := r.URL.Query().Get("category"); cat != "" {
		categoryID, err := strconv.ParseInt(cat, 10, 64)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid category id")
			return
		}
		products, err := h.catalogService.GetProductsByCategory(r.Context(), categoryID)
		if err != nil {
			h.logger.Error("Category listing failed", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list products")
			return
		}
		middleware.RespondWithJSON(w, http.StatusOK, products)
		return
	}

	products, err := h.catalogService.ListProducts(r.Context())
	if err != nil {
		h.logger.Error("Product listing failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// GetProduct returns one product; a missing product is 404, not an error.
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	product, err := h.catalogService.GetProductByID(r.Context(), productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Product lookup failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// ListCategories lists all categories.
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalogService.ListCategories(r.Context())
	if err != nil {
		h.logger.Error("Category listing failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, categories)
}

// ListBanners lists the storefront banners.
func (h *CatalogHandler) ListBanners(w http.ResponseWriter, r *http.Request) {
	banners, err := h.catalogService.ListBanners(r.Context())
	if err != nil {
		h.logger.Error("Banner listing failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list banners")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, banners)
}
