package transport

import (
	"errors"
	"net/http"

	"stayraw/internal/middleware"
	"stayraw/internal/repository"
	"stayraw/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AddToWishlistRequest represents the wishlist add payload
type AddToWishlistRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
}

// WishlistHandler handles the authenticated wishlist endpoints.
type WishlistHandler struct {
	wishlistService service.WishlistService
	catalogService  service.CatalogService
	logger          *zap.Logger
}

// NewWishlistHandler creates a new WishlistHandler
func NewWishlistHandler(
	wishlistService service.WishlistService,
	catalogService service.CatalogService,
	logger *zap.Logger,
) *WishlistHandler {
	return &WishlistHandler{
		wishlistService: wishlistService,
		catalogService:  catalogService,
		logger:          logger,
	}
}

// RegisterRoutes registers the wishlist routes. All of them require a session.
func (h *WishlistHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/wishlist", func(r chi.Router) {
		r.Use(authMiddleware)

		r.Get("/", h.GetWishlist)
		r.Post("/items", h.AddToWishlist)
		r.Get("/items/{productID}", h.Contains)
		r.Delete("/items/{productID}", h.RemoveFromWishlist)
	})
}

// GetWishlist returns the user's wishlist in insertion order.
func (h *WishlistHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"items": h.wishlistService.List(userID),
	})
}

// AddToWishlist resolves the product and appends it unless already listed.
func (h *WishlistHandler) AddToWishlist(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	var req AddToWishlistRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.catalogService.GetProductByID(r.Context(), req.ProductID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Product lookup failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to add to wishlist")
		return
	}

	items := h.wishlistService.Add(userID, *product)
	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

// Contains reports whether the product is on the user's wishlist.
func (h *WishlistHandler) Contains(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	productID, err := parseID(r, "productID")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]bool{
		"in_wishlist": h.wishlistService.Contains(userID, productID),
	})
}

// RemoveFromWishlist drops the product from the wishlist. Removing a product
// that is not listed is a no-op.
func (h *WishlistHandler) RemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	productID, err := parseID(r, "productID")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	items := h.wishlistService.Remove(userID, productID)
	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}
