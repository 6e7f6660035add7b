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

// AddToCartRequest represents the add-to-cart payload
type AddToCartRequest struct {
	ProductID int64  `json:"product_id" validate:"required,gt=0"`
	Quantity  int    `json:"quantity" validate:"required,gte=1"`
	Size      string `json:"size"`
}

// SetQuantityRequest represents the quantity update payload. Zero and
// negative values remove the line.
type SetQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// ApplyDiscountRequest represents the discount code payload
type ApplyDiscountRequest struct {
	Code string `json:"code" validate:"required"`
}

// CheckoutRequest represents the checkout payload
type CheckoutRequest struct {
	Address string `json:"address" validate:"required"`
	Phone   string `json:"phone" validate:"required"`
}

// CartHandler handles the authenticated cart and checkout endpoints.
type CartHandler struct {
	cartService    service.CartService
	catalogService service.CatalogService
	orderService   service.OrderService
	logger         *zap.Logger
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(
	cartService service.CartService,
	catalogService service.CatalogService,
	orderService service.OrderService,
	logger *zap.Logger,
) *CartHandler {
	return &CartHandler{
		cartService:    cartService,
		catalogService: catalogService,
		orderService:   orderService,
		logger:         logger,
	}
}

// RegisterRoutes registers the cart routes. All of them require a session.
func (h *CartHandler) RegisterRoutes(r chi.Router, authMiddleware, checkoutLimiter func(http.Handler) http.Handler) {
	r.Route("/api/cart", func(r chi.Router) {
		r.Use(authMiddleware)

		r.Get("/", h.GetCart)
		r.Delete("/", h.ClearCart)
		r.Post("/items", h.AddToCart)
		r.Patch("/items/{lineID}", h.SetQuantity)
		r.Delete("/items/{lineID}", h.RemoveLine)
		r.Post("/discount", h.ApplyDiscount)
		r.Delete("/discount", h.RemoveDiscount)

		r.With(checkoutLimiter).Post("/checkout", h.Checkout)
	})
}

// GetCart returns the cart with its derived totals.
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	middleware.RespondWithJSON(w, http.StatusOK, h.cartService.Get(userID))
}

// AddToCart resolves the product and appends or merges a cart line.
func (h *CartHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	var req AddToCartRequest
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
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to add to cart")
		return
	}

	view, err := h.cartService.AddToCart(userID, *product, req.Quantity, req.Size)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, view)
}

// SetQuantity updates a line's quantity, clamped to the product's stock.
func (h *CartHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	lineID := chi.URLParam(r, "lineID")

	var req SetQuantityRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	view, err := h.cartService.SetQuantity(userID, lineID, req.Quantity)
	if err != nil {
		if errors.Is(err, service.ErrCartLineNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "cart line not found")
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, view)
}

// RemoveLine removes a cart line; removing an absent line succeeds.
func (h *CartHandler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	view := h.cartService.RemoveLine(userID, chi.URLParam(r, "lineID"))
	middleware.RespondWithJSON(w, http.StatusOK, view)
}

// ClearCart empties the cart and drops any applied discount.
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	h.cartService.Clear(userID)
	middleware.RespondWithJSON(w, http.StatusOK, h.cartService.Get(userID))
}

// ApplyDiscount applies a discount code to the cart.
func (h *CartHandler) ApplyDiscount(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	var req ApplyDiscountRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	view, err := h.cartService.ApplyDiscountCode(r.Context(), userID, req.Code)
	if err != nil {
		if errors.Is(err, service.ErrInvalidDiscountCode) {
			// The cart view carries the discount error for display.
			middleware.RespondWithJSON(w, http.StatusUnprocessableEntity, view)
			return
		}
		h.logger.Error("Discount lookup failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to apply discount code")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, view)
}

// RemoveDiscount removes any applied discount code.
func (h *CartHandler) RemoveDiscount(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	middleware.RespondWithJSON(w, http.StatusOK, h.cartService.RemoveDiscount(userID))
}

// Checkout places an order from the current cart snapshot and clears the
// cart on success.
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	userName, _ := middleware.GetUserName(r.Context())

	var req CheckoutRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cart := h.cartService.Get(userID)

	order, err := h.orderService.PlaceOrder(
		r.Context(),
		userID,
		userName,
		cart.Items,
		cart.Totals,
		cart.AppliedCode,
		req.Address,
		req.Phone,
	)
	if err != nil {
		if errors.Is(err, service.ErrEmptyCart) {
			middleware.RespondWithError(w, http.StatusBadRequest, "cart is empty")
			return
		}
		h.logger.Error("Checkout failed", zap.Error(err), zap.Int64("user_id", userID))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to place order")
		return
	}

	h.cartService.Clear(userID)

	middleware.RespondWithJSON(w, http.StatusCreated, order)
}

func parseID(r *http.Request, param string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, param), 10, 64)
}
