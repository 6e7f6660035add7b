package transport

import (
	"errors"
	"net/http"

	"stayraw/internal/domain"
	"stayraw/internal/middleware"
	"stayraw/internal/repository"
	"stayraw/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ReturnRequest represents the return-request payload
type ReturnRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// UpdateStatusRequest represents the admin status transition payload
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
	Reason string `json:"reason"`
}

// OrderHandler handles order history, the customer return flow and the
// admin status transitions.
type OrderHandler struct {
	orderService service.OrderService
	logger       *zap.Logger
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		logger:       logger,
	}
}

// RegisterRoutes registers the order routes.
func (h *OrderHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/orders", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.ListMyOrders)
		r.Get("/{orderID}", h.GetOrder)
		r.Post("/{orderID}/return", h.RequestReturn)
	})

	r.Route("/api/admin/orders", func(r chi.Router) {
		r.Use(authMiddleware, middleware.RequireAdmin)
		r.Get("/", h.ListAllOrders)
		r.Patch("/{orderID}/status", h.UpdateStatus)
	})
}

// ListMyOrders returns the authenticated user's orders, newest first.
func (h *OrderHandler) ListMyOrders(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	orders, err := h.orderService.GetOrdersByUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("Order listing failed", zap.Error(err), zap.Int64("user_id", userID))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, orders)
}

// GetOrder returns one order. Customers may only read their own orders;
// admins may read any.
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	order, err := h.orderService.GetOrder(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "order not found")
			return
		}
		h.logger.Error("Order lookup failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load order")
		return
	}

	if order.UserID != userID && !middleware.IsAdmin(r.Context()) {
		middleware.RespondWithError(w, http.StatusForbidden, "not your order")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, order)
}

// RequestReturn moves a Delivered order into Return Requested with the
// customer's reason.
func (h *OrderHandler) RequestReturn(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	orderID := chi.URLParam(r, "orderID")

	var req ReturnRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	existing, err := h.orderService.GetOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "order not found")
			return
		}
		h.logger.Error("Order lookup failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load order")
		return
	}
	if existing.UserID != userID {
		middleware.RespondWithError(w, http.StatusForbidden, "not your order")
		return
	}

	order, err := h.orderService.UpdateStatus(r.Context(), orderID, domain.OrderStatusReturnRequested, req.Reason)
	if err != nil {
		h.respondTransitionError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, order)
}

// ListAllOrders returns every order for the back-office, newest first.
func (h *OrderHandler) ListAllOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orderService.ListOrders(r.Context())
	if err != nil {
		h.logger.Error("Admin order listing failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, orders)
}

// UpdateStatus applies one state-machine transition from the back-office.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	var req UpdateStatusRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.orderService.UpdateStatus(r.Context(), orderID, domain.OrderStatus(req.Status), req.Reason)
	if err != nil {
		h.respondTransitionError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) respondTransitionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrOrderNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "order not found")
	case errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrReturnReasonRequired):
		middleware.RespondWithError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		h.logger.Error("Status update failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update order status")
	}
}
