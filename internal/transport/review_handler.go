package transport

import (
	"errors"
	"net/http"

	"stayraw/internal/domain"
	"stayraw/internal/middleware"
	"stayraw/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AddReviewRequest represents the review submission payload
type AddReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment" validate:"required"`
}

// EligibilityResponse reports whether the user may review the product.
type EligibilityResponse struct {
	CanReview bool `json:"can_review"`
}

// ReviewHandler handles product review listing and submission.
type ReviewHandler struct {
	reviewService service.ReviewService
	logger        *zap.Logger
}

// NewReviewHandler creates a new ReviewHandler
func NewReviewHandler(reviewService service.ReviewService, logger *zap.Logger) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
		logger:        logger,
	}
}

// RegisterRoutes registers the review routes under the product resource.
func (h *ReviewHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Get("/api/products/{productID}/reviews", h.ListReviews)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/api/products/{productID}/reviews/eligibility", h.GetEligibility)
		r.Post("/api/products/{productID}/reviews", h.AddReview)
	})
}

// ListReviews returns a product's reviews, newest first.
func (h *ReviewHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	productID, err := parseID(r, "productID")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	reviews, err := h.reviewService.GetReviewsByProduct(r.Context(), productID)
	if err != nil {
		h.logger.Error("Review listing failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list reviews")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, reviews)
}

// GetEligibility reports whether the authenticated user may review the
// product.
func (h *ReviewHandler) GetEligibility(w http.ResponseWriter, r *http.Request) {
	productID, err := parseID(r, "productID")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	userID, _ := middleware.GetUserID(r.Context())

	canReview, err := h.reviewService.CanReview(r.Context(), userID, productID)
	if err != nil {
		h.logger.Error("Eligibility check failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to check eligibility")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, EligibilityResponse{CanReview: canReview})
}

// AddReview appends a review for a purchased-and-delivered product.
func (h *ReviewHandler) AddReview(w http.ResponseWriter, r *http.Request) {
	productID, err := parseID(r, "productID")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	userID, _ := middleware.GetUserID(r.Context())
	userName, _ := middleware.GetUserName(r.Context())

	var req AddReviewRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	review := &domain.Review{
		ProductID: productID,
		UserID:    userID,
		UserName:  userName,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}

	if err := h.reviewService.AddReview(r.Context(), review); err != nil {
		switch {
		case errors.Is(err, service.ErrNotEligibleToReview):
			middleware.RespondWithError(w, http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrInvalidRating), errors.Is(err, service.ErrEmptyComment):
			middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("Review submission failed", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to add review")
		}
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, review)
}
