package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/launchhub-app/apiserver/internal/services"
	"github.com/launchhub-app/apiserver/internal/store"
	"github.com/launchhub-app/apiserver/types"
)

// ReviewHandler provides review endpoints. Reviews are append-only;
// there is no edit or delete surface.
type ReviewHandler struct {
	reviewService  *services.ReviewService
	productService *services.ProductService
	userService    *services.UserService
}

// NewReviewHandler constructs a ReviewHandler with the provided dependencies.
func NewReviewHandler(reviewService *services.ReviewService, productService *services.ProductService, userService *services.UserService) *ReviewHandler {
	return &ReviewHandler{
		reviewService:  reviewService,
		productService: productService,
		userService:    userService,
	}
}

// ReviewRouter registers review routes on the given router.
func ReviewRouter(r chi.Router, reviewService *services.ReviewService, productService *services.ProductService, userService *services.UserService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewReviewHandler(reviewService, productService, userService)

	r.Get("/reviews", handler.ListByProduct)
	r.With(authMiddleware).Post("/reviews", handler.Create)
}

// ListByProduct returns the reviews for the product in the productId
// query parameter.
func (h *ReviewHandler) ListByProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := parseIDParam(r.URL.Query().Get("productId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	reviews, err := h.reviewService.ListByProduct(r.Context(), productID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list reviews")
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

// Create posts a review on a product. The reviewer display name and
// image come from the stored account when the request omits them.
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	email, err := emailFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.ProductID < 1 {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	if _, err := h.productService.Get(r.Context(), req.ProductID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load product")
		return
	}

	reviewerName := strings.TrimSpace(req.ReviewerName)
	reviewerImage := strings.TrimSpace(req.ReviewerImage)
	if reviewerName == "" || reviewerImage == "" {
		if user, err := h.userService.GetByEmail(r.Context(), email); err == nil {
			if reviewerName == "" {
				reviewerName = user.Name
			}
			if reviewerImage == "" {
				reviewerImage = user.PhotoURL
			}
		}
	}
	if reviewerName == "" {
		reviewerName = email
	}

	review, err := h.reviewService.Create(r.Context(), types.Review{
		ProductID:     req.ProductID,
		ReviewerName:  reviewerName,
		ReviewerImage: reviewerImage,
		Description:   strings.TrimSpace(req.Description),
		Rating:        req.Rating,
	})
	if err != nil {
		if errors.Is(err, services.ErrInvalidReview) {
			writeError(w, http.StatusBadRequest, "invalid review")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create review")
		return
	}
	writeJSON(w, http.StatusCreated, review)
}

type ReviewRequest struct {
	ProductID     int    `json:"productId"`
	ReviewerName  string `json:"reviewerName"`
	ReviewerImage string `json:"reviewerImage"`
	Description   string `json:"description"`
	Rating        int    `json:"rating"`
}
