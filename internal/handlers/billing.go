package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/launchhub-app/apiserver/internal/services"
	"github.com/launchhub-app/apiserver/internal/store"
)

// BillingHandler provides the subscription payment endpoints. The
// server prices the charge and opens the payment intent; the card
// widget on the client confirms it, then the client calls subscribe.
type BillingHandler struct {
	billingService *services.BillingService
	userService    *services.UserService
}

// NewBillingHandler constructs a BillingHandler with the provided dependencies.
func NewBillingHandler(billingService *services.BillingService, userService *services.UserService) *BillingHandler {
	return &BillingHandler{billingService: billingService, userService: userService}
}

// BillingRouter registers billing routes on the given router.
func BillingRouter(r chi.Router, billingService *services.BillingService, userService *services.UserService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewBillingHandler(billingService, userService)

	r.With(authMiddleware).Post("/create-payment-intent", handler.CreatePaymentIntent)
	r.With(authMiddleware).Patch("/user/subscribe", handler.Subscribe)
}

// CreatePaymentIntent prices the subscription for an optional coupon
// and returns the client secret that drives the card widget.
func (h *BillingHandler) CreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	email, err := emailFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req PaymentIntentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	clientSecret, amount, err := h.billingService.CreatePaymentIntent(r.Context(), email, strings.TrimSpace(req.CouponCode))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPaymentsDisabled):
			writeError(w, http.StatusServiceUnavailable, "payments are not configured")
		case errors.Is(err, services.ErrInvalidCoupon):
			writeError(w, http.StatusBadRequest, "invalid or expired coupon")
		default:
			writeError(w, http.StatusInternalServerError, "failed to create payment intent")
		}
		return
	}

	writeJSON(w, http.StatusOK, PaymentIntentResponse{ClientSecret: clientSecret, Amount: amount})
}

// Subscribe flips the subscription flag after the client confirms the
// payment. Subscribing twice reports modifiedCount 0.
func (h *BillingHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	email, err := emailFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if claimed := strings.TrimSpace(r.URL.Query().Get("email")); claimed != "" && !strings.EqualFold(claimed, email) {
		writeError(w, http.StatusForbidden, "email does not match token")
		return
	}

	changed, err := h.userService.MarkSubscribed(r.Context(), email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update subscription")
		return
	}

	modified := 0
	if changed {
		modified = 1
	}
	writeJSON(w, http.StatusOK, ModifiedResponse{ModifiedCount: modified})
}

type PaymentIntentRequest struct {
	CouponCode string `json:"couponCode"`
}

type PaymentIntentResponse struct {
	ClientSecret string `json:"clientSecret"`
	Amount       int    `json:"amount"`
}
