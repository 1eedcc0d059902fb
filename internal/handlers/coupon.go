package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/launchhub-app/apiserver/internal/services"
	"github.com/launchhub-app/apiserver/internal/store"
	"github.com/launchhub-app/apiserver/types"
)

// CouponHandler provides coupon endpoints: admin CRUD plus the public
// validate call the checkout page uses.
type CouponHandler struct {
	couponService *services.CouponService
}

// NewCouponHandler constructs a CouponHandler with the provided dependencies.
func NewCouponHandler(couponService *services.CouponService) *CouponHandler {
	return &CouponHandler{couponService: couponService}
}

// CouponRouter registers coupon routes on the given router. The routes
// are mounted twice: the client consumes both /coupons and the older
// /api/coupons prefix.
func CouponRouter(r chi.Router, couponService *services.CouponService, userService *services.UserService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewCouponHandler(couponService)
	adminOnly := RequireRole(userService, types.RoleAdmin)

	for _, prefix := range []string{"/coupons", "/api/coupons"} {
		r.Get(prefix, handler.List)
		r.Get(prefix+"/validate", handler.Validate)
		r.With(authMiddleware, adminOnly).Post(prefix, handler.Create)
		r.With(authMiddleware, adminOnly).Put(prefix+"/{couponID}", handler.Update)
		r.With(authMiddleware, adminOnly).Delete(prefix+"/{couponID}", handler.Delete)
	}
}

// List returns every coupon. The landing page carousel renders the
// valid ones; the admin dashboard shows all of them.
func (h *CouponHandler) List(w http.ResponseWriter, r *http.Request) {
	coupons, err := h.couponService.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list coupons")
		return
	}
	writeJSON(w, http.StatusOK, coupons)
}

// Validate checks a coupon code. Unknown and expired codes answer
// valid=false with a zero discount rather than an error.
func (h *CouponHandler) Validate(w http.ResponseWriter, r *http.Request) {
	code := strings.TrimSpace(r.URL.Query().Get("code"))
	if code == "" {
		writeError(w, http.StatusBadRequest, "missing code")
		return
	}

	coupon, valid, err := h.couponService.Validate(r.Context(), code)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to validate coupon")
		return
	}
	writeJSON(w, http.StatusOK, CouponValidationResponse{Valid: valid, Discount: coupon.Discount})
}

// Create adds a coupon.
func (h *CouponHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCouponRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	coupon, err := h.couponService.Create(r.Context(), types.Coupon{
		Code:        req.Code,
		ExpiryDate:  req.ExpiryDate,
		Description: req.Description,
		Discount:    req.Discount,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create coupon")
		return
	}
	writeJSON(w, http.StatusCreated, coupon)
}

// Update replaces a coupon's code, expiry, description and discount.
func (h *CouponHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(chi.URLParam(r, "couponID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid coupon id")
		return
	}

	req, err := decodeCouponRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	coupon, err := h.couponService.Update(r.Context(), types.Coupon{
		ID:          id,
		Code:        req.Code,
		ExpiryDate:  req.ExpiryDate,
		Description: req.Description,
		Discount:    req.Discount,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "coupon not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update coupon")
		return
	}
	writeJSON(w, http.StatusOK, coupon)
}

// Delete removes a coupon.
func (h *CouponHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(chi.URLParam(r, "couponID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid coupon id")
		return
	}

	if err := h.couponService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "coupon not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete coupon")
		return
	}
	writeJSON(w, http.StatusOK, ModifiedResponse{ModifiedCount: 1})
}

func decodeCouponRequest(r *http.Request) (CouponRequest, error) {
	var req CouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return CouponRequest{}, errors.New("invalid request")
	}
	req.Code = strings.TrimSpace(req.Code)
	if req.Code == "" {
		return CouponRequest{}, errors.New("missing code")
	}
	if req.ExpiryDate.IsZero() {
		return CouponRequest{}, errors.New("missing expiry date")
	}
	if req.Discount < 0 {
		return CouponRequest{}, errors.New("invalid discount")
	}
	return req, nil
}

type CouponRequest struct {
	Code        string    `json:"code"`
	ExpiryDate  time.Time `json:"expiryDate"`
	Description string    `json:"description"`
	Discount    int       `json:"discount"`
}

type CouponValidationResponse struct {
	Valid    bool `json:"valid"`
	Discount int  `json:"discount"`
}
