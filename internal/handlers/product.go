package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/launchhub-app/apiserver/internal/policy"
	"github.com/launchhub-app/apiserver/internal/services"
	"github.com/launchhub-app/apiserver/internal/store"
	"github.com/launchhub-app/apiserver/types"
)

// ProductHandler provides product HTTP endpoints: public listings,
// submissions, the vote toggle, reporting and moderation.
type ProductHandler struct {
	productService *services.ProductService
	userService    *services.UserService
}

// NewProductHandler constructs a ProductHandler with the provided dependencies.
func NewProductHandler(productService *services.ProductService, userService *services.UserService) *ProductHandler {
	return &ProductHandler{productService: productService, userService: userService}
}

// ProductRouter registers product routes on the given router.
func ProductRouter(r chi.Router, productService *services.ProductService, userService *services.UserService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewProductHandler(productService, userService)
	moderatorOnly := RequireRole(userService, types.RoleModerator, types.RoleAdmin)

	r.Get("/acceptedProducts", handler.ListAccepted)
	r.Get("/featuredProducts", handler.ListFeatured)
	r.Get("/trendingProducts", handler.ListTrending)
	r.Get("/product/{productID}", handler.Get)

	r.With(authMiddleware, moderatorOnly).Get("/products", handler.ListModerationQueue)
	r.With(authMiddleware).Post("/products", handler.Create)
	r.With(authMiddleware).Get("/myProducts", handler.ListMine)

	r.With(authMiddleware, moderatorOnly).Get("/products/reported", handler.ListReported)
	r.With(authMiddleware, moderatorOnly).Patch("/products/ignore-report/{productID}", handler.IgnoreReport)
	r.With(authMiddleware).Patch("/products/upvote/{productID}", handler.ToggleVote)
	r.With(authMiddleware).Post("/products/report/{productID}", handler.Report)

	r.Get("/products/{productID}", handler.Get)
	r.With(authMiddleware).Patch("/products/{productID}", handler.Patch)
	r.With(authMiddleware).Delete("/products/{productID}", handler.Delete)
}

// ListAccepted returns the paginated public catalog. Search matches the
// product name and tags, case-insensitively.
func (h *ProductHandler) ListAccepted(w http.ResponseWriter, r *http.Request) {
	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	search := strings.TrimSpace(r.URL.Query().Get("search"))

	products, total, err := h.productService.ListAccepted(r.Context(), search, offset, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	totalPages := (total + limit - 1) / limit
	writeJSON(w, http.StatusOK, AcceptedProductsResponse{
		Products:   products,
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	})
}

// ListFeatured returns the curated spotlight listing, newest first.
func (h *ProductHandler) ListFeatured(w http.ResponseWriter, r *http.Request) {
	products, err := h.productService.ListFeatured(r.Context(), 12)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list products")
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// ListTrending returns accepted products ranked by vote count.
func (h *ProductHandler) ListTrending(w http.ResponseWriter, r *http.Request) {
	products, err := h.productService.ListTrending(r.Context(), 12)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list products")
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// ListModerationQueue returns every product for the review queue,
// pending submissions first.
func (h *ProductHandler) ListModerationQueue(w http.ResponseWriter, r *http.Request) {
	products, err := h.productService.ListModerationQueue(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list products")
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// ListMine returns the authenticated user's own submissions. The email
// query parameter, when present, must match the token subject.
func (h *ProductHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	email, err := emailFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if claimed := strings.TrimSpace(r.URL.Query().Get("email")); claimed != "" && !strings.EqualFold(claimed, email) {
		writeError(w, http.StatusForbidden, "email does not match token")
		return
	}

	products, err := h.productService.ListByOwner(r.Context(), email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list products")
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// ListReported returns products carrying open reports.
func (h *ProductHandler) ListReported(w http.ResponseWriter, r *http.Request) {
	products, err := h.productService.ListReported(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list products")
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// Get returns a single product by ID.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(chi.URLParam(r, "productID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	product, err := h.productService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load product")
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// Create submits a new product owned by the authenticated user. The
// submission always enters the queue in the pending state.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	email, err := emailFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.ProductName = strings.TrimSpace(req.ProductName)
	if req.ProductName == "" {
		writeError(w, http.StatusBadRequest, "missing product name")
		return
	}

	product, err := h.productService.Create(r.Context(), types.Product{
		ProductName:   req.ProductName,
		Description:   strings.TrimSpace(req.Description),
		ProductImage:  strings.TrimSpace(req.ProductImage),
		Tags:          req.Tags,
		ExternalLinks: req.ExternalLinks,
		OwnerEmail:    email,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create product")
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

// Patch applies either a moderation decision or an owner edit. A body
// carrying status or featured is a moderation patch and requires a
// moderator role; anything else edits the owner-facing fields.
func (h *ProductHandler) Patch(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(chi.URLParam(r, "productID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	email, err := emailFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req ProductPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	if req.Status != nil || req.Featured != nil {
		h.moderate(w, r, id, email, policy.ModerationPatch{Status: req.Status, Featured: req.Featured})
		return
	}
	h.updateOwned(w, r, id, email, req)
}

func (h *ProductHandler) moderate(w http.ResponseWriter, r *http.Request, id int, email string, patch policy.ModerationPatch) {
	role, err := h.userService.ResolveRole(r.Context(), email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to resolve role")
		return
	}
	if role != types.RoleModerator && role != types.RoleAdmin {
		writeError(w, http.StatusForbidden, "moderator access required")
		return
	}

	changed, err := h.productService.Moderate(r.Context(), id, email, patch)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "product not found")
		case errors.Is(err, policy.ErrInvalidStatus):
			writeError(w, http.StatusBadRequest, "invalid status transition")
		case errors.Is(err, policy.ErrNotAccepted):
			writeError(w, http.StatusConflict, "only accepted products can be featured")
		default:
			writeError(w, http.StatusInternalServerError, "failed to moderate product")
		}
		return
	}

	modified := 0
	if changed {
		modified = 1
	}
	writeJSON(w, http.StatusOK, ModifiedResponse{ModifiedCount: modified})
}

func (h *ProductHandler) updateOwned(w http.ResponseWriter, r *http.Request, id int, email string, req ProductPatchRequest) {
	product, err := h.productService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load product")
		return
	}
	if !strings.EqualFold(product.OwnerEmail, email) {
		writeError(w, http.StatusForbidden, "not the product owner")
		return
	}

	if req.ProductName != nil {
		product.ProductName = strings.TrimSpace(*req.ProductName)
	}
	if req.Description != nil {
		product.Description = strings.TrimSpace(*req.Description)
	}
	if req.ProductImage != nil {
		product.ProductImage = strings.TrimSpace(*req.ProductImage)
	}
	if req.Tags != nil {
		product.Tags = req.Tags
	}
	if req.ExternalLinks != nil {
		product.ExternalLinks = req.ExternalLinks
	}
	if product.ProductName == "" {
		writeError(w, http.StatusBadRequest, "missing product name")
		return
	}

	updated, err := h.productService.Update(r.Context(), product)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update product")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete removes a product. The owner can delete their own submission;
// moderators can delete anything.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(chi.URLParam(r, "productID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	email, err := emailFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	product, err := h.productService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load product")
		return
	}

	if !strings.EqualFold(product.OwnerEmail, email) {
		role, err := h.userService.ResolveRole(r.Context(), email)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to resolve role")
			return
		}
		if role != types.RoleModerator && role != types.RoleAdmin {
			writeError(w, http.StatusForbidden, "not the product owner")
			return
		}
	}

	if err := h.productService.Delete(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete product")
		return
	}
	writeJSON(w, http.StatusOK, ModifiedResponse{ModifiedCount: 1})
}

// ToggleVote flips the authenticated user's vote on the product. The
// response reports the direction the server actually applied, so a
// stale client converges instead of double-counting.
func (h *ProductHandler) ToggleVote(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(chi.URLParam(r, "productID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	email, err := emailFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req VoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
		if claimed := strings.TrimSpace(req.Email); claimed != "" && !strings.EqualFold(claimed, email) {
			writeError(w, http.StatusForbidden, "email does not match token")
			return
		}
	}

	product, action, err := h.productService.ToggleVote(r.Context(), id, email)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "product not found")
		case errors.Is(err, policy.ErrOwnVote):
			writeError(w, http.StatusForbidden, "owners cannot vote on their own product")
		case errors.Is(err, policy.ErrNoIdentity):
			writeError(w, http.StatusUnauthorized, "unauthorized")
		default:
			writeError(w, http.StatusInternalServerError, "failed to toggle vote")
		}
		return
	}

	writeJSON(w, http.StatusOK, VoteResponse{
		ModifiedCount: 1,
		Action:        string(action),
		UpVote:        product.UpVote,
	})
}

// Report files a report against the product. A duplicate report from
// the same identity answers success=false rather than an error.
func (h *ProductHandler) Report(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(chi.URLParam(r, "productID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	email, err := emailFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req ReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
		if claimed := strings.TrimSpace(req.ReporterEmail); claimed != "" && !strings.EqualFold(claimed, email) {
			writeError(w, http.StatusForbidden, "email does not match token")
			return
		}
	}

	if err := h.productService.Report(r.Context(), id, email); err != nil {
		switch {
		case errors.Is(err, policy.ErrAlreadyReported):
			writeJSON(w, http.StatusOK, ReportResponse{Success: false})
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "product not found")
		case errors.Is(err, policy.ErrNoIdentity):
			writeError(w, http.StatusUnauthorized, "unauthorized")
		default:
			writeError(w, http.StatusInternalServerError, "failed to report product")
		}
		return
	}
	writeJSON(w, http.StatusOK, ReportResponse{Success: true})
}

// IgnoreReport clears all open reports from the product.
func (h *ProductHandler) IgnoreReport(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(chi.URLParam(r, "productID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	changed, err := h.productService.IgnoreReport(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to clear reports")
		return
	}

	modified := 0
	if changed {
		modified = 1
	}
	writeJSON(w, http.StatusOK, ModifiedResponse{ModifiedCount: modified})
}

type ProductRequest struct {
	ProductName   string   `json:"productName"`
	Description   string   `json:"description"`
	ProductImage  string   `json:"productImage"`
	Tags          []string `json:"tags"`
	ExternalLinks []string `json:"externalLinks"`
}

type ProductPatchRequest struct {
	ProductName   *string  `json:"productName"`
	Description   *string  `json:"description"`
	ProductImage  *string  `json:"productImage"`
	Tags          []string `json:"tags"`
	ExternalLinks []string `json:"externalLinks"`
	Status        *string  `json:"status"`
	Featured      *bool    `json:"featured"`
}

type AcceptedProductsResponse struct {
	Products   []types.Product `json:"products"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	Total      int             `json:"total"`
	TotalPages int             `json:"totalPages"`
}

type VoteRequest struct {
	Email string `json:"email"`
}

type VoteResponse struct {
	ModifiedCount int    `json:"modifiedCount"`
	Action        string `json:"action"`
	UpVote        int    `json:"upVote"`
}

type ReportRequest struct {
	ReporterEmail string `json:"reporterEmail"`
}

type ReportResponse struct {
	Success bool `json:"success"`
}

type ModifiedResponse struct {
	ModifiedCount int `json:"modifiedCount"`
}
