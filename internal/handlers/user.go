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

// UserHandler provides account endpoints: the admin user directory,
// role management and profile lookups.
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler constructs a UserHandler with the provided dependencies.
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// UserRouter registers user routes on the given router.
func UserRouter(r chi.Router, userService *services.UserService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewUserHandler(userService)
	adminOnly := RequireRole(userService, types.RoleAdmin)

	r.With(authMiddleware, adminOnly).Get("/users", handler.List)
	r.Post("/users", handler.Upsert)
	r.With(authMiddleware, adminOnly).Patch("/users/{userID}", handler.SetRole)
	r.With(authMiddleware, adminOnly).Delete("/users/{userID}", handler.Delete)
	r.With(authMiddleware).Get("/users/role/{email}", handler.GetRole)
	r.With(authMiddleware).Get("/user/profile", handler.Profile)
}

// List returns every account for the admin dashboard.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// Upsert records an account on sign-in. Only the display name and
// photo are taken from the request; role, subscription state and the
// password hash stay server-authoritative.
func (h *UserHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	var req UpsertUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	email := strings.TrimSpace(req.Email)
	if email == "" {
		writeError(w, http.StatusBadRequest, "missing email")
		return
	}

	user, err := h.userService.Upsert(r.Context(), types.User{
		Email:    email,
		Name:     strings.TrimSpace(req.Name),
		PhotoURL: strings.TrimSpace(req.PhotoURL),
		Role:     types.RoleUser,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to upsert user")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// SetRole promotes or demotes an account.
func (h *UserHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req RoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	role := strings.TrimSpace(req.Role)
	if role != types.RoleUser && role != types.RoleModerator && role != types.RoleAdmin {
		writeError(w, http.StatusBadRequest, "invalid role")
		return
	}

	if err := h.userService.SetRole(r.Context(), id, role); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update role")
		return
	}
	writeJSON(w, http.StatusOK, ModifiedResponse{ModifiedCount: 1})
}

// Delete removes an account.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	if err := h.userService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete user")
		return
	}
	writeJSON(w, http.StatusOK, ModifiedResponse{ModifiedCount: 1})
}

// GetRole returns the server-side role for an email. Users may only
// ask about themselves; admins may ask about anyone.
func (h *UserHandler) GetRole(w http.ResponseWriter, r *http.Request) {
	subject, err := emailFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	email := strings.TrimSpace(chi.URLParam(r, "email"))
	if email == "" {
		writeError(w, http.StatusBadRequest, "missing email")
		return
	}

	if !strings.EqualFold(subject, email) {
		subjectRole, err := h.userService.ResolveRole(r.Context(), subject)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to resolve role")
			return
		}
		if subjectRole != types.RoleAdmin {
			writeError(w, http.StatusForbidden, "forbidden")
			return
		}
	}

	role, err := h.userService.ResolveRole(r.Context(), email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to resolve role")
		return
	}
	writeJSON(w, http.StatusOK, RoleResponse{Role: role})
}

// Profile returns the authenticated user's own account record,
// including the subscription flag the membership page renders.
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	email, err := emailFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.userService.GetByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load user")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type UpsertUserRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	PhotoURL string `json:"photoURL"`
}

type RoleRequest struct {
	Role string `json:"role"`
}

type RoleResponse struct {
	Role string `json:"role"`
}
