package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/launchhub-app/apiserver/internal/services"
	"github.com/launchhub-app/apiserver/internal/storage"
	"github.com/launchhub-app/apiserver/internal/store"
)

const maxImageUploadBytes = 8 << 20

// MediaHandler uploads product images into object storage and serves
// them back under /files.
type MediaHandler struct {
	productService *services.ProductService
	media          *storage.MediaStore
}

// NewMediaHandler constructs a MediaHandler with the provided dependencies.
func NewMediaHandler(productService *services.ProductService, media *storage.MediaStore) *MediaHandler {
	return &MediaHandler{productService: productService, media: media}
}

// MediaRouter registers media routes on the given router.
func MediaRouter(r chi.Router, productService *services.ProductService, media *storage.MediaStore, authMiddleware func(http.Handler) http.Handler) {
	handler := NewMediaHandler(productService, media)

	r.With(authMiddleware).Post("/products/{productID}/image", handler.UploadProductImage)
	r.Get("/files/*", handler.ServeFile)
}

// UploadProductImage stores the multipart image for a product the
// authenticated user owns and points the product at the served path.
func (h *MediaHandler) UploadProductImage(w http.ResponseWriter, r *http.Request) {
	if h.media == nil {
		writeError(w, http.StatusServiceUnavailable, "media storage is not configured")
		return
	}

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
		writeError(w, http.StatusForbidden, "not the product owner")
		return
	}

	if err := r.ParseMultipartForm(maxImageUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing image file")
		return
	}
	defer file.Close()

	filename := path.Base(strings.TrimSpace(header.Filename))
	if filename == "" || filename == "." || filename == "/" {
		writeError(w, http.StatusBadRequest, "invalid file name")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = mime.TypeByExtension(path.Ext(filename))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := fmt.Sprintf("products/%d/%s", id, filename)
	if err := h.media.Put(r.Context(), key, file, header.Size, contentType); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to store image")
		return
	}

	imageURL := "/files/" + key
	if err := h.productService.SetImage(r.Context(), id, imageURL); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update product image")
		return
	}

	writeJSON(w, http.StatusCreated, ImageUploadResponse{ProductImage: imageURL})
}

// ServeFile streams a stored object back to the client.
func (h *MediaHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	if h.media == nil {
		writeError(w, http.StatusServiceUnavailable, "media storage is not configured")
		return
	}

	key := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if key == "" || strings.Contains(key, "..") {
		writeError(w, http.StatusBadRequest, "invalid file key")
		return
	}

	object, err := h.media.Get(r.Context(), key)
	if err != nil {
		writeError(w, http.StatusNotFound, "file not found")
		return
	}
	defer object.Close()

	if contentType := mime.TypeByExtension(path.Ext(key)); contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, object)
}

type ImageUploadResponse struct {
	ProductImage string `json:"productImage"`
}
