package media

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/featvid/featvid/internal/httputil"
)

type Handler struct {
	library *Library
}

func NewHandler(library *Library) *Handler {
	return &Handler{library: library}
}

type createRequest struct {
	ContentType   string `json:"contentType"`
	ContentLength int64  `json:"contentLength"`
}

type createResponse struct {
	ID        int64  `json:"id"`
	UploadURL string `json:"uploadUrl"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !strings.HasPrefix(req.ContentType, "video/") && !strings.HasPrefix(req.ContentType, "image/") {
		httputil.WriteError(w, http.StatusBadRequest, "content type must be a video or image")
		return
	}

	rec, uploadURL, err := h.library.Create(r.Context(), req.ContentType, req.ContentLength)
	if err != nil {
		slog.Error("failed to create media record", "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "failed to create media record")
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, createResponse{ID: rec.ID, UploadURL: uploadURL})
}

type getResponse struct {
	ID          int64  `json:"id"`
	ContentType string `json:"contentType"`
	URL         string `json:"url"`
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid media id")
		return
	}

	rec, err := h.library.Get(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		httputil.WriteError(w, http.StatusNotFound, "media not found")
		return
	}
	if err != nil {
		slog.Error("failed to load media record", "id", id, "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "failed to load media record")
		return
	}

	url, err := h.library.URL(r.Context(), id)
	if err != nil {
		slog.Error("failed to resolve media url", "id", id, "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "failed to resolve media url")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, getResponse{ID: rec.ID, ContentType: rec.ContentType, URL: url})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid media id")
		return
	}

	err = h.library.Delete(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		httputil.WriteError(w, http.StatusNotFound, "media not found")
		return
	}
	if err != nil {
		slog.Error("failed to delete media record", "id", id, "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "failed to delete media record")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
