package metasync

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/featvid/featvid/internal/content"
	"github.com/featvid/featvid/internal/database"
	"github.com/featvid/featvid/internal/httputil"
)

type Handler struct {
	db         database.DBTX
	controller *Controller
}

func NewHandler(db database.DBTX, controller *Controller) *Handler {
	return &Handler{db: db, controller: controller}
}

func (h *Handler) postID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid post id")
		return 0, false
	}
	exists, err := content.PostExists(r.Context(), h.db, id)
	if err != nil {
		slog.Error("failed to check post", "id", id, "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "failed to load post")
		return 0, false
	}
	if !exists {
		httputil.WriteError(w, http.StatusNotFound, "post not found")
		return 0, false
	}
	return id, true
}

// GetBuilderData serves the builder document with fresh featured-video
// widgets prefilled from the post meta. The stored document is never
// modified by a read.
func (h *Handler) GetBuilderData(w http.ResponseWriter, r *http.Request) {
	id, ok := h.postID(w, r)
	if !ok {
		return
	}

	raw, err := ReadBuilderData(r.Context(), h.db, id)
	if err != nil {
		slog.Error("failed to read builder data", "id", id, "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "failed to load builder data")
		return
	}
	if raw == nil {
		raw = []byte("[]")
	}

	prefilled, err := h.controller.PrefillBuilderData(r.Context(), id, raw)
	if err != nil {
		slog.Error("failed to prefill builder data", "id", id, "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "failed to load builder data")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(prefilled)
}

// SaveBuilderData stores the document and syncs widget video settings back
// to the canonical meta.
func (h *Handler) SaveBuilderData(w http.ResponseWriter, r *http.Request) {
	id, ok := h.postID(w, r)
	if !ok {
		return
	}

	var elements []any
	if err := json.NewDecoder(r.Body).Decode(&elements); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "body must be an element list")
		return
	}

	raw, err := json.Marshal(elements)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "body must be an element list")
		return
	}
	if err := WriteBuilderData(r.Context(), h.db, id, raw); err != nil {
		slog.Error("failed to save builder data", "id", id, "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "failed to save builder data")
		return
	}
	if err := h.controller.WriteBack(r.Context(), id, elements); err != nil {
		slog.Error("failed to sync featured video meta", "id", id, "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "failed to save builder data")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type featuredVideoResponse struct {
	Meta
	VideoURL  string `json:"videoUrl"`
	PosterURL string `json:"posterUrl"`
}

// GetFeaturedVideo returns the canonical meta with resolved preview URLs,
// the shape the editor localizes for first-add prefill.
func (h *Handler) GetFeaturedVideo(w http.ResponseWriter, r *http.Request) {
	id, ok := h.postID(w, r)
	if !ok {
		return
	}

	meta, err := ReadMeta(r.Context(), h.db, id)
	if err != nil {
		slog.Error("failed to read featured video meta", "id", id, "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "failed to load featured video")
		return
	}

	resp := featuredVideoResponse{Meta: meta}
	resp.VideoURL = h.controller.lookupURL(r.Context(), meta.VideoID)
	resp.PosterURL = h.controller.lookupURL(r.Context(), meta.PosterID)
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// SaveFeaturedVideo writes the canonical meta directly, the metabox path
// that bypasses the builder.
func (h *Handler) SaveFeaturedVideo(w http.ResponseWriter, r *http.Request) {
	id, ok := h.postID(w, r)
	if !ok {
		return
	}

	var meta Meta
	if err := json.NewDecoder(r.Body).Decode(&meta); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if meta.Source != SourceSelf && meta.Source != SourceEmbed && meta.Source != "" {
		httputil.WriteError(w, http.StatusBadRequest, "source must be \"self\" or \"embed\"")
		return
	}

	if err := WriteMeta(r.Context(), h.db, id, meta); err != nil {
		slog.Error("failed to write featured video meta", "id", id, "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "failed to save featured video")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, meta.normalized())
}
