package httpserver

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/aacecandev/blog/contentstore"
	"github.com/aacecandev/blog/interfaces"
	"github.com/aacecandev/blog/metrics"
)

// errorResponse is the JSON body for every error status.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Handler processes HTTP requests for the blog content API. It delegates
// all content semantics to the content store and only shapes requests and
// responses.
type Handler struct {
	store *contentstore.Store
	log   *slog.Logger
}

// NewHandler creates an HTTP request handler over the given content store.
func NewHandler(store *contentstore.Store, log *slog.Logger) *Handler {
	return &Handler{
		store: store,
		log:   log,
	}
}

// HandleListPosts serves GET /api/posts.
func (h *Handler) HandleListPosts(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", contentstore.DefaultPageLimit)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid limit parameter")
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid offset parameter")
		return
	}

	list, err := h.store.ListPosts(r.Context(), limit, offset)
	if err != nil {
		h.writeContentError(w, r, err)
		return
	}

	h.setCacheHeaders(w, fmt.Sprintf("%d-%d-%d", list.Total, list.Offset, list.Limit))
	h.writeJSON(w, http.StatusOK, list)
}

// HandleGetPost serves GET /api/posts/{slug}. The slug is validated here
// before the store ever sees it; the store and the backend validate it
// again on their own.
func (h *Handler) HandleGetPost(w http.ResponseWriter, r *http.Request) {
	rawSlug := chi.URLParam(r, "slug")

	if _, err := interfaces.ParseSlug(rawSlug); err != nil {
		h.writeContentError(w, r, err)
		return
	}

	post, err := h.store.GetPost(r.Context(), rawSlug)
	if err != nil {
		h.writeContentError(w, r, err)
		return
	}

	h.setCacheHeaders(w, post.Meta.Slug.String()+"-"+post.Meta.Date.Format("20060102"))
	h.writeJSON(w, http.StatusOK, post)
}

// HandleCacheStats serves GET /api/cache/stats.
func (h *Handler) HandleCacheStats(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.store.CacheStats())
}

// HandleCachePurge serves POST /api/cache/purge.
func (h *Handler) HandleCachePurge(w http.ResponseWriter, r *http.Request) {
	h.store.ClearCaches()
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "caches cleared"})
}

// CacheCounters adapts the store's stats to the metrics exporter.
func (h *Handler) CacheCounters() map[string]metrics.CacheCounters {
	stats := h.store.CacheStats()
	return map[string]metrics.CacheCounters{
		"posts": {
			Hits:   stats.Posts.Hits,
			Misses: stats.Posts.Misses,
			Size:   stats.Posts.Size,
		},
		"listing": {
			Hits:   stats.Listing.Hits,
			Misses: stats.Listing.Misses,
			Size:   stats.Listing.Size,
		},
	}
}

// writeContentError maps a content error onto its HTTP status.
func (h *Handler) writeContentError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, interfaces.ErrInvalidSlug):
		h.log.Warn("Validation error", slog.String("path", r.URL.Path), "err", err)
		h.writeError(w, http.StatusBadRequest, "VALIDATION_ERROR",
			"Invalid slug format. Use only alphanumeric characters, hyphens, and underscores.")
	case errors.Is(err, interfaces.ErrPostNotFound):
		h.writeError(w, http.StatusNotFound, "NOT_FOUND", "Post not found")
	case errors.Is(err, interfaces.ErrMalformedPost):
		h.log.Error("Malformed content", slog.String("path", r.URL.Path), "err", err)
		h.writeError(w, http.StatusInternalServerError, "MALFORMED_CONTENT", "Post content is malformed")
	case errors.Is(err, interfaces.ErrStorageUnavailable):
		h.log.Error("Storage unavailable", slog.String("path", r.URL.Path), "err", err)
		h.writeError(w, http.StatusServiceUnavailable, "STORAGE_ERROR", "Content temporarily unavailable")
	default:
		h.log.Error("Unhandled error", slog.String("path", r.URL.Path), "err", err)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: message, Code: code})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("Failed to encode response", "err", err)
	}
}

// setCacheHeaders adds Cache-Control and a weak ETag derived from the
// response identity so CDNs and browsers can reuse responses for the
// cache TTL.
func (h *Handler) setCacheHeaders(w http.ResponseWriter, identity string) {
	ttl := int(h.store.TTL().Seconds())
	if ttl <= 0 {
		w.Header().Set("Cache-Control", "no-store")
		return
	}
	w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", ttl))
	sum := sha256.Sum256([]byte(identity))
	w.Header().Set("ETag", fmt.Sprintf(`W/"%x"`, sum[:8]))
}

func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return value, nil
}
