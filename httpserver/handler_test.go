package httpserver

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aacecandev/blog/contentstore"
	"github.com/aacecandev/blog/interfaces"
	"github.com/aacecandev/blog/storage"
)

const testPostDoc = `---
title: "Hello, World"
date: "2025-10-10"
tags: ["intro", "setup"]
---
# Hello
`

func newTestServer(t *testing.T, ttl time.Duration) (*Server, string) {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hello-world.md"), []byte(testPostDoc), 0644))

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	backend, err := storage.NewLocalBackend(dir, 5*time.Second, log)
	require.NoError(t, err)

	store := contentstore.New(backend, ttl, log)
	handler := NewHandler(store, log)

	srv, err := New(&HTTPServerConfig{
		ListenAddr:               "127.0.0.1:0",
		MetricsAddr:              "",
		Log:                      log,
		DrainDuration:            10 * time.Millisecond,
		GracefulShutdownDuration: time.Second,
		ReadTimeout:              5 * time.Second,
		WriteTimeout:             5 * time.Second,
	}, handler)
	require.NoError(t, err)

	return srv, dir
}

func doRequest(t *testing.T, srv *Server, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	srv.getRouter().ServeHTTP(rec, req)
	return rec
}

func TestHandleGetPost(t *testing.T) {
	srv, _ := newTestServer(t, time.Minute)

	rec := doRequest(t, srv, http.MethodGet, "/api/posts/hello-world")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Cache-Control"), "max-age=60")
	assert.NotEmpty(t, rec.Header().Get("ETag"))

	var post interfaces.PostDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &post))
	assert.Equal(t, "Hello, World", post.Meta.Title)
	assert.Equal(t, interfaces.Slug("hello-world"), post.Meta.Slug)
	assert.ElementsMatch(t, []string{"intro", "setup"}, post.Meta.Tags)
	assert.Contains(t, post.Body, "# Hello")
}

func TestHandleGetPostNotFound(t *testing.T) {
	srv, _ := newTestServer(t, time.Minute)

	rec := doRequest(t, srv, http.MethodGet, "/api/posts/missing-slug")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "NOT_FOUND", body.Code)
}

func TestHandleGetPostInvalidSlug(t *testing.T) {
	srv, dir := newTestServer(t, time.Minute)

	// Chi treats the encoded traversal as a single path segment, so it
	// reaches the handler and must be rejected by validation.
	rec := doRequest(t, srv, http.MethodGet, "/api/posts/..%2F..%2Fetc%2Fpasswd")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "VALIDATION_ERROR", body.Code)

	// The content directory is untouched apart from the fixture.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestHandleListPosts(t *testing.T) {
	srv, dir := newTestServer(t, time.Minute)
	older := "---\ntitle: \"Older\"\ndate: \"2024-01-01\"\n---\nold\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "older-post.md"), []byte(older), 0644))

	rec := doRequest(t, srv, http.MethodGet, "/api/posts?limit=1&offset=0")
	require.Equal(t, http.StatusOK, rec.Code)

	var list interfaces.PostList
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, 2, list.Total)
	assert.Equal(t, 1, list.Limit)
	require.Len(t, list.Posts, 1)
	assert.Equal(t, interfaces.Slug("hello-world"), list.Posts[0].Slug, "newest first")
}

func TestHandleListPostsBadParams(t *testing.T) {
	srv, _ := newTestServer(t, time.Minute)

	for _, target := range []string{
		"/api/posts?limit=abc",
		"/api/posts?offset=-1",
		"/api/posts?offset=xyz",
	} {
		rec := doRequest(t, srv, http.MethodGet, target)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "target %s", target)
	}
}

func TestHandleCacheStatsAndPurge(t *testing.T) {
	srv, _ := newTestServer(t, time.Minute)

	doRequest(t, srv, http.MethodGet, "/api/posts/hello-world")
	doRequest(t, srv, http.MethodGet, "/api/posts/hello-world")

	rec := doRequest(t, srv, http.MethodGet, "/api/cache/stats")
	require.Equal(t, http.StatusOK, rec.Code)

	var stats contentstore.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, int64(1), stats.Posts.Hits)
	assert.Equal(t, int64(1), stats.Posts.Misses)
	assert.Equal(t, float64(60), stats.TTLSeconds)

	rec = doRequest(t, srv, http.MethodPost, "/api/cache/purge")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/api/cache/stats")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 0, stats.Posts.Size)
}

func TestZeroTTLDisablesResponseCaching(t *testing.T) {
	srv, _ := newTestServer(t, 0)

	rec := doRequest(t, srv, http.MethodGet, "/api/posts/hello-world")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestHealthEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, time.Minute)

	rec := doRequest(t, srv, http.MethodGet, "/livez")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/drain")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/undrain")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)
}
