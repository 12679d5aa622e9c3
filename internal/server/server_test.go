package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tdc-backend/internal/accounts"
	"tdc-backend/internal/auth"
	"tdc-backend/internal/blogposts"
	"tdc-backend/internal/cache"
	"tdc-backend/internal/courses"
	"tdc-backend/internal/media"
	"tdc-backend/internal/upload"
)

func newServer(t *testing.T, reg *prometheus.Registry) (*Server, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := media.NewDiskStore(dir, "http://localhost/uploads")
	require.NoError(t, err)
	s := New(Deps{
		Courses:      courses.NewMemoryRepository(),
		BlogPosts:    blogposts.NewMemoryRepository(),
		Users:        accounts.NewMemoryRepository(),
		Media:        store,
		Cache:        cache.NewMemory(),
		Manager:      &auth.Manager{Secret: []byte("test"), AccessTTL: time.Hour, Issuer: "test"},
		Log:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		CacheTTL:     time.Minute,
		Location:     time.UTC,
		Origins:      []string{"http://localhost:3000"},
		UploadPolicy: upload.DefaultPolicy(),
		UploadDir:    dir,
		Registry:     reg,
	})
	return s, dir
}

func TestRoutesAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	s, _ := newServer(t, reg)

	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	s.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/courses", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = httptest.NewRecorder()
	s.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/uploads/files", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	count, err := testutil.GatherAndCount(reg, "http_requests_total")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, count, 2)

	rec = httptest.NewRecorder()
	s.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `route="/api/courses"`)
}

func TestServesUploadedFiles(t *testing.T) {
	s, dir := newServer(t, nil)
	store, err := media.NewDiskStore(dir, "http://localhost/uploads")
	require.NoError(t, err)
	_, err = store.Put(context.Background(), "files/2026/01/a.txt", "text/plain", []byte("hello"))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/uploads/files/2026/01/a.txt", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello", strings.TrimSpace(rec.Body.String()))
}

func TestEnsureAdminThroughServer(t *testing.T) {
	s, _ := newServer(t, nil)
	changed, err := s.Accounts.EnsureAdmin(context.Background(), "admin@example.com", "secret")
	require.NoError(t, err)
	assert.True(t, changed)
}
