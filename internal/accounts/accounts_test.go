package accounts

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tdc-backend/internal/auth"
	"tdc-backend/internal/middleware"
	"tdc-backend/internal/validation"
)

func newManager() *auth.Manager {
	return &auth.Manager{Secret: []byte("test"), AccessTTL: time.Hour, Issuer: "test"}
}

func TestEnsureAdmin(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	svc := NewService(repo, newManager())

	changed, err := svc.EnsureAdmin(ctx, " Admin@Example.com ", "secret-1")
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = svc.EnsureAdmin(ctx, "admin@example.com", "secret-1")
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = svc.EnsureAdmin(ctx, "admin@example.com", "secret-2")
	require.NoError(t, err)
	assert.True(t, changed)

	_, err = svc.Login(ctx, "admin@example.com", "secret-1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	token, err := svc.Login(ctx, "ADMIN@example.com", "secret-2")
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", token.User.Email)

	_, err = svc.EnsureAdmin(ctx, "", "x")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestLoginRejectsNonAdmin(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	hash, err := auth.HashPassword("pw")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, User{ID: "u1", Email: "reader@example.com", PasswordHash: hash, Role: "reader"}))

	svc := NewService(repo, newManager())
	_, err = svc.Login(ctx, "reader@example.com", "pw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@example.com", "pw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	unconfigured := NewService(repo, &auth.Manager{})
	_, err = unconfigured.Login(ctx, "reader@example.com", "pw")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestMemoryRepositoryDuplicate(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, User{ID: "a", Email: "x@example.com"}))
	assert.ErrorIs(t, repo.Create(ctx, User{ID: "b", Email: "x@example.com"}), ErrDuplicate)
	assert.ErrorIs(t, repo.UpdatePassword(ctx, "missing", "h"), ErrNotFound)
}

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	manager := newManager()
	svc := NewService(NewMemoryRepository(), manager)
	_, err := svc.EnsureAdmin(context.Background(), "admin@example.com", "secret")
	require.NoError(t, err)

	h := NewHandler(svc, validation.New(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := chi.NewRouter()
	r.Route("/api", func(api chi.Router) {
		h.Routes(api, middleware.AdminAuth(manager), middleware.NewRateLimiter(100, time.Minute))
	})
	return r
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, body interface{}) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	var out map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec, out
}

func TestLoginAndMe(t *testing.T) {
	router := newRouter(t)

	rec, body := doJSON(t, router, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "admin@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `"invalid credentials"`, string(body["message"]))

	rec, body = doJSON(t, router, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "not-an-email", "password": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, string(body["details"]), "LoginRequest.Email")

	rec, body = doJSON(t, router, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "admin@example.com", "password": "secret"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var token string
	require.NoError(t, json.Unmarshal(body["token"], &token))
	require.NotEmpty(t, token)
	assert.Contains(t, body, "expiresAt")
	assert.NotContains(t, string(body["user"]), "passwordHash")

	rec, _ = doJSON(t, router, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, body = doJSON(t, router, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `"admin@example.com"`, string(body["email"]))
	assert.JSONEq(t, `"admin"`, string(body["role"]))
}
