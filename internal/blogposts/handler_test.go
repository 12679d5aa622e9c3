package blogposts

import (
	"bytes"
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
	"tdc-backend/internal/cache"
	"tdc-backend/internal/content"
	"tdc-backend/internal/middleware"
	"tdc-backend/internal/validation"
)

func newRouter(t *testing.T) (http.Handler, string) {
	t.Helper()
	manager := &auth.Manager{Secret: []byte("test"), AccessTTL: time.Hour, Issuer: "test"}
	token, _, err := manager.NewAccessToken("admin-1", "admin@example.com", auth.RoleAdmin)
	require.NoError(t, err)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewHandler(NewService(NewMemoryRepository(), time.UTC), validation.New(), cache.NewMemory(), time.Minute, log)
	r := chi.NewRouter()
	r.Route("/api", func(api chi.Router) {
		h.Routes(api, middleware.AdminAuth(manager))
	})
	return r, token
}

func call(t *testing.T, h http.Handler, token, method, path string, body interface{}) (int, map[string]json.RawMessage) {
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
	h.ServeHTTP(rec, req)
	var out map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec.Code, out
}

func TestPostSectionEndpoints(t *testing.T) {
	h, token := newRouter(t)

	status, body := call(t, h, token, http.MethodPost, "/api/blog-posts", draftPost())
	require.Equal(t, http.StatusCreated, status)
	var post content.BlogPost
	require.NoError(t, json.Unmarshal(body["post"], &post))
	base := "/api/blog-posts/" + post.ID.String()

	code := post.Sections[1]
	code.Content = content.CodeContent{Code: "close(ch)", Language: content.LangGo}
	status, body = call(t, h, token, http.MethodPut, base+"/sections/"+code.ID.String(), code)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, "2", string(body["version"]))

	status, _ = call(t, h, "", http.MethodPut, base+"/sections/"+code.ID.String(), code)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = call(t, h, token, http.MethodPut, base+"/sections/other", code)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = call(t, h, token, http.MethodPost, base+"/sections", content.NewTextSection("appendix"))
	require.Equal(t, http.StatusCreated, status)
	var added content.Section
	require.NoError(t, json.Unmarshal(body["section"], &added))
	assert.True(t, added.ID.IsPersisted())

	status, _ = call(t, h, token, http.MethodDelete, base+"/sections/"+post.Sections[0].ID.String(), nil)
	require.Equal(t, http.StatusOK, status)
	status, _ = call(t, h, token, http.MethodDelete, base+"/sections/"+post.Sections[0].ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, body = call(t, h, "", http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, status)
	var stored content.BlogPost
	require.NoError(t, json.Unmarshal(body["post"], &stored))
	assert.Equal(t, int64(4), stored.Version)
	require.Len(t, stored.Sections, 2)
	assert.Equal(t, code.Content, stored.Sections[0].Content)

	status, body = call(t, h, "", http.MethodGet, base+"/html", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body["html"]), "appendix")
}

func TestListByTag(t *testing.T) {
	h, token := newRouter(t)
	for _, tag := range []string{"go", "rust"} {
		p := draftPost()
		p.Tags = []string{tag}
		status, _ := call(t, h, token, http.MethodPost, "/api/blog-posts", p)
		require.Equal(t, http.StatusCreated, status)
	}

	status, body := call(t, h, "", http.MethodGet, "/api/blog-posts?tag=rust", nil)
	require.Equal(t, http.StatusOK, status)
	var items []content.BlogPost
	require.NoError(t, json.Unmarshal(body["items"], &items))
	require.Len(t, items, 1)
	assert.Equal(t, []string{"rust"}, items[0].Tags)
}

func TestCreateRejectsUntitledPost(t *testing.T) {
	h, token := newRouter(t)
	status, body := call(t, h, token, http.MethodPost, "/api/blog-posts", content.NewBlogPost("", "Ada"))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(body["details"]), "BlogPost.Title")
}
