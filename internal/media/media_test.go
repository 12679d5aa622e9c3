package media

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tdc-backend/internal/auth"
	"tdc-backend/internal/middleware"
	"tdc-backend/internal/upload"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

type failingStore struct{}

func (failingStore) Put(context.Context, string, string, []byte) (string, error) {
	return "", errors.New("bucket unavailable")
}

func fixedService(store Store) *Service {
	s := NewService(store, upload.DefaultPolicy())
	s.now = func() time.Time { return time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC) }
	return s
}

func TestDiskStorePut(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDiskStore(dir, "http://localhost:8080/uploads/")
	require.NoError(t, err)

	url, err := store.Put(context.Background(), "files/2026/03/a.txt", "text/plain", []byte("hi"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/uploads/files/2026/03/a.txt", url)

	data, err := os.ReadFile(filepath.Join(dir, "files", "2026", "03", "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hi", string(data))

	_, err = store.Put(context.Background(), "../escape.txt", "text/plain", []byte("x"))
	assert.Error(t, err)
}

func TestServiceSaveImage(t *testing.T) {
	store, err := NewDiskStore(t.TempDir(), "/uploads")
	require.NoError(t, err)
	svc := fixedService(store)

	stored, err := svc.Save(context.Background(), upload.Blob{Name: "My Diagram!.PNG", Data: pngHeader}, upload.KindImage)
	require.NoError(t, err)
	assert.Equal(t, "image/png", stored.MIMEType)
	assert.Equal(t, "My Diagram!.PNG", stored.Name)
	assert.True(t, strings.HasPrefix(stored.URL, "/uploads/images/2026/03/"), stored.URL)
	assert.True(t, strings.HasSuffix(stored.URL, "-my-diagram.png"), stored.URL)
	assert.Equal(t, int64(len(pngHeader)), stored.Bytes)
}

func TestServiceSaveRejects(t *testing.T) {
	store, err := NewDiskStore(t.TempDir(), "/uploads")
	require.NoError(t, err)
	svc := fixedService(store)

	_, err = svc.Save(context.Background(), upload.Blob{Name: "notes.txt", Data: []byte("plain text")}, upload.KindImage)
	assert.ErrorIs(t, err, upload.ErrRejected)

	_, err = svc.Save(context.Background(), upload.Blob{Name: "empty.txt"}, upload.KindRaw)
	assert.ErrorIs(t, err, upload.ErrRejected)
}

func TestServiceSaveStorageFailure(t *testing.T) {
	svc := fixedService(failingStore{})
	_, err := svc.Save(context.Background(), upload.Blob{Name: "a.txt", Data: []byte("hello")}, upload.KindRaw)
	assert.ErrorIs(t, err, ErrStorage)
}

type testServer struct {
	router http.Handler
	token  string
	dir    string
}

func newTestServer(t *testing.T, store Store) *testServer {
	t.Helper()
	manager := &auth.Manager{Secret: []byte("test"), AccessTTL: time.Hour, Issuer: "test"}
	token, _, err := manager.NewAccessToken("admin-1", "admin@example.com", auth.RoleAdmin)
	require.NoError(t, err)

	dir := t.TempDir()
	if store == nil {
		store, err = NewDiskStore(dir, "http://localhost/uploads")
		require.NoError(t, err)
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewHandler(fixedService(store), log)
	r := chi.NewRouter()
	r.Route("/api", func(api chi.Router) {
		h.Routes(api, middleware.AdminAuth(manager), nil)
	})
	return &testServer{router: r, token: token, dir: dir}
}

func (s *testServer) post(t *testing.T, path, field, name string, data []byte, admin bool) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(field, name)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if admin {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	var out map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec, out
}

func TestUploadFileHandler(t *testing.T) {
	s := newTestServer(t, nil)

	rec, _ := s.post(t, "/api/uploads/files", "file", "notes.txt", []byte("hello"), false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, body := s.post(t, "/api/uploads/files", "file", "notes.txt", []byte("hello world"), true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.JSONEq(t, "true", string(body["success"]))
	assert.JSONEq(t, `"notes.txt"`, string(body["fileName"]))
	assert.JSONEq(t, `"11 B"`, string(body["fileSize"]))
	assert.JSONEq(t, `"text/plain"`, string(body["fileType"]))

	var url string
	require.NoError(t, json.Unmarshal(body["fileUrl"], &url))
	key := strings.TrimPrefix(url, "http://localhost/uploads/")
	data, err := os.ReadFile(filepath.Join(s.dir, filepath.FromSlash(key)))
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))
}

func TestUploadImageHandler(t *testing.T) {
	s := newTestServer(t, nil)

	rec, body := s.post(t, "/api/uploads/images", "file", "pic.png", pngHeader, true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var url string
	require.NoError(t, json.Unmarshal(body["secure_url"], &url))
	assert.True(t, strings.HasPrefix(url, "http://localhost/uploads/images/"))

	rec, body = s.post(t, "/api/uploads/images", "file", "notes.txt", []byte("not an image"), true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, "false", string(body["success"]))

	rec, _ = s.post(t, "/api/uploads/images", "attachment", "pic.png", pngHeader, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadStorageFailure(t *testing.T) {
	s := newTestServer(t, failingStore{})
	rec, body := s.post(t, "/api/uploads/files", "file", "a.txt", []byte("hello"), true)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `"storage error"`, string(body["message"]))
}
