// Package media stores uploaded files and images and hands back the public
// URL they are served from.
package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// Store persists an object under key and returns its public URL.
type Store interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// DiskStore writes objects below Dir. The API serves Dir under PublicURL.
type DiskStore struct {
	Dir       string
	PublicURL string
}

func NewDiskStore(dir, publicURL string) (*DiskStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("upload dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStore{Dir: dir, PublicURL: strings.TrimRight(publicURL, "/")}, nil
}

func (s *DiskStore) Put(ctx context.Context, key, _ string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path := filepath.Join(s.Dir, filepath.FromSlash(key))
	if !strings.HasPrefix(path, filepath.Clean(s.Dir)+string(os.PathSeparator)) {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create object dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write object: %w", err)
	}
	return s.PublicURL + "/" + key, nil
}

// GCSStore writes objects to a Cloud Storage bucket.
type GCSStore struct {
	client    *storage.Client
	bucket    string
	publicURL string
}

// NewGCSStore uses application default credentials unless opts say otherwise.
func NewGCSStore(ctx context.Context, bucket, publicURL string, opts ...option.ClientOption) (*GCSStore, error) {
	if strings.TrimSpace(bucket) == "" {
		return nil, fmt.Errorf("GCS bucket is required")
	}
	opts = append([]option.ClientOption{option.WithScopes(storage.ScopeReadWrite)}, opts...)
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage.NewClient: %w", err)
	}
	if publicURL == "" {
		publicURL = "https://storage.googleapis.com/" + bucket
	}
	return &GCSStore{client: client, bucket: bucket, publicURL: strings.TrimRight(publicURL, "/")}, nil
}

func (s *GCSStore) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=31536000"
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("write object %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close writer %s: %w", key, err)
	}
	return s.publicURL + "/" + key, nil
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}
