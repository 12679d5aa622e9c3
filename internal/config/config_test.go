package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://db:27017/courses?retryWrites=true")
	t.Setenv("FRONTEND_ORIGINS", " https://admin.example.com , https://example.com,")
	t.Setenv("GCS_BUCKET", "media")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "courses", cfg.MongoDB)
	assert.Equal(t, StoreMongo, cfg.Store)
	assert.Equal(t, []string{"https://admin.example.com", "https://example.com"}, cfg.FrontendOrigins)
	assert.Equal(t, "https://storage.googleapis.com/media", cfg.GCSPublicURL)
	assert.Equal(t, 60, cfg.RateLimitWindowSec)
}

func TestLoadRejectsUnknownStore(t *testing.T) {
	t.Setenv("STORE", "sqlite")
	_, err := Load()
	assert.Error(t, err)
}

func TestMongoDBFromURI(t *testing.T) {
	assert.Equal(t, "tdc", mongoDBFromURI("mongodb://localhost:27017/tdc"))
	assert.Equal(t, "", mongoDBFromURI("mongodb://localhost:27017"))
	assert.Equal(t, "a", mongoDBFromURI("mongodb://h/a/b"))
}
