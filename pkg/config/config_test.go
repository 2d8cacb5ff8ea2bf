package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func TestDefaults(t *testing.T) {
	cfg := fromViper(newViper())

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, StorageDriverMemory, cfg.Storage.Driver)
	assert.Equal(t, "nr_ctx", cfg.Context.CookieName)
	assert.Equal(t, 365*24*time.Hour, cfg.Context.CookieTTL)
	assert.Equal(t, 3*time.Second, cfg.Session.RestoreWait)
	assert.Equal(t, int64(5*1024*1024), cfg.Import.MaxFileSizeBytes)
	assert.Equal(t, 5, cfg.Import.PreviewRows)
	assert.Equal(t, 1, cfg.Polls.ActiveLimit)
	assert.Empty(t, cfg.CORS.AllowedOrigins)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("UPSTREAM_BASE_URL", "https://news.example.com/api/v1/")
	t.Setenv("STORAGE_DRIVER", "Redis")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("SESSION_RESTORE_WAIT", "500ms")

	cfg := fromViper(newViper())

	assert.Equal(t, "https://news.example.com/api/v1", cfg.Upstream.BaseURL)
	assert.Equal(t, StorageDriverRedis, cfg.Storage.Driver)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 500*time.Millisecond, cfg.Session.RestoreWait)
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("UPSTREAM_TIMEOUT", "soon")
	t.Setenv("IMPORT_PREVIEW_ROWS", "-3")
	t.Setenv("POLL_ACTIVE_LIMIT", "0")

	cfg := fromViper(newViper())

	assert.Equal(t, 15*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, 5, cfg.Import.PreviewRows)
	assert.Equal(t, 1, cfg.Polls.ActiveLimit)
}
