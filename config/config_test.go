package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("NETEASE_API_URL", "http://example.test/api/")
	t.Setenv("STORAGE_BACKEND", "Redis")

	cfg := FromEnv()

	assert.Equal(t, "http://example.test/api", cfg.NeteaseAPIURL)
	assert.Equal(t, "redis", cfg.StorageBackend)
	assert.Equal(t, 8*time.Second, cfg.EnrichTimeout)
	assert.Equal(t, 5, cfg.BatchSize)
	assert.Equal(t, 2, cfg.BatchRetries)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("ENRICH_TIMEOUT", "2s")
	t.Setenv("BATCH_SIZE", "10")
	t.Setenv("BATCH_RATE_LIMIT", "2.5")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("REDIS_DB", "not-a-number")

	cfg := FromEnv()

	assert.Equal(t, 2*time.Second, cfg.EnrichTimeout)
	assert.Equal(t, 10, cfg.BatchSize)
	assert.InDelta(t, 2.5, cfg.BatchRateLimit, 0.0001)
	assert.True(t, cfg.MinioUseSSL)
	assert.Equal(t, 0, cfg.RedisDB, "invalid ints fall back to the default")
}
