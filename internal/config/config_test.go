package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3001, cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, 5*time.Minute, cfg.PriceListCacheTTL)
	assert.Equal(t, 15*time.Second, cfg.PriceAPITimeout)
	assert.Equal(t, 8, cfg.CommitConcurrency)
}

func TestLoadFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("COMMIT_CONCURRENCY", "2")
	t.Setenv("PRICE_API_TIMEOUT", "3s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, 2, cfg.CommitConcurrency)
	assert.Equal(t, 3*time.Second, cfg.PriceAPITimeout)
}
