package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, 600, cfg.MaxInstallments)
	assert.Equal(t, 1e12, cfg.MaxAmount)
	assert.Equal(t, 12*time.Hour, cfg.AccessCacheTTL)
	assert.Equal(t, ":8000", cfg.Addr())
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("PORT", "9100")
	t.Setenv("APP_ENV", "production")
	t.Setenv("MAX_INSTALLMENTS", "120")
	t.Setenv("UPSTREAM_TIMEOUT", "3s")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, 120, cfg.MaxInstallments)
	assert.Equal(t, 3*time.Second, cfg.UpstreamTimeout)
	assert.True(t, cfg.IsProduction())
}

func TestLoadConfigRejectsBadLimits(t *testing.T) {
	t.Setenv("MAX_INSTALLMENTS", "0")
	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfigRejectsMalformedValue(t *testing.T) {
	t.Setenv("PORT", "not-a-port")
	_, err := LoadConfig()
	assert.Error(t, err)
}
