package config

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "data/database.json", cfg.DataFile)
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.RefreshTokenTTL)
	assert.Equal(t, 6, cfg.Auth.MaxFailedAttempts)
	assert.Equal(t, 15, cfg.Auth.MaxRefreshHashes)
	assert.Equal(t, 5, cfg.Store.MaxFlushRetries)
	assert.Equal(t, 25*time.Millisecond, cfg.Store.FlushRetryDelay)
	assert.Equal(t, 24*time.Hour, cfg.Idempotency.TTL)
	assert.Equal(t, 5000, cfg.Idempotency.MaxRecords)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ACCESS_TOKEN_TTL", "5m")
	t.Setenv("AUTH_MAX_FAILED_ATTEMPTS", "3")

	cfg, err := Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 5*time.Minute, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, 3, cfg.Auth.MaxFailedAttempts)
}

func TestLoad_ProductionRejectsDevSecrets(t *testing.T) {
	t.Setenv("ENV", "production")

	_, err := Load(context.Background())
	require.Error(t, err)

	t.Setenv("JWT_ACCESS_SECRET", "real-access-secret")
	t.Setenv("JWT_REFRESH_SECRET", "real-refresh-secret")
	cfg, err := Load(context.Background())
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}
