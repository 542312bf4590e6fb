package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_RequiresJWTSecret(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "   ")

	cfg, err := Load()
	require.ErrorIs(t, err, ErrMissingJWTSecret)
	require.Nil(t, cfg)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "s3cret")
	t.Setenv("APP_PORT", "")
	t.Setenv("AUTH_BCRYPT_COST", "")
	t.Setenv("REDIS_ADDR", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	require.Equal(t, 12, cfg.Auth.BcryptCost)
	require.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	require.Empty(t, cfg.Redis.Addr)
	require.Equal(t, 15*time.Minute, cfg.Auth.LoginLockout())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "s3cret")
	t.Setenv("AUTH_BCRYPT_COST", "10")
	t.Setenv("AUTH_LOGIN_WINDOW_MINUTES", "3")
	t.Setenv("HTTP_REQUEST_TIMEOUT_SECONDS", "0")
	t.Setenv("POSTGRES_RUN_MIGRATIONS", "false")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 10, cfg.Auth.BcryptCost)
	require.Equal(t, 3*time.Minute, cfg.Auth.LoginWindow())
	require.Zero(t, cfg.App.RequestTimeout())
	require.False(t, cfg.Postgres.RunMigrations)
}

func TestLoad_InvalidRedisDB(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "s3cret")
	t.Setenv("REDIS_DB", "one")

	_, err := Load()
	require.Error(t, err)
}
