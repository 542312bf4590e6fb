package persistence

import (
	"context"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/inventory-service/internal/config"
	"github.com/spec-kit/inventory-service/migrations"
)

func TestNewPostgres_RequiresDSN(t *testing.T) {
	pg, err := NewPostgres(context.Background(), config.PostgresConfig{}, zap.NewNop())
	require.Error(t, err)
	require.Nil(t, pg)
}

func TestRedisDisabledWithoutAddr(t *testing.T) {
	r := NewRedis(config.RedisConfig{}, zap.NewNop())
	require.False(t, r.Enabled())
	require.Error(t, r.Ping(context.Background()))
	r.Close()
}

func TestRunMigrations_NilPoolIsSkipped(t *testing.T) {
	require.NoError(t, RunMigrations(context.Background(), nil, zap.NewNop()))
}

func TestMigrationsEmbedded(t *testing.T) {
	files, err := fs.Glob(migrations.FS, "*.sql")
	require.NoError(t, err)
	require.Contains(t, files, "00001_create_users.sql")
}
