package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("DB_DSN", "")
	t.Setenv("MYSQL_DSN", "")
	t.Setenv("SEED_PASSWORD", "")

	cfg := New()

	assert.Equal(t, EnvDevelopment, cfg.App.ENV)
	assert.Equal(t, "mysql", cfg.DB.Driver)
	assert.Contains(t, cfg.DB.DSN, "parseTime=true")
	assert.Equal(t, DevSeedPassword, cfg.Seed.Password)
	assert.Equal(t, 10, cfg.Recommend.DefaultLimit)
	assert.Equal(t, 50, cfg.Recommend.MaxLimit)
	assert.NoError(t, cfg.ValidateSeed())
}

func TestNew_Overrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("DB_DSN", "")
	t.Setenv("DB_HOST", "pg")
	t.Setenv("DB_NAME", "friends")
	t.Setenv("RECOMMEND_CACHE_TTL", "30s")
	t.Setenv("RECOMMEND_MAX_LIMIT", "not-a-number")
	t.Setenv("SEED_DEDUP_MESSAGES", "yes")

	cfg := New()

	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.Contains(t, cfg.DB.DSN, "host=pg")
	assert.Contains(t, cfg.DB.DSN, "dbname=friends")
	assert.Equal(t, 30*time.Second, cfg.Recommend.CacheTTL)
	assert.Equal(t, 50, cfg.Recommend.MaxLimit)
	assert.True(t, cfg.Seed.DedupMessages)
}

func TestNew_SQLitePath(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_DSN", "")
	t.Setenv("DB_PATH", "/tmp/friends.db")

	cfg := New()
	assert.Equal(t, "/tmp/friends.db", cfg.DB.DSN)
}

func TestValidateSeed(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("SEED_PASSWORD", "")
	t.Setenv("SEED_ALLOW_PRODUCTION", "")

	cfg := New()
	assert.Empty(t, cfg.Seed.Password, "no demo password outside development")

	err := cfg.ValidateSeed()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SEED_ALLOW_PRODUCTION")

	cfg.Seed.AllowProduction = true
	err = cfg.ValidateSeed()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SEED_PASSWORD")

	cfg.Seed.Password = "s3cret"
	assert.NoError(t, cfg.ValidateSeed())
}

func TestNew_DriverAliases(t *testing.T) {
	t.Setenv("DB_DSN", "")
	t.Setenv("DB_HOST", "pg")

	t.Setenv("DB_DRIVER", "postgresql")
	cfg := New()
	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.Contains(t, cfg.DB.DSN, "host=pg")
	assert.NotContains(t, cfg.DB.DSN, "@tcp(")

	t.Setenv("DB_DRIVER", "SQLite3")
	t.Setenv("DB_PATH", "/tmp/alias.db")
	cfg = New()
	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, "/tmp/alias.db", cfg.DB.DSN)
}

func TestNew_RecommendLimitsClamped(t *testing.T) {
	t.Setenv("RECOMMEND_DEFAULT_LIMIT", "-1")
	t.Setenv("RECOMMEND_MAX_LIMIT", "0")
	cfg := New()
	assert.Equal(t, 1, cfg.Recommend.DefaultLimit)
	assert.Equal(t, 1, cfg.Recommend.MaxLimit)

	t.Setenv("RECOMMEND_DEFAULT_LIMIT", "80")
	t.Setenv("RECOMMEND_MAX_LIMIT", "20")
	cfg = New()
	assert.Equal(t, 20, cfg.Recommend.DefaultLimit)
	assert.Equal(t, 20, cfg.Recommend.MaxLimit)
}
