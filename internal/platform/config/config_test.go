package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "cardvault", cfg.ServiceName)
	assert.Equal(t, "8080", cfg.HTTP.Port)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, CacheMemory, cfg.Cache.Backend)
	assert.True(t, cfg.Cache.FlushOnStartup)
	assert.Equal(t, AuthHeaders, cfg.Auth.Mode)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "any", cfg.Cards.DeletePolicy)
}

func TestLoadFileThenEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cardvault.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  port: "9000"
database:
  driver: postgres
  dsn: postgres://cardvault@localhost/cardvault
cache:
  backend: redis
  flush_on_startup: false
cards:
  delete_policy: inactive_only
logging:
  level: debug
  format: text
`), 0o600))
	t.Setenv("CARDVAULT_HTTP_PORT", "9090")
	t.Setenv("CARDVAULT_CACHE_REDIS_ADDR", "redis:6379")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.HTTP.Port)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "postgres://cardvault@localhost/cardvault", cfg.Database.DSN)
	assert.Equal(t, CacheRedis, cfg.Cache.Backend)
	assert.Equal(t, "redis:6379", cfg.Cache.RedisAddr)
	assert.False(t, cfg.Cache.FlushOnStartup)
	assert.Equal(t, "inactive_only", cfg.Cards.DeletePolicy)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestLoadRejectsShortJWTSecret(t *testing.T) {
	t.Setenv("CARDVAULT_AUTH_MODE", "jwt")
	t.Setenv("CARDVAULT_AUTH_JWT_SECRET", "short")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth.jwt_secret")
}

func TestValidateCollectsErrors(t *testing.T) {
	err := Config{
		Database: DatabaseConfig{Driver: "mysql"},
		Cache:    CacheConfig{Backend: "memcached"},
		Auth:     AuthConfig{Mode: "basic"},
		Logging:  LoggingConfig{Format: "xml"},
	}.Validate()
	require.Error(t, err)
	for _, fragment := range []string{"http.port", "database.driver", "cache.backend", "auth.mode", "logging.format"} {
		assert.Contains(t, err.Error(), fragment)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
