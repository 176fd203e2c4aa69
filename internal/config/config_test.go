package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DATABASE_URL", "DATABASE_DRIVER", "DATABASE_LOG_LEVEL", "SERVER_HOST", "SERVER_ENV", "LOG_LEVEL",
		"SERVER_PORT", "TOKEN_TTL_HOURS", "BCRYPT_COST", "ALLOW_ANONYMOUS_ADMIN",
		"FIRST_ADMIN_NAME", "FIRST_ADMIN_PASSWORD", "TOKEN_CLEANUP_SCHEDULE", "CORS_ALLOWED_ORIGINS",
		"STORAGE_TYPE", "STORAGE_BASE_PATH", "STORAGE_BUCKET", "STORAGE_REGION", "STORAGE_ENDPOINT",
		"STORAGE_ACCESS_KEY", "STORAGE_SECRET_KEY", "IMAGE_MAX_UPLOAD_MB",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
}

func TestLoad_FromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/ads")
	t.Setenv("TOKEN_TTL_HOURS", "12")
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("ALLOW_ANONYMOUS_ADMIN", "false")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/ads", cfg.Database.DSN)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, 12*time.Hour, cfg.TokenTTL())
	assert.Equal(t, "0.0.0.0:9000", cfg.Address())
	assert.False(t, cfg.Auth.AllowAnonymousAdmin)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	clearEnv(t)

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_RejectsBadValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "x")

	t.Setenv("TOKEN_TTL_HOURS", "abc")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("TOKEN_TTL_HOURS", "0")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("TOKEN_TTL_HOURS", "1")
	t.Setenv("DATABASE_DRIVER", "oracle")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`
server:
  port: 7000
  env: development
database:
  driver: sqlite
  url: "file:ads.db"
auth:
  token_ttl_hours: 6
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("TOKEN_TTL_HOURS", "3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Server.Port)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, 3*time.Hour, cfg.TokenTTL(), "env wins over file")
	// значения, которых нет в файле, остаются по умолчанию
	assert.True(t, cfg.Auth.AllowAnonymousAdmin)
	assert.Equal(t, "@every 1h", cfg.Workers.TokenCleanupSchedule)
}

func TestLoad_Storage(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "x")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "local", cfg.Storage.Type)
	assert.Equal(t, int64(5<<20), cfg.MaxImageBytes())

	t.Setenv("STORAGE_TYPE", "s3")
	_, err = Load()
	assert.Error(t, err, "s3 без bucket")

	t.Setenv("STORAGE_BUCKET", "ads")
	t.Setenv("STORAGE_ENDPOINT", "https://acc.r2.cloudflarestorage.com")
	t.Setenv("IMAGE_MAX_UPLOAD_MB", "2")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "ads", cfg.Storage.Bucket)
	assert.Equal(t, "https://acc.r2.cloudflarestorage.com", cfg.Storage.Endpoint)
	assert.Equal(t, int64(2<<20), cfg.MaxImageBytes())

	t.Setenv("STORAGE_TYPE", "ftp")
	_, err = Load()
	assert.Error(t, err)
}
