package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_PlatformDefaults(t *testing.T) {
	t.Setenv("STORE_URL", "https://project.example.co")
	t.Setenv("STORE_ANON_KEY", "anon")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendPlatform, cfg.Store.Backend)
	assert.Equal(t, "https://project.example.co", cfg.Store.URL)
	assert.Equal(t, 15*time.Second, cfg.Store.Timeout)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, time.Minute, cfg.Security.RateLimitWindow)
	assert.Equal(t, "file://migrations", cfg.Database.MigrationsPath)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoad_PlatformRequiresCredentials(t *testing.T) {
	t.Setenv("STORE_BACKEND", BackendPlatform)
	t.Setenv("STORE_URL", "")
	t.Setenv("STORE_ANON_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORE_URL")
}

func TestLoad_PostgresBackend(t *testing.T) {
	t.Setenv("STORE_BACKEND", BackendPostgres)
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("JWT_EXPIRES_IN", "2h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, 2*time.Hour, cfg.JWT.ExpiresIn)
	assert.Equal(t, "host=db.internal port=6543 user=postgres password= dbname=dayboard sslmode=disable", cfg.Database.GetDSN())
}

func TestLoad_PostgresRequiresLongSecret(t *testing.T) {
	t.Setenv("STORE_BACKEND", BackendPostgres)
	t.Setenv("JWT_SECRET", "short")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoad_UnknownBackend(t *testing.T) {
	t.Setenv("STORE_BACKEND", "firebase")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Setenv("STORE_URL", "https://project.example.co")
	t.Setenv("STORE_ANON_KEY", "anon")
	t.Setenv("SERVER_PORT", "70000")

	_, err := Load()
	assert.Error(t, err)
}

func TestAppConfigEnvironment(t *testing.T) {
	dev := AppConfig{Environment: "development"}
	prod := AppConfig{Environment: "production"}

	assert.True(t, dev.IsDevelopment())
	assert.False(t, dev.IsProduction())
	assert.True(t, prod.IsProduction())
}
