package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir changes the working directory for the duration of the test,
// mirroring testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DATABASE_URL", "postgres://fintra@localhost:5432/fintra")
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 60*time.Minute, cfg.TokenTTL)
	assert.Equal(t, 5*time.Second, cfg.StoreTimeout)
	assert.Equal(t, 20, cfg.DBMaxOpenConns)
	assert.Equal(t, uint32(64*1024), cfg.Argon2MemoryKiB)
	assert.Equal(t, uint(2), cfg.Argon2Parallelism)
	assert.Empty(t, cfg.CORSAllowedOrigins)
	assert.False(t, cfg.CookieSecure)
}

func TestLoadOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DATABASE_URL", "sqlite://fintra.db")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("TOKEN_TTL", "15m")
	t.Setenv("STORE_TIMEOUT", "250ms")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("COOKIE_SECURE", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 15*time.Minute, cfg.TokenTTL)
	assert.Equal(t, 250*time.Millisecond, cfg.StoreTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.True(t, cfg.CookieSecure)
}

func TestLoadRequiresSecrets(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoadRejectsOversizedParallelism(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DATABASE_URL", "sqlite://fintra.db")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("ARGON2_PARALLELISM", "257")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ARGON2_PARALLELISM")

	t.Setenv("ARGON2_PARALLELISM", "255")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, uint(255), cfg.Argon2Parallelism)
}
