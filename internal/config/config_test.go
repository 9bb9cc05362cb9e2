package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"filevault/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeEnv writes a local.env under dir/config. cleanenv exports the file's
// keys into the process environment, so they are removed again on cleanup.
func writeEnv(t *testing.T, dir, content string) {
	t.Helper()
	cfgDir := filepath.Join(dir, "config")
	require.NoError(t, os.MkdirAll(cfgDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfgDir, "local.env"), []byte(content), 0o644))

	t.Cleanup(func() {
		for _, line := range strings.Split(content, "\n") {
			if key, _, ok := strings.Cut(line, "="); ok {
				os.Unsetenv(strings.TrimSpace(key))
			}
		}
	})
}

func TestNew_Success(t *testing.T) {
	td := t.TempDir()
	writeEnv(t, td, `POSTGRES_HOST=db
POSTGRES_PORT=5433
POSTGRES_USER=users
POSTGRES_PASSWORD=2529
POSTGRES_DB=users

JWT_TOKEN=very_very_secret_key

HTTP_PORT=8080
REQUEST_TIMEOUT=10s

REDIS_HOST=cache
REDIS_PORT=6380

LOGIN_MAX_ATTEMPTS=3
STORAGE_ROOT=/var/lib/filevault
`)
	t.Chdir(td)

	cfg, err := config.New()
	require.NoError(t, err)

	assert.Equal(t, "db", cfg.Postgres.Host)
	assert.Equal(t, uint16(5433), cfg.Postgres.Port)
	assert.Equal(t, "users", cfg.Postgres.Username)
	assert.Equal(t, "2529", cfg.Postgres.Password)
	assert.Equal(t, "users", cfg.Postgres.Database)

	assert.Equal(t, "very_very_secret_key", cfg.JWTSecret)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)

	assert.Equal(t, "cache", cfg.Redis.Host)
	assert.Equal(t, "6380", cfg.Redis.Port)

	assert.Equal(t, 3, cfg.Throttle.MaxAttempts)
	assert.Equal(t, "/var/lib/filevault", cfg.Storage.Root)
}

func TestNew_Defaults(t *testing.T) {
	td := t.TempDir()
	writeEnv(t, td, "JWT_TOKEN=very_very_secret_key\n")
	t.Chdir(td)

	cfg, err := config.New()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.HTTPPort)
	assert.Equal(t, "50051", cfg.HealthPort)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "__Session__", cfg.TokenCookie)
	assert.Equal(t, int64(100<<20), cfg.MaxUploadBytes)
	assert.Equal(t, "postgres", cfg.CredentialStore)
	assert.True(t, cfg.Throttle.Enabled)
	assert.Equal(t, 15*time.Minute, cfg.Throttle.Window)
	assert.Equal(t, "local", cfg.Storage.Backend)
	assert.Equal(t, "uploads", cfg.Storage.Root)
}

func TestNew_ConfigPath(t *testing.T) {
	td := t.TempDir()
	writeEnv(t, td, "JWT_TOKEN=another_secret_value\nCREDENTIAL_STORE=badger\n")
	t.Setenv("CONFIG_PATH", filepath.Join(td, "config", "local.env"))

	cfg, err := config.New()
	require.NoError(t, err)
	assert.Equal(t, "another_secret_value", cfg.JWTSecret)
	assert.Equal(t, "badger", cfg.CredentialStore)
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want string
	}{
		{"missing secret", "HTTP_PORT=3000\n", "JWTSecret"},
		{"short secret", "JWT_TOKEN=short\n", "JWTSecret"},
		{"unknown store", "JWT_TOKEN=very_very_secret_key\nCREDENTIAL_STORE=mysql\n", "CredentialStore"},
		{"unknown backend", "JWT_TOKEN=very_very_secret_key\nSTORAGE_BACKEND=ftp\n", "Backend"},
		{"s3 without bucket", "JWT_TOKEN=very_very_secret_key\nSTORAGE_BACKEND=s3\n", "S3_BUCKET"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			td := t.TempDir()
			writeEnv(t, td, tt.env)
			t.Chdir(td)

			_, err := config.New()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestNew_FileNotFound(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := config.New()
	assert.Error(t, err)
}
