package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("CONFIG_FILE", "")

	_, err := Load()
	assert.ErrorContains(t, err, "DATABASE_URL")
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/agroledger")
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.True(t, cfg.AutoMigrate)
	assert.Len(t, cfg.Auth.JWTSecret, 32)
	assert.Equal(t, time.Hour, cfg.Jobs.LowStockInterval.Duration)
	assert.Equal(t, "agroledger-attachments", cfg.Minio.Bucket)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agroledger.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
port = 9090
database_url = "postgres://file/agroledger"

[redis]
addr = "cache:6379"

[jobs]
low_stock_interval = "30m"
`), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PORT", "7070")
	t.Setenv("RECONCILE_INTERVAL", "12h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Port)
	assert.Equal(t, "postgres://file/agroledger", cfg.DatabaseURL)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	assert.Equal(t, 30*time.Minute, cfg.Jobs.LowStockInterval.Duration)
	assert.Equal(t, 12*time.Hour, cfg.Jobs.ReconciliationInterval.Duration)
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/agroledger")
	t.Setenv("CONFIG_FILE", "")

	t.Setenv("PORT", "eighty")
	_, err := Load()
	assert.ErrorContains(t, err, "PORT")

	t.Setenv("PORT", "")
	t.Setenv("LOW_STOCK_INTERVAL", "hourly")
	_, err = Load()
	assert.ErrorContains(t, err, "LOW_STOCK_INTERVAL")
}
