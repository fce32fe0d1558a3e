package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.True(t, cfg.IsDev())
	assert.Equal(t, "almoxarifado.db", cfg.SQLitePath)
	assert.Empty(t, cfg.MigrationsDir)
	assert.Equal(t, "uploads", cfg.UploadDir)
	assert.Equal(t, "backups", cfg.BackupDir)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 12*time.Hour, cfg.SessionTTL)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("ALMOX_APP_ADDR", "127.0.0.1:9000")
	t.Setenv("ALMOX_APP_ENV", "production")
	t.Setenv("ALMOX_SQLITE_PATH", "/data/almox.db")
	t.Setenv("ALMOX_SESSION_TTL", "30m")
	t.Setenv("ALMOX_LOG_FILE", "/var/log/almox.log")
	t.Setenv("ALMOX_ADMIN_PASSWORD", "secret123")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
	assert.False(t, cfg.IsDev())
	assert.Equal(t, "/data/almox.db", cfg.SQLitePath)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, "/var/log/almox.log", cfg.LogFile)
	assert.Equal(t, "secret123", cfg.AdminPassword)
}

func TestFromEnvRejectsBadValues(t *testing.T) {
	t.Setenv("ALMOX_SESSION_TTL", "0s")
	_, err := FromEnv()
	require.Error(t, err)

	t.Setenv("ALMOX_SESSION_TTL", "not-a-duration")
	_, err = FromEnv()
	require.Error(t, err)
}
