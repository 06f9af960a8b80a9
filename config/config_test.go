package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("ENV", "test")

	cfg := LoadConfig()

	assert.Equal(t, 3000, cfg.ServerPort)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.Equal(t, "marina.events", cfg.MQ.Channel)
	assert.Equal(t, "admin", cfg.Auth.AdminUsername)
	assert.Empty(t, cfg.Auth.AdminEmail)
	assert.Empty(t, cfg.Backup.Schedule)
	assert.Equal(t, "backups", cfg.Backup.Prefix)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "8081")
	t.Setenv("DB_DRIVER", "MEMORY")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/marina")
	t.Setenv("DB_SSL", "true")
	t.Setenv("JWT_SECRET", "  s3cret  ")
	t.Setenv("TOKEN_TTL", "30m")
	t.Setenv("COOKIE_SECURE", "yes")
	t.Setenv("STORAGE_BACKEND", "GCS")
	t.Setenv("BACKUP_SCHEDULE", " @daily ")

	cfg := LoadConfig()

	assert.Equal(t, 8081, cfg.ServerPort)
	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.Equal(t, "postgres://u:p@db:5432/marina", cfg.Database.URL)
	assert.True(t, cfg.Database.UseSSL)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, 30*time.Minute, cfg.Auth.TokenTTL)
	assert.True(t, cfg.Auth.CookieSecure)
	assert.Equal(t, "gcs", cfg.Storage.Backend)
	assert.Equal(t, "@daily", cfg.Backup.Schedule)
}

func TestLoadConfig_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("SERVER_PORT", "abc")
	t.Setenv("TOKEN_TTL", "-5m")
	t.Setenv("DB_SSL", "maybe")

	cfg := LoadConfig()

	assert.Equal(t, 3000, cfg.ServerPort)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	assert.False(t, cfg.Database.UseSSL)
}
