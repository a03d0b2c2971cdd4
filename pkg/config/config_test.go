package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, "vertriebsgebiete.db", cfg.DatabaseURL)
	assert.Equal(t, "plz.geojson", cfg.GeoJSONPath)
	assert.Equal(t, "plz", cfg.PLZProperty)
	assert.Equal(t, "admin123", cfg.AdminPassword)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, []string{"http://localhost:8080"}, cfg.CORSOrigins)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/plz?sslmode=disable")
	t.Setenv("SESSION_TTL", "90m")
	t.Setenv("CORS_ORIGINS", "http://a.example,http://b.example")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	assert.Equal(t, "postgres://localhost/plz?sslmode=disable", cfg.DatabaseURL)
	assert.Equal(t, 90*time.Minute, cfg.SessionTTL)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.CORSOrigins)
}

func TestLoadConfigRejectsUnknownDriver(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DATABASE_DRIVER", "mysql")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_DRIVER")
}

func TestValidateProductionSecrets(t *testing.T) {
	base := Config{
		Environment:    "production",
		DatabaseDriver: "sqlite",
		DatabaseURL:    "plz.db",
		SessionTTL:     time.Hour,
		JWTSecret:      defaultJWTSecret,
		AdminPassword:  defaultAdminPassword,
	}

	cfg := base
	assert.ErrorContains(t, cfg.Validate(), "JWT_SECRET")

	cfg.JWTSecret = "s3cret"
	assert.ErrorContains(t, cfg.Validate(), "ADMIN_PASSWORD")

	cfg.AdminPasswordHash = "$2a$10$abcdefghijklmnopqrstuv"
	assert.NoError(t, cfg.Validate())

	cfg.AdminPasswordHash = ""
	cfg.AdminPassword = "hunter2"
	assert.NoError(t, cfg.Validate())
}
