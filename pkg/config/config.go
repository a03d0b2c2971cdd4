package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	defaultJWTSecret     = "your-secret-key-change-me"
	defaultAdminPassword = "admin123"
)

// Config holds application configuration
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Port        string `env:"PORT" envDefault:"8080"`

	DatabaseDriver string `env:"DATABASE_DRIVER" envDefault:"sqlite"`
	DatabaseURL    string `env:"DATABASE_URL" envDefault:"vertriebsgebiete.db"`

	GeoJSONPath string `env:"PLZ_GEOJSON_PATH" envDefault:"plz.geojson"`
	PLZProperty string `env:"PLZ_PROPERTY" envDefault:"plz"`

	AdminPassword     string        `env:"ADMIN_PASSWORD" envDefault:"admin123"`
	AdminPasswordHash string        `env:"ADMIN_PASSWORD_HASH"`
	JWTSecret         string        `env:"JWT_SECRET" envDefault:"your-secret-key-change-me"`
	SessionTTL        time.Duration `env:"SESSION_TTL" envDefault:"24h"`

	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:8080"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
}

// LoadConfig loads configuration from a .env file (if present) and the environment
func LoadConfig() (*Config, error) {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsProduction reports whether the service runs in the production environment
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// Validate rejects configurations the service cannot start with
func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q (want sqlite or postgres)", c.DatabaseDriver)
	}
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return errors.New("DATABASE_URL must not be empty")
	}
	if c.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}

	if c.IsProduction() {
		if c.JWTSecret == defaultJWTSecret {
			return errors.New("production environment detected, but JWT_SECRET not set")
		}
		if c.AdminPasswordHash == "" && c.AdminPassword == defaultAdminPassword {
			return errors.New("production environment detected, but neither ADMIN_PASSWORD nor ADMIN_PASSWORD_HASH set")
		}
	}
	return nil
}
