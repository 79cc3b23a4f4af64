package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	"github.com/jaegodata/unsold-server/internal/logging"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Pricing  PricingConfig
	Log      logging.Config
}

// ServerConfig holds the server configuration
type ServerConfig struct {
	Port int `env:"SERVER_PORT" envDefault:"8080"`
}

// DatabaseConfig holds the database configuration
type DatabaseConfig struct {
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     int    `env:"DB_PORT" envDefault:"5432"`
	Username string `env:"DB_USERNAME" envDefault:"postgres"`
	Password string `env:"DB_PASSWORD" envDefault:"password"`
	DBName   string `env:"DB_NAME" envDefault:"unsold"`
	SSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
}

// AuthConfig holds the authentication configuration. AdminUsers is a
// comma-separated list of usernames promoted to the admin role at startup;
// only admins can open the reconciliation report and the activity log.
type AuthConfig struct {
	JWTSecret  string   `env:"JWT_SECRET" envDefault:"change-me"`
	AdminUsers []string `env:"ADMIN_USERS" envSeparator:","`
}

// PricingConfig holds the price provider configuration
type PricingConfig struct {
	BaseURL string `env:"PRICE_API_BASE_URL" envDefault:"https://nxapi.lfmall.co.kr"`
}

// GetDSN returns the database connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.Username, c.Password, c.DBName, c.SSLMode,
	)
}

// Load reads the configuration from environment variables
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}
