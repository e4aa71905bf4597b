package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	// Server
	Port            string        `envconfig:"PORT" default:"8080"`
	Environment     string        `envconfig:"ENVIRONMENT" default:"development"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`

	// Database
	DatabaseURL   string `envconfig:"DATABASE_URL"`
	RunMigrations bool   `envconfig:"RUN_MIGRATIONS" default:"true"`

	// JWT
	JWTSecret          string `envconfig:"JWT_SECRET"`
	JWTExpirationHours int    `envconfig:"JWT_EXPIRATION_HOURS" default:"24"`

	// Storage
	StoragePath string `envconfig:"STORAGE_PATH" default:"./storage"`

	// Redis statistics cache; empty disables caching
	RedisURL      string        `envconfig:"REDIS_URL"`
	StatsCacheTTL time.Duration `envconfig:"STATS_CACHE_TTL" default:"5m"`

	// Background Workers
	WorkerCount int `envconfig:"WORKER_COUNT" default:"5"`

	// CORS
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"*"`

	// Rate limiting, requests per minute per IP
	LoginRateLimit int `envconfig:"LOGIN_RATE_LIMIT" default:"10"`
	VoteRateLimit  int `envconfig:"VOTE_RATE_LIMIT" default:"5"`

	// Email (Resend)
	EnableEmailNotifications bool   `envconfig:"ENABLE_EMAIL_NOTIFICATIONS" default:"true"`
	ResendAPIKey             string `envconfig:"RESEND_API_KEY"`
	FromEmail                string `envconfig:"FROM_EMAIL" default:"noreply@voxpopuly.app"`
	AppURL                   string `envconfig:"APP_URL" default:"http://localhost:3000"`

	// Sentry
	SentryDSN string `envconfig:"SENTRY_DSN"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}

	// Validate required configuration
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.JWTSecret == "" && cfg.IsProduction() {
		return nil, fmt.Errorf("JWT_SECRET is required in production")
	}

	// Set default JWT secret for development
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "dev-secret-change-in-production"
	}

	return &cfg, nil
}

// IsProduction returns true when the application runs in production
func (c *Config) IsProduction() bool {
	return c != nil && c.Environment == "production"
}
