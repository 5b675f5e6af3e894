// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// Redis (proxy routes + task queues)
	RedisURL string `env:"REDIS_URL,required"`

	// Hosted auth service (Supabase)
	SupabaseURL        string `env:"SUPABASE_URL,required"`
	SupabaseAnonKey    string `env:"SUPABASE_ANON_KEY,required"`
	SupabaseServiceKey string `env:"SUPABASE_SERVICE_ROLE_KEY,required"`

	// Email provider (Loops)
	LoopsAPIKey string `env:"LOOPS_API_KEY"`

	// File-serving backend
	FileBackendURL    string `env:"FILE_BACKEND_URL" envDefault:"http://localhost:8001"`
	FileBackendAPIKey string `env:"FILE_BACKEND_API_KEY"`

	// Project-lifecycle provider API
	ProjectAPIURL   string `env:"PROJECT_API_URL"`
	ProjectAPIToken string `env:"PROJECT_API_TOKEN"`

	// APNs push credentials
	APNKeyPEM    string `env:"APN_KEY_CONTENTS"`
	APNKeyID     string `env:"APN_KEY_ID"`
	APNTeamID    string `env:"APN_TEAM_ID"`
	APNBundleID  string `env:"APN_BUNDLE_ID"`
	APNSandbox   bool   `env:"APN_SANDBOX" envDefault:"false"`

	// Argon2id hash of the ops service key (see scripts/bootstrap-service-key.go)
	OpsKeyHash string `env:"OPS_KEY_HASH"`

	// Public base domain for proxy routes (e.g. makex.app)
	ProxyDomain string `env:"PROXY_DOMAIN" envDefault:"makex.app"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Task worker
	TaskWorkerEnabled bool `env:"TASK_WORKER_ENABLED" envDefault:"true"`

	// Threshold after which a building app counts as stuck
	StuckAppThreshold time.Duration `env:"STUCK_APP_THRESHOLD" envDefault:"30m"`

	// CORS configuration
	// Comma-separated list of allowed origins (e.g., "https://makex.app,https://www.makex.app")
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:""`

	// Request body size limit in bytes (default 1MB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *Config) GetCORSAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	origins := strings.Split(c.CORSAllowedOrigins, ",")
	result := make([]string, 0, len(origins))

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// Load parses environment variables and returns a Config.
// Returns an error if required variables are missing.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}
