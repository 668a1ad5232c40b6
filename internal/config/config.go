// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Storage backends accepted in STORAGE_BACKEND.
const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables; defaults apply
// when a variable is unset or empty.
type Config struct {
	// Port is the TCP port the HTTP server listens on.
	Port string `env:"PORT" envDefault:"8080"`

	// LogLevel controls the minimum log level.
	// Valid values: debug, info, warn, error.
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string `env:"CORS_ORIGINS" envDefault:"http://localhost:5173" envSeparator:","`

	// StorageBackend selects where zones, vehicles and sessions live:
	// "postgres" or "memory".
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"postgres"`

	// DatabaseURL is the Postgres connection string.
	// Required when StorageBackend is "postgres".
	DatabaseURL string `env:"DATABASE_URL"`

	// ZonesFile is a YAML file of zones to load at start-up.
	// Required when StorageBackend is "memory"; optional otherwise.
	ZonesFile string `env:"ZONES_FILE"`

	// JWTSecret is the HMAC key used to verify bearer tokens. Required.
	JWTSecret string `env:"JWT_SECRET"`

	// RedisAddr enables the active-session index when set (host:port).
	RedisAddr string `env:"REDIS_ADDR"`

	// RedisPassword authenticates against RedisAddr. Optional.
	RedisPassword string `env:"REDIS_PASSWORD"`

	// ActiveIndexTTL bounds how long an active-session index entry lives.
	ActiveIndexTTL time.Duration `env:"ACTIVE_INDEX_TTL" envDefault:"24h"`

	// MaxBodyBytes caps request body size.
	MaxBodyBytes int64 `env:"MAX_BODY_BYTES" envDefault:"1048576"`
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set, or
// describing the first value that cannot be parsed.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config.Load: %w", err)
	}

	cfg.CORSOrigins = trimAll(cfg.CORSOrigins)
	cfg.StorageBackend = strings.ToLower(strings.TrimSpace(cfg.StorageBackend))

	if cfg.MaxBodyBytes <= 0 {
		return Config{}, fmt.Errorf("config.Load: invalid MAX_BODY_BYTES: must be a positive integer")
	}

	var missing []string
	switch cfg.StorageBackend {
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			missing = append(missing, "DATABASE_URL")
		}
	case BackendMemory:
		if cfg.ZonesFile == "" {
			missing = append(missing, "ZONES_FILE")
		}
	default:
		return Config{}, fmt.Errorf("config.Load: invalid STORAGE_BACKEND %q: want %q or %q", cfg.StorageBackend, BackendPostgres, BackendMemory)
	}
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("config.Load: required environment variables not set: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

// trimAll trims every entry and drops the empty ones.
func trimAll(in []string) []string {
	var out []string
	for _, part := range in {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
