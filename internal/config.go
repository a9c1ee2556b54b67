package internal

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Session store backends.
const (
	SessionStorePostgres = "postgres"
	SessionStoreMemory   = "memory"
)

type Config struct {
	Env      string
	Port     int
	LogLevel string

	// Backend REST API
	APIURL     string
	APITimeout time.Duration

	// Session storage
	SessionStore         string // "postgres" or "memory"
	DatabaseUrl          string
	SessionDuration      time.Duration // used when the backend token has no exp claim
	SessionSweepInterval time.Duration

	// Delete dialog timing
	DeleteSuccessDisplay time.Duration
	DeleteFailureDisplay time.Duration
	DeleteClearDelay     time.Duration

	// Failed logins allowed per client IP every 15 minutes
	LoginRateLimit int

	// Metrics endpoint authentication
	// If both are empty, the /metrics endpoint will be unprotected (not recommended)
	MetricsUsername string
	MetricsPassword string
}

// IsDevelopment reports whether templates reload and cookies may be sent
// over plain HTTP.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func NewConfig() (*Config, error) {
	// Load .env file if it exists (ignored in production)
	_ = godotenv.Load()

	cfg := &Config{
		Env:      getEnv("ENV", "development"),
		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "debug"),

		APIURL:     os.Getenv("API_URL"),
		APITimeout: getEnvDuration("API_TIMEOUT", 10*time.Second),

		// Memory store keeps development free of a database
		SessionStore:         getEnv("SESSION_STORE", SessionStoreMemory),
		DatabaseUrl:          os.Getenv("DATABASE_URL"),
		SessionDuration:      getEnvDuration("SESSION_DURATION", 24*time.Hour),
		SessionSweepInterval: getEnvDuration("SESSION_SWEEP_INTERVAL", 10*time.Minute),

		DeleteSuccessDisplay: getEnvDuration("DELETE_SUCCESS_DISPLAY", 1500*time.Millisecond),
		DeleteFailureDisplay: getEnvDuration("DELETE_FAILURE_DISPLAY", 3*time.Second),
		DeleteClearDelay:     getEnvDuration("DELETE_CLEAR_DELAY", 300*time.Millisecond),

		LoginRateLimit: getEnvInt("LOGIN_RATE_LIMIT", 5),

		// Metrics authentication
		MetricsUsername: getEnv("METRICS_USERNAME", ""),
		MetricsPassword: getEnv("METRICS_PASSWORD", ""),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	// Required
	if c.APIURL == "" {
		return fmt.Errorf("API_URL is required")
	}
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("API_URL must be an absolute http(s) URL, got: %s", c.APIURL)
	}

	switch c.SessionStore {
	case SessionStorePostgres:
		if c.DatabaseUrl == "" {
			return fmt.Errorf("DATABASE_URL is required when SESSION_STORE is 'postgres'")
		}
	case SessionStoreMemory:
	default:
		return fmt.Errorf("SESSION_STORE must be either 'postgres' or 'memory', got: %s", c.SessionStore)
	}

	if c.APITimeout <= 0 {
		return fmt.Errorf("API_TIMEOUT must be positive, got: %v", c.APITimeout)
	}
	if c.SessionSweepInterval < time.Second {
		return fmt.Errorf("SESSION_SWEEP_INTERVAL must be at least 1s, got: %v", c.SessionSweepInterval)
	}
	if (c.MetricsUsername == "") != (c.MetricsPassword == "") {
		return fmt.Errorf("METRICS_USERNAME and METRICS_PASSWORD must be set together")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
