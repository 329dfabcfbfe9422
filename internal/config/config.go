// Package config reads server and CLI settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"quotle/internal/store"
)

type Config struct {
	Port           string
	Production     bool
	BooksPath      string
	QuotesPath     string
	StoreBackend   string
	StorePath      string
	SessionTimeout time.Duration
	CookieMaxAge   time.Duration
	RateLimitRPS   int
	RateLimitBurst int
	LogLevel       log.Level
}

// Load reads .env if present, then the environment. Malformed values fall
// back to their defaults with a warning.
func Load(logger *log.Logger) *Config {
	_ = godotenv.Load()

	return &Config{
		Port:           getEnv("PORT", "8080"),
		Production:     os.Getenv("GIN_MODE") == "release" || os.Getenv("ENV") == "production",
		BooksPath:      getEnv("BOOKS_PATH", "data/books.json"),
		QuotesPath:     getEnv("QUOTES_PATH", "data/quotes.json"),
		StoreBackend:   getEnv("STORE_BACKEND", store.BackendFile),
		StorePath:      getEnv("STORE_PATH", "data/store"),
		SessionTimeout: getEnvDuration(logger, "SESSION_TIMEOUT", 2*time.Hour),
		CookieMaxAge:   getEnvDuration(logger, "COOKIE_MAX_AGE", 30*24*time.Hour),
		RateLimitRPS:   getEnvInt(logger, "RATE_LIMIT_RPS", 5),
		RateLimitBurst: getEnvInt(logger, "RATE_LIMIT_BURST", 10),
		LogLevel:       getEnvLevel(logger, "LOG_LEVEL", log.InfoLevel),
	}
}

// Validate checks the settings that cannot be defaulted around.
func (c *Config) Validate() error {
	var errs []error
	switch c.StoreBackend {
	case store.BackendMemory, store.BackendFile, store.BackendSQLite:
	default:
		errs = append(errs, fmt.Errorf("STORE_BACKEND must be one of memory, file, sqlite; got %q", c.StoreBackend))
	}
	if c.StoreBackend != store.BackendMemory && c.StorePath == "" {
		errs = append(errs, errors.New("STORE_PATH is required"))
	}
	if c.BooksPath == "" {
		errs = append(errs, errors.New("BOOKS_PATH is required"))
	}
	if c.QuotesPath == "" {
		errs = append(errs, errors.New("QUOTES_PATH is required"))
	}
	if c.Port == "" {
		errs = append(errs, errors.New("PORT is required"))
	}
	return errors.Join(errs...)
}

// Env names the run mode for logs and the health endpoint.
func (c *Config) Env() string {
	if c.Production {
		return "production"
	}
	return "development"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getEnvDuration reads a time.Duration from the environment or returns a fallback.
func getEnvDuration(logger *log.Logger, key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		logger.Warn("invalid duration, using default", "key", key, "error", err, "default", fallback)
		return fallback
	}
	return d
}

// getEnvInt reads an int from the environment or returns a fallback.
func getEnvInt(logger *log.Logger, key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		logger.Warn("invalid int, using default", "key", key, "error", err, "default", fallback)
		return fallback
	}
	return i
}

func getEnvLevel(logger *log.Logger, key string, fallback log.Level) log.Level {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	lvl, err := log.ParseLevel(val)
	if err != nil {
		logger.Warn("invalid log level, using default", "key", key, "error", err, "default", fallback)
		return fallback
	}
	return lvl
}
