// Package config loads runtime settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Shivanand-hulikatti/eventhub/internal/database"
	"github.com/joho/godotenv"
)

// devSecret signs tokens and tickets in development when no secret is set.
const devSecret = "dev-secret"

// Store drivers accepted by STORE.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	// Server
	Port        string
	Environment string
	LogLevel    string

	// Storage
	Store    string
	Database database.Config

	// Cache; an empty RedisURL disables it.
	RedisURL string
	CacheTTL time.Duration

	// Auth and tickets
	JWTSecret    string
	TicketSecret string

	CORSOrigins   []string
	EnableMetrics bool
}

// Load reads .env (if present) and then the process environment.
// Variables already set in the environment win over .env entries.
// Signing secrets fall back to a fixed value only in development; use
// Validate to reject a configuration that lacks them elsewhere.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		Store: getEnv("STORE", StorePostgres),
		Database: database.Config{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "eventhub"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: int32(getEnvAsInt("DB_MAX_CONNS", 20)),
		},

		RedisURL: getEnv("REDIS_URL", ""),
		CacheTTL: getEnvAsDuration("CACHE_TTL", "30s"),

		JWTSecret:    getEnv("JWT_SECRET", ""),
		TicketSecret: getEnv("TICKET_SECRET", getEnv("JWT_SECRET", "")),

		CORSOrigins:   getEnvAsList("CORS_ORIGINS", "*"),
		EnableMetrics: getEnvAsBool("ENABLE_METRICS", true),
	}

	if cfg.IsDevelopment() {
		if cfg.JWTSecret == "" {
			cfg.JWTSecret = devSecret
		}
		if cfg.TicketSecret == "" {
			cfg.TicketSecret = cfg.JWTSecret
		}
	}
	return cfg
}

// Validate reports settings the service must not start with.
func (c *Config) Validate() error {
	if c.IsDevelopment() {
		return nil
	}
	var errs []error
	switch c.JWTSecret {
	case "":
		errs = append(errs, errors.New("JWT_SECRET is required outside development"))
	case devSecret:
		errs = append(errs, errors.New("JWT_SECRET must not use the development default"))
	}
	if c.TicketSecret == devSecret {
		errs = append(errs, errors.New("TICKET_SECRET must not use the development default"))
	}
	return errors.Join(errs...)
}

// IsDevelopment reports whether the service runs outside production.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if v, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return v
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if v, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return v
	}
	return fallback
}

func getEnvAsDuration(key, fallback string) time.Duration {
	if d, err := time.ParseDuration(getEnv(key, fallback)); err == nil {
		return d
	}
	d, _ := time.ParseDuration(fallback)
	return d
}

func getEnvAsList(key, fallback string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, fallback), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
