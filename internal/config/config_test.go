package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("STORE", "")
	t.Setenv("CACHE_TTL", "")
	t.Setenv("CORS_ORIGINS", "")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StorePostgres, cfg.Store)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("STORE", StoreMemory)
	t.Setenv("CACHE_TTL", "2m")
	t.Setenv("ENABLE_METRICS", "false")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("DB_NAME", "bookings")
	t.Setenv("DB_MAX_CONNS", "5")

	cfg := Load()

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, 2*time.Minute, cfg.CacheTTL)
	assert.False(t, cfg.EnableMetrics)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, "bookings", cfg.Database.DBName)
	assert.Equal(t, int32(5), cfg.Database.MaxConns)
}

func TestLoad_DevelopmentSecretDefault(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("TICKET_SECRET", "")

	cfg := Load()

	assert.Equal(t, devSecret, cfg.JWTSecret)
	assert.Equal(t, devSecret, cfg.TicketSecret)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("TICKET_SECRET", "")

	cfg := Load()

	assert.Empty(t, cfg.JWTSecret)
	assert.Empty(t, cfg.TicketSecret)
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET is required")
}

func TestLoad_ProductionRejectsDevelopmentDefault(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("JWT_SECRET", "dev-secret")
	t.Setenv("TICKET_SECRET", "")

	err := Load().Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET must not use the development default")
	assert.Contains(t, err.Error(), "TICKET_SECRET must not use the development default")
}

func TestLoad_ProductionWithSecrets(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("JWT_SECRET", "s3cr3t-signing-key")
	t.Setenv("TICKET_SECRET", "")

	cfg := Load()

	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "s3cr3t-signing-key", cfg.TicketSecret)
}

func TestGetEnvAsDuration_FallsBackOnGarbage(t *testing.T) {
	t.Setenv("CACHE_TTL", "soon")
	assert.Equal(t, 30*time.Second, getEnvAsDuration("CACHE_TTL", "30s"))
}

func TestGetEnvAsInt(t *testing.T) {
	t.Setenv("DB_MAX_CONNS", "many")
	assert.Equal(t, 20, getEnvAsInt("DB_MAX_CONNS", 20))

	t.Setenv("DB_MAX_CONNS", "7")
	assert.Equal(t, 7, getEnvAsInt("DB_MAX_CONNS", 20))
}
