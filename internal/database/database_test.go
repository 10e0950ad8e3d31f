package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigDSN(t *testing.T) {
	cfg := Config{
		Host:     "db",
		Port:     "5433",
		User:     "app",
		Password: "secret",
		DBName:   "eventhub",
		SSLMode:  "require",
	}
	assert.Equal(t, "host=db port=5433 user=app password=secret dbname=eventhub sslmode=require", cfg.DSN())
}

func TestSchemaDeclaresAvailabilityChecks(t *testing.T) {
	assert.Contains(t, schema, "available_tickets <= total_tickets")
	assert.Contains(t, schema, "ON DELETE CASCADE")
}
