package database

import (
	"testing"
	"time"

	"github.com/bdticketpro/ticketpro/internal/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDatabaseConfig() *config.DatabaseConfig {
	return &config.DatabaseConfig{
		Host:            "localhost",
		Port:            "5432",
		User:            "ticketpro",
		Password:        "secret",
		Database:        "ticketpro",
		SSLMode:         "disable",
		MaxOpenConns:    20,
		MaxIdleConns:    4,
		ConnMaxLifetime: 5 * time.Minute,
	}
}

func TestNewPoolConfig(t *testing.T) {
	cfg := testDatabaseConfig()
	cfg.StatementTimeout = 10 * time.Second
	cfg.LockTimeout = 1500 * time.Millisecond

	pc, err := NewPoolConfig(cfg)
	require.NoError(t, err)

	assert.Equal(t, int32(20), pc.MaxConns)
	assert.Equal(t, int32(4), pc.MinConns)
	assert.Equal(t, "ticketpro", pc.ConnConfig.Database)

	params := pc.ConnConfig.RuntimeParams
	assert.Equal(t, "ticketpro-api", params["application_name"])
	assert.Equal(t, "UTC", params["timezone"])
	assert.Equal(t, "10000", params["statement_timeout"])
	assert.Equal(t, "1500", params["lock_timeout"])
}

func TestNewPoolConfig_WithoutTimeouts(t *testing.T) {
	pc, err := NewPoolConfig(testDatabaseConfig())
	require.NoError(t, err)

	assert.NotContains(t, pc.ConnConfig.RuntimeParams, "statement_timeout")
	assert.NotContains(t, pc.ConnConfig.RuntimeParams, "lock_timeout")
}
