package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DB_AUTO_MIGRATE", "true")
	t.Setenv("AUTH_LOGIN_WINDOW", "5m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://admin.example.com, http://localhost:5173,")
	t.Setenv("FINANCE_DEFAULT_MARKUP", "12.5")
	t.Setenv("DB_STATEMENT_TIMEOUT", "4s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.Database.AutoMigrate)
	assert.Equal(t, 4*time.Second, cfg.Database.StatementTimeout)
	assert.Equal(t, 3*time.Second, cfg.Database.LockTimeout)
	assert.Equal(t, 5*time.Minute, cfg.Auth.LoginWindow)
	assert.Equal(t, 5, cfg.Auth.MaxLoginAttempts)
	assert.Equal(t, []string{"https://admin.example.com", "http://localhost:5173"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 12.5, cfg.Finance.DefaultMarkupPercentage)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Address())
}

func TestLoad_RequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate_AdminBootstrap(t *testing.T) {
	cfg := &Config{
		JWT:  JWTConfig{SecretKey: "s"},
		Auth: AuthConfig{MaxLoginAttempts: 3, AdminEmail: "owner@example.com"},
	}
	assert.Error(t, cfg.Validate())

	cfg.Auth.AdminPassword = "password123"
	assert.NoError(t, cfg.Validate())
}
