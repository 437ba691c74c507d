package jwt

import (
	"testing"
	"time"

	"github.com/bdticketpro/ticketpro/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenService_RoundTrip(t *testing.T) {
	ts := NewTokenService("secret", time.Hour, "ticketpro")
	user := &domain.User{ID: uuid.New(), Email: "staff@example.com", Role: domain.RoleStaff}

	token, expiresAt, err := ts.GenerateAccessToken(user)
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := ts.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, domain.RoleStaff, claims.Role)
	assert.False(t, claims.IsAdmin())
}

func TestTokenService_Rejects(t *testing.T) {
	user := &domain.User{ID: uuid.New(), Email: "admin@example.com", Role: domain.RoleAdmin}

	expired := NewTokenService("secret", -time.Minute, "ticketpro")
	token, _, err := expired.GenerateAccessToken(user)
	require.NoError(t, err)
	_, err = expired.ValidateToken(token)
	assert.ErrorIs(t, err, domain.ErrTokenExpired)

	other := NewTokenService("another-secret", time.Hour, "ticketpro")
	token, _, err = other.GenerateAccessToken(user)
	require.NoError(t, err)
	_, err = NewTokenService("secret", time.Hour, "ticketpro").ValidateToken(token)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	foreign := NewTokenService("secret", time.Hour, "someone-else")
	token, _, err = foreign.GenerateAccessToken(user)
	require.NoError(t, err)
	_, err = NewTokenService("secret", time.Hour, "ticketpro").ValidateToken(token)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}
