package errors

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthErrorUnwrap(t *testing.T) {
	until := time.Date(2026, 1, 1, 10, 30, 0, 0, time.UTC)
	err := Locked(until)

	assert.True(t, errors.Is(err, ErrAccountLocked))

	var authErr *AuthError
	require.True(t, errors.As(err, &authErr))
	require.NotNil(t, authErr.LockedUntil)
	assert.Equal(t, until, *authErr.LockedUntil)
	assert.Equal(t, ErrAccountLocked.Error(), err.Error())
}

func TestInvalidCredentialsFloorsAtZero(t *testing.T) {
	err := InvalidCredentials(-3)

	var authErr *AuthError
	require.True(t, errors.As(err, &authErr))
	require.NotNil(t, authErr.RemainingAttempts)
	assert.Equal(t, 0, *authErr.RemainingAttempts)
	assert.True(t, errors.Is(err, ErrInvalidCredentials))
}

func TestWrappedSentinels(t *testing.T) {
	assert.True(t, errors.Is(ErrEmailAlreadyInUse, ErrConflict))
	assert.True(t, errors.Is(Validation("email is required"), ErrValidation))
	assert.Contains(t, Validation("email is required").Error(), "email is required")

	internal := Internal("create session", errors.New("connection refused"))
	assert.True(t, errors.Is(internal, ErrInternal))
	assert.Contains(t, internal.Error(), "connection refused")

	inactive := Inactive("soporte@hotel.example")
	var authErr *AuthError
	require.True(t, errors.As(inactive, &authErr))
	assert.Equal(t, "soporte@hotel.example", authErr.Contact)
}
