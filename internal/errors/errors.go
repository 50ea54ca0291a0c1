package errors

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrValidation           = errors.New("validation error")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrAccountInactive      = errors.New("account inactive")
	ErrAccountLocked        = errors.New("account locked")
	ErrInvalidToken         = errors.New("invalid token")
	ErrTokenExpired         = errors.New("refresh token expired")
	ErrSessionClosed        = errors.New("session closed")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrForbidden            = errors.New("forbidden")
	ErrNotFound             = errors.New("not found")
	ErrConflict             = errors.New("conflict")
	ErrEmailAlreadyInUse    = fmt.Errorf("%w: email already in use", ErrConflict)
	ErrTooManyLoginAttempts = errors.New("too many failed login attempts")
	ErrInternal             = errors.New("internal error")
)

// AuthError carries the user-facing details of a rejected login or account
// check on top of one of the sentinels above.
type AuthError struct {
	Err               error
	RemainingAttempts *int
	LockedUntil       *time.Time
	Contact           string
}

func (e *AuthError) Error() string {
	return e.Err.Error()
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

func Locked(until time.Time) error {
	return &AuthError{Err: ErrAccountLocked, LockedUntil: &until}
}

func Inactive(contact string) error {
	return &AuthError{Err: ErrAccountInactive, Contact: contact}
}

func InvalidCredentials(remaining int) error {
	if remaining < 0 {
		remaining = 0
	}
	return &AuthError{Err: ErrInvalidCredentials, RemainingAttempts: &remaining}
}

// Validation wraps ErrValidation with a message safe to return to clients.
func Validation(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

// Internal wraps an unexpected store or signing failure.
func Internal(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrInternal, op, err)
}
