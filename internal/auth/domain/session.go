package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/AnthoniusHendriyanto/hotel-auth-service/pkg/constant"
)

type ClientMeta struct {
	IPAddress string
	UserAgent string
	Device    string
	Browser   string
	OS        string
}

type Session struct {
	ID               int64
	UserID           int64
	RefreshTokenHash string
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
	Active           bool
	CreatedAt        time.Time
	LogoutAt         *time.Time
	ClosedBy         *string
	Client           ClientMeta
}

type SessionState int

const (
	SessionActive SessionState = iota
	// SessionLoggedOut covers every closed row; CloseReason says why.
	SessionLoggedOut
	// SessionExpired is a row still flagged active whose refresh token has
	// passed its own expiry. It must be invalidated with reason "expiration".
	SessionExpired
)

func (s SessionState) String() string {
	switch s {
	case SessionActive:
		return "active"
	case SessionLoggedOut:
		return "logged_out"
	case SessionExpired:
		return "expired"
	default:
		return "unknown"
	}
}

func (s *Session) State(now time.Time) SessionState {
	if !s.Active {
		return SessionLoggedOut
	}
	if !now.Before(s.RefreshExpiresAt) {
		return SessionExpired
	}
	return SessionActive
}

// CloseReason is only meaningful for SessionLoggedOut.
func (s *Session) CloseReason() string {
	if s.ClosedBy == nil {
		return constant.CloseReasonUser
	}
	return *s.ClosedBy
}

// HashRefreshToken is the lookup key persisted for a refresh token. The raw
// token is never stored.
func HashRefreshToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
