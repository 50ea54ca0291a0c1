package domain

//go:generate mockgen -destination=../../mocks/mock_repository.go -package=mocks github.com/AnthoniusHendriyanto/hotel-auth-service/internal/auth/domain UserRepository,SessionRepository,AuditRepository
//go:generate mockgen -destination=../../mocks/mock_security.go -package=mocks github.com/AnthoniusHendriyanto/hotel-auth-service/internal/auth/domain TokenGenerator,LoginThrottle

import (
	"context"
	"time"
)

// UserRepository is the credential store. Lockout fields are only mutated
// through RecordFailedLogin, RecordSuccessfulLogin and Unlock, each of which
// is a single statement so concurrent attempts serialize in the database.
type UserRepository interface {
	FindByIdentifier(ctx context.Context, identifier string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetRoleByName(ctx context.Context, name string) (*Role, error)
	NextEmployeeNumber(ctx context.Context) (string, error)
	Create(ctx context.Context, user *User) error
	RecordFailedLogin(ctx context.Context, userID int64, policy LockoutPolicy, now time.Time) (int, *time.Time, error)
	RecordSuccessfulLogin(ctx context.Context, userID int64, now time.Time) error
	Unlock(ctx context.Context, userID int64) error
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
}

type SessionRepository interface {
	Create(ctx context.Context, session *Session) (int64, error)
	FindByRefreshToken(ctx context.Context, refreshToken string) (*Session, error)
	RotateAccessToken(ctx context.Context, sessionID int64, accessToken string, expiresAt time.Time) error
	Invalidate(ctx context.Context, sessionID int64, reason string, now time.Time) error
	InvalidateByRefreshTokenForUser(ctx context.Context, refreshToken string, userID int64, now time.Time) (bool, error)
	InvalidateAllForUser(ctx context.Context, userID int64, now time.Time) (int64, error)
	ListActiveByUser(ctx context.Context, userID int64) ([]Session, error)
}

type AuditRepository interface {
	Record(ctx context.Context, entry AuditEntry) error
}

type TokenGenerator interface {
	IssueAccessToken(claims AccessClaims) (string, time.Time, error)
	IssueRefreshToken() (string, time.Time, error)
	VerifyAccessToken(token string) (*AccessClaims, error)
	GetAccessTokenExpiry() time.Duration
}

// LoginThrottle limits login attempts per client address, independently of
// the per-account lockout.
type LoginThrottle interface {
	Allow(ctx context.Context, key string) (bool, error)
}
