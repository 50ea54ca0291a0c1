package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AnthoniusHendriyanto/hotel-auth-service/internal/auth/domain"
	autherror "github.com/AnthoniusHendriyanto/hotel-auth-service/internal/errors"
	"github.com/AnthoniusHendriyanto/hotel-auth-service/pkg/constant"
	"github.com/jackc/pgx/v5"
)

const sessionSelectColumns = `
		SELECT id, user_id, refresh_token_hash, access_token, access_expires_at, refresh_expires_at,
		       active, created_at, logout_at, closed_by, ip_address, user_agent, device, browser, os
		FROM sessions`

// SessionRepository persists sessions. Refresh tokens arrive raw and are
// hashed before they touch the database.
type SessionRepository struct {
	db DBTX
}

func NewSessionRepository(db DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

func scanSession(row pgx.Row) (*domain.Session, error) {
	var s domain.Session
	err := row.Scan(
		&s.ID, &s.UserID, &s.RefreshTokenHash, &s.AccessToken, &s.AccessExpiresAt, &s.RefreshExpiresAt,
		&s.Active, &s.CreatedAt, &s.LogoutAt, &s.ClosedBy,
		&s.Client.IPAddress, &s.Client.UserAgent, &s.Client.Device, &s.Client.Browser, &s.Client.OS,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SessionRepository) Create(ctx context.Context, s *domain.Session) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO sessions (user_id, refresh_token_hash, access_token, access_expires_at, refresh_expires_at,
		                      active, created_at, ip_address, user_agent, device, browser, os)
		VALUES ($1, $2, $3, $4, $5, TRUE, $6, $7, $8, $9, $10, $11)
		RETURNING id`,
		s.UserID, s.RefreshTokenHash, s.AccessToken, s.AccessExpiresAt, s.RefreshExpiresAt,
		s.CreatedAt, s.Client.IPAddress, s.Client.UserAgent, s.Client.Device, s.Client.Browser, s.Client.OS,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create session: %w", err)
	}
	s.ID = id
	return id, nil
}

func (r *SessionRepository) FindByRefreshToken(ctx context.Context, refreshToken string) (*domain.Session, error) {
	session, err := scanSession(r.db.QueryRow(ctx,
		sessionSelectColumns+` WHERE refresh_token_hash = $1`, domain.HashRefreshToken(refreshToken)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	return session, nil
}

// RotateAccessToken replaces the access token of a still-active session. A
// session closed concurrently yields ErrSessionClosed.
func (r *SessionRepository) RotateAccessToken(ctx context.Context, sessionID int64, accessToken string, expiresAt time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE sessions
		SET access_token = $2, access_expires_at = $3
		WHERE id = $1 AND active`, sessionID, accessToken, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to rotate access token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return autherror.ErrSessionClosed
	}
	return nil
}

func (r *SessionRepository) Invalidate(ctx context.Context, sessionID int64, reason string, now time.Time) error {
	_, err := r.db.Exec(ctx, `
		UPDATE sessions
		SET active = FALSE, logout_at = $3, closed_by = $2
		WHERE id = $1 AND active`, sessionID, reason, now)
	if err != nil {
		return fmt.Errorf("failed to invalidate session: %w", err)
	}
	return nil
}

// InvalidateByRefreshTokenForUser reports whether a session was closed. Tokens
// owned by another user never match.
func (r *SessionRepository) InvalidateByRefreshTokenForUser(ctx context.Context, refreshToken string, userID int64, now time.Time) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE sessions
		SET active = FALSE, logout_at = $3, closed_by = $4
		WHERE refresh_token_hash = $1 AND user_id = $2 AND active`,
		domain.HashRefreshToken(refreshToken), userID, now, constant.CloseReasonUser)
	if err != nil {
		return false, fmt.Errorf("failed to close session: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *SessionRepository) InvalidateAllForUser(ctx context.Context, userID int64, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE sessions
		SET active = FALSE, logout_at = $2, closed_by = $3
		WHERE user_id = $1 AND active`, userID, now, constant.CloseReasonUser)
	if err != nil {
		return 0, fmt.Errorf("failed to close sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *SessionRepository) ListActiveByUser(ctx context.Context, userID int64) ([]domain.Session, error) {
	rows, err := r.db.Query(ctx, sessionSelectColumns+`
		WHERE user_id = $1 AND active AND refresh_expires_at > now()
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []domain.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, *session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}
