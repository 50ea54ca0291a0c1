package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/AnthoniusHendriyanto/hotel-auth-service/config"
	"github.com/AnthoniusHendriyanto/hotel-auth-service/internal/auth/domain"
	"github.com/AnthoniusHendriyanto/hotel-auth-service/internal/auth/dto"
	autherror "github.com/AnthoniusHendriyanto/hotel-auth-service/internal/errors"
	"github.com/AnthoniusHendriyanto/hotel-auth-service/internal/metrics"
	"github.com/AnthoniusHendriyanto/hotel-auth-service/pkg/constant"
)

// AuthService orchestrates login, refresh, logout and account flows. It keeps
// no mutable state of its own; every transition is persisted by the
// repositories in a single statement.
type AuthService struct {
	users    domain.UserRepository
	sessions domain.SessionRepository
	audit    domain.AuditRepository
	tokens   domain.TokenGenerator
	hasher   *BcryptHasher
	cfg      *config.Config
	policy   domain.LockoutPolicy
	throttle domain.LoginThrottle
	metrics  *metrics.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

type Option func(*AuthService)

func WithClock(now func() time.Time) Option {
	return func(s *AuthService) { s.now = now }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *AuthService) { s.logger = logger }
}

func WithThrottle(throttle domain.LoginThrottle) Option {
	return func(s *AuthService) { s.throttle = throttle }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *AuthService) { s.metrics = m }
}

func WithHasher(h *BcryptHasher) Option {
	return func(s *AuthService) { s.hasher = h }
}

func NewAuthService(
	users domain.UserRepository,
	sessions domain.SessionRepository,
	audit domain.AuditRepository,
	tokens domain.TokenGenerator,
	cfg *config.Config,
	opts ...Option,
) *AuthService {
	s := &AuthService{
		users:    users,
		sessions: sessions,
		audit:    audit,
		tokens:   tokens,
		hasher:   NewBcryptHasher(cfg.BcryptCost),
		cfg:      cfg,
		policy: domain.LockoutPolicy{
			MaxAttempts:   cfg.LoginMaxAttempts,
			Window:        cfg.LockoutWindow(),
			ResetOnExpiry: cfg.LockoutResetOnExpiry,
		},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *AuthService) Login(ctx context.Context, input dto.LoginInput) (*dto.LoginResponse, error) {
	identifier := strings.TrimSpace(input.Identifier)
	if identifier == "" || strings.TrimSpace(input.Password) == "" {
		return nil, autherror.Validation("identifier and password are required")
	}

	if err := s.checkThrottle(ctx, input.IPAddress); err != nil {
		return nil, err
	}

	user, err := s.users.FindByIdentifier(ctx, identifier)
	if err != nil {
		return nil, autherror.Internal("find user", err)
	}
	if user == nil {
		s.metrics.LoginOutcome("invalid_credentials")
		s.recordAudit(ctx, nil, constant.AuditLoginFailed, "login attempt for unknown identifier", input.IPAddress)
		return nil, autherror.ErrInvalidCredentials
	}

	if user.IsDeactivated() {
		s.metrics.LoginOutcome("inactive")
		return nil, autherror.Inactive(s.cfg.SupportContact)
	}

	now := s.now()
	if status := s.policy.Evaluate(user.FailedAttempts, user.LockedUntil, now); status.Locked {
		s.metrics.LoginOutcome("locked")
		s.logger.WarnContext(ctx, "account lockout active",
			"operation", "login",
			"outcome", "blocked",
			"user_id", user.ID,
			"locked_until", *status.LockedUntil,
		)
		return nil, autherror.Locked(*status.LockedUntil)
	}

	if !s.hasher.Verify(input.Password, user.PasswordHash) {
		return nil, s.failLogin(ctx, user, input.IPAddress, now)
	}

	if err := s.users.RecordSuccessfulLogin(ctx, user.ID, now); err != nil {
		return nil, autherror.Internal("reset failed attempts", err)
	}
	user.FailedAttempts = 0
	user.LockedUntil = nil
	user.LastLoginAt = &now

	accessToken, accessExpiresAt, err := s.tokens.IssueAccessToken(domain.ClaimsFor(user))
	if err != nil {
		return nil, autherror.Internal("issue access token", err)
	}
	refreshToken, refreshExpiresAt, err := s.tokens.IssueRefreshToken()
	if err != nil {
		return nil, autherror.Internal("issue refresh token", err)
	}

	sessionID, err := s.sessions.Create(ctx, &domain.Session{
		UserID:           user.ID,
		RefreshTokenHash: domain.HashRefreshToken(refreshToken),
		AccessToken:      accessToken,
		AccessExpiresAt:  accessExpiresAt,
		RefreshExpiresAt: refreshExpiresAt,
		Active:           true,
		CreatedAt:        now,
		Client:           ParseClientMeta(input.IPAddress, input.UserAgent),
	})
	if err != nil {
		return nil, autherror.Internal("create session", err)
	}

	s.metrics.LoginOutcome("success")
	s.logger.InfoContext(ctx, "login succeeded",
		"operation", "login",
		"outcome", "success",
		"user_id", user.ID,
		"session_id", sessionID,
	)

	return &dto.LoginResponse{
		User:      dto.NewUserOutput(user),
		Tokens:    s.tokenResponse(accessToken, refreshToken),
		SessionID: sessionID,
	}, nil
}

// failLogin records one failed attempt and decides between InvalidCredentials
// and AccountLocked from the counter the store returned.
func (s *AuthService) failLogin(ctx context.Context, user *domain.User, ip string, now time.Time) error {
	failed, lockedUntil, err := s.users.RecordFailedLogin(ctx, user.ID, s.policy, now)
	if err != nil {
		return autherror.Internal("record failed login", err)
	}

	s.recordAudit(ctx, &user.ID, constant.AuditLoginFailed,
		fmt.Sprintf("failed login attempt %d of %d", failed, s.policy.MaxAttempts), ip)

	status := s.policy.Evaluate(failed, lockedUntil, now)
	if status.Locked {
		s.metrics.LoginOutcome("locked")
		s.metrics.Lockout()
		s.recordAudit(ctx, &user.ID, constant.AuditAccountLocked,
			fmt.Sprintf("account locked until %s after %d failed attempts", status.LockedUntil.UTC().Format(time.RFC3339), failed), ip)
		s.logger.WarnContext(ctx, "account lockout triggered",
			"operation", "login",
			"outcome", "blocked",
			"user_id", user.ID,
			"locked_until", *status.LockedUntil,
		)
		return autherror.Locked(*status.LockedUntil)
	}

	s.metrics.LoginOutcome("invalid_credentials")
	return autherror.InvalidCredentials(status.RemainingAttempts)
}

func (s *AuthService) checkThrottle(ctx context.Context, ip string) error {
	if s.throttle == nil || ip == "" {
		return nil
	}
	allowed, err := s.throttle.Allow(ctx, "login:"+ip)
	if err != nil {
		s.logger.WarnContext(ctx, "login throttle unavailable",
			"operation", "login",
			"outcome", "degraded",
			"error", err,
		)
		return nil
	}
	if !allowed {
		s.metrics.LoginOutcome("throttled")
		return autherror.ErrTooManyLoginAttempts
	}
	return nil
}

// Refresh mints a new access token for the session behind refreshToken. The
// refresh token itself is never rotated.
func (s *AuthService) Refresh(ctx context.Context, input dto.RefreshInput) (*dto.TokenResponse, error) {
	refreshToken := strings.TrimSpace(input.RefreshToken)
	if refreshToken == "" {
		return nil, autherror.Validation("refreshToken is required")
	}

	session, err := s.sessions.FindByRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, autherror.Internal("find session", err)
	}
	if session == nil {
		s.metrics.RefreshOutcome("invalid_token")
		return nil, autherror.ErrInvalidToken
	}

	now := s.now()
	switch session.State(now) {
	case domain.SessionLoggedOut:
		s.metrics.RefreshOutcome("session_closed")
		return nil, autherror.ErrSessionClosed
	case domain.SessionExpired:
		if err := s.sessions.Invalidate(ctx, session.ID, constant.CloseReasonExpiration, now); err != nil {
			return nil, autherror.Internal("invalidate expired session", err)
		}
		s.metrics.RefreshOutcome("token_expired")
		s.metrics.SessionsClosed(constant.CloseReasonExpiration, 1)
		return nil, autherror.ErrTokenExpired
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, autherror.Internal("load session owner", err)
	}
	if user == nil || user.IsDeactivated() {
		s.metrics.RefreshOutcome("inactive")
		return nil, autherror.Inactive(s.cfg.SupportContact)
	}

	accessToken, accessExpiresAt, err := s.tokens.IssueAccessToken(domain.ClaimsFor(user))
	if err != nil {
		return nil, autherror.Internal("issue access token", err)
	}
	if err := s.sessions.RotateAccessToken(ctx, session.ID, accessToken, accessExpiresAt); err != nil {
		if errors.Is(err, autherror.ErrSessionClosed) {
			s.metrics.RefreshOutcome("session_closed")
			return nil, autherror.ErrSessionClosed
		}
		return nil, autherror.Internal("rotate access token", err)
	}

	s.metrics.RefreshOutcome("success")
	response := s.tokenResponse(accessToken, refreshToken)
	return &response, nil
}

// Logout closes the caller's session identified by refreshToken, or every
// active session of the caller when refreshToken is empty. A token that does
// not belong to the caller is ignored.
func (s *AuthService) Logout(ctx context.Context, userID int64, refreshToken string) error {
	now := s.now()
	refreshToken = strings.TrimSpace(refreshToken)

	if refreshToken != "" {
		closed, err := s.sessions.InvalidateByRefreshTokenForUser(ctx, refreshToken, userID, now)
		if err != nil {
			return autherror.Internal("close session", err)
		}
		if closed {
			s.metrics.SessionsClosed(constant.CloseReasonUser, 1)
		}
		return nil
	}

	closed, err := s.sessions.InvalidateAllForUser(ctx, userID, now)
	if err != nil {
		return autherror.Internal("close sessions", err)
	}
	s.metrics.SessionsClosed(constant.CloseReasonUser, closed)
	s.logger.InfoContext(ctx, "all sessions closed",
		"operation", "logout",
		"outcome", "success",
		"user_id", userID,
		"sessions", closed,
	)
	return nil
}

// Me re-reads the profile; token claims may be stale.
func (s *AuthService) Me(ctx context.Context, userID int64) (*dto.UserOutput, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, autherror.Internal("load profile", err)
	}
	if user == nil {
		return nil, autherror.ErrNotFound
	}
	out := dto.NewUserOutput(user)
	return &out, nil
}

// CheckAccount rejects callers whose account was removed or deactivated after
// their access token was issued.
func (s *AuthService) CheckAccount(ctx context.Context, userID int64) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return autherror.Internal("load account", err)
	}
	if user == nil {
		return autherror.ErrUnauthorized
	}
	if user.IsDeactivated() {
		return autherror.Inactive(s.cfg.SupportContact)
	}
	return nil
}

// Register creates an account. Anonymous callers may only request
// non-privileged roles; ADMIN and SUPERVISOR accounts must be created by an
// authenticated ADMIN. Accounts created on behalf of someone else start with
// a mandatory password change.
func (s *AuthService) Register(ctx context.Context, input dto.RegisterInput, actor *domain.AccessClaims, ip string) (*dto.UserOutput, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	roleName := strings.ToUpper(strings.TrimSpace(input.Role))
	if roleName == "" {
		roleName = constant.DefaultUserRole
	}

	switch {
	case name == "":
		return nil, autherror.Validation("nombre is required")
	case email == "":
		return nil, autherror.Validation("email is required")
	case !isEmail(email):
		return nil, autherror.Validation("email is not valid")
	case !constant.ValidRoles[roleName]:
		return nil, autherror.Validation("rol is not valid")
	}
	if err := ValidatePasswordStrength(input.Password); err != nil {
		return nil, err
	}
	if constant.PrivilegedRoles[roleName] && (actor == nil || actor.RoleName != constant.RoleAdmin) {
		return nil, autherror.ErrForbidden
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, autherror.Internal("check email", err)
	}
	if existing != nil {
		return nil, autherror.ErrEmailAlreadyInUse
	}

	role, err := s.users.GetRoleByName(ctx, roleName)
	if err != nil {
		return nil, autherror.Internal("load role", err)
	}
	if role == nil {
		return nil, autherror.Validation("rol is not valid")
	}

	employeeNumber, err := s.users.NextEmployeeNumber(ctx)
	if err != nil {
		return nil, autherror.Internal("generate employee number", err)
	}

	passwordHash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, autherror.Internal("hash password", err)
	}

	now := s.now()
	user := &domain.User{
		Name:               name,
		Email:              email,
		EmployeeNumber:     employeeNumber,
		PasswordHash:       passwordHash,
		Active:             true,
		MustChangePassword: actor != nil,
		Role:               *role,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if phone := strings.TrimSpace(input.Phone); phone != "" {
		user.Phone = &phone
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, autherror.ErrConflict) {
			return nil, err
		}
		return nil, autherror.Internal("create user", err)
	}

	description := fmt.Sprintf("user %s registered with role %s", user.EmployeeNumber, role.Name)
	if actor != nil {
		description += fmt.Sprintf(" by user %d", actor.UserID)
	}
	s.recordAudit(ctx, &user.ID, constant.AuditUserRegistered, description, ip)

	out := dto.NewUserOutput(user)
	return &out, nil
}

// ChangeRequiredPassword replaces the password and clears the
// must-change-password flag. It is refused for accounts without the flag.
func (s *AuthService) ChangeRequiredPassword(ctx context.Context, userID int64, input dto.ChangePasswordInput, ip string) error {
	if input.NewPassword == "" || input.ConfirmPassword == "" {
		return autherror.Validation("nuevoPassword and confirmarPassword are required")
	}
	if input.NewPassword != input.ConfirmPassword {
		return autherror.Validation("passwords do not match")
	}
	if err := ValidatePasswordStrength(input.NewPassword); err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return autherror.Internal("load user", err)
	}
	if user == nil {
		return autherror.ErrNotFound
	}
	if !user.MustChangePassword {
		return autherror.Validation("password change is not required for this account")
	}
	if s.hasher.Verify(input.NewPassword, user.PasswordHash) {
		return autherror.Validation("new password must differ from the current one")
	}

	passwordHash, err := s.hasher.Hash(input.NewPassword)
	if err != nil {
		return autherror.Internal("hash password", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, passwordHash); err != nil {
		return autherror.Internal("update password", err)
	}

	s.recordAudit(ctx, &userID, constant.AuditPasswordChanged, "mandatory password change completed", ip)
	return nil
}

func (s *AuthService) ListSessions(ctx context.Context, userID int64) ([]dto.SessionOutput, error) {
	sessions, err := s.sessions.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, autherror.Internal("list sessions", err)
	}
	out := make([]dto.SessionOutput, 0, len(sessions))
	for _, session := range sessions {
		out = append(out, dto.NewSessionOutput(session))
	}
	return out, nil
}

// UnlockUser is the administrative unlock: it clears the failure counter and
// any lockout window.
func (s *AuthService) UnlockUser(ctx context.Context, actorID, targetID int64, ip string) error {
	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return autherror.Internal("load user", err)
	}
	if target == nil {
		return autherror.ErrNotFound
	}
	if err := s.users.Unlock(ctx, targetID); err != nil {
		return autherror.Internal("unlock user", err)
	}
	s.recordAudit(ctx, &targetID, constant.AuditAccountUnlocked,
		fmt.Sprintf("account unlocked by user %d", actorID), ip)
	return nil
}

func (s *AuthService) RevokeAllSessions(ctx context.Context, actorID, targetID int64, ip string) (int64, error) {
	closed, err := s.sessions.InvalidateAllForUser(ctx, targetID, s.now())
	if err != nil {
		return 0, autherror.Internal("close sessions", err)
	}
	s.metrics.SessionsClosed(constant.CloseReasonUser, closed)
	s.recordAudit(ctx, &targetID, constant.AuditSessionsRevoked,
		fmt.Sprintf("%d sessions closed by user %d", closed, actorID), ip)
	return closed, nil
}

func (s *AuthService) tokenResponse(accessToken, refreshToken string) dto.TokenResponse {
	return dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.tokens.GetAccessTokenExpiry().Seconds()),
		TokenType:    constant.DefaultTokenType,
	}
}

// recordAudit never fails the calling flow.
func (s *AuthService) recordAudit(ctx context.Context, userID *int64, event, description, ip string) {
	err := s.audit.Record(ctx, domain.AuditEntry{
		UserID:      userID,
		Event:       event,
		Description: description,
		IPAddress:   ip,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to write audit entry",
			"operation", "audit",
			"outcome", "failure",
			"event", event,
			"error", err,
		)
	}
}

func isEmail(value string) bool {
	addr, err := mail.ParseAddress(value)
	return err == nil && addr.Address == value
}
