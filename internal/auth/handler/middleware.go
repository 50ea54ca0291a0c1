package handler

import (
	"log/slog"
	"strings"
	"time"

	"github.com/AnthoniusHendriyanto/hotel-auth-service/internal/auth/domain"
	autherror "github.com/AnthoniusHendriyanto/hotel-auth-service/internal/errors"
	"github.com/gofiber/fiber/v2"
)

const (
	claimsKey    = "claims"
	requestIDKey = "requestid"
)

// RequireAuth verifies the bearer token and stores its claims in the request
// locals. With account re-checking enabled, deactivated accounts are rejected
// even while their token is still valid.
func (h *AuthHandler) RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return autherror.ErrUnauthorized
		}

		claims, err := h.tokens.VerifyAccessToken(token)
		if err != nil {
			return autherror.ErrUnauthorized
		}

		if h.cfg.RecheckAccountStatus {
			if err := h.authService.CheckAccount(c.UserContext(), claims.UserID); err != nil {
				return err
			}
		}

		c.Locals(claimsKey, claims)
		return c.Next()
	}
}

// OptionalAuth lets anonymous requests through. When an Authorization header
// is present it is verified exactly like RequireAuth.
func (h *AuthHandler) OptionalAuth() fiber.Handler {
	requireAuth := h.RequireAuth()
	return func(c *fiber.Ctx) error {
		if c.Get(fiber.HeaderAuthorization) == "" {
			return c.Next()
		}
		return requireAuth(c)
	}
}

// RequireRole must run after RequireAuth.
func (h *AuthHandler) RequireRole(roles ...string) fiber.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}
	return func(c *fiber.Ctx) error {
		claims := ClaimsFromCtx(c)
		if claims == nil {
			return autherror.ErrUnauthorized
		}
		if !allowed[claims.RoleName] {
			return autherror.ErrForbidden
		}
		return c.Next()
	}
}

// ClaimsFromCtx returns the claims stored by RequireAuth, or nil.
func ClaimsFromCtx(c *fiber.Ctx) *domain.AccessClaims {
	claims, _ := c.Locals(claimsKey).(*domain.AccessClaims)
	return claims
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func requestID(c *fiber.Ctx) string {
	id, _ := c.Locals(requestIDKey).(string)
	return id
}

// AccessLog writes one structured line per request. Errors are rendered here
// through the app error handler so the logged status is the one sent.
func AccessLog(logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		if chainErr := c.Next(); chainErr != nil {
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		attrs := []any{
			"method", c.Method(),
			"path", c.Path(),
			"status", c.Response().StatusCode(),
			"duration_ms", time.Since(start).Milliseconds(),
			"ip", c.IP(),
			"request_id", requestID(c),
		}
		if claims := ClaimsFromCtx(c); claims != nil {
			attrs = append(attrs, "user_id", claims.UserID)
		}
		logger.InfoContext(c.UserContext(), "request", attrs...)
		return nil
	}
}
