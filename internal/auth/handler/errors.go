package handler

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/AnthoniusHendriyanto/hotel-auth-service/internal/auth/dto"
	autherror "github.com/AnthoniusHendriyanto/hotel-auth-service/internal/errors"
	"github.com/gofiber/fiber/v2"
)

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// Order matters: ErrEmailAlreadyInUse wraps ErrConflict.
var errorMappings = []errorMapping{
	{autherror.ErrValidation, fiber.StatusBadRequest, "VALIDATION_ERROR", ""},
	{autherror.ErrInvalidCredentials, fiber.StatusUnauthorized, "INVALID_CREDENTIALS", "Credenciales inválidas"},
	{autherror.ErrAccountInactive, fiber.StatusForbidden, "ACCOUNT_INACTIVE", "La cuenta está desactivada"},
	{autherror.ErrAccountLocked, fiber.StatusForbidden, "ACCOUNT_LOCKED", "Cuenta bloqueada temporalmente por intentos fallidos"},
	{autherror.ErrInvalidToken, fiber.StatusUnauthorized, "INVALID_TOKEN", "Token inválido"},
	{autherror.ErrTokenExpired, fiber.StatusUnauthorized, "TOKEN_EXPIRED", "El refresh token ha expirado"},
	{autherror.ErrSessionClosed, fiber.StatusUnauthorized, "SESSION_CLOSED", "La sesión fue cerrada"},
	{autherror.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED", "No autenticado"},
	{autherror.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN", "No tiene permisos para esta operación"},
	{autherror.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND", "Recurso no encontrado"},
	{autherror.ErrEmailAlreadyInUse, fiber.StatusConflict, "CONFLICT", "El email ya está registrado"},
	{autherror.ErrConflict, fiber.StatusConflict, "CONFLICT", "El registro ya existe"},
	{autherror.ErrTooManyLoginAttempts, fiber.StatusTooManyRequests, "TOO_MANY_ATTEMPTS", "Demasiados intentos de inicio de sesión, intente más tarde"},
}

// errorBody maps err onto a status and body. Unknown errors become 500 and
// only expose their text when development is true.
func errorBody(err error, development bool) (int, dto.ErrorResponse) {
	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		body := dto.ErrorResponse{Error: m.code, Message: m.message}
		if m.target == autherror.ErrValidation {
			body.Message = strings.TrimPrefix(err.Error(), autherror.ErrValidation.Error()+": ")
		}
		var authErr *autherror.AuthError
		if errors.As(err, &authErr) {
			body.RemainingAttempts = authErr.RemainingAttempts
			body.LockedUntil = authErr.LockedUntil
			body.Contact = authErr.Contact
		}
		return m.status, body
	}

	body := dto.ErrorResponse{Error: "INTERNAL_ERROR", Message: "Error interno del servidor"}
	if development {
		body.Detail = err.Error()
	}
	return fiber.StatusInternalServerError, body
}

// ErrorHandler is the fiber.Config error handler. Handlers and guards return
// domain errors and let this translate them.
func ErrorHandler(development bool, logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			code := "HTTP_ERROR"
			switch fiberErr.Code {
			case fiber.StatusNotFound:
				code = "NOT_FOUND"
			case fiber.StatusMethodNotAllowed:
				code = "METHOD_NOT_ALLOWED"
			case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity:
				code = "VALIDATION_ERROR"
			}
			return c.Status(fiberErr.Code).JSON(dto.ErrorResponse{Error: code, Message: fiberErr.Message})
		}

		status, body := errorBody(err, development)
		if status == fiber.StatusInternalServerError {
			logger.ErrorContext(c.UserContext(), "request failed",
				"operation", "http",
				"outcome", "failure",
				"path", c.Path(),
				"request_id", requestID(c),
				"error", err,
			)
		}
		return c.Status(status).JSON(body)
	}
}
