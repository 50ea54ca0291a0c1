package handler

import (
	"github.com/AnthoniusHendriyanto/hotel-auth-service/config"
	"github.com/AnthoniusHendriyanto/hotel-auth-service/internal/auth/domain"
	"github.com/AnthoniusHendriyanto/hotel-auth-service/internal/auth/dto"
	"github.com/AnthoniusHendriyanto/hotel-auth-service/internal/auth/service"
	autherror "github.com/AnthoniusHendriyanto/hotel-auth-service/internal/errors"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService *service.AuthService
	tokens      domain.TokenGenerator
	cfg         *config.Config
}

func NewAuthHandler(authService *service.AuthService, tokens domain.TokenGenerator, cfg *config.Config) *AuthHandler {
	return &AuthHandler{authService: authService, tokens: tokens, cfg: cfg}
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input dto.LoginInput
	if err := c.BodyParser(&input); err != nil {
		return autherror.Validation("invalid input")
	}

	// Capture metadata
	input.IPAddress = c.IP()
	input.UserAgent = string(c.Request().Header.UserAgent())

	resp, err := h.authService.Login(c.UserContext(), input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var input dto.RefreshInput
	if err := c.BodyParser(&input); err != nil {
		return autherror.Validation("invalid input")
	}

	tokens, err := h.authService.Refresh(c.UserContext(), input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(tokens)
}

// Logout accepts an empty body, which closes every session of the caller.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var input dto.LogoutInput
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&input); err != nil {
			return autherror.Validation("invalid input")
		}
	}

	claims := ClaimsFromCtx(c)
	if err := h.authService.Logout(c.UserContext(), claims.UserID, input.RefreshToken); err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(dto.MessageResponse{Message: "Sesión cerrada correctamente"})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	profile, err := h.authService.Me(c.UserContext(), ClaimsFromCtx(c).UserID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(profile)
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var input dto.RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return autherror.Validation("invalid input")
	}

	user, err := h.authService.Register(c.UserContext(), input, ClaimsFromCtx(c), c.IP())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

func (h *AuthHandler) ChangeRequiredPassword(c *fiber.Ctx) error {
	var input dto.ChangePasswordInput
	if err := c.BodyParser(&input); err != nil {
		return autherror.Validation("invalid input")
	}

	err := h.authService.ChangeRequiredPassword(c.UserContext(), ClaimsFromCtx(c).UserID, input, c.IP())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(dto.MessageResponse{Message: "Contraseña actualizada correctamente"})
}

func (h *AuthHandler) ListSessions(c *fiber.Ctx) error {
	sessions, err := h.authService.ListSessions(c.UserContext(), ClaimsFromCtx(c).UserID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(sessions)
}

func (h *AuthHandler) UnlockUser(c *fiber.Ctx) error {
	targetID, err := userIDParam(c)
	if err != nil {
		return err
	}

	if err := h.authService.UnlockUser(c.UserContext(), ClaimsFromCtx(c).UserID, targetID, c.IP()); err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(dto.MessageResponse{Message: "Usuario desbloqueado"})
}

// ForceLogout closes every active session of the target user.
func (h *AuthHandler) ForceLogout(c *fiber.Ctx) error {
	targetID, err := userIDParam(c)
	if err != nil {
		return err
	}

	closed, err := h.authService.RevokeAllSessions(c.UserContext(), ClaimsFromCtx(c).UserID, targetID, c.IP())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(dto.RevokeSessionsResponse{
		Message:        "Sesiones cerradas",
		ClosedSessions: closed,
	})
}

func (h *AuthHandler) Health(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
}

func userIDParam(c *fiber.Ctx) (int64, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, autherror.Validation("invalid user id")
	}
	return int64(id), nil
}
