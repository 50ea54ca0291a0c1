package handler

import (
	"log/slog"

	"github.com/AnthoniusHendriyanto/hotel-auth-service/config"
	"github.com/AnthoniusHendriyanto/hotel-auth-service/internal/metrics"
	"github.com/AnthoniusHendriyanto/hotel-auth-service/pkg/constant"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
)

// NewApp builds the fiber app with the shared middleware stack.
func NewApp(cfg *config.Config, logger *slog.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "hotel-auth-service",
		ErrorHandler: ErrorHandler(cfg.IsDevelopment(), logger),
	})
	app.Use(requestid.New(requestid.Config{
		Generator:  uuid.NewString,
		ContextKey: requestIDKey,
	}))
	app.Use(AccessLog(logger))
	app.Use(fiberrecover.New())
	return app
}

func RegisterRoutes(app *fiber.App, h *AuthHandler, m *metrics.Metrics) {
	app.Get("/health", h.Health)
	if m != nil {
		app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))
	}

	auth := app.Group("/auth")
	auth.Post("/login", h.Login)
	auth.Post("/refresh", h.Refresh)
	auth.Post("/register", h.OptionalAuth(), h.Register)

	auth.Post("/logout", h.RequireAuth(), h.Logout)
	auth.Get("/me", h.RequireAuth(), h.Me)
	auth.Post("/cambiar-password-obligatorio", h.RequireAuth(), h.ChangeRequiredPassword)
	auth.Get("/sesiones", h.RequireAuth(), h.ListSessions)

	// Administrative endpoints
	auth.Post("/usuarios/:id/desbloquear",
		h.RequireAuth(), h.RequireRole(constant.RoleAdmin, constant.RoleSupervisor), h.UnlockUser)
	auth.Delete("/usuarios/:id/sesiones",
		h.RequireAuth(), h.RequireRole(constant.RoleAdmin), h.ForceLogout)
}
