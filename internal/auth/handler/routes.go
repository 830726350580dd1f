package handler

import (
	"github.com/consulio/auth-service/internal/auth/domain"
	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RegisterRoutes(app *fiber.App, h *AuthHandler, a *AdminHandler) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	app.Post("/api/v1/register", h.Register)
	app.Post("/api/v1/login", h.Login)
	app.Post("/api/v1/refresh", h.Refresh)
	app.Delete("/api/v1/session", h.Logout)
	app.Post("/api/v1/password/forgot", h.ForgotPassword)
	app.Post("/api/v1/password/reset", h.ResetPassword)

	// Admin-only endpoints
	admin := app.Group("/api/v1/admin", h.RequireAuth(), h.RequireRole(domain.RoleAdmin))
	admin.Get("/users", a.GetAllUsers)
	admin.Get("/user/:id/sessions", a.GetUserSessions)
	admin.Delete("/user/:id/sessions", a.ForceLogout)
	admin.Patch("/user/:id/active", a.UpdateUserActive)
	admin.Patch("/user/:id/role", a.UpdateUserRole)
	admin.Post("/logout-all", a.LogoutAll)
	admin.Post("/revoke-all", a.RevokeAllTokens)
	admin.Put("/maintenance", a.SetMaintenance)
}
