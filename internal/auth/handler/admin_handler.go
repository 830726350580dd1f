package handler

import (
	"github.com/consulio/auth-service/config"
	"github.com/consulio/auth-service/internal/auth/dto"
	"github.com/gofiber/fiber/v2"
)

// AdminHandler exposes the operator surface: user management, forced
// logouts, global revocation and the maintenance switch.
type AdminHandler struct {
	authHandler *AuthHandler
	maintenance *config.MaintenanceFlag
}

func NewAdminHandler(authHandler *AuthHandler, maintenance *config.MaintenanceFlag) *AdminHandler {
	return &AdminHandler{authHandler: authHandler, maintenance: maintenance}
}

func (h *AdminHandler) GetAllUsers(c *fiber.Ctx) error {
	users, err := h.authHandler.userService.GetAllUsers(c.Context())
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(users)
}

func (h *AdminHandler) GetUserSessions(c *fiber.Ctx) error {
	sessions, err := h.authHandler.userService.GetUserSessions(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(sessions)
}

func (h *AdminHandler) ForceLogout(c *fiber.Ctx) error {
	if err := h.authHandler.userService.LogoutUser(c.Context(), c.Params("id")); err != nil {
		return respondError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AdminHandler) LogoutAll(c *fiber.Ctx) error {
	count, err := h.authHandler.userService.LogoutAll(c.Context())
	if err != nil {
		return respondError(c, err)
	}

	// Only the aggregate count leaves the server, never the affected IDs.
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"logged_out": count})
}

func (h *AdminHandler) RevokeAllTokens(c *fiber.Ctx) error {
	count, err := h.authHandler.userService.RevokeAllTokens(c.Context())
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"revoked": count})
}

func (h *AdminHandler) UpdateUserActive(c *fiber.Ctx) error {
	var input dto.UpdateActiveInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}

	if err := h.authHandler.userService.SetUserActive(c.Context(), c.Params("id"), input.Active); err != nil {
		return respondError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AdminHandler) UpdateUserRole(c *fiber.Ctx) error {
	var input dto.UpdateRoleInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}

	if err := h.authHandler.userService.UpdateUserRole(c.Context(), c.Params("id"), input.Role); err != nil {
		return respondError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AdminHandler) SetMaintenance(c *fiber.Ctx) error {
	var input dto.MaintenanceInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}

	h.maintenance.Set(input.Enabled)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"maintenance": input.Enabled})
}
