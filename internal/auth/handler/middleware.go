package handler

import (
	"github.com/consulio/auth-service/internal/auth/service"
	"github.com/gofiber/fiber/v2"
)

const claimsLocal = "claims"

// RequireAuth validates the bearer token against the signature, the
// revocation ledger and the session registry, then stores the claims for
// downstream handlers.
func (h *AuthHandler) RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing bearer token"})
		}

		claims, err := h.userService.ValidateToken(c.Context(), token)
		if err != nil {
			return respondError(c, err)
		}

		c.Locals(claimsLocal, claims)

		return c.Next()
	}
}

// RequireRole gates a route on the role claim. Must run after RequireAuth.
func (h *AuthHandler) RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := c.Locals(claimsLocal).(*service.JWTCustomClaims)
		if !ok || claims.Role != role {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden"})
		}

		return c.Next()
	}
}
