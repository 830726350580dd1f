package handler

import (
	"errors"
	"strings"

	"github.com/consulio/auth-service/internal/auth/dto"
	"github.com/consulio/auth-service/internal/auth/service"
	autherror "github.com/consulio/auth-service/internal/errors"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	userService *service.UserService
}

func NewAuthHandler(userService *service.UserService) *AuthHandler {
	return &AuthHandler{userService: userService}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var input dto.RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid input",
		})
	}
	if input.Email == "" || len(input.Password) < 8 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "email and a password of at least 8 characters are required",
		})
	}

	user, tokens, err := h.userService.Register(c.Context(), input)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":            user.ID,
		"email":         user.Email,
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"expires_at":    tokens.ExpiresAt,
	})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input dto.LoginInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid input",
		})
	}

	tokenPair, err := h.userService.Login(c.Context(), input)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(tokenPair)
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var input dto.RefreshInput
	if err := c.BodyParser(&input); err != nil || input.RefreshToken == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}

	tokens, err := h.userService.Refresh(c.Context(), input)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(tokens)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	token := bearerToken(c)
	if token == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing bearer token"})
	}

	if err := h.userService.Logout(c.Context(), token); err != nil {
		return respondError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var input dto.ForgotPasswordInput
	if err := c.BodyParser(&input); err != nil || input.Email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}

	// Always accepted: the response must not reveal whether the address is
	// registered.
	if err := h.userService.SendPasswordResetEmail(c.Context(), input.Email); err != nil {
		return respondError(c, err)
	}

	return c.SendStatus(fiber.StatusAccepted)
}

func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var input dto.ResetPasswordInput
	if err := c.BodyParser(&input); err != nil || input.Token == "" || len(input.NewPassword) < 8 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}

	if err := h.userService.ResetPassword(c.Context(), input.Token, input.NewPassword); err != nil {
		return respondError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func bearerToken(c *fiber.Ctx) string {
	auth := c.Get(fiber.HeaderAuthorization)
	if !strings.HasPrefix(auth, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(auth, "Bearer ")
}

// respondError maps service errors onto stable status codes and reason
// codes. Internal errors are never echoed to the client.
func respondError(c *fiber.Ctx, err error) error {
	var locked *autherror.AccountLockedError
	if errors.As(err, &locked) {
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error":               locked.Error(),
			"code":                "accountLocked",
			"retry_after_minutes": locked.RetryAfterMinutes(),
		})
	}

	var denied *autherror.AccessDeniedError
	if errors.As(err, &denied) {
		body := fiber.Map{
			"error": "access denied",
			"code":  string(denied.Reason),
		}
		if denied.Reason == autherror.DenyTemporarilyLoggedOut {
			body["remaining_hours"] = denied.RemainingHours
		}
		return c.Status(fiber.StatusForbidden).JSON(body)
	}

	switch {
	case errors.Is(err, autherror.ErrInvalidCredentials):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": err.Error(), "code": "invalidCredentials",
		})
	case errors.Is(err, autherror.ErrRefreshTokenInvalid),
		errors.Is(err, autherror.ErrTokenInvalid):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": err.Error(), "code": "tokenInvalid",
		})
	case errors.Is(err, autherror.ErrEmailAlreadyInUse),
		errors.Is(err, autherror.ErrResetTokenInvalid),
		errors.Is(err, autherror.ErrInvalidRole):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, autherror.ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, autherror.ErrAdminRoleTaken),
		errors.Is(err, autherror.ErrAdminEmailMismatch),
		errors.Is(err, autherror.ErrAdminImmutable):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error",
		})
	}
}
