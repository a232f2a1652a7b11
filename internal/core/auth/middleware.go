package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Authenticate attaches a State to every request. No header means Anonymous;
// a bad token or a missing user record is rejected.
func Authenticate(authService *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			SetState(c, AnonymousState())
			return c.Next()
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid authorization header format. Use: Bearer <token>",
			})
		}

		state, err := authService.CurrentState(c.UserContext(), parts[1])
		if err != nil {
			if errors.Is(err, ErrUserDataNotFound) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "User data not found"})
			}
			if IsAuthError(err) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid or expired token"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to resolve session"})
		}

		SetState(c, state)
		return c.Next()
	}
}

// RequireAuth rejects Anonymous requests
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !StateOf(c).IsAuthenticated() {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}
		return c.Next()
	}
}

// RequireRole lets through Authenticated requests whose persisted role is one of roles
func RequireRole(roles ...Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		state := StateOf(c)
		if !state.IsAuthenticated() {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}

		for _, role := range roles {
			if state.Role == role {
				return c.Next()
			}
		}

		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Insufficient permissions",
		})
	}
}
