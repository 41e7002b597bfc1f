package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/samedayramps/template-tiny-church/internal/domain"
)

// RequireRole verifies that the authenticated caller holds one of the
// given roles. Runs after AuthMiddleware; the role comes from the
// profile loaded there, never from client input.
func RequireRole(roles ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals("role").(domain.Role)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "not authenticated",
			})
		}

		for _, required := range roles {
			if role == required {
				return c.Next()
			}
		}

		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":    "insufficient permissions",
			"redirect": "/unauthorized",
		})
	}
}

// RequireAdmin is a convenience middleware for the admin area
func RequireAdmin() fiber.Handler {
	return RequireRole(domain.RoleAdmin)
}
