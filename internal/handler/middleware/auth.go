package middleware

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/samedayramps/template-tiny-church/internal/domain"
	"github.com/samedayramps/template-tiny-church/internal/session"
)

// Authenticator resolves a session cookie value to its profile
type Authenticator interface {
	Authenticate(ctx context.Context, sessionID string) (*domain.Profile, error)
}

// AuthMiddleware resolves the session cookie and stores the caller's
// identity in fiber.Locals for downstream handlers. Requests without a
// valid session are rejected.
func AuthMiddleware(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID := c.Cookies(session.AuthCookie)
		if sessionID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":    "not authenticated",
				"redirect": "/sign-in",
			})
		}

		profile, err := auth.Authenticate(c.Context(), sessionID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to verify session",
			})
		}

		if profile == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":    "session expired",
				"redirect": "/sign-in",
			})
		}

		c.Locals("profile_id", profile.ID)
		c.Locals("email", profile.Email)
		c.Locals("role", profile.Role)

		return c.Next()
	}
}
