package middleware

import (
	"context"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/samedayramps/template-tiny-church/internal/domain"
)

// ImpersonationChecker is the read-only slice of the impersonation
// manager the gate needs: existence + expiry, no enrichment.
type ImpersonationChecker interface {
	Active(ctx context.Context, pointer string) (bool, error)
}

// ImpersonationGate blocks navigation into the admin area while an
// impersonation session is active, redirecting to the impersonated
// user's landing area instead. It must be registered before any
// role-based routing: the underlying session still carries admin
// authority, and the generic role router would otherwise bounce the
// admin right back into the admin area.
//
// On store failure the gate fails open to the NON-privileged default
// (treats the request as not impersonating); RequireAdmin remains the
// actual gate for admin access.
func ImpersonationGate(checker ImpersonationChecker, adminPrefix, userHome string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		pointer := c.Cookies(domain.ImpersonationCookie)
		if pointer == "" {
			return c.Next()
		}

		active, err := checker.Active(c.Context(), pointer)
		if err != nil {
			log.Printf("[IMPERSONATION GATE] Check failed: %v", err)
			return c.Next()
		}

		if active && strings.HasPrefix(c.Path(), adminPrefix) {
			return c.Redirect(userHome, fiber.StatusFound)
		}

		return c.Next()
	}
}
