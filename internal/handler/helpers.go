package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/samedayramps/template-tiny-church/internal/domain"
	"github.com/samedayramps/template-tiny-church/internal/session"
)

// callerID extracts the authenticated profile id set by the auth
// middleware
func callerID(c *fiber.Ctx) (uuid.UUID, bool) {
	id, ok := c.Locals("profile_id").(uuid.UUID)
	return id, ok
}

// setAuthCookie issues the HTTP-only session cookie
func setAuthCookie(c *fiber.Ctx, sessionID string, expiresAt time.Time, secure bool) {
	c.Cookie(&fiber.Cookie{
		Name:     session.AuthCookie,
		Value:    sessionID,
		Path:     "/",
		Expires:  expiresAt,
		HTTPOnly: true,
		Secure:   secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// clearAuthCookie removes the session cookie
func clearAuthCookie(c *fiber.Ctx, secure bool) {
	c.Cookie(&fiber.Cookie{
		Name:     session.AuthCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// setImpersonationCookie issues the client-visible pointer cookie. It is
// deliberately NOT HTTP-only: the presence banner reads it from script.
// The value confers no authority; every read re-validates server-side.
func setImpersonationCookie(c *fiber.Ctx, sessionID string, ttl time.Duration, secure bool) {
	c.Cookie(&fiber.Cookie{
		Name:     domain.ImpersonationCookie,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HTTPOnly: false,
		Secure:   secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// clearImpersonationCookie removes the pointer cookie
func clearImpersonationCookie(c *fiber.Ctx, secure bool) {
	c.Cookie(&fiber.Cookie{
		Name:     domain.ImpersonationCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HTTPOnly: false,
		Secure:   secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
