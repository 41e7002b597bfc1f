package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/samedayramps/template-tiny-church/internal/service"
	"github.com/samedayramps/template-tiny-church/internal/session"
	"github.com/samedayramps/template-tiny-church/pkg/validator"
)

type AuthHandler struct {
	auth          *service.AuthService
	validate      *validator.Validator
	secureCookies bool
}

func NewAuthHandler(auth *service.AuthService, validate *validator.Validator, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		auth:          auth,
		validate:      validate,
		secureCookies: secureCookies,
	}
}

// SignUp registers a new account
// POST /auth/sign-up
func (h *AuthHandler) SignUp(c *fiber.Ctx) error {
	var req service.SignUpRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if err := h.validate.Validate(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	profile, err := h.auth.SignUp(c.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to sign up",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "account created, you can sign in now",
		"email":   profile.Email,
	})
}

// SignIn authenticates and issues a session cookie
// POST /auth/sign-in
func (h *AuthHandler) SignIn(c *fiber.Ctx) error {
	var req service.SignInRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if err := h.validate.Validate(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	result, err := h.auth.SignIn(c.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": err.Error(),
			})
		case errors.Is(err, service.ErrTooManyAttempts):
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": err.Error(),
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to sign in",
			})
		}
	}

	setAuthCookie(c, result.SessionID, result.ExpiresAt, h.secureCookies)

	return c.JSON(fiber.Map{
		"email":    result.Profile.Email,
		"role":     result.Profile.Role,
		"redirect": result.Redirect,
	})
}

// SignOut deletes the session and clears the cookie
// POST /auth/sign-out
func (h *AuthHandler) SignOut(c *fiber.Ctx) error {
	sessionID := c.Cookies(session.AuthCookie)

	if err := h.auth.SignOut(c.Context(), sessionID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to sign out",
		})
	}

	clearAuthCookie(c, h.secureCookies)

	return c.JSON(fiber.Map{
		"message":  "signed out",
		"redirect": "/sign-in",
	})
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ForgotPassword mails a reset link. Always answers success so account
// existence cannot be probed.
// POST /auth/forgot-password
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req forgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if err := h.validate.Validate(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if err := h.auth.ForgotPassword(c.Context(), req.Email); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to process request",
		})
	}

	return c.JSON(fiber.Map{
		"message": "if the email exists, a reset link has been sent",
	})
}

type resetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

// ResetPassword completes the reset flow
// POST /auth/reset-password
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req resetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if err := h.validate.Validate(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if err := h.auth.ResetPassword(c.Context(), req.Token, req.Password); err != nil {
		if errors.Is(err, service.ErrInvalidResetToken) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to reset password",
		})
	}

	return c.JSON(fiber.Map{
		"message":  "password updated",
		"redirect": "/sign-in",
	})
}
