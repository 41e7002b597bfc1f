package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/samedayramps/template-tiny-church/internal/domain"
	"github.com/samedayramps/template-tiny-church/internal/service"
	"github.com/samedayramps/template-tiny-church/pkg/validator"
)

type ImpersonationHandler struct {
	impersonation *service.ImpersonationService
	validate      *validator.Validator
	secureCookies bool
	adminHome     string
	userHome      string
}

func NewImpersonationHandler(
	impersonation *service.ImpersonationService,
	validate *validator.Validator,
	secureCookies bool,
	adminHome, userHome string,
) *ImpersonationHandler {
	return &ImpersonationHandler{
		impersonation: impersonation,
		validate:      validate,
		secureCookies: secureCookies,
		adminHome:     adminHome,
		userHome:      userHome,
	}
}

type startImpersonationRequest struct {
	UserID string `json:"user_id" validate:"required,uuid"`
}

// Start begins impersonating a user
// POST /admin/impersonate
func (h *ImpersonationHandler) Start(c *fiber.Ctx) error {
	adminID, ok := callerID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "not authenticated",
		})
	}

	var req startImpersonationRequest
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

	targetID, err := uuid.Parse(req.UserID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid user id",
		})
	}

	record, err := h.impersonation.Start(c.Context(), adminID, targetID)
	if err != nil {
		// No cookie is set on any failure path
		switch {
		case errors.Is(err, service.ErrGuardUserNotFound),
			errors.Is(err, service.ErrGuardNotAdmin):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": err.Error(),
			})
		case errors.Is(err, service.ErrTargetNotFound),
			errors.Is(err, service.ErrSelfImpersonation):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to impersonate user",
			})
		}
	}

	setImpersonationCookie(c, record.ID.String(), h.impersonation.TTL(), h.secureCookies)

	return c.JSON(fiber.Map{
		"admin_email": record.AdminEmail,
		"user_email":  record.UserEmail,
		"expires_at":  record.ExpiresAt,
		"redirect":    h.userHome,
	})
}

// Status reports the active impersonation for the presence banner. The
// UI polls this endpoint; it is read-only and never clears a stale
// pointer.
// GET /dashboard/impersonation
func (h *ImpersonationHandler) Status(c *fiber.Ctx) error {
	pointer := c.Cookies(domain.ImpersonationCookie)

	record, err := h.impersonation.Resolve(c.Context(), pointer)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to resolve impersonation",
		})
	}

	if record == nil {
		return c.JSON(fiber.Map{"active": false})
	}

	return c.JSON(fiber.Map{
		"active":      true,
		"admin_email": record.AdminEmail,
		"user_email":  record.UserEmail,
		"expires_at":  record.ExpiresAt,
	})
}

// Stop ends the impersonation named by the pointer cookie and clears it.
// Idempotent: a missing pointer or an already-deleted row still succeeds.
// POST /dashboard/impersonation/stop
func (h *ImpersonationHandler) Stop(c *fiber.Ctx) error {
	pointer := c.Cookies(domain.ImpersonationCookie)

	if err := h.impersonation.Stop(c.Context(), pointer); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to stop impersonation",
		})
	}

	clearImpersonationCookie(c, h.secureCookies)

	return c.JSON(fiber.Map{
		"message":  "stopped impersonation",
		"redirect": h.adminHome,
	})
}
