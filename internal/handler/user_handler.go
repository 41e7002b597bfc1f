package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/samedayramps/template-tiny-church/internal/domain"
	"github.com/samedayramps/template-tiny-church/internal/repository"
	"github.com/samedayramps/template-tiny-church/internal/service"
	"github.com/samedayramps/template-tiny-church/pkg/validator"
)

type UserHandler struct {
	profiles *service.ProfileService
	validate *validator.Validator
}

func NewUserHandler(profiles *service.ProfileService, validate *validator.Validator) *UserHandler {
	return &UserHandler{
		profiles: profiles,
		validate: validate,
	}
}

// GetMe returns the authenticated caller's profile
// GET /dashboard/me
func (h *UserHandler) GetMe(c *fiber.Ctx) error {
	id, ok := callerID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "not authenticated",
		})
	}

	profile, err := h.profiles.Get(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load profile",
		})
	}

	return c.JSON(profile)
}

// List returns profiles for the admin users table
// GET /admin/users
func (h *UserHandler) List(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 25)
	offset := c.QueryInt("offset", 0)
	search := c.Query("search", "")

	profiles, total, err := h.profiles.List(c.Context(), limit, offset, search)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to list users",
		})
	}

	return c.JSON(fiber.Map{
		"users": profiles,
		"total": total,
	})
}

// Create adds a new profile
// POST /admin/users
func (h *UserHandler) Create(c *fiber.Ctx) error {
	adminID, ok := callerID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "not authenticated",
		})
	}

	var req service.CreateProfileRequest
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

	profile, err := h.profiles.Create(c.Context(), adminID, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrGuardNotAdmin), errors.Is(err, service.ErrGuardUserNotFound):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, service.ErrEmailTaken):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to create user",
			})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(profile)
}

type updateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin user guest"`
}

// UpdateRole changes a user's role
// PATCH /admin/users/:id/role
func (h *UserHandler) UpdateRole(c *fiber.Ctx) error {
	adminID, ok := callerID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "not authenticated",
		})
	}

	targetID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid user id",
		})
	}

	var req updateRoleRequest
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

	if err := h.profiles.UpdateRole(c.Context(), adminID, targetID, domain.Role(req.Role)); err != nil {
		switch {
		case errors.Is(err, service.ErrGuardNotAdmin), errors.Is(err, service.ErrGuardUserNotFound):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, service.ErrCannotSelfDemote), errors.Is(err, service.ErrInvalidRole):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, repository.ErrProfileNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to update user role",
			})
		}
	}

	return c.JSON(fiber.Map{"message": "user role updated"})
}

// Delete removes a user
// DELETE /admin/users/:id
func (h *UserHandler) Delete(c *fiber.Ctx) error {
	adminID, ok := callerID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "not authenticated",
		})
	}

	targetID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid user id",
		})
	}

	if err := h.profiles.Delete(c.Context(), adminID, targetID); err != nil {
		switch {
		case errors.Is(err, service.ErrGuardNotAdmin), errors.Is(err, service.ErrGuardUserNotFound):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, service.ErrCannotSelfDelete):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, repository.ErrProfileNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to delete user",
			})
		}
	}

	return c.JSON(fiber.Map{"message": "user deleted"})
}
