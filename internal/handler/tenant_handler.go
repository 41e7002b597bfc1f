package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/samedayramps/template-tiny-church/internal/repository"
	"github.com/samedayramps/template-tiny-church/internal/service"
	"github.com/samedayramps/template-tiny-church/pkg/validator"
)

type TenantHandler struct {
	tenants  *service.TenantService
	validate *validator.Validator
}

func NewTenantHandler(tenants *service.TenantService, validate *validator.Validator) *TenantHandler {
	return &TenantHandler{
		tenants:  tenants,
		validate: validate,
	}
}

// List returns tenants with pagination
// GET /admin/tenants
func (h *TenantHandler) List(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 25)
	offset := c.QueryInt("offset", 0)

	tenants, total, err := h.tenants.List(c.Context(), limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to list tenants",
		})
	}

	return c.JSON(fiber.Map{
		"tenants": tenants,
		"total":   total,
	})
}

// Get returns a single tenant
// GET /admin/tenants/:id
func (h *TenantHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid tenant id",
		})
	}

	tenant, err := h.tenants.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrTenantNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load tenant",
		})
	}

	return c.JSON(tenant)
}

// Create provisions a new tenant with its admin
// POST /admin/tenants
func (h *TenantHandler) Create(c *fiber.Ctx) error {
	adminID, ok := callerID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "not authenticated",
		})
	}

	var req service.CreateTenantRequest
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

	tenant, err := h.tenants.Create(c.Context(), adminID, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrGuardNotAdmin), errors.Is(err, service.ErrGuardUserNotFound):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, service.ErrTenantExists),
			errors.Is(err, service.ErrAdminCandidateRole),
			errors.Is(err, service.ErrAdminCandidateTaken):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, repository.ErrProfileNotFound):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "selected admin does not exist"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to create tenant",
			})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(tenant)
}

type updateTenantRequest struct {
	Name   string `json:"name" validate:"omitempty,min=1,max=255"`
	Domain string `json:"domain" validate:"omitempty,hostname_rfc1123"`
}

// Update renames a tenant or changes its domain
// PATCH /admin/tenants/:id
func (h *TenantHandler) Update(c *fiber.Ctx) error {
	adminID, ok := callerID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "not authenticated",
		})
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid tenant id",
		})
	}

	var req updateTenantRequest
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

	tenant, err := h.tenants.Update(c.Context(), adminID, id, req.Name, req.Domain)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrGuardNotAdmin), errors.Is(err, service.ErrGuardUserNotFound):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, service.ErrTenantExists):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, repository.ErrTenantNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to update tenant",
			})
		}
	}

	return c.JSON(tenant)
}

type reassignAdminRequest struct {
	AdminID string `json:"admin_id" validate:"required,uuid"`
}

// ReassignAdmin moves tenant ownership to another profile
// PATCH /admin/tenants/:id/admin
func (h *TenantHandler) ReassignAdmin(c *fiber.Ctx) error {
	adminID, ok := callerID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "not authenticated",
		})
	}

	tenantID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid tenant id",
		})
	}

	var req reassignAdminRequest
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

	newAdminID, err := uuid.Parse(req.AdminID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid admin id",
		})
	}

	if err := h.tenants.ReassignAdmin(c.Context(), adminID, tenantID, newAdminID); err != nil {
		switch {
		case errors.Is(err, service.ErrGuardNotAdmin), errors.Is(err, service.ErrGuardUserNotFound):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, repository.ErrTenantNotFound), errors.Is(err, repository.ErrProfileNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, service.ErrAdminCandidateRole), errors.Is(err, service.ErrAdminCandidateTaken):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to reassign tenant admin",
			})
		}
	}

	return c.JSON(fiber.Map{"message": "tenant admin reassigned"})
}

// Delete removes a tenant
// DELETE /admin/tenants/:id
func (h *TenantHandler) Delete(c *fiber.Ctx) error {
	adminID, ok := callerID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "not authenticated",
		})
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid tenant id",
		})
	}

	if err := h.tenants.Delete(c.Context(), adminID, id); err != nil {
		switch {
		case errors.Is(err, service.ErrGuardNotAdmin), errors.Is(err, service.ErrGuardUserNotFound):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, repository.ErrTenantNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to delete tenant",
			})
		}
	}

	return c.JSON(fiber.Map{"message": "tenant deleted"})
}
