package handler

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/samedayramps/template-tiny-church/internal/repository"
)

// DashboardHandler serves the landing payloads behind the role-based
// redirects: a personal summary for signed-in users and aggregate
// counts for the admin console.
type DashboardHandler struct {
	profileRepo       repository.ProfileRepository
	tenantRepo        repository.TenantRepository
	impersonationRepo repository.ImpersonationRepository
}

func NewDashboardHandler(
	profileRepo repository.ProfileRepository,
	tenantRepo repository.TenantRepository,
	impersonationRepo repository.ImpersonationRepository,
) *DashboardHandler {
	return &DashboardHandler{
		profileRepo:       profileRepo,
		tenantRepo:        tenantRepo,
		impersonationRepo: impersonationRepo,
	}
}

// UserDashboard returns the signed-in user's profile and tenant
// GET /dashboard
func (h *DashboardHandler) UserDashboard(c *fiber.Ctx) error {
	id, ok := callerID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "not authenticated",
		})
	}

	profile, err := h.profileRepo.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load dashboard",
		})
	}

	resp := fiber.Map{
		"email": profile.Email,
		"role":  profile.Role,
	}

	if profile.TenantID != nil {
		tenant, err := h.tenantRepo.GetByID(c.Context(), *profile.TenantID)
		if err != nil && !errors.Is(err, repository.ErrTenantNotFound) {
			log.Printf("[DASHBOARD] Failed to load tenant %s: %v", *profile.TenantID, err)
		}
		if tenant != nil {
			resp["tenant"] = fiber.Map{
				"id":     tenant.ID,
				"name":   tenant.Name,
				"domain": tenant.Domain,
			}
		}
	}

	return c.JSON(resp)
}

// AdminDashboard returns aggregate counts for the admin console
// GET /admin/dashboard
func (h *DashboardHandler) AdminDashboard(c *fiber.Ctx) error {
	userCount, err := h.profileRepo.Count(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load dashboard stats",
		})
	}

	tenantCount, err := h.tenantRepo.Count(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load dashboard stats",
		})
	}

	activeImpersonations, err := h.impersonationRepo.CountActive(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load dashboard stats",
		})
	}

	return c.JSON(fiber.Map{
		"users":                 userCount,
		"tenants":               tenantCount,
		"active_impersonations": activeImpersonations,
	})
}
