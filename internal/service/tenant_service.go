package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samedayramps/template-tiny-church/internal/domain"
	"github.com/samedayramps/template-tiny-church/internal/repository"
)

var (
	ErrTenantExists        = errors.New("a tenant with this name or domain already exists")
	ErrAdminCandidateRole  = errors.New("selected profile must have the user role")
	ErrAdminCandidateTaken = errors.New("selected user is already assigned to a tenant")
)

// TenantService provisions tenants. Creation pairs a tenant row with its
// owning profile's tenant assignment; if the second write fails the
// tenant row is removed again.
type TenantService struct {
	tenantRepo  repository.TenantRepository
	profileRepo repository.ProfileRepository
	guard       *AdminGuard
}

type CreateTenantRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=255"`
	Domain  string `json:"domain" validate:"required,hostname_rfc1123"`
	AdminID string `json:"admin_id" validate:"required,uuid"`
}

func NewTenantService(
	tenantRepo repository.TenantRepository,
	profileRepo repository.ProfileRepository,
	guard *AdminGuard,
) *TenantService {
	return &TenantService{
		tenantRepo:  tenantRepo,
		profileRepo: profileRepo,
		guard:       guard,
	}
}

// Create provisions a new tenant and assigns the candidate admin to it.
// The candidate must exist, carry the plain user role, and not already
// belong to a tenant.
func (s *TenantService) Create(ctx context.Context, callerID uuid.UUID, req CreateTenantRequest) (*domain.Tenant, error) {
	if _, err := s.guard.Check(ctx, callerID); err != nil {
		return nil, err
	}

	adminID, err := uuid.Parse(req.AdminID)
	if err != nil {
		return nil, fmt.Errorf("invalid admin id: %w", err)
	}

	domainName := strings.ToLower(strings.TrimSpace(req.Domain))

	existing, err := s.tenantRepo.GetByNameOrDomain(ctx, req.Name, domainName)
	if err != nil && !errors.Is(err, repository.ErrTenantNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrTenantExists
	}

	candidate, err := s.profileRepo.GetByID(ctx, adminID)
	if err != nil {
		return nil, err
	}

	if candidate.Role != domain.RoleUser {
		return nil, ErrAdminCandidateRole
	}

	if candidate.TenantID != nil {
		return nil, ErrAdminCandidateTaken
	}

	now := time.Now()
	tenant := &domain.Tenant{
		ID:        uuid.New(),
		Name:      req.Name,
		Domain:    domainName,
		AdminID:   &adminID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.tenantRepo.Create(ctx, tenant); err != nil {
		return nil, err
	}

	if err := s.profileRepo.SetTenant(ctx, adminID, &tenant.ID); err != nil {
		// Compensating cleanup: without the profile assignment the
		// tenant would be orphaned.
		if delErr := s.tenantRepo.Delete(ctx, tenant.ID); delErr != nil {
			log.Printf("[TENANT] Failed to roll back tenant %s: %v", tenant.ID, delErr)
		}
		return nil, fmt.Errorf("failed to assign tenant admin: %w", err)
	}

	log.Printf("[TENANT] Created %s (%s) with admin %s", tenant.Name, tenant.Domain, adminID)
	return tenant, nil
}

// Get retrieves a tenant by ID
func (s *TenantService) Get(ctx context.Context, id uuid.UUID) (*domain.Tenant, error) {
	return s.tenantRepo.GetByID(ctx, id)
}

// List returns tenants with pagination
func (s *TenantService) List(ctx context.Context, limit, offset int) ([]*domain.Tenant, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	if offset < 0 {
		offset = 0
	}

	return s.tenantRepo.List(ctx, limit, offset)
}

// Update renames a tenant or changes its domain
func (s *TenantService) Update(ctx context.Context, callerID, id uuid.UUID, name, domainName string) (*domain.Tenant, error) {
	if _, err := s.guard.Check(ctx, callerID); err != nil {
		return nil, err
	}

	tenant, err := s.tenantRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if name != "" {
		tenant.Name = name
	}
	if domainName != "" {
		tenant.Domain = strings.ToLower(strings.TrimSpace(domainName))
	}

	conflict, err := s.tenantRepo.GetByNameOrDomain(ctx, tenant.Name, tenant.Domain)
	if err != nil && !errors.Is(err, repository.ErrTenantNotFound) {
		return nil, err
	}
	if conflict != nil && conflict.ID != tenant.ID {
		return nil, ErrTenantExists
	}

	if err := s.tenantRepo.Update(ctx, tenant); err != nil {
		return nil, err
	}

	return tenant, nil
}

// ReassignAdmin moves tenant ownership to another profile and updates
// both sides of the relationship. The candidate faces the same checks as
// on creation, and the previous owner's tenant assignment is cleared so
// no profile stays referenced by a tenant it no longer owns.
func (s *TenantService) ReassignAdmin(ctx context.Context, callerID, tenantID, newAdminID uuid.UUID) error {
	if _, err := s.guard.Check(ctx, callerID); err != nil {
		return err
	}

	tenant, err := s.tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		return err
	}

	candidate, err := s.profileRepo.GetByID(ctx, newAdminID)
	if err != nil {
		return err
	}

	if candidate.Role != domain.RoleUser {
		return ErrAdminCandidateRole
	}

	if candidate.TenantID != nil && *candidate.TenantID != tenantID {
		return ErrAdminCandidateTaken
	}

	if err := s.tenantRepo.SetAdmin(ctx, tenantID, newAdminID); err != nil {
		return err
	}

	if tenant.AdminID != nil && *tenant.AdminID != newAdminID {
		if err := s.profileRepo.SetTenant(ctx, *tenant.AdminID, nil); err != nil {
			log.Printf("[TENANT] Failed to clear previous admin %s: %v", *tenant.AdminID, err)
		}
	}

	if err := s.profileRepo.SetTenant(ctx, newAdminID, &tenantID); err != nil {
		return fmt.Errorf("failed to update new admin profile: %w", err)
	}

	log.Printf("[TENANT] Admin of %s reassigned to %s", tenantID, newAdminID)
	return nil
}

// Delete removes a tenant
func (s *TenantService) Delete(ctx context.Context, callerID, id uuid.UUID) error {
	if _, err := s.guard.Check(ctx, callerID); err != nil {
		return err
	}

	if err := s.tenantRepo.Delete(ctx, id); err != nil {
		return err
	}

	log.Printf("[TENANT] Deleted %s by admin %s", id, callerID)
	return nil
}
