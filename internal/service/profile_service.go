package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/samedayramps/template-tiny-church/internal/domain"
	"github.com/samedayramps/template-tiny-church/internal/repository"
	"github.com/samedayramps/template-tiny-church/pkg/hash"
)

var (
	ErrInvalidRole      = errors.New("invalid role")
	ErrCannotSelfDemote = errors.New("admins cannot change their own role")
	ErrCannotSelfDelete = errors.New("admins cannot delete their own account")
)

// ProfileService covers admin-side user management: list, create, role
// changes, delete. Every mutation re-checks the admin capability inline.
type ProfileService struct {
	profileRepo repository.ProfileRepository
	guard       *AdminGuard
}

type CreateProfileRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=admin user guest"`
}

func NewProfileService(profileRepo repository.ProfileRepository, guard *AdminGuard) *ProfileService {
	return &ProfileService{
		profileRepo: profileRepo,
		guard:       guard,
	}
}

// List returns profiles with pagination and optional email search
func (s *ProfileService) List(ctx context.Context, limit, offset int, search string) ([]*domain.Profile, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	if offset < 0 {
		offset = 0
	}

	return s.profileRepo.List(ctx, limit, offset, search)
}

// Get retrieves a single profile
func (s *ProfileService) Get(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	return s.profileRepo.GetByID(ctx, id)
}

// Create adds a new profile on behalf of an administrator
func (s *ProfileService) Create(ctx context.Context, callerID uuid.UUID, req CreateProfileRequest) (*domain.Profile, error) {
	if _, err := s.guard.Check(ctx, callerID); err != nil {
		return nil, err
	}

	role := domain.Role(req.Role)
	if !role.IsValid() {
		return nil, ErrInvalidRole
	}

	emailAddr := normalizeEmail(req.Email)
	existing, err := s.profileRepo.GetByEmail(ctx, emailAddr)
	if err != nil && !errors.Is(err, repository.ErrProfileNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	passwordHash, err := hash.Password(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	profile := &domain.Profile{
		ID:           uuid.New(),
		Email:        emailAddr,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.profileRepo.Create(ctx, profile); err != nil {
		return nil, err
	}

	log.Printf("[PROFILE] Created %s (role=%s) by admin %s", profile.Email, profile.Role, callerID)
	return profile, nil
}

// UpdateRole changes a profile's role. Admins cannot change their own
// role, which closes the trivial lock-yourself-out path.
func (s *ProfileService) UpdateRole(ctx context.Context, callerID, targetID uuid.UUID, role domain.Role) error {
	caller, err := s.guard.Check(ctx, callerID)
	if err != nil {
		return err
	}

	if !role.IsValid() {
		return ErrInvalidRole
	}

	if caller.ID == targetID {
		return ErrCannotSelfDemote
	}

	if err := s.profileRepo.UpdateRole(ctx, targetID, role); err != nil {
		return err
	}

	log.Printf("[PROFILE] Role of %s changed to %s by admin %s", targetID, role, caller.ID)
	return nil
}

// Delete removes a profile
func (s *ProfileService) Delete(ctx context.Context, callerID, targetID uuid.UUID) error {
	caller, err := s.guard.Check(ctx, callerID)
	if err != nil {
		return err
	}

	if caller.ID == targetID {
		return ErrCannotSelfDelete
	}

	if err := s.profileRepo.Delete(ctx, targetID); err != nil {
		return err
	}

	log.Printf("[PROFILE] Deleted %s by admin %s", targetID, caller.ID)
	return nil
}
