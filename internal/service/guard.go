package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/samedayramps/template-tiny-church/internal/domain"
	"github.com/samedayramps/template-tiny-church/internal/repository"
)

// Distinguishable guard failures. The reason strings are user-facing.
var (
	ErrGuardUserNotFound = errors.New("user not found")
	ErrGuardNotAdmin     = errors.New("only admins can perform this action")
)

// GuardResult carries the verified caller identity
type GuardResult struct {
	ID uuid.UUID
}

// AdminGuard decides whether a caller holds the admin capability. It is a
// pure read with no side effects; mutating operations call Check inline
// before touching state, even when the route is already admin-protected
// upstream.
type AdminGuard struct {
	profileRepo repository.ProfileRepository
}

// NewAdminGuard creates a new admin capability guard
func NewAdminGuard(profileRepo repository.ProfileRepository) *AdminGuard {
	return &AdminGuard{profileRepo: profileRepo}
}

// Check verifies the caller's admin capability. The caller id must come
// from a trusted session lookup, never from client input.
func (g *AdminGuard) Check(ctx context.Context, callerID uuid.UUID) (*GuardResult, error) {
	role, err := g.profileRepo.GetRole(ctx, callerID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil, ErrGuardUserNotFound
		}
		return nil, err
	}

	if role != domain.RoleAdmin {
		return nil, ErrGuardNotAdmin
	}

	return &GuardResult{ID: callerID}, nil
}
