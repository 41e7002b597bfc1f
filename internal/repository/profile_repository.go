package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/samedayramps/template-tiny-church/internal/domain"
)

// ErrProfileNotFound is returned when no profile matches the lookup
var ErrProfileNotFound = errors.New("profile not found")

type ProfileRepository interface {
	Create(ctx context.Context, profile *domain.Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error)
	GetByEmail(ctx context.Context, email string) (*domain.Profile, error)
	GetRole(ctx context.Context, id uuid.UUID) (domain.Role, error)
	Update(ctx context.Context, profile *domain.Profile) error
	UpdateRole(ctx context.Context, id uuid.UUID, role domain.Role) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	SetTenant(ctx context.Context, id uuid.UUID, tenantID *uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int, search string) ([]*domain.Profile, int, error)
	Count(ctx context.Context) (int, error)
}
