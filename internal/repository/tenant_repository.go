package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/samedayramps/template-tiny-church/internal/domain"
)

// ErrTenantNotFound is returned when no tenant matches the lookup
var ErrTenantNotFound = errors.New("tenant not found")

type TenantRepository interface {
	Create(ctx context.Context, tenant *domain.Tenant) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Tenant, error)
	GetByNameOrDomain(ctx context.Context, name, domainName string) (*domain.Tenant, error)
	Update(ctx context.Context, tenant *domain.Tenant) error
	SetAdmin(ctx context.Context, id uuid.UUID, adminID uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*domain.Tenant, int, error)
	Count(ctx context.Context) (int, error)
}
