package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/samedayramps/template-tiny-church/internal/domain"
	"github.com/samedayramps/template-tiny-church/internal/repository"
)

type tenantRepository struct {
	db *sqlx.DB
}

// NewTenantRepository creates a new PostgreSQL tenant repository
func NewTenantRepository(db *sqlx.DB) repository.TenantRepository {
	return &tenantRepository{db: db}
}

// Create inserts a new tenant into the database
func (r *tenantRepository) Create(ctx context.Context, tenant *domain.Tenant) error {
	query := `
		INSERT INTO tenants (
			id, name, domain, admin_id, created_at, updated_at
		) VALUES (
			:id, :name, :domain, :admin_id, :created_at, :updated_at
		)`

	_, err := r.db.NamedExecContext(ctx, query, tenant)
	if err != nil {
		return fmt.Errorf("failed to create tenant: %w", err)
	}

	return nil
}

// GetByID retrieves a tenant by its ID
func (r *tenantRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Tenant, error) {
	query := `
		SELECT id, name, domain, admin_id, created_at, updated_at
		FROM tenants
		WHERE id = $1`

	var tenant domain.Tenant
	err := r.db.GetContext(ctx, &tenant, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrTenantNotFound
		}
		return nil, fmt.Errorf("failed to get tenant by id: %w", err)
	}

	return &tenant, nil
}

// GetByNameOrDomain retrieves a tenant matching either the name or the
// domain, used for uniqueness checks before creation
func (r *tenantRepository) GetByNameOrDomain(ctx context.Context, name, domainName string) (*domain.Tenant, error) {
	query := `
		SELECT id, name, domain, admin_id, created_at, updated_at
		FROM tenants
		WHERE name = $1 OR domain = $2
		LIMIT 1`

	var tenant domain.Tenant
	err := r.db.GetContext(ctx, &tenant, query, name, domainName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrTenantNotFound
		}
		return nil, fmt.Errorf("failed to get tenant by name or domain: %w", err)
	}

	return &tenant, nil
}

// Update updates an existing tenant in the database
func (r *tenantRepository) Update(ctx context.Context, tenant *domain.Tenant) error {
	tenant.UpdatedAt = time.Now()

	query := `
		UPDATE tenants
		SET name = :name,
			domain = :domain,
			admin_id = :admin_id,
			updated_at = :updated_at
		WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, tenant)
	if err != nil {
		return fmt.Errorf("failed to update tenant: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return repository.ErrTenantNotFound
	}

	return nil
}

// SetAdmin reassigns the administrator of a tenant
func (r *tenantRepository) SetAdmin(ctx context.Context, id uuid.UUID, adminID uuid.UUID) error {
	query := `UPDATE tenants SET admin_id = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, adminID, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to set tenant admin: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return repository.ErrTenantNotFound
	}

	return nil
}

// Delete removes a tenant from the database
func (r *tenantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM tenants WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete tenant: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return repository.ErrTenantNotFound
	}

	return nil
}

// List retrieves tenants with pagination
func (r *tenantRepository) List(ctx context.Context, limit, offset int) ([]*domain.Tenant, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM tenants`); err != nil {
		return nil, 0, fmt.Errorf("failed to count tenants: %w", err)
	}

	query := `
		SELECT id, name, domain, admin_id, created_at, updated_at
		FROM tenants
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	var tenants []*domain.Tenant
	if err := r.db.SelectContext(ctx, &tenants, query, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("failed to list tenants: %w", err)
	}

	return tenants, total, nil
}

// Count returns the total number of tenants
func (r *tenantRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM tenants`); err != nil {
		return 0, fmt.Errorf("failed to count tenants: %w", err)
	}
	return total, nil
}
