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

type profileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository creates a new PostgreSQL profile repository
func NewProfileRepository(db *sqlx.DB) repository.ProfileRepository {
	return &profileRepository{db: db}
}

// Create inserts a new profile into the database
func (r *profileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	query := `
		INSERT INTO profiles (
			id, email, password_hash, role, tenant_id, metadata,
			created_at, updated_at
		) VALUES (
			:id, :email, :password_hash, :role, :tenant_id, :metadata,
			:created_at, :updated_at
		)`

	_, err := r.db.NamedExecContext(ctx, query, profile)
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}

	return nil
}

// GetByID retrieves a profile by its ID
func (r *profileRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	query := `
		SELECT id, email, password_hash, role, tenant_id, metadata,
			   created_at, updated_at
		FROM profiles
		WHERE id = $1`

	var profile domain.Profile
	err := r.db.GetContext(ctx, &profile, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile by id: %w", err)
	}

	return &profile, nil
}

// GetByEmail retrieves a profile by email
func (r *profileRepository) GetByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	query := `
		SELECT id, email, password_hash, role, tenant_id, metadata,
			   created_at, updated_at
		FROM profiles
		WHERE email = $1`

	var profile domain.Profile
	err := r.db.GetContext(ctx, &profile, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile by email: %w", err)
	}

	return &profile, nil
}

// GetRole retrieves only the role column for a profile
func (r *profileRepository) GetRole(ctx context.Context, id uuid.UUID) (domain.Role, error) {
	query := `SELECT role FROM profiles WHERE id = $1`

	var role domain.Role
	err := r.db.GetContext(ctx, &role, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", repository.ErrProfileNotFound
		}
		return "", fmt.Errorf("failed to get profile role: %w", err)
	}

	return role, nil
}

// Update updates an existing profile in the database
func (r *profileRepository) Update(ctx context.Context, profile *domain.Profile) error {
	profile.UpdatedAt = time.Now()

	query := `
		UPDATE profiles
		SET email = :email,
			role = :role,
			tenant_id = :tenant_id,
			metadata = :metadata,
			updated_at = :updated_at
		WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, profile)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return repository.ErrProfileNotFound
	}

	return nil
}

// UpdateRole changes only the role of a profile
func (r *profileRepository) UpdateRole(ctx context.Context, id uuid.UUID, role domain.Role) error {
	query := `UPDATE profiles SET role = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, role, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update profile role: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return repository.ErrProfileNotFound
	}

	return nil
}

// UpdatePassword changes only the password hash of a profile
func (r *profileRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	query := `UPDATE profiles SET password_hash = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, passwordHash, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update profile password: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return repository.ErrProfileNotFound
	}

	return nil
}

// SetTenant assigns (or clears, with nil) the tenant of a profile
func (r *profileRepository) SetTenant(ctx context.Context, id uuid.UUID, tenantID *uuid.UUID) error {
	query := `UPDATE profiles SET tenant_id = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, tenantID, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to set profile tenant: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return repository.ErrProfileNotFound
	}

	return nil
}

// Delete removes a profile from the database
func (r *profileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM profiles WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return repository.ErrProfileNotFound
	}

	return nil
}

// List retrieves profiles with pagination and optional email search
func (r *profileRepository) List(ctx context.Context, limit, offset int, search string) ([]*domain.Profile, int, error) {
	countQuery := `SELECT COUNT(*) FROM profiles WHERE ($1 = '' OR email ILIKE '%' || $1 || '%')`

	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, search); err != nil {
		return nil, 0, fmt.Errorf("failed to count profiles: %w", err)
	}

	query := `
		SELECT id, email, password_hash, role, tenant_id, metadata,
			   created_at, updated_at
		FROM profiles
		WHERE ($1 = '' OR email ILIKE '%' || $1 || '%')
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	var profiles []*domain.Profile
	if err := r.db.SelectContext(ctx, &profiles, query, search, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("failed to list profiles: %w", err)
	}

	return profiles, total, nil
}

// Count returns the total number of profiles
func (r *profileRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM profiles`); err != nil {
		return 0, fmt.Errorf("failed to count profiles: %w", err)
	}
	return total, nil
}
