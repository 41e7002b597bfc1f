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

type impersonationRepository struct {
	db *sqlx.DB
}

// NewImpersonationRepository creates a new PostgreSQL impersonation session repository
func NewImpersonationRepository(db *sqlx.DB) repository.ImpersonationRepository {
	return &impersonationRepository{db: db}
}

// Create inserts a new impersonation session into the database
func (r *impersonationRepository) Create(ctx context.Context, session *domain.ImpersonationSession) error {
	query := `
		INSERT INTO impersonation_sessions (
			id, admin_id, impersonated_id, created_at, expires_at
		) VALUES (
			:id, :admin_id, :impersonated_id, :created_at, :expires_at
		)`

	_, err := r.db.NamedExecContext(ctx, query, session)
	if err != nil {
		return fmt.Errorf("failed to create impersonation session: %w", err)
	}

	return nil
}

// GetActiveByID retrieves a non-expired session joined with both profiles.
// The admin resolves to its email; the impersonated profile resolves to
// email and role.
func (r *impersonationRepository) GetActiveByID(ctx context.Context, id uuid.UUID) (*domain.ImpersonationRecord, error) {
	query := `
		SELECT s.id, s.admin_id, s.impersonated_id, s.created_at, s.expires_at,
			   a.email AS admin_email,
			   u.email AS user_email,
			   u.role  AS user_role
		FROM impersonation_sessions s
		JOIN profiles a ON a.id = s.admin_id
		JOIN profiles u ON u.id = s.impersonated_id
		WHERE s.id = $1 AND s.expires_at > $2`

	var record domain.ImpersonationRecord
	err := r.db.GetContext(ctx, &record, query, id, time.Now())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get impersonation session: %w", err)
	}

	return &record, nil
}

// ActiveExists checks existence and expiry without the enrichment join
func (r *impersonationRepository) ActiveExists(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM impersonation_sessions
			WHERE id = $1 AND expires_at > $2
		)`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, id, time.Now())
	if err != nil {
		return false, fmt.Errorf("failed to check impersonation session: %w", err)
	}

	return exists, nil
}

// Delete removes a session by id. A missing row is not an error so that
// stop stays idempotent.
func (r *impersonationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM impersonation_sessions WHERE id = $1`

	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete impersonation session: %w", err)
	}

	return nil
}

// DeleteExpired removes all rows whose expiry has passed and reports how
// many were swept
func (r *impersonationRepository) DeleteExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM impersonation_sessions WHERE expires_at <= $1`

	result, err := r.db.ExecContext(ctx, query, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired impersonation sessions: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows, nil
}

// CountActive returns the number of unexpired sessions
func (r *impersonationRepository) CountActive(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM impersonation_sessions WHERE expires_at > $1`

	var total int
	if err := r.db.GetContext(ctx, &total, query, time.Now()); err != nil {
		return 0, fmt.Errorf("failed to count active impersonation sessions: %w", err)
	}

	return total, nil
}
