package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/samedayramps/template-tiny-church/internal/domain"
)

// ErrSessionNotFound is returned when a session row does not exist or has
// already expired. Callers treat it as "nothing active", not as a failure.
var ErrSessionNotFound = errors.New("impersonation session not found or expired")

type ImpersonationRepository interface {
	Create(ctx context.Context, session *domain.ImpersonationSession) error
	// GetActiveByID loads the session joined with both identities' display
	// emails and the target's role, filtered by expires_at > now.
	GetActiveByID(ctx context.Context, id uuid.UUID) (*domain.ImpersonationRecord, error)
	// ActiveExists is the lightweight existence+expiry check used on the
	// request path; it skips the enrichment join.
	ActiveExists(ctx context.Context, id uuid.UUID) (bool, error)
	// Delete removes a session by id. Deleting a row that is already gone
	// is a success.
	Delete(ctx context.Context, id uuid.UUID) error
	// DeleteExpired sweeps rows whose expiry has passed.
	DeleteExpired(ctx context.Context) (int64, error)
	// CountActive reports how many sessions are currently unexpired.
	CountActive(ctx context.Context) (int, error)
}
