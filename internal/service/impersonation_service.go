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
)

var (
	ErrSessionCreationFailed = errors.New("failed to create impersonation session")
	ErrTargetNotFound        = errors.New("target user not found")
	ErrSelfImpersonation     = errors.New("cannot impersonate yourself")
)

// ImpersonationService owns the impersonation session lifecycle:
// start (create row), resolve (read active row + both identities),
// stop (delete row). The client-visible pointer is always an explicit
// parameter; the service never reaches into request state. Expiry is
// passive: rows become unresolvable once expires_at passes, without a
// timer or callback.
type ImpersonationService struct {
	sessionRepo repository.ImpersonationRepository
	profileRepo repository.ProfileRepository
	guard       *AdminGuard
	ttl         time.Duration
}

// NewImpersonationService creates the impersonation lifecycle manager
func NewImpersonationService(
	sessionRepo repository.ImpersonationRepository,
	profileRepo repository.ProfileRepository,
	guard *AdminGuard,
	ttl time.Duration,
) *ImpersonationService {
	if ttl <= 0 {
		ttl = time.Hour
	}

	return &ImpersonationService{
		sessionRepo: sessionRepo,
		profileRepo: profileRepo,
		guard:       guard,
		ttl:         ttl,
	}
}

// TTL returns the fixed session lifetime, used by handlers to set the
// pointer cookie's max age
func (s *ImpersonationService) TTL() time.Duration {
	return s.ttl
}

// Start creates a new impersonation session for adminID targeting
// targetID and returns it enriched with both identities' emails and the
// target's role. The admin capability is checked inline before any
// mutation. The insert and the enrichment read are all-or-nothing: if the
// enrichment fails, the fresh row is deleted and the whole operation
// fails.
func (s *ImpersonationService) Start(ctx context.Context, adminID, targetID uuid.UUID) (*domain.ImpersonationRecord, error) {
	caller, err := s.guard.Check(ctx, adminID)
	if err != nil {
		return nil, err
	}

	if targetID == caller.ID {
		return nil, ErrSelfImpersonation
	}

	if _, err := s.profileRepo.GetByID(ctx, targetID); err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil, ErrTargetNotFound
		}
		return nil, err
	}

	now := time.Now()
	sess := &domain.ImpersonationSession{
		ID:             uuid.New(),
		AdminID:        caller.ID,
		ImpersonatedID: targetID,
		CreatedAt:      now,
		ExpiresAt:      now.Add(s.ttl),
	}

	if err := s.sessionRepo.Create(ctx, sess); err != nil {
		log.Printf("[IMPERSONATION] Failed to create session for admin %s: %v", caller.ID, err)
		return nil, ErrSessionCreationFailed
	}

	record, err := s.sessionRepo.GetActiveByID(ctx, sess.ID)
	if err != nil {
		// Roll back the dangling row so a half-created session never
		// lingers behind a cookie that was never set.
		if delErr := s.sessionRepo.Delete(ctx, sess.ID); delErr != nil {
			log.Printf("[IMPERSONATION] Failed to roll back session %s: %v", sess.ID, delErr)
		}
		return nil, ErrSessionCreationFailed
	}

	log.Printf("[IMPERSONATION] Started: admin=%s target=%s session=%s expires=%s",
		record.AdminEmail, record.UserEmail, sess.ID, sess.ExpiresAt.Format(time.RFC3339))

	return record, nil
}

// Resolve looks up the session named by the pointer. It returns
// (nil, nil) when the pointer is absent, malformed, unknown, or expired:
// a forged cookie never surfaces as an error, and stale pointers are not
// cleaned up here. A non-nil error means the store itself failed.
func (s *ImpersonationService) Resolve(ctx context.Context, pointer string) (*domain.ImpersonationRecord, error) {
	id, ok := parsePointer(pointer)
	if !ok {
		return nil, nil
	}

	record, err := s.sessionRepo.GetActiveByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to resolve impersonation: %w", err)
	}

	return record, nil
}

// Active reports whether the pointer names an unexpired session. It skips
// the enrichment join, keeping the per-request gate cheap.
func (s *ImpersonationService) Active(ctx context.Context, pointer string) (bool, error) {
	id, ok := parsePointer(pointer)
	if !ok {
		return false, nil
	}

	return s.sessionRepo.ActiveExists(ctx, id)
}

// Stop deletes the session named by the pointer. Calling it with no
// pointer, or with a pointer whose row is already gone, is a success.
// There is no role re-check: ending impersonation is always safe.
func (s *ImpersonationService) Stop(ctx context.Context, pointer string) error {
	id, ok := parsePointer(pointer)
	if !ok {
		return nil
	}

	if err := s.sessionRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to stop impersonation: %w", err)
	}

	log.Printf("[IMPERSONATION] Stopped: session=%s", id)
	return nil
}

// SweepExpired removes rows whose expiry has passed. Expired rows are
// already unresolvable; this only bounds table growth.
func (s *ImpersonationService) SweepExpired(ctx context.Context) {
	swept, err := s.sessionRepo.DeleteExpired(ctx)
	if err != nil {
		log.Printf("[IMPERSONATION] Sweep failed: %v", err)
		return
	}

	if swept > 0 {
		log.Printf("[IMPERSONATION] Swept %d expired sessions", swept)
	}
}

// parsePointer validates the cookie value as a UUID. Garbage values are
// indistinguishable from "no pointer".
func parsePointer(pointer string) (uuid.UUID, bool) {
	if pointer == "" {
		return uuid.Nil, false
	}

	id, err := uuid.Parse(pointer)
	if err != nil {
		return uuid.Nil, false
	}

	return id, true
}
