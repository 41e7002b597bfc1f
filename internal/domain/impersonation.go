package domain

import (
	"time"

	"github.com/google/uuid"
)

// ImpersonationSession is a time-boxed record pairing an administrator
// with a target user. Rows are immutable once created; changing targets
// is stop-then-start. Expiry is enforced at read time, not by a timer.
type ImpersonationSession struct {
	ID             uuid.UUID `json:"id" db:"id"`
	AdminID        uuid.UUID `json:"admin_id" db:"admin_id"`
	ImpersonatedID uuid.UUID `json:"impersonated_id" db:"impersonated_id"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	ExpiresAt      time.Time `json:"expires_at" db:"expires_at"`
}

// ImpersonationRecord is a session enriched with both identities'
// display emails and the target's role.
type ImpersonationRecord struct {
	ImpersonationSession
	AdminEmail string `json:"admin_email" db:"admin_email"`
	UserEmail  string `json:"user_email" db:"user_email"`
	UserRole   Role   `json:"user_role" db:"user_role"`
}

// ImpersonationCookie is the name of the client-visible pointer cookie.
// The cookie value is the session row id and confers no authority on its
// own; every read re-validates against the store.
const ImpersonationCookie = "impersonation_id"
