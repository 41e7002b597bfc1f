package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role is the authorization tier of a profile
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
	RoleGuest Role = "guest"
)

// IsValid reports whether r is one of the known roles
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleUser, RoleGuest:
		return true
	}
	return false
}

// Profile represents an identity in the application.
// Both the actor and the subject of an impersonation session
// reference this table.
type Profile struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"`
	Role         Role       `json:"role" db:"role"`
	TenantID     *uuid.UUID `json:"tenant_id,omitempty" db:"tenant_id"`
	Metadata     *string    `json:"metadata,omitempty" db:"metadata"` // JSONB as string
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// RoleRoutes maps a role to its landing area after sign-in
var RoleRoutes = map[Role]string{
	RoleAdmin: "/admin/dashboard",
	RoleUser:  "/dashboard",
	RoleGuest: "/dashboard",
}

// DefaultRedirect is used when a role has no mapped landing area
const DefaultRedirect = "/dashboard"

// HomePath returns the landing area for the profile's role
func (p *Profile) HomePath() string {
	if path, ok := RoleRoutes[p.Role]; ok {
		return path
	}
	return DefaultRedirect
}
