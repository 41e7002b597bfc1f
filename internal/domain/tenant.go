package domain

import (
	"time"

	"github.com/google/uuid"
)

// Tenant represents an organization provisioned by an administrator.
// AdminID references the profile that owns the tenant; the owner's
// profile carries the matching tenant_id back-reference.
type Tenant struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	Name      string     `json:"name" db:"name"`
	Domain    string     `json:"domain" db:"domain"`
	AdminID   *uuid.UUID `json:"admin_id,omitempty" db:"admin_id"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}
