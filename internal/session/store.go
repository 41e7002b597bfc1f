package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AuthCookie is the name of the authentication session cookie. Unlike the
// impersonation pointer it is HTTP-only; client code never reads it.
const AuthCookie = "auth_session"

// Session is an authenticated browser session. It holds identity pointers
// only; role and email are re-read from the profile on every request.
type Session struct {
	ID        string    `json:"id"`
	ProfileID uuid.UUID `json:"profile_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Store persists authentication sessions
type Store interface {
	Create(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}

// NewID generates a 256-bit session identifier
func NewID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session id: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
