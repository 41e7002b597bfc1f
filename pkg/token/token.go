package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrWrongPurpose = errors.New("token purpose mismatch")
)

// PurposePasswordReset marks tokens minted for the password-reset flow
const PurposePasswordReset = "password_reset"

// Claims carried by a signed single-purpose token
type Claims struct {
	ProfileID uuid.UUID `json:"profile_id"`
	Purpose   string    `json:"purpose"`
	jwt.RegisteredClaims
}

// Service mints and verifies HMAC-signed, single-purpose tokens. These are
// bearer links sent by email, not API credentials.
type Service struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewService creates a token service
func NewService(secret []byte, issuer string, ttl time.Duration) (*Service, error) {
	if len(secret) < 32 {
		return nil, errors.New("token secret must be at least 32 bytes")
	}

	return &Service{
		secret: secret,
		issuer: issuer,
		ttl:    ttl,
	}, nil
}

// GeneratePasswordReset mints a password-reset token for a profile
func (s *Service) GeneratePasswordReset(profileID uuid.UUID) (string, error) {
	now := time.Now()
	claims := Claims{
		ProfileID: profileID,
		Purpose:   PurposePasswordReset,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   profileID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// VerifyPasswordReset validates a reset token and returns the profile it
// was minted for
func (s *Service) VerifyPasswordReset(raw string) (uuid.UUID, error) {
	claims := &Claims{}

	parsed, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer))
	if err != nil || !parsed.Valid {
		return uuid.Nil, ErrInvalidToken
	}

	if claims.Purpose != PurposePasswordReset {
		return uuid.Nil, ErrWrongPurpose
	}

	return claims.ProfileID, nil
}
