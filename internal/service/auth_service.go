package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samedayramps/template-tiny-church/internal/domain"
	"github.com/samedayramps/template-tiny-church/internal/repository"
	"github.com/samedayramps/template-tiny-church/internal/session"
	"github.com/samedayramps/template-tiny-church/pkg/email"
	"github.com/samedayramps/template-tiny-church/pkg/hash"
	"github.com/samedayramps/template-tiny-church/pkg/ratelimit"
	"github.com/samedayramps/template-tiny-church/pkg/token"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("an account with this email already exists")
	ErrTooManyAttempts    = errors.New("too many failed sign-in attempts, try again later")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
)

type AuthService struct {
	profileRepo  repository.ProfileRepository
	sessions     session.Store
	limiter      *ratelimit.SignInLimiter
	resetTokens  *token.Service
	emailService email.EmailService
	sessionTTL   time.Duration
}

type SignUpRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type SignInResult struct {
	SessionID string
	ExpiresAt time.Time
	Profile   *domain.Profile
	Redirect  string
}

func NewAuthService(
	profileRepo repository.ProfileRepository,
	sessions session.Store,
	limiter *ratelimit.SignInLimiter,
	resetTokens *token.Service,
	emailService email.EmailService,
	sessionTTL time.Duration,
) *AuthService {
	return &AuthService{
		profileRepo:  profileRepo,
		sessions:     sessions,
		limiter:      limiter,
		resetTokens:  resetTokens,
		emailService: emailService,
		sessionTTL:   sessionTTL,
	}
}

// SignUp registers a new profile with the default role
func (s *AuthService) SignUp(ctx context.Context, req SignUpRequest) (*domain.Profile, error) {
	emailAddr := normalizeEmail(req.Email)

	existing, err := s.profileRepo.GetByEmail(ctx, emailAddr)
	if err != nil && !errors.Is(err, repository.ErrProfileNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	passwordHash, err := hash.Password(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	profile := &domain.Profile{
		ID:           uuid.New(),
		Email:        emailAddr,
		PasswordHash: passwordHash,
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.profileRepo.Create(ctx, profile); err != nil {
		return nil, err
	}

	log.Printf("[AUTH] Signed up: %s", profile.Email)
	return profile, nil
}

// SignIn verifies credentials and mints a new session. Failures are
// rate-limited per email.
func (s *AuthService) SignIn(ctx context.Context, req SignInRequest) (*SignInResult, error) {
	emailAddr := normalizeEmail(req.Email)

	locked, err := s.limiter.IsLocked(ctx, emailAddr)
	if err != nil {
		return nil, err
	}
	if locked {
		return nil, ErrTooManyAttempts
	}

	profile, err := s.profileRepo.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			// Count the miss so unknown emails cannot be probed for free
			_ = s.limiter.RecordFailure(ctx, emailAddr)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := hash.Verify(req.Password, profile.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		if recErr := s.limiter.RecordFailure(ctx, emailAddr); recErr != nil {
			log.Printf("[AUTH] Failed to record sign-in failure for %s: %v", emailAddr, recErr)
		}
		return nil, ErrInvalidCredentials
	}

	if err := s.limiter.Reset(ctx, emailAddr); err != nil {
		log.Printf("[AUTH] Failed to reset limiter for %s: %v", emailAddr, err)
	}

	id, err := session.NewID()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	sess := &session.Session{
		ID:        id,
		ProfileID: profile.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}

	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, err
	}

	log.Printf("[AUTH] Signed in: %s (role=%s)", profile.Email, profile.Role)

	return &SignInResult{
		SessionID: sess.ID,
		ExpiresAt: sess.ExpiresAt,
		Profile:   profile,
		Redirect:  profile.HomePath(),
	}, nil
}

// SignOut deletes the session; a missing session is a success
func (s *AuthService) SignOut(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.sessions.Delete(ctx, sessionID)
}

// Authenticate resolves a session cookie value to its profile. Returns
// (nil, nil) when the session is missing or expired.
func (s *AuthService) Authenticate(ctx context.Context, sessionID string) (*domain.Profile, error) {
	if sessionID == "" {
		return nil, nil
	}

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, nil
	}

	profile, err := s.profileRepo.GetByID(ctx, sess.ProfileID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			// Profile deleted out from under the session
			_ = s.sessions.Delete(ctx, sessionID)
			return nil, nil
		}
		return nil, err
	}

	return profile, nil
}

// ForgotPassword mails a reset link when the email is known. The caller
// always gets success so account existence cannot be probed.
func (s *AuthService) ForgotPassword(ctx context.Context, emailAddr string) error {
	emailAddr = normalizeEmail(emailAddr)

	profile, err := s.profileRepo.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			log.Printf("[AUTH] Password reset requested for unknown email")
			return nil
		}
		return err
	}

	resetToken, err := s.resetTokens.GeneratePasswordReset(profile.ID)
	if err != nil {
		return err
	}

	if s.emailService == nil {
		log.Printf("[AUTH] Email disabled, skipping reset mail for %s", profile.Email)
		return nil
	}

	return s.emailService.SendPasswordResetEmail(ctx, profile.Email, resetToken)
}

// ResetPassword verifies the reset token and replaces the password hash
func (s *AuthService) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	profileID, err := s.resetTokens.VerifyPasswordReset(rawToken)
	if err != nil {
		return ErrInvalidResetToken
	}

	passwordHash, err := hash.Password(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.profileRepo.UpdatePassword(ctx, profileID, passwordHash); err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}

	log.Printf("[AUTH] Password reset completed for profile %s", profileID)
	return nil
}

func normalizeEmail(emailAddr string) string {
	return strings.ToLower(strings.TrimSpace(emailAddr))
}
