package email

import "context"

// EmailService defines the outbound email surface of the application
type EmailService interface {
	// SendPasswordResetEmail sends a password reset link to the user
	SendPasswordResetEmail(ctx context.Context, to, token string) error

	// Subscribe adds an email address to the marketing audience
	Subscribe(ctx context.Context, emailAddr string) error
}

// EmailConfig holds email service configuration
type EmailConfig struct {
	APIKey     string
	FromName   string
	FromEmail  string
	ResetURL   string // base URL of the reset-password page
	AudienceID string // Resend audience for the subscribe form
}
