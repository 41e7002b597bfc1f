package email

import (
	"context"
	"fmt"
	"log"

	"github.com/resend/resend-go/v2"
)

// ResendEmailService implements EmailService using Resend
type ResendEmailService struct {
	client *resend.Client
	config *EmailConfig
}

// NewResendEmailService creates a new Resend email service
func NewResendEmailService(config *EmailConfig) (*ResendEmailService, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("resend API key is required")
	}

	if config.FromEmail == "" {
		return nil, fmt.Errorf("from email is required")
	}

	return &ResendEmailService{
		client: resend.NewClient(config.APIKey),
		config: config,
	}, nil
}

// SendPasswordResetEmail sends a password reset link to the user
func (s *ResendEmailService) SendPasswordResetEmail(ctx context.Context, to, token string) error {
	resetURL := fmt.Sprintf("%s?token=%s", s.config.ResetURL, token)

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromEmail),
		To:      []string{to},
		Subject: "Reset Your Password",
		Html:    PasswordResetEmailTemplate(resetURL),
	}

	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		log.Printf("Failed to send password reset email to %s: %v", to, err)
		return fmt.Errorf("failed to send password reset email: %w", err)
	}

	log.Printf("Password reset email sent to %s (ID: %s)", to, sent.Id)
	return nil
}

// Subscribe adds an email address to the configured Resend audience
func (s *ResendEmailService) Subscribe(ctx context.Context, emailAddr string) error {
	if s.config.AudienceID == "" {
		return fmt.Errorf("resend audience id is not configured")
	}

	params := &resend.CreateContactRequest{
		Email:        emailAddr,
		AudienceId:   s.config.AudienceID,
		Unsubscribed: false,
	}

	_, err := s.client.Contacts.CreateWithContext(ctx, params)
	if err != nil {
		log.Printf("Failed to subscribe %s: %v", emailAddr, err)
		return fmt.Errorf("failed to subscribe contact: %w", err)
	}

	log.Printf("Subscribed %s to audience %s", emailAddr, s.config.AudienceID)
	return nil
}
