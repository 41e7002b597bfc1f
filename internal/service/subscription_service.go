package service

import (
	"context"
	"errors"
	"log"

	"github.com/samedayramps/template-tiny-church/pkg/email"
)

var ErrSubscriptionFailed = errors.New("failed to subscribe, please try again later")

// SubscriptionService forwards newsletter sign-ups to the email provider
type SubscriptionService struct {
	emailService email.EmailService
}

type SubscribeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func NewSubscriptionService(emailService email.EmailService) *SubscriptionService {
	return &SubscriptionService{emailService: emailService}
}

// Subscribe adds an email to the marketing audience
func (s *SubscriptionService) Subscribe(ctx context.Context, emailAddr string) error {
	if s.emailService == nil {
		return ErrSubscriptionFailed
	}

	if err := s.emailService.Subscribe(ctx, normalizeEmail(emailAddr)); err != nil {
		log.Printf("[SUBSCRIPTION] %v", err)
		return ErrSubscriptionFailed
	}

	return nil
}
