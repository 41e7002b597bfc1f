package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/samedayramps/template-tiny-church/internal/service"
	"github.com/samedayramps/template-tiny-church/pkg/validator"
)

type SubscriptionHandler struct {
	subscriptions *service.SubscriptionService
	validate      *validator.Validator
}

func NewSubscriptionHandler(subscriptions *service.SubscriptionService, validate *validator.Validator) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptions: subscriptions,
		validate:      validate,
	}
}

// Subscribe adds an email address to the marketing audience
// POST /subscribe
func (h *SubscriptionHandler) Subscribe(c *fiber.Ctx) error {
	var req service.SubscribeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if err := h.validate.Validate(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if err := h.subscriptions.Subscribe(c.Context(), req.Email); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{"message": "subscribed"})
}
