package handlers

import (
	"errors"

	"greencart/internal/services"

	"github.com/gofiber/fiber/v2"
)

// Razorpay webhook headers.
const (
	HeaderRazorpaySignature = "X-Razorpay-Signature"
	HeaderRazorpayEventID   = "X-Razorpay-Event-Id"
)

// WebhookHandler receives provider notifications.
type WebhookHandler struct {
	service *services.WebhookService
}

func NewWebhookHandler(service *services.WebhookService) *WebhookHandler {
	return &WebhookHandler{service: service}
}

// RegisterRoutes mounts the webhook receiver. It must sit outside any
// body-rewriting middleware since the signature covers the raw bytes.
func (h *WebhookHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/razorpay", h.HandleRazorpay)
}

// HandleRazorpay answers 400 for bad signatures or bodies, 500 when processing failed
// (the provider retries) and 200 otherwise.
func (h *WebhookHandler) HandleRazorpay(c *fiber.Ctx) error {
	// Copy: fiber reuses the request buffer after the handler returns.
	body := append([]byte(nil), c.Body()...)

	_, err := h.service.HandleRazorpay(c.UserContext(), body, c.Get(HeaderRazorpaySignature), c.Get(HeaderRazorpayEventID))
	switch {
	case err == nil:
		return c.SendStatus(fiber.StatusOK)
	case errors.Is(err, services.ErrInvalidSignature), errors.Is(err, services.ErrMalformedWebhook):
		return c.SendStatus(fiber.StatusBadRequest)
	default:
		return c.SendStatus(fiber.StatusInternalServerError)
	}
}
