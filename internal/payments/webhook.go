package payments

import (
	"encoding/json"
	"fmt"
)

// Webhook event names acted upon.
const (
	EventPaymentCaptured = "payment.captured"
	EventOrderPaid       = "order.paid"
)

// WebhookEvent is the subset of a Razorpay webhook payload we read.
type WebhookEvent struct {
	Entity    string   `json:"entity"`
	AccountID string   `json:"account_id"`
	Event     string   `json:"event"`
	CreatedAt int64    `json:"created_at"`
	Contains  []string `json:"contains"`
	Payload   struct {
		Payment *struct {
			Entity struct {
				ID      string `json:"id"`
				OrderID string `json:"order_id"`
				Amount  int64  `json:"amount"`
				Status  string `json:"status"`
			} `json:"entity"`
		} `json:"payment,omitempty"`
		Order *struct {
			Entity struct {
				ID      string `json:"id"`
				Receipt string `json:"receipt"`
				Status  string `json:"status"`
			} `json:"entity"`
		} `json:"order,omitempty"`
	} `json:"payload"`
}

// ParseWebhookEvent decodes a webhook body.
func ParseWebhookEvent(body []byte) (*WebhookEvent, error) {
	var evt WebhookEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		return nil, fmt.Errorf("decode webhook event: %w", err)
	}
	if evt.Event == "" {
		return nil, fmt.Errorf("decode webhook event: missing event name")
	}
	return &evt, nil
}

// GatewayOrderID returns the Razorpay order id the event refers to.
func (e *WebhookEvent) GatewayOrderID() string {
	if e.Payload.Order != nil && e.Payload.Order.Entity.ID != "" {
		return e.Payload.Order.Entity.ID
	}
	if e.Payload.Payment != nil {
		return e.Payload.Payment.Entity.OrderID
	}
	return ""
}

// PaymentID returns the Razorpay payment id, if the event carries one.
func (e *WebhookEvent) PaymentID() string {
	if e.Payload.Payment != nil {
		return e.Payload.Payment.Entity.ID
	}
	return ""
}

// MarksPaid reports whether the event confirms that money was collected.
func (e *WebhookEvent) MarksPaid() bool {
	return e.Event == EventPaymentCaptured || e.Event == EventOrderPaid
}
