package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
)

// Routing keys of the events emitted by the checkout flow.
const (
	RoutingOrderPlaced    = "order.placed"
	RoutingOrderPaid      = "order.paid"
	RoutingPaymentWebhook = "payment.webhook"
)

// EventPublisher sends an encoded event to the message bus.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, body []byte) error
}

// NopPublisher drops every event. Used when messaging is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, []byte) error { return nil }

// Recorder receives business metrics.
type Recorder interface {
	OrderPlaced(paymentType string)
	Verification(result string)
	Webhook(event, result string)
}

type nopRecorder struct{}

func (nopRecorder) OrderPlaced(string)     {}
func (nopRecorder) Verification(string)    {}
func (nopRecorder) Webhook(string, string) {}

// OrderPlacedEvent is published after an order has been persisted.
type OrderPlacedEvent struct {
	OrderID     string    `json:"orderId"`
	UserID      string    `json:"userId"`
	Amount      float64   `json:"amount"`
	PaymentType string    `json:"paymentType"`
	Items       int       `json:"items"`
	Time        time.Time `json:"time"`
}

// OrderPaidEvent is published when an order is confirmed as paid.
type OrderPaidEvent struct {
	OrderID        string    `json:"orderId"`
	UserID         string    `json:"userId"`
	GatewayOrderID string    `json:"gatewayOrderId"`
	PaymentID      string    `json:"paymentId,omitempty"`
	Source         string    `json:"source"` // "verify" or "webhook"
	Time           time.Time `json:"time"`
}

// PaymentWebhookEvent forwards an accepted provider notification.
type PaymentWebhookEvent struct {
	EventID        string          `json:"eventId,omitempty"`
	Event          string          `json:"event"`
	GatewayOrderID string          `json:"gatewayOrderId,omitempty"`
	PaymentID      string          `json:"paymentId,omitempty"`
	Raw            json.RawMessage `json:"raw"`
}

// publishEvent marshals v and publishes it. Failures are logged, never
// returned: the database write that preceded the event is authoritative.
func publishEvent(ctx context.Context, pub EventPublisher, log zerolog.Logger, routingKey string, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("routing_key", routingKey).Msg("failed to marshal event")
		return
	}
	if err := pub.Publish(ctx, routingKey, body); err != nil {
		log.Warn().Err(err).Str("routing_key", routingKey).Msg("failed to publish event")
	}
}
