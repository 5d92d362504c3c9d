package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"greencart/internal/payments"

	"github.com/rs/zerolog"
)

// EventDeduper remembers which webhook deliveries were already handled.
type EventDeduper interface {
	MarkOnce(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Forget(ctx context.Context, key string) error
}

// ErrMalformedWebhook is returned for a correctly signed body that cannot be decoded.
var ErrMalformedWebhook = errors.New("malformed webhook event")

// dedupeTTL outlives Razorpay's retry window for failed deliveries.
const dedupeTTL = 72 * time.Hour

// WebhookResult describes what happened to an accepted delivery.
type WebhookResult string

const (
	WebhookProcessed WebhookResult = "processed"
	WebhookIgnored   WebhookResult = "ignored"
	WebhookDuplicate WebhookResult = "duplicate"
	WebhookUnmatched WebhookResult = "unmatched"
)

// WebhookService handles asynchronous Razorpay notifications.
type WebhookService struct {
	orders    *OrderService
	deduper   EventDeduper
	publisher EventPublisher
	recorder  Recorder
	secret    string
	log       zerolog.Logger
}

// NewWebhookService creates a WebhookService. deduper and publisher may be nil.
func NewWebhookService(orders *OrderService, deduper EventDeduper, publisher EventPublisher, secret string, log zerolog.Logger) *WebhookService {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	return &WebhookService{
		orders:    orders,
		deduper:   deduper,
		publisher: publisher,
		recorder:  nopRecorder{},
		secret:    secret,
		log:       log.With().Str("component", "webhooks").Logger(),
	}
}

// WithRecorder sets the metrics recorder.
func (s *WebhookService) WithRecorder(r Recorder) *WebhookService {
	if r != nil {
		s.recorder = r
	}
	return s
}

// HandleRazorpay verifies and processes one webhook delivery. It returns
// ErrInvalidSignature for forged bodies and ErrMalformedWebhook for
// undecodable ones. Any other error means the provider should retry.
func (s *WebhookService) HandleRazorpay(ctx context.Context, body []byte, signature, eventID string) (WebhookResult, error) {
	if !payments.VerifyWebhookSignature(body, signature, s.secret) {
		s.recorder.Webhook("unknown", "invalid_signature")
		return "", ErrInvalidSignature
	}

	evt, err := payments.ParseWebhookEvent(body)
	if err != nil {
		s.recorder.Webhook("unknown", "malformed")
		return "", fmt.Errorf("%w: %v", ErrMalformedWebhook, err)
	}

	key := ""
	if eventID != "" && s.deduper != nil {
		key = "razorpay:event:" + eventID
		first, err := s.deduper.MarkOnce(ctx, key, dedupeTTL)
		if err != nil {
			s.log.Warn().Err(err).Str("event_id", eventID).Msg("dedupe store unavailable, processing anyway")
			key = ""
		} else if !first {
			s.recorder.Webhook(evt.Event, string(WebhookDuplicate))
			return WebhookDuplicate, nil
		}
	}

	result, err := s.process(ctx, evt)
	if err != nil {
		if key != "" {
			if ferr := s.deduper.Forget(ctx, key); ferr != nil {
				s.log.Warn().Err(ferr).Str("event_id", eventID).Msg("failed to release dedupe key")
			}
		}
		s.recorder.Webhook(evt.Event, "failed")
		return "", err
	}

	publishEvent(ctx, s.publisher, s.log, RoutingPaymentWebhook, PaymentWebhookEvent{
		EventID:        eventID,
		Event:          evt.Event,
		GatewayOrderID: evt.GatewayOrderID(),
		PaymentID:      evt.PaymentID(),
		Raw:            body,
	})
	s.recorder.Webhook(evt.Event, string(result))
	s.log.Info().
		Str("event", evt.Event).
		Str("event_id", eventID).
		Str("gateway_order_id", evt.GatewayOrderID()).
		Str("result", string(result)).
		Msg("webhook handled")
	return result, nil
}

func (s *WebhookService) process(ctx context.Context, evt *payments.WebhookEvent) (WebhookResult, error) {
	if !evt.MarksPaid() {
		return WebhookIgnored, nil
	}
	gatewayOrderID := evt.GatewayOrderID()
	if gatewayOrderID == "" {
		return WebhookUnmatched, nil
	}

	found, err := s.orders.MarkPaidByGatewayOrder(ctx, gatewayOrderID, evt.PaymentID())
	if err != nil {
		return "", fmt.Errorf("webhook %s: %w", evt.Event, err)
	}
	if !found {
		return WebhookUnmatched, nil
	}
	return WebhookProcessed, nil
}
