package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"greencart/internal/models"
	"greencart/internal/payments"
	"greencart/internal/repositories"

	"github.com/rs/zerolog"
)

// TaxPercent is added on top of the item subtotal, rounded down.
const TaxPercent = 2

// Business errors surfaced to clients as the response message.
var (
	ErrInvalidData      = errors.New("Invalid data")
	ErrProductNotFound  = errors.New("Product not found")
	ErrMissingFields    = errors.New("Missing fields")
	ErrInvalidSignature = errors.New("Invalid signature")
	ErrOrderNotFound    = errors.New("Order not found")
	ErrOrderMismatch    = errors.New("Order mismatch")
)

// ItemRequest is one cart line submitted at checkout. Prices sent by the
// client are never read.
type ItemRequest struct {
	Product  string `json:"product"`
	Quantity int    `json:"quantity"`
}

// PlaceOrderRequest is the checkout payload.
type PlaceOrderRequest struct {
	Items   []ItemRequest `json:"items"`
	Address string        `json:"address"`
}

// RazorpayCheckout is everything the client needs to open the hosted checkout.
type RazorpayCheckout struct {
	Key       string                 `json:"key"`
	Order     *payments.GatewayOrder `json:"order"`
	DBOrderID string                 `json:"dbOrderId"`
}

// VerifyPaymentRequest is the payload handed back by the checkout widget,
// plus our own order id.
type VerifyPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
	OrderID           string `json:"orderId"`
}

// RazorpayConfig carries the merchant credentials used at checkout.
type RazorpayConfig struct {
	KeyID     string
	KeySecret string
	Currency  string
}

// OrderService handles business logic related to orders.
type OrderService struct {
	orderRepo   repositories.OrderRepository
	productRepo repositories.ProductRepository
	userRepo    repositories.UserRepository
	addressRepo repositories.AddressRepository
	gateways    *payments.Manager
	publisher   EventPublisher
	recorder    Recorder
	razorpay    RazorpayConfig
	log         zerolog.Logger
}

// NewOrderService creates a new OrderService. A nil publisher disables events.
func NewOrderService(
	orderRepo repositories.OrderRepository,
	productRepo repositories.ProductRepository,
	userRepo repositories.UserRepository,
	addressRepo repositories.AddressRepository,
	gateways *payments.Manager,
	publisher EventPublisher,
	razorpay RazorpayConfig,
	log zerolog.Logger,
) *OrderService {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	if razorpay.Currency == "" {
		razorpay.Currency = "INR"
	}
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		addressRepo: addressRepo,
		gateways:    gateways,
		publisher:   publisher,
		recorder:    nopRecorder{},
		razorpay:    razorpay,
		log:         log.With().Str("component", "orders").Logger(),
	}
}

// WithRecorder sets the metrics recorder.
func (s *OrderService) WithRecorder(r Recorder) *OrderService {
	if r != nil {
		s.recorder = r
	}
	return s
}

// CalculateAmount prices items from the stored products: the offer price
// subtotal plus TaxPercent of it, rounded down.
func (s *OrderService) CalculateAmount(ctx context.Context, items []ItemRequest) (float64, error) {
	var subtotal float64
	for _, it := range items {
		product, err := s.productRepo.GetByID(ctx, it.Product)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return 0, ErrProductNotFound
			}
			return 0, fmt.Errorf("failed to load product %s: %w", it.Product, err)
		}
		subtotal += product.OfferPrice * float64(it.Quantity)
	}
	subtotal = math.Round(subtotal*100) / 100
	return subtotal + math.Floor(subtotal*TaxPercent/100), nil
}

func validatePlaceOrder(req PlaceOrderRequest) error {
	if req.Address == "" || len(req.Items) == 0 {
		return ErrInvalidData
	}
	for _, it := range req.Items {
		if it.Product == "" || it.Quantity < 1 {
			return ErrInvalidData
		}
	}
	return nil
}

// checkAddress rejects addresses that do not exist or belong to another user.
func (s *OrderService) checkAddress(ctx context.Context, userID, addressID string) error {
	address, err := s.addressRepo.GetByID(ctx, addressID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrInvalidData
		}
		return fmt.Errorf("failed to load address %s: %w", addressID, err)
	}
	if address.UserID != userID {
		s.log.Warn().Str("user_id", userID).Str("address_id", addressID).Msg("order placed against foreign address")
		return ErrInvalidData
	}
	return nil
}

// createOrder validates, prices and persists an unpaid order.
func (s *OrderService) createOrder(ctx context.Context, userID string, req PlaceOrderRequest, paymentType string) (*models.Order, error) {
	if err := validatePlaceOrder(req); err != nil {
		return nil, err
	}
	if err := s.checkAddress(ctx, userID, req.Address); err != nil {
		return nil, err
	}

	amount, err := s.CalculateAmount(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	items := make([]models.OrderItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, models.OrderItem{ProductID: it.Product, Quantity: it.Quantity})
	}

	order := &models.Order{
		UserID:      userID,
		Items:       items,
		Amount:      amount,
		AddressID:   req.Address,
		PaymentType: paymentType,
		IsPaid:      false,
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order in repository: %w", err)
	}

	s.recorder.OrderPlaced(paymentType)
	s.log.Info().
		Str("order_id", order.ID).
		Str("user_id", userID).
		Str("payment_type", paymentType).
		Float64("amount", amount).
		Msg("order placed")

	publishEvent(ctx, s.publisher, s.log, RoutingOrderPlaced, OrderPlacedEvent{
		OrderID:     order.ID,
		UserID:      userID,
		Amount:      amount,
		PaymentType: paymentType,
		Items:       len(items),
		Time:        time.Now(),
	})
	return order, nil
}

// PlaceOrderCOD places a cash on delivery order.
func (s *OrderService) PlaceOrderCOD(ctx context.Context, userID string, req PlaceOrderRequest) (*models.Order, error) {
	return s.createOrder(ctx, userID, req, models.PaymentTypeCOD)
}

// PlaceOrderRazorpay persists an online order and creates the matching
// Razorpay order. The stored order stays unpaid until verification.
func (s *OrderService) PlaceOrderRazorpay(ctx context.Context, userID string, req PlaceOrderRequest) (*RazorpayCheckout, error) {
	order, err := s.createOrder(ctx, userID, req, models.PaymentTypeOnline)
	if err != nil {
		return nil, err
	}

	gwOrder, err := s.gateways.CreateOrder(ctx, payments.MethodRazorpay, payments.OrderRequest{
		OrderID:  order.ID,
		UserID:   userID,
		Amount:   order.Amount,
		Currency: s.razorpay.Currency,
	})
	if err != nil {
		s.log.Error().Err(err).Str("order_id", order.ID).Msg("gateway order creation failed")
		return nil, err
	}

	if err := s.orderRepo.SetGatewayOrderID(ctx, order.ID, gwOrder.ID); err != nil {
		return nil, fmt.Errorf("failed to link gateway order: %w", err)
	}

	return &RazorpayCheckout{
		Key:       s.razorpay.KeyID,
		Order:     gwOrder,
		DBOrderID: order.ID,
	}, nil
}

// VerifyRazorpayPayment checks the checkout signature and, when it holds,
// marks the order paid and clears the caller's cart.
func (s *OrderService) VerifyRazorpayPayment(ctx context.Context, userID string, req VerifyPaymentRequest) error {
	if req.RazorpayOrderID == "" || req.RazorpayPaymentID == "" || req.RazorpaySignature == "" {
		s.recorder.Verification("missing_fields")
		return ErrMissingFields
	}

	if !payments.VerifyPaymentSignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature, s.razorpay.KeySecret) {
		s.recorder.Verification("invalid_signature")
		s.log.Warn().
			Str("user_id", userID).
			Str("gateway_order_id", req.RazorpayOrderID).
			Msg("payment signature mismatch")
		return ErrInvalidSignature
	}

	order, err := s.lookupOrder(ctx, req)
	if err != nil {
		s.recorder.Verification("order_not_found")
		return err
	}
	if order.UserID != userID || order.GatewayOrderID != req.RazorpayOrderID {
		s.recorder.Verification("order_mismatch")
		return ErrOrderMismatch
	}
	if order.IsPaid {
		s.recorder.Verification("already_paid")
		return nil
	}

	if err := s.orderRepo.MarkPaid(ctx, order.ID, req.RazorpayPaymentID); err != nil {
		return fmt.Errorf("failed to mark order %s paid: %w", order.ID, err)
	}
	if err := s.userRepo.ClearCart(ctx, userID); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("failed to clear cart after payment")
	}

	s.recorder.Verification("ok")
	s.log.Info().Str("order_id", order.ID).Str("payment_id", req.RazorpayPaymentID).Msg("payment verified")

	publishEvent(ctx, s.publisher, s.log, RoutingOrderPaid, OrderPaidEvent{
		OrderID:        order.ID,
		UserID:         userID,
		GatewayOrderID: req.RazorpayOrderID,
		PaymentID:      req.RazorpayPaymentID,
		Source:         "verify",
		Time:           time.Now(),
	})
	return nil
}

func (s *OrderService) lookupOrder(ctx context.Context, req VerifyPaymentRequest) (*models.Order, error) {
	var (
		order *models.Order
		err   error
	)
	if req.OrderID != "" {
		order, err = s.orderRepo.GetByID(ctx, req.OrderID)
	} else {
		order, err = s.orderRepo.GetByGatewayOrderID(ctx, req.RazorpayOrderID)
	}
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

// MarkPaidByGatewayOrder is the webhook path to confirm a payment. It
// reports whether a matching order exists.
func (s *OrderService) MarkPaidByGatewayOrder(ctx context.Context, gatewayOrderID, paymentID string) (bool, error) {
	order, err := s.orderRepo.GetByGatewayOrderID(ctx, gatewayOrderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if order.IsPaid {
		return true, nil
	}

	if err := s.orderRepo.MarkPaid(ctx, order.ID, paymentID); err != nil {
		return true, fmt.Errorf("failed to mark order %s paid: %w", order.ID, err)
	}
	publishEvent(ctx, s.publisher, s.log, RoutingOrderPaid, OrderPaidEvent{
		OrderID:        order.ID,
		UserID:         order.UserID,
		GatewayOrderID: gatewayOrderID,
		PaymentID:      paymentID,
		Source:         "webhook",
		Time:           time.Now(),
	})
	return true, nil
}

// GetUserOrders returns the user's COD and paid orders, newest first.
func (s *OrderService) GetUserOrders(ctx context.Context, userID string) ([]models.Order, error) {
	return s.orderRepo.ListVisibleByUser(ctx, userID)
}

// GetAllOrders returns every COD and paid order, newest first.
func (s *OrderService) GetAllOrders(ctx context.Context) ([]models.Order, error) {
	return s.orderRepo.ListVisible(ctx)
}
