package repositories

import (
	"context"

	"greencart/internal/models"
)

// OrderRepository defines the interface for order data access.
//
// "Visible" orders are the ones a shopper or seller should see: cash on
// delivery orders and online orders whose payment has been confirmed.
// Orders are never deleted by the checkout flow.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.Order, error)
	SetGatewayOrderID(ctx context.Context, id, gatewayOrderID string) error
	MarkPaid(ctx context.Context, id, paymentID string) error
	ListVisibleByUser(ctx context.Context, userID string) ([]models.Order, error)
	ListVisible(ctx context.Context) ([]models.Order, error)
}
