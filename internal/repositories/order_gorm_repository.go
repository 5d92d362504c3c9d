package repositories

import (
	"context"
	"errors"
	"fmt"

	"greencart/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{db: db}
}

// Create inserts an order together with its items.
func (r *GORMOrderRepository) Create(ctx context.Context, order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	err := r.db.WithContext(ctx).Omit("Address").Create(order).Error
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// GetByID returns a populated order.
func (r *GORMOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	return r.first(ctx, "id = ?", id)
}

// GetByGatewayOrderID returns the order created for a payment gateway order.
func (r *GORMOrderRepository) GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.Order, error) {
	if gatewayOrderID == "" {
		return nil, fmt.Errorf("empty gateway order id: %w", ErrNotFound)
	}
	return r.first(ctx, "gateway_order_id = ?", gatewayOrderID)
}

func (r *GORMOrderRepository) first(ctx context.Context, query, arg string) (*models.Order, error) {
	var order models.Order
	err := r.populated(ctx).First(&order, query, arg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order %s: %w", arg, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order %s: %w", arg, err)
	}
	return &order, nil
}

// SetGatewayOrderID links an order to the payment gateway's order.
func (r *GORMOrderRepository) SetGatewayOrderID(ctx context.Context, id, gatewayOrderID string) error {
	return r.update(ctx, id, map[string]any{"gateway_order_id": gatewayOrderID})
}

// MarkPaid flips an order to paid. Calling it twice is harmless.
func (r *GORMOrderRepository) MarkPaid(ctx context.Context, id, paymentID string) error {
	values := map[string]any{"is_paid": true}
	if paymentID != "" {
		values["payment_id"] = paymentID
	}
	return r.update(ctx, id, values)
}

func (r *GORMOrderRepository) update(ctx context.Context, id string, values map[string]any) error {
	res := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Updates(values)
	if res.Error != nil {
		return fmt.Errorf("failed to update order %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	return nil
}

// ListVisibleByUser returns a user's visible orders, newest first.
func (r *GORMOrderRepository) ListVisibleByUser(ctx context.Context, userID string) ([]models.Order, error) {
	var orders []models.Order
	err := r.visible(ctx).Where("user_id = ?", userID).Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders for user %s: %w", userID, err)
	}
	return orders, nil
}

// ListVisible returns every visible order, newest first.
func (r *GORMOrderRepository) ListVisible(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := r.visible(ctx).Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

func (r *GORMOrderRepository) populated(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Items.Product").Preload("Address")
}

func (r *GORMOrderRepository) visible(ctx context.Context) *gorm.DB {
	return r.populated(ctx).
		Where(r.db.Where("payment_type = ?", models.PaymentTypeCOD).Or("is_paid = ?", true)).
		Order("created_at desc")
}
