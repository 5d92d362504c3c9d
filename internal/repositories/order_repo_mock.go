package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"greencart/internal/models"

	"github.com/google/uuid"
)

// MockOrderRepository is an in-memory implementation of OrderRepository.
// When product and address repositories are supplied, reads populate
// item products and the delivery address the way the GORM version does.
type MockOrderRepository struct {
	orders    map[string]models.Order
	products  ProductRepository
	addresses AddressRepository
	mu        sync.RWMutex
}

// NewMockOrderRepository creates a new instance of MockOrderRepository.
// Both arguments may be nil.
func NewMockOrderRepository(products ProductRepository, addresses AddressRepository) *MockOrderRepository {
	return &MockOrderRepository{
		orders:    make(map[string]models.Order),
		products:  products,
		addresses: addresses,
	}
}

// Create adds a new order.
func (r *MockOrderRepository) Create(_ context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now

	stored := *order
	stored.Items = make([]models.OrderItem, len(order.Items))
	for i, it := range order.Items {
		stored.Items[i] = models.OrderItem{
			ID:        uint(i + 1),
			OrderID:   order.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
		}
	}
	stored.Address = nil
	r.orders[order.ID] = stored
	return nil
}

// GetByID returns an order by its ID.
func (r *MockOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	r.mu.RLock()
	order, ok := r.orders[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	populated := r.populate(ctx, order)
	return &populated, nil
}

// GetByGatewayOrderID returns the order linked to a gateway order.
func (r *MockOrderRepository) GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if gatewayOrderID != "" {
		for _, o := range r.orders {
			if o.GatewayOrderID == gatewayOrderID {
				populated := r.populate(ctx, o)
				return &populated, nil
			}
		}
	}
	return nil, fmt.Errorf("order %s: %w", gatewayOrderID, ErrNotFound)
}

func (r *MockOrderRepository) SetGatewayOrderID(_ context.Context, id, gatewayOrderID string) error {
	return r.mutate(id, func(o *models.Order) { o.GatewayOrderID = gatewayOrderID })
}

func (r *MockOrderRepository) MarkPaid(_ context.Context, id, paymentID string) error {
	return r.mutate(id, func(o *models.Order) {
		o.IsPaid = true
		if paymentID != "" {
			o.PaymentID = paymentID
		}
	})
}

func (r *MockOrderRepository) mutate(id string, fn func(o *models.Order)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	fn(&order)
	order.UpdatedAt = time.Now()
	r.orders[id] = order
	return nil
}

func (r *MockOrderRepository) ListVisibleByUser(ctx context.Context, userID string) ([]models.Order, error) {
	return r.list(ctx, func(o models.Order) bool { return o.UserID == userID }), nil
}

func (r *MockOrderRepository) ListVisible(ctx context.Context) ([]models.Order, error) {
	return r.list(ctx, func(models.Order) bool { return true }), nil
}

func (r *MockOrderRepository) list(ctx context.Context, keep func(models.Order) bool) []models.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Order, 0)
	for _, o := range r.orders {
		if !keep(o) || !(o.PaymentType == models.PaymentTypeCOD || o.IsPaid) {
			continue
		}
		out = append(out, r.populate(ctx, o))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// populate returns a copy with products and address filled in.
func (r *MockOrderRepository) populate(ctx context.Context, o models.Order) models.Order {
	items := make([]models.OrderItem, len(o.Items))
	copy(items, o.Items)
	if r.products != nil {
		for i := range items {
			if p, err := r.products.GetByID(ctx, items[i].ProductID); err == nil {
				items[i].Product = p
			}
		}
	}
	o.Items = items
	if r.addresses != nil && o.AddressID != "" {
		if a, err := r.addresses.GetByID(ctx, o.AddressID); err == nil {
			o.Address = a
		}
	}
	return o
}
