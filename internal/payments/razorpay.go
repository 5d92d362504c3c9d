package payments

import (
	"context"
	"fmt"
	"math"

	razorpay "github.com/razorpay/razorpay-go"
)

// MethodRazorpay is the name the Razorpay gateway is registered under.
const MethodRazorpay = "razorpay"

// orderCreator is the part of the razorpay-go client used here.
type orderCreator interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

// RazorpayGateway creates Razorpay orders through the official Go client.
type RazorpayGateway struct {
	KeyID  string
	orders orderCreator
}

func NewRazorpayGateway(keyID, keySecret string) *RazorpayGateway {
	client := razorpay.NewClient(keyID, keySecret)
	return &RazorpayGateway{KeyID: keyID, orders: client.Order}
}

// ToMinorUnits converts rupees to paise.
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// CreateOrder creates a Razorpay order for the amount in paise.
func (g *RazorpayGateway) CreateOrder(ctx context.Context, req OrderRequest) (*GatewayOrder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data := map[string]interface{}{
		"amount":   ToMinorUnits(req.Amount),
		"currency": req.Currency,
		"receipt":  req.OrderID,
		"notes": map[string]interface{}{
			"orderId": req.OrderID,
			"userId":  req.UserID,
		},
	}

	body, err := g.orders.Create(data, nil)
	if err != nil {
		return nil, fmt.Errorf("razorpay create order: %w", err)
	}

	order := &GatewayOrder{
		ID:       stringField(body, "id"),
		Entity:   stringField(body, "entity"),
		Amount:   intField(body, "amount"),
		Currency: stringField(body, "currency"),
		Receipt:  stringField(body, "receipt"),
		Status:   stringField(body, "status"),
	}
	if order.ID == "" {
		return nil, fmt.Errorf("razorpay create order: response has no id")
	}
	return order, nil
}

func stringField(m map[string]interface{}, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

func intField(m map[string]interface{}, key string) int64 {
	switch v := m[key].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	}
	return 0
}
