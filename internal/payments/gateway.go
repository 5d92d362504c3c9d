package payments

import "context"

// Gateway creates orders on a hosted-checkout payment provider.
type Gateway interface {
	CreateOrder(ctx context.Context, req OrderRequest) (*GatewayOrder, error)
}

// OrderRequest describes the payment to collect for one of our orders.
type OrderRequest struct {
	OrderID  string // our order id, sent as the receipt
	UserID   string
	Amount   float64 // major currency units
	Currency string
}

// GatewayOrder is the provider's order, returned to the client so it can
// open the hosted checkout.
type GatewayOrder struct {
	ID       string `json:"id"`
	Entity   string `json:"entity,omitempty"`
	Amount   int64  `json:"amount"` // minor units
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}
