package payments

import (
	"context"
	"fmt"
)

// Manager routes requests to gateways registered by name.
type Manager struct {
	gateways map[string]Gateway
}

func NewManager() *Manager {
	return &Manager{gateways: make(map[string]Gateway)}
}

func (m *Manager) Register(name string, gateway Gateway) {
	m.gateways[name] = gateway
}

func (m *Manager) CreateOrder(ctx context.Context, method string, req OrderRequest) (*GatewayOrder, error) {
	gateway, ok := m.gateways[method]
	if !ok {
		return nil, fmt.Errorf("gateway not registered: %s", method)
	}
	return gateway.CreateOrder(ctx, req)
}
