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

// MockAddressRepository is an in-memory implementation of AddressRepository.
type MockAddressRepository struct {
	addresses map[string]models.Address
	mu        sync.RWMutex
}

func NewMockAddressRepository() *MockAddressRepository {
	return &MockAddressRepository{addresses: make(map[string]models.Address)}
}

func (r *MockAddressRepository) Create(_ context.Context, address *models.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if address.ID == "" {
		address.ID = uuid.New().String()
	}
	address.CreatedAt = time.Now()
	r.addresses[address.ID] = *address
	return nil
}

func (r *MockAddressRepository) GetByID(_ context.Context, id string) (*models.Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.addresses[id]
	if !ok {
		return nil, fmt.Errorf("address %s: %w", id, ErrNotFound)
	}
	return &a, nil
}

func (r *MockAddressRepository) ListByUser(_ context.Context, userID string) ([]models.Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Address, 0)
	for _, a := range r.addresses {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
