package repositories

import (
	"context"

	"greencart/internal/models"
)

// AddressRepository defines the interface for address data access.
type AddressRepository interface {
	Create(ctx context.Context, address *models.Address) error
	GetByID(ctx context.Context, id string) (*models.Address, error)
	ListByUser(ctx context.Context, userID string) ([]models.Address, error)
}
