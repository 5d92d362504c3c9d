package repositories

import (
	"context"

	"greencart/internal/models"
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	UpdateCart(ctx context.Context, id string, cart map[string]int) error
	ClearCart(ctx context.Context, id string) error
}
