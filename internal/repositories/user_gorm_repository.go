package repositories

import (
	"context"
	"errors"
	"fmt"

	"greencart/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{db: db}
}

// Create creates a new user in the database.
func (r *GORMUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CartItems == nil {
		user.CartItems = map[string]int{}
	}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByEmail retrieves a user by their email.
func (r *GORMUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.first(ctx, "email = ?", email)
}

// GetByID retrieves a user by their ID.
func (r *GORMUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *GORMUserRepository) first(ctx context.Context, query string, arg string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, query, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %s: %w", arg, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user %s: %w", arg, err)
	}
	return &user, nil
}

// UpdateCart replaces the stored cart of a user.
func (r *GORMUserRepository) UpdateCart(ctx context.Context, id string, cart map[string]int) error {
	if cart == nil {
		cart = map[string]int{}
	}
	// Struct form so the json serializer runs; Select keeps an empty cart.
	res := r.db.WithContext(ctx).Model(&models.User{ID: id}).Select("cart_items").Updates(&models.User{CartItems: cart})
	if res.Error != nil {
		return fmt.Errorf("failed to update cart for user %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	return nil
}

// ClearCart empties the cart of a user.
func (r *GORMUserRepository) ClearCart(ctx context.Context, id string) error {
	return r.UpdateCart(ctx, id, map[string]int{})
}
