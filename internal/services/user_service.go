package services

import (
	"context"
	"fmt"

	"greencart/internal/models"
	"greencart/internal/repositories"
)

// UserService manages a user's cart and delivery addresses.
type UserService struct {
	userRepo    repositories.UserRepository
	addressRepo repositories.AddressRepository
}

func NewUserService(userRepo repositories.UserRepository, addressRepo repositories.AddressRepository) *UserService {
	return &UserService{userRepo: userRepo, addressRepo: addressRepo}
}

// UpdateCart replaces the user's cart. Lines with a non-positive quantity are dropped.
func (s *UserService) UpdateCart(ctx context.Context, userID string, cart map[string]int) (map[string]int, error) {
	clean := make(map[string]int, len(cart))
	for productID, qty := range cart {
		if productID != "" && qty > 0 {
			clean[productID] = qty
		}
	}
	if err := s.userRepo.UpdateCart(ctx, userID, clean); err != nil {
		return nil, fmt.Errorf("failed to update cart: %w", err)
	}
	return clean, nil
}

// AddAddress stores a new address for the user.
func (s *UserService) AddAddress(ctx context.Context, userID string, address *models.Address) error {
	address.ID = ""
	address.UserID = userID
	return s.addressRepo.Create(ctx, address)
}

// GetAddresses lists the user's addresses, newest first.
func (s *UserService) GetAddresses(ctx context.Context, userID string) ([]models.Address, error) {
	return s.addressRepo.ListByUser(ctx, userID)
}
