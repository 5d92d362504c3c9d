package app

import (
	"context"
	"fmt"

	"greencart/internal/config"
	"greencart/internal/database"
	"greencart/internal/models"
	"greencart/internal/repositories"
	"greencart/internal/services"

	"github.com/rs/zerolog"
)

// Repositories groups the data access implementations.
type Repositories struct {
	Products  repositories.ProductRepository
	Users     repositories.UserRepository
	Addresses repositories.AddressRepository
	Orders    repositories.OrderRepository
}

// NewRepositories returns GORM-backed repositories for sqlite/postgres, or
// in-memory ones for the "memory" driver. The returned func closes the database.
func NewRepositories(cfg config.Config, log zerolog.Logger) (Repositories, func() error, error) {
	if cfg.DBDriver == config.DriverMemory {
		return NewMemoryRepositories(), func() error { return nil }, nil
	}

	db, err := database.Open(cfg.DBDriver, cfg.DatabaseDSN, log)
	if err != nil {
		return Repositories{}, nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return Repositories{}, nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	return Repositories{
		Products:  repositories.NewGORMProductRepository(db),
		Users:     repositories.NewGORMUserRepository(db),
		Addresses: repositories.NewGORMAddressRepository(db),
		Orders:    repositories.NewGORMOrderRepository(db),
	}, sqlDB.Close, nil
}

// NewMemoryRepositories returns in-memory repositories.
func NewMemoryRepositories() Repositories {
	products := repositories.NewMockProductRepository()
	addresses := repositories.NewMockAddressRepository()
	return Repositories{
		Products:  products,
		Users:     repositories.NewMockUserRepository(),
		Addresses: addresses,
		Orders:    repositories.NewMockOrderRepository(products, addresses),
	}
}

// SeedProducts fills an empty catalog with a few products.
func SeedProducts(ctx context.Context, products *services.ProductService, log zerolog.Logger) error {
	existing, err := products.GetAllProducts(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	catalog := []models.Product{
		{Name: "Potato 500g", Category: "Vegetables", Price: 25, OfferPrice: 20, InStock: true},
		{Name: "Tomato 1kg", Category: "Vegetables", Price: 40, OfferPrice: 35, InStock: true},
		{Name: "Amul Milk 1L", Category: "Dairy", Price: 60, OfferPrice: 55, InStock: true},
		{Name: "Basmati Rice 5kg", Category: "Grains", Price: 550, OfferPrice: 520, InStock: true},
	}
	for i := range catalog {
		if err := products.CreateProduct(ctx, &catalog[i]); err != nil {
			return fmt.Errorf("failed to seed product %s: %w", catalog[i].Name, err)
		}
		log.Info().Str("product_id", catalog[i].ID).Str("name", catalog[i].Name).Msg("seeded product")
	}
	return nil
}
