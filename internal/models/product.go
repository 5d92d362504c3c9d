package models

import "time"

// Product represents a product in the store.
type Product struct {
	ID          string    `json:"_id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name        string    `json:"name" validate:"required,min=3,max=100"`
	Description string    `json:"description" validate:"omitempty,max=500"`
	Category    string    `json:"category" gorm:"index;type:varchar(100)"`
	Price       float64   `json:"price" validate:"required,gt=0"`
	OfferPrice  float64   `json:"offerPrice" validate:"required,gt=0"` // Charged at checkout
	InStock     bool      `json:"inStock"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
