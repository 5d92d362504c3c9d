package models

import "time"

// User represents a shopper. CartItems maps product IDs to quantities.
type User struct {
	ID        string         `json:"_id" gorm:"primaryKey;type:varchar(36)"`
	Name      string         `json:"name" gorm:"type:varchar(100)" validate:"required,min=2,max=100"`
	Email     string         `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Password  string         `json:"password,omitempty" gorm:"type:varchar(255)" validate:"required,min=6"`
	CartItems map[string]int `json:"cartItems" gorm:"serializer:json"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}
