package models

import "time"

// Address is a delivery address owned by a user.
type Address struct {
	ID        string    `json:"_id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `json:"userId" gorm:"index;type:varchar(36)"`
	FirstName string    `json:"firstName" validate:"required"`
	LastName  string    `json:"lastName" validate:"required"`
	Email     string    `json:"email" validate:"omitempty,email"`
	Street    string    `json:"street" validate:"required"`
	City      string    `json:"city" validate:"required"`
	State     string    `json:"state" validate:"required"`
	Zipcode   string    `json:"zipcode" validate:"required"`
	Country   string    `json:"country" validate:"required"`
	Phone     string    `json:"phone" validate:"required"`
	CreatedAt time.Time `json:"createdAt"`
}
