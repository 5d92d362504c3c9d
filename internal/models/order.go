package models

import "time"

// Payment types recorded on an order.
const (
	PaymentTypeCOD    = "COD"
	PaymentTypeOnline = "Online"
)

// OrderItem represents a single line within an order.
type OrderItem struct {
	ID        uint     `json:"-" gorm:"primaryKey"`
	OrderID   string   `json:"-" gorm:"index;type:varchar(36)"`
	ProductID string   `json:"-" gorm:"type:varchar(36)"`
	Product   *Product `json:"product" gorm:"foreignKey:ProductID"`
	Quantity  int      `json:"quantity"`
}

// Order represents a customer order. Amount is always computed server side.
type Order struct {
	ID             string      `json:"_id" gorm:"primaryKey;type:varchar(36)"`
	UserID         string      `json:"userId" gorm:"index;type:varchar(36)"`
	Items          []OrderItem `json:"items" gorm:"foreignKey:OrderID"`
	Amount         float64     `json:"amount"`
	AddressID      string      `json:"-" gorm:"type:varchar(36)"`
	Address        *Address    `json:"address" gorm:"foreignKey:AddressID"`
	PaymentType    string      `json:"paymentType" gorm:"index;type:varchar(16)"`
	IsPaid         bool        `json:"isPaid" gorm:"index"`
	GatewayOrderID string      `json:"gatewayOrderId,omitempty" gorm:"index;type:varchar(64)"`
	PaymentID      string      `json:"paymentId,omitempty" gorm:"type:varchar(64)"`
	CreatedAt      time.Time   `json:"createdAt" gorm:"index"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}
