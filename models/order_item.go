package models

import (
	"time"
)

// OrderItem represents a single line of an order. Unit price and
// preparation time are snapshots taken when the order is created and
// are decoupled from the live menu item.
type OrderItem struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	OrderID         uint      `gorm:"not null;index" json:"order_id"`
	MenuItemID      uint      `gorm:"not null;index" json:"menu_item_id"`
	MenuItem        MenuItem  `gorm:"foreignKey:MenuItemID" json:"menu_item,omitempty"`
	Quantity        int       `gorm:"not null;check:quantity > 0" json:"quantity"`
	UnitPrice       float64   `gorm:"not null" json:"unit_price"`
	PreparationTime int       `gorm:"not null" json:"preparation_time"` // minutes per unit, snapshot
	Customization   string    `json:"customization"`
	CreatedAt       time.Time `json:"created_at"`
}

// TableName specifies the table name for the OrderItem model
func (OrderItem) TableName() string {
	return "order_items"
}

// Subtotal returns the line total for this item
func (i *OrderItem) Subtotal() float64 {
	return i.UnitPrice * float64(i.Quantity)
}
