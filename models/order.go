package models

import (
	"time"

	"gorm.io/gorm"
)

// Order statuses. The lifecycle engine in the services package is the
// only code allowed to change an order's status.
const (
	StatusPending    = "pending"
	StatusAccepted   = "accepted"
	StatusInProgress = "in_progress"
	StatusReady      = "ready"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// Order types
const (
	OrderTypePickup   = "pickup"
	OrderTypeDineIn   = "dine_in"
	OrderTypeDelivery = "delivery"
)

// ActiveStatuses are the statuses that place an order in its café's
// queue. Orders in any other status have no queue position.
var ActiveStatuses = []string{StatusAccepted, StatusInProgress}

// Order represents a customer order placed at a café
type Order struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	CafeID             uint           `gorm:"not null;index" json:"cafe_id"`
	Cafe               Cafe           `gorm:"foreignKey:CafeID" json:"cafe,omitempty"`
	CustomerID         uint           `gorm:"not null;index" json:"customer_id"`
	Customer           User           `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	CustomerName       string         `json:"customer_name"`
	CustomerPhone      string         `json:"customer_phone"`
	CustomerEmail      string         `json:"customer_email"`
	OrderType          string         `gorm:"not null;default:'pickup'" json:"order_type"`
	Status             string         `gorm:"not null;default:'pending';index" json:"status"`
	TotalAmount        float64        `gorm:"not null" json:"total_amount"` // computed at creation, immutable
	EstimatedReadyTime *time.Time     `json:"estimated_ready_time"`         // set when the order is accepted
	QueuePosition      *int           `json:"queue_position"`               // non-null only while accepted/in progress
	Notes              string         `json:"notes"`
	Items              []OrderItem    `gorm:"foreignKey:OrderID" json:"items"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	CancelledAt        *time.Time     `json:"cancelled_at,omitempty"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// IsTerminal returns true if no further status transitions are allowed
func (o *Order) IsTerminal() bool {
	return o.Status == StatusCompleted || o.Status == StatusCancelled
}

// IsActive returns true if the order occupies a queue position
func (o *Order) IsActive() bool {
	return o.Status == StatusAccepted || o.Status == StatusInProgress
}
