package models

import (
	"time"

	"gorm.io/gorm"
)

// MenuItem represents an item on a café's menu. Price and preparation
// time are snapshotted onto order items at order time, so editing a
// menu item never changes existing orders.
type MenuItem struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	CafeID          uint           `gorm:"not null;index" json:"cafe_id"`
	Name            string         `gorm:"not null" json:"name"`
	Description     string         `json:"description"`
	Price           float64        `gorm:"not null;check:price > 0" json:"price"`
	PreparationTime int            `gorm:"not null;default:5" json:"preparation_time"` // minutes for a single unit
	PhotoS3Key      *string        `json:"photo_s3_key,omitempty"`
	PhotoURL        *string        `gorm:"-" json:"photo_url,omitempty"` // computed field, presigned URL for photo
	IsAvailable     bool           `gorm:"not null;default:true" json:"is_available"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the MenuItem model
func (MenuItem) TableName() string {
	return "menu_items"
}
