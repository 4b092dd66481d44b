package models

import (
	"time"

	"gorm.io/gorm"
)

// Cafe represents a merchant tenant that owns a menu and receives orders
type Cafe struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	OwnerID     uint           `gorm:"not null;index" json:"owner_id"` // foreign key to users table
	Owner       User           `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Name        string         `gorm:"not null" json:"name"`
	Description string         `json:"description"`
	Address     string         `json:"address"`
	IsOpen      bool           `gorm:"not null;default:true" json:"is_open"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Cafe model
func (Cafe) TableName() string {
	return "cafes"
}
