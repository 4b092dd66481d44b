package models

import (
	"time"

	"gorm.io/gorm"
)

// User roles. Role changes are managed by the identity provider and
// synced into this table; the API trusts the token's role claim.
const (
	RoleCustomer  = "customer"
	RoleCafeOwner = "cafe_owner"
	RoleAdmin     = "admin"
)

// User represents a user in the system (customer, café owner, or admin)
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Auth0ID   string         `gorm:"uniqueIndex;not null" json:"auth0_id"` // Auth0 user ID (from 'sub' claim)
	Name      string         `gorm:"not null" json:"name"`
	Email     string         `gorm:"uniqueIndex;not null" json:"email"`
	Phone     string         `json:"phone"`
	Role      string         `gorm:"not null;default:'customer'" json:"role"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}
