package models

import (
	"time"

	"gorm.io/gorm"
)

// Address is a delivery destination owned by a single user. Rows are soft
// deleted so that historic orders keep resolving their destination.
type Address struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	City      string         `gorm:"not null" json:"city"`
	Street    string         `gorm:"not null" json:"street"`
	House     string         `gorm:"not null" json:"house"`
	Apartment *string        `json:"apartment,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
