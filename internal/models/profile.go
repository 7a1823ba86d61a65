package models

import (
	"time"

	"gorm.io/datatypes"
)

// Profile maps a user id from the auth provider to a back-office role
type Profile struct {
	UserID      string                      `gorm:"primaryKey;size:64" json:"user_id" validate:"required"`
	Name        string                      `gorm:"size:255" json:"name"`
	Email       string                      `gorm:"size:255;index" json:"email" validate:"omitempty,email"`
	Role        string                      `gorm:"size:32;not null" json:"role" validate:"required,oneof=cadmin admin property_user"`
	PropertyIDs datatypes.JSONSlice[string] `json:"property_ids"`
	CreatedAt   time.Time                   `json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`
}

// TableName overrides the table name for Profile
func (Profile) TableName() string {
	return "profiles"
}
