package models

import (
	"time"
)

// Property is a managed site or building, the tenant-scoping dimension of every document
type Property struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name" validate:"required"`
	Address   string    `gorm:"size:512" json:"address"`
	City      string    `gorm:"size:128" json:"city"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the table name for Property
func (Property) TableName() string {
	return "properties"
}
