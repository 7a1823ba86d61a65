package models

import (
	"time"
)

// ResourceDocument is one stored document of a back-office resource.
// The nested arrays and objects live in Body; the columns hold what the
// service filters and locks on.
type ResourceDocument struct {
	ID         string `gorm:"primaryKey;size:36"`
	Resource   string `gorm:"size:64;not null;index:idx_resource_property,priority:1"`
	PropertyID string `gorm:"size:64;index:idx_resource_property,priority:2"`
	Version    uint64 `gorm:"not null;default:1"`
	Body       JSON
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName overrides the table name for ResourceDocument
func (ResourceDocument) TableName() string {
	return "resource_documents"
}
