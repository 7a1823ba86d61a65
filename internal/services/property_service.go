package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/localnerve/backoffice-propsdb/internal/models"
	"github.com/localnerve/backoffice-propsdb/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PropertyService manages the properties documents are scoped by
type PropertyService struct {
	DB *gorm.DB
}

// NewPropertyService creates a PropertyService
func NewPropertyService(db *gorm.DB) *PropertyService {
	return &PropertyService{DB: db}
}

// ListProperties returns every property ordered by name
func (s *PropertyService) ListProperties(ctx context.Context) ([]models.Property, error) {
	var properties []models.Property
	if err := s.DB.WithContext(ctx).Order("name, id").Find(&properties).Error; err != nil {
		return nil, err
	}
	return properties, nil
}

// GetProperty returns one property
func (s *PropertyService) GetProperty(ctx context.Context, id string) (*models.Property, error) {
	var property models.Property
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&property).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("property %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &property, nil
}

// SaveProperty creates or updates a property. An empty id is assigned a uuid.
func (s *PropertyService) SaveProperty(ctx context.Context, property *models.Property) error {
	property.ID = strings.TrimSpace(property.ID)
	if property.ID == "" {
		property.ID = uuid.NewString()
	}
	if err := utils.Validate.Struct(property); err != nil {
		return fmt.Errorf("%s: %w", utils.ValidationMessages(err), ErrInvalidInput)
	}

	return s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "address", "city", "updated_at"}),
	}).Create(property).Error
}

// PropertyExists reports whether a property with id exists
func (s *PropertyService) PropertyExists(ctx context.Context, id string) (bool, error) {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.Property{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
