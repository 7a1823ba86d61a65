package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/localnerve/backoffice-propsdb/internal/models"
	"github.com/localnerve/backoffice-propsdb/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProfileService maps auth provider users to back-office roles
type ProfileService struct {
	DB *gorm.DB
}

// NewProfileService creates a ProfileService
func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{DB: db}
}

// ListProfiles returns every profile ordered by user id
func (s *ProfileService) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	var profiles []models.Profile
	if err := s.DB.WithContext(ctx).Order("user_id").Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

// GetProfile returns the profile of userID
func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	var profile models.Profile
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("profile %s: %w", userID, ErrNotFound)
		}
		return nil, err
	}
	return &profile, nil
}

// SaveProfile creates or updates a profile
func (s *ProfileService) SaveProfile(ctx context.Context, profile *models.Profile) error {
	if err := utils.Validate.Struct(profile); err != nil {
		return fmt.Errorf("%s: %w", utils.ValidationMessages(err), ErrInvalidInput)
	}
	if profile.PropertyIDs == nil {
		profile.PropertyIDs = []string{}
	}

	return s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "email", "role", "property_ids", "updated_at"}),
	}).Create(profile).Error
}
