package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/localnerve/backoffice-propsdb/internal/logger"
	"github.com/localnerve/backoffice-propsdb/internal/models"
	"github.com/localnerve/backoffice-propsdb/internal/services"
	"go.uber.org/zap"
)

// SeedSet is the layout of the embedded demo data
type SeedSet struct {
	Properties []models.Property `json:"properties"`
	Profiles   []models.Profile  `json:"profiles"`
	Documents  []struct {
		Resource string                 `json:"resource"`
		Body     map[string]interface{} `json:"body"`
	} `json:"documents"`
}

// Seed loads raw demo data through the services. It does nothing when any
// property already exists, so restarting with SEED_DATA set is harmless.
func Seed(ctx context.Context, raw []byte, properties *services.PropertyService, profiles *services.ProfileService, docs *services.DocumentService) error {
	var set SeedSet
	if err := json.Unmarshal(raw, &set); err != nil {
		return fmt.Errorf("failed to parse seed data: %w", err)
	}

	existing, err := properties.ListProperties(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		logger.Log.Info("seed skipped, properties already present", zap.Int("properties", len(existing)))
		return nil
	}

	for i := range set.Properties {
		if err := properties.SaveProperty(ctx, &set.Properties[i]); err != nil {
			return fmt.Errorf("seed property %s: %w", set.Properties[i].ID, err)
		}
	}
	for i := range set.Profiles {
		if err := profiles.SaveProfile(ctx, &set.Profiles[i]); err != nil {
			return fmt.Errorf("seed profile %s: %w", set.Profiles[i].UserID, err)
		}
	}
	for _, d := range set.Documents {
		if _, err := docs.CreateDocument(ctx, d.Resource, d.Body); err != nil {
			return fmt.Errorf("seed %s document: %w", d.Resource, err)
		}
	}

	logger.Log.Info("seed data loaded",
		zap.Int("properties", len(set.Properties)),
		zap.Int("profiles", len(set.Profiles)),
		zap.Int("documents", len(set.Documents)))
	return nil
}
