// sqlstore.go
//
// gorm document store
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of backoffice-propsdb.
// backoffice-propsdb is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// backoffice-propsdb is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with backoffice-propsdb.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/localnerve/backoffice-propsdb/internal/models"
	"github.com/localnerve/backoffice-propsdb/internal/store"
	"github.com/localnerve/backoffice-propsdb/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
	"gorm.io/hints"
)

var _ store.DocumentStore = (*Store)(nil)

// Store keeps resource documents in the resource_documents table
type Store struct {
	db *gorm.DB
}

// New creates a Store over an open, migrated gorm connection
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) quiet(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Session(&gorm.Session{Logger: s.db.Logger.LogMode(logger.Silent)})
}

// List returns the documents of a resource, oldest first
func (s *Store) List(ctx context.Context, resource, propertyID string) ([]store.Document, error) {
	var rows []models.ResourceDocument
	query := s.quiet(ctx).
		Clauses(hints.Comment("select", "resource:"+resource)).
		Where("resource = ?", resource)
	if propertyID != "" {
		query = query.Where("property_id = ?", propertyID)
	}
	if err := query.Order("created_at, id").Find(&rows).Error; err != nil {
		return nil, err
	}

	docs := make([]store.Document, 0, len(rows))
	for i := range rows {
		doc, err := toDocument(&rows[i])
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	return docs, nil
}

// Get returns one document by id
func (s *Store) Get(ctx context.Context, resource, id string) (*store.Document, error) {
	var row models.ResourceDocument
	err := s.quiet(ctx).
		Where("resource = ? AND id = ?", resource, id).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return toDocument(&row)
}

// FindByProperty returns the first document created for the property
func (s *Store) FindByProperty(ctx context.Context, resource, propertyID string) (*store.Document, error) {
	var row models.ResourceDocument
	err := s.quiet(ctx).
		Where("resource = ? AND property_id = ?", resource, propertyID).
		Order("created_at, id").
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return toDocument(&row)
}

// Create inserts a new document at version 1, assigning an id if it has none
func (s *Store) Create(ctx context.Context, doc *store.Document) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	body, err := models.NewJSON(doc.Body)
	if err != nil {
		return fmt.Errorf("failed to encode document body: %w", err)
	}

	row := models.ResourceDocument{
		ID:         doc.ID,
		Resource:   doc.Resource,
		PropertyID: doc.PropertyID,
		Version:    1,
		Body:       body,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return err
	}

	doc.Version = row.Version
	doc.CreatedAt = row.CreatedAt
	doc.UpdatedAt = row.UpdatedAt
	return nil
}

// Update locks the row, applies fn and bumps the version in one transaction
func (s *Store) Update(ctx context.Context, resource, id string, expected types.Version, fn store.Mutation) (*store.Document, error) {
	var updated *store.Document

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row models.ResourceDocument
		if err := tx.Session(&gorm.Session{Logger: tx.Logger.LogMode(logger.Silent)}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("resource = ? AND id = ?", resource, id).
			First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return store.ErrNotFound
			}
			return err
		}

		if err := store.CheckVersion(row.Version, expected); err != nil {
			return err
		}

		doc, err := toDocument(&row)
		if err != nil {
			return err
		}
		if err := fn(doc); err != nil {
			return err
		}

		body, err := models.NewJSON(doc.Body)
		if err != nil {
			return fmt.Errorf("failed to encode document body: %w", err)
		}

		next := row.Version + 1
		now := time.Now()
		result := tx.Model(&models.ResourceDocument{}).
			Where("id = ? AND version = ?", row.ID, row.Version).
			Updates(map[string]interface{}{
				"property_id": doc.PropertyID,
				"body":        body,
				"version":     next,
				"updated_at":  now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return store.ErrVersion
		}

		doc.Version = next
		doc.UpdatedAt = now
		updated = doc
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// Delete removes a document, honoring expected when it is set
func (s *Store) Delete(ctx context.Context, resource, id string, expected types.Version) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row models.ResourceDocument
		if err := tx.Session(&gorm.Session{Logger: tx.Logger.LogMode(logger.Silent)}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("resource = ? AND id = ?", resource, id).
			First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return store.ErrNotFound
			}
			return err
		}

		if err := store.CheckVersion(row.Version, expected); err != nil {
			return err
		}

		result := tx.Where("id = ? AND version = ?", row.ID, row.Version).
			Delete(&models.ResourceDocument{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return store.ErrVersion
		}
		return nil
	})
}

// Ping checks the underlying connection
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func toDocument(row *models.ResourceDocument) (*store.Document, error) {
	body, err := row.Body.Object()
	if err != nil {
		return nil, fmt.Errorf("document %s has a malformed body: %w", row.ID, err)
	}
	return &store.Document{
		ID:         row.ID,
		Resource:   row.Resource,
		PropertyID: row.PropertyID,
		Version:    row.Version,
		Body:       body,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}, nil
}
