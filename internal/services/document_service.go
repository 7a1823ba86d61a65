// document_service.go
//
// Resource document service
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

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/localnerve/backoffice-propsdb/internal/logger"
	"github.com/localnerve/backoffice-propsdb/internal/resources"
	"github.com/localnerve/backoffice-propsdb/internal/store"
	"github.com/localnerve/backoffice-propsdb/internal/types"
	"go.uber.org/zap"
)

// PropertyLookup reports whether a property exists
type PropertyLookup interface {
	PropertyExists(ctx context.Context, id string) (bool, error)
}

// DocumentService implements the resource document operations over a DocumentStore
type DocumentService struct {
	Store      store.DocumentStore
	Registry   *resources.Registry
	Properties PropertyLookup
}

// NewDocumentService creates a DocumentService. properties may be nil to skip
// the property existence check.
func NewDocumentService(st store.DocumentStore, reg *resources.Registry, properties PropertyLookup) *DocumentService {
	return &DocumentService{Store: st, Registry: reg, Properties: properties}
}

// Resource looks up a registered resource by name
func (s *DocumentService) Resource(name string) (*resources.Resource, error) {
	res, ok := s.Registry.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("resource %q: %w", name, ErrNotFound)
	}
	return res, nil
}

// ListDocuments returns the documents of a resource, filtered by property when propertyID is set
func (s *DocumentService) ListDocuments(ctx context.Context, resource, propertyID string) ([]store.Document, error) {
	if _, err := s.Resource(resource); err != nil {
		return nil, err
	}
	return s.Store.List(ctx, resource, propertyID)
}

// GetDocument returns one document
func (s *DocumentService) GetDocument(ctx context.Context, resource, id string) (*store.Document, error) {
	if _, err := s.Resource(resource); err != nil {
		return nil, err
	}
	doc, err := s.Store.Get(ctx, resource, id)
	if err != nil {
		return nil, wrapNotFound(err, "%s %s", resource, id)
	}
	return doc, nil
}

// CreateDocument stores body as a new document at version 1.
// Declared nested arrays missing from body are created empty.
func (s *DocumentService) CreateDocument(ctx context.Context, resource string, body map[string]interface{}) (*store.Document, error) {
	res, err := s.Resource(resource)
	if err != nil {
		return nil, err
	}

	propertyID, fields := splitBody(body)
	if err := s.checkScope(ctx, res, propertyID); err != nil {
		return nil, err
	}
	if err := checkBody(res, fields); err != nil {
		return nil, err
	}

	for name, empty := range res.Skeleton() {
		if v, ok := fields[name]; !ok || v == nil {
			fields[name] = empty
		}
	}

	doc := &store.Document{
		Resource:   resource,
		PropertyID: propertyID,
		Body:       fields,
	}
	if err := s.Store.Create(ctx, doc); err != nil {
		return nil, err
	}

	logger.Log.Debug("document created",
		zap.String("resource", resource), zap.String("id", doc.ID), zap.String("property_id", propertyID))
	return doc, nil
}

// ReplaceDocument overwrites the stored body with body.
// A set version must match the stored one; an unset version overwrites unconditionally.
func (s *DocumentService) ReplaceDocument(ctx context.Context, resource, id string, body map[string]interface{}, version types.Version) (*store.Document, error) {
	res, err := s.Resource(resource)
	if err != nil {
		return nil, err
	}

	propertyID, fields := splitBody(body)
	if err := checkBody(res, fields); err != nil {
		return nil, err
	}
	if propertyID != "" {
		if err := s.checkScope(ctx, res, propertyID); err != nil {
			return nil, err
		}
	}

	doc, err := s.Store.Update(ctx, resource, id, version, func(doc *store.Document) error {
		if propertyID != "" && propertyID != doc.PropertyID {
			if res.Kind == resources.KindReport {
				return fmt.Errorf("%s %s belongs to property %q: %w", resource, id, doc.PropertyID, ErrInvalidInput)
			}
			doc.PropertyID = propertyID
		}
		doc.Body = fields
		return nil
	})
	if err != nil {
		return nil, wrapNotFound(err, "%s %s", resource, id)
	}
	return doc, nil
}

// DeleteDocument removes a document
func (s *DocumentService) DeleteDocument(ctx context.Context, resource, id string, version types.Version) error {
	if _, err := s.Resource(resource); err != nil {
		return err
	}
	if err := s.Store.Delete(ctx, resource, id, version); err != nil {
		return wrapNotFound(err, "%s %s", resource, id)
	}
	logger.Log.Debug("document deleted", zap.String("resource", resource), zap.String("id", id))
	return nil
}

// EnsureReport returns the report document of a property, creating an empty one
// when the property has none yet. The boolean reports whether it was created.
func (s *DocumentService) EnsureReport(ctx context.Context, resource, propertyID string) (*store.Document, bool, error) {
	res, err := s.Resource(resource)
	if err != nil {
		return nil, false, err
	}
	if res.Kind != resources.KindReport {
		return nil, false, fmt.Errorf("%s is not a report resource: %w", resource, ErrInvalidInput)
	}
	if err := s.checkScope(ctx, res, propertyID); err != nil {
		return nil, false, err
	}

	doc, err := s.Store.FindByProperty(ctx, resource, propertyID)
	if err == nil {
		return doc, false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, false, err
	}

	doc = &store.Document{
		Resource:   resource,
		PropertyID: propertyID,
		Body:       res.Skeleton(),
	}
	if err := s.Store.Create(ctx, doc); err != nil {
		return nil, false, err
	}

	logger.Log.Info("report created",
		zap.String("resource", resource), zap.String("id", doc.ID), zap.String("property_id", propertyID))
	return doc, true, nil
}

func (s *DocumentService) checkScope(ctx context.Context, res *resources.Resource, propertyID string) error {
	if propertyID == "" {
		if res.PropertyScoped {
			return fmt.Errorf("%s requires property_id: %w", res.Name, ErrInvalidInput)
		}
		return nil
	}
	if s.Properties == nil {
		return nil
	}

	ok, err := s.Properties.PropertyExists(ctx, propertyID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("property %q does not exist: %w", propertyID, ErrInvalidInput)
	}
	return nil
}

// splitBody copies body without the reserved keys and returns its property_id
func splitBody(body map[string]interface{}) (string, map[string]interface{}) {
	fields := make(map[string]interface{}, len(body))
	for k, v := range body {
		fields[k] = v
	}

	propertyID := ""
	if v, ok := fields[store.KeyPropertyID]; ok && v != nil {
		propertyID = strings.TrimSpace(types.Stringify(v))
	}
	for _, key := range store.ReservedKeys {
		delete(fields, key)
	}
	return propertyID, fields
}

// checkBody validates the shape of a full document body against the resource
func checkBody(res *resources.Resource, fields map[string]interface{}) error {
	if missing := res.MissingRequired(fields); len(missing) > 0 {
		return fmt.Errorf("missing required fields %s: %w", strings.Join(missing, ", "), ErrInvalidInput)
	}

	for _, a := range res.Arrays {
		v, ok := fields[a.Name]
		if !ok || v == nil {
			continue
		}
		items, isArray := v.([]interface{})
		if !isArray {
			return fmt.Errorf("%s must be an array: %w", a.Name, ErrInvalidInput)
		}
		for i, item := range items {
			if _, isObject := item.(map[string]interface{}); !isObject {
				return fmt.Errorf("%s[%d] must be an object: %w", a.Name, i, ErrInvalidInput)
			}
		}
	}

	for _, o := range res.Objects {
		v, ok := fields[o.Name]
		if !ok || v == nil {
			continue
		}
		if _, isObject := v.(map[string]interface{}); !isObject {
			return fmt.Errorf("%s must be an object: %w", o.Name, ErrInvalidInput)
		}
	}

	return nil
}

func wrapNotFound(err error, format string, args ...interface{}) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
	}
	return err
}
