// item_service.go
//
// Nested item operations of the resource document service
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

	"github.com/google/uuid"
	"github.com/localnerve/backoffice-propsdb/internal/resources"
	"github.com/localnerve/backoffice-propsdb/internal/store"
	"github.com/localnerve/backoffice-propsdb/internal/types"
	"github.com/localnerve/backoffice-propsdb/pkg/nested"
)

// AppendItem adds item to the nested array field, giving it an id when it has none
func (s *DocumentService) AppendItem(ctx context.Context, resource, id, field string, item map[string]interface{}, version types.Version) (*store.Document, error) {
	def, err := s.arrayField(resource, field)
	if err != nil {
		return nil, err
	}
	if err := checkItem(def, item); err != nil {
		return nil, err
	}

	entry := copyItem(item)
	if _, ok := nested.IDOf(entry); !ok {
		entry[nested.IDField] = uuid.NewString()
	}

	return s.mutateArray(ctx, resource, id, field, version, func(items []interface{}) ([]interface{}, error) {
		if itemID, _ := nested.IDOf(entry); itemID != "" {
			if nested.HasID(items, itemID) {
				return nil, fmt.Errorf("%s already has an item %q: %w", field, itemID, ErrInvalidInput)
			}
		}
		return nested.Append(items, entry), nil
	})
}

// ReplaceItem swaps the item addressed by ref for item. The addressed item keeps its id;
// siblings are left untouched and in order.
func (s *DocumentService) ReplaceItem(ctx context.Context, resource, id, field, ref string, item map[string]interface{}, version types.Version) (*store.Document, error) {
	def, err := s.arrayField(resource, field)
	if err != nil {
		return nil, err
	}
	if err := checkItem(def, item); err != nil {
		return nil, err
	}

	entry := copyItem(item)
	delete(entry, nested.IDField)

	return s.mutateArray(ctx, resource, id, field, version, func(items []interface{}) ([]interface{}, error) {
		return nested.Replace(items, ref, entry)
	})
}

// RemoveItem filters the item addressed by ref out of the nested array field
func (s *DocumentService) RemoveItem(ctx context.Context, resource, id, field, ref string, version types.Version) (*store.Document, error) {
	if _, err := s.arrayField(resource, field); err != nil {
		return nil, err
	}

	return s.mutateArray(ctx, resource, id, field, version, func(items []interface{}) ([]interface{}, error) {
		return nested.Remove(items, ref)
	})
}

// SetObject replaces the nested object field
func (s *DocumentService) SetObject(ctx context.Context, resource, id, field string, object map[string]interface{}, version types.Version) (*store.Document, error) {
	res, err := s.Resource(resource)
	if err != nil {
		return nil, err
	}
	def, ok := res.Object(field)
	if !ok {
		return nil, fmt.Errorf("%s.%s: %w", resource, field, ErrUnknownField)
	}
	if err := checkItem(def, object); err != nil {
		return nil, err
	}

	value := copyItem(object)
	doc, err := s.Store.Update(ctx, resource, id, version, func(doc *store.Document) error {
		doc.Body[field] = value
		return nil
	})
	if err != nil {
		return nil, wrapNotFound(err, "%s %s", resource, id)
	}
	return doc, nil
}

func (s *DocumentService) arrayField(resource, field string) (*resources.Field, error) {
	res, err := s.Resource(resource)
	if err != nil {
		return nil, err
	}
	def, ok := res.Array(field)
	if !ok {
		return nil, fmt.Errorf("%s.%s: %w", resource, field, ErrUnknownField)
	}
	return def, nil
}

func (s *DocumentService) mutateArray(ctx context.Context, resource, id, field string, version types.Version, fn func([]interface{}) ([]interface{}, error)) (*store.Document, error) {
	doc, err := s.Store.Update(ctx, resource, id, version, func(doc *store.Document) error {
		items, err := nested.Items(doc.Body, field)
		if err != nil {
			return fmt.Errorf("%s: %w", err.Error(), ErrInvalidInput)
		}
		updated, err := fn(items)
		if err != nil {
			return err
		}
		doc.Body[field] = updated
		return nil
	})
	if err != nil {
		if errors.Is(err, nested.ErrItemNotFound) {
			return nil, fmt.Errorf("%s %s %s: %w", resource, id, field, ErrNotFound)
		}
		return nil, wrapNotFound(err, "%s %s", resource, id)
	}
	return doc, nil
}

func checkItem(def *resources.Field, item map[string]interface{}) error {
	if item == nil {
		return fmt.Errorf("%s: body must be an object: %w", def.Name, ErrInvalidInput)
	}
	if missing := def.MissingRequired(item); len(missing) > 0 {
		return fmt.Errorf("%s: missing required fields %s: %w", def.Name, strings.Join(missing, ", "), ErrInvalidInput)
	}
	return nil
}

func copyItem(item map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(item)+1)
	for k, v := range item {
		out[k] = v
	}
	return out
}
