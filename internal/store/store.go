// store.go
//
// Document store contract
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

// Package store defines the persistence boundary for resource documents.
//
// Two implementations exist: [sqlstore] keeps documents in the gorm database next to
// properties and profiles, [mongostore] keeps them in a MongoDB collection. Both apply
// mutations as a compare-and-swap on the document version, so a writer holding a stale
// copy gets [ErrVersion] instead of silently overwriting a newer document.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/localnerve/backoffice-propsdb/internal/types"
)

var (
	// ErrNotFound is returned when no document matches
	ErrNotFound = errors.New("not found")
	// ErrVersion is returned when the stored version differs from the expected one
	ErrVersion = errors.New("E_VERSION")
)

// Reserved document keys. They are columns, never part of the stored body.
const (
	KeyID         = "id"
	KeyPropertyID = "property_id"
	KeyVersion    = "version"
	KeyCreatedAt  = "created_at"
	KeyUpdatedAt  = "updated_at"
)

// ReservedKeys lists the keys stripped from incoming bodies
var ReservedKeys = []string{KeyID, KeyPropertyID, KeyVersion, KeyCreatedAt, KeyUpdatedAt}

// Document is a resource document as the service sees it
type Document struct {
	ID         string
	Resource   string
	PropertyID string
	Version    uint64
	Body       map[string]interface{}
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// MarshalJSON renders the document flat: { id, property_id, version, <body fields> }
func (d Document) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(d.Body)+5)
	for k, v := range d.Body {
		out[k] = v
	}
	out[KeyID] = d.ID
	out[KeyPropertyID] = d.PropertyID
	out[KeyVersion] = d.Version
	out[KeyCreatedAt] = d.CreatedAt.UTC().Format(time.RFC3339)
	out[KeyUpdatedAt] = d.UpdatedAt.UTC().Format(time.RFC3339)
	return json.Marshal(out)
}

// Mutation edits a loaded document in place. Returning an error aborts the write.
type Mutation func(doc *Document) error

// DocumentStore persists resource documents
type DocumentStore interface {
	// List returns the documents of a resource ordered by creation time.
	// An empty propertyID lists every property.
	List(ctx context.Context, resource, propertyID string) ([]Document, error)
	Get(ctx context.Context, resource, id string) (*Document, error)
	// FindByProperty returns the oldest document of the resource for a property
	FindByProperty(ctx context.Context, resource, propertyID string) (*Document, error)
	Create(ctx context.Context, doc *Document) error
	// Update loads the document, checks expected when it is set, applies fn and
	// writes the result with version+1.
	Update(ctx context.Context, resource, id string, expected types.Version, fn Mutation) (*Document, error)
	Delete(ctx context.Context, resource, id string, expected types.Version) error
	Ping(ctx context.Context) error
}

// CheckVersion compares a stored version with the client's expectation
func CheckVersion(stored uint64, expected types.Version) error {
	if expected.Set && expected.Value != stored {
		return ErrVersion
	}
	return nil
}
