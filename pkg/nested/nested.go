// nested.go
//
// Nested array transformations
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

// Package nested implements the in-place transformations applied to a document's nested
// arrays: append, replace-by-id-or-index and remove-by-id-or-index.
//
// Items are decoded JSON objects. An item may carry an "id"; items without one are
// addressed by their array index. Every function returns a new slice and leaves the
// input untouched, so a failed write never leaves a half-edited document behind.
package nested

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/localnerve/backoffice-propsdb/internal/types"
)

// IDField is the key nested items use for their identifier
const IDField = "id"

var (
	// ErrItemNotFound is returned when a reference matches no item
	ErrItemNotFound = errors.New("nested item not found")
	// ErrNotArray is returned when a document field exists but is not an array
	ErrNotArray = errors.New("field is not an array")
	// ErrNotObject is returned when an item is not a JSON object
	ErrNotObject = errors.New("nested item is not an object")
)

// IDOf returns the identifier of an item, if it has one
func IDOf(item interface{}) (string, bool) {
	m, ok := item.(map[string]interface{})
	if !ok {
		return "", false
	}
	v, ok := m[IDField]
	if !ok || v == nil {
		return "", false
	}
	id := types.Stringify(v)
	return id, id != ""
}

// Items returns the array stored at field. A missing or null field is an empty array.
func Items(doc map[string]interface{}, field string) ([]interface{}, error) {
	v, ok := doc[field]
	if !ok || v == nil {
		return []interface{}{}, nil
	}
	items, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%s: %w", field, ErrNotArray)
	}
	return items, nil
}

// Locate finds the item addressed by ref. An item whose id equals ref wins; otherwise ref
// is read as an array index, which only addresses items that have no id yet.
func Locate(items []interface{}, ref string) (int, bool) {
	for i, item := range items {
		if id, ok := IDOf(item); ok && id == ref {
			return i, true
		}
	}

	idx, err := strconv.Atoi(ref)
	if err != nil || idx < 0 || idx >= len(items) {
		return -1, false
	}
	if _, hasID := IDOf(items[idx]); hasID {
		return -1, false
	}
	return idx, true
}

// HasID reports whether some item carries id. Indexes are not considered.
func HasID(items []interface{}, id string) bool {
	for _, item := range items {
		if itemID, ok := IDOf(item); ok && itemID == id {
			return true
		}
	}
	return false
}

// Append returns a copy of items with item added at the end
func Append(items []interface{}, item map[string]interface{}) []interface{} {
	out := make([]interface{}, 0, len(items)+1)
	out = append(out, items...)
	return append(out, item)
}

// Replace returns a copy of items with the item addressed by ref swapped for item.
// The replaced item keeps its id when the replacement does not carry one.
// Siblings keep their values and order.
func Replace(items []interface{}, ref string, item map[string]interface{}) ([]interface{}, error) {
	idx, ok := Locate(items, ref)
	if !ok {
		return nil, fmt.Errorf("%q: %w", ref, ErrItemNotFound)
	}

	if _, hasID := IDOf(items[idx]); hasID {
		if _, replacementHasID := IDOf(item); !replacementHasID {
			merged := make(map[string]interface{}, len(item)+1)
			for k, v := range item {
				merged[k] = v
			}
			merged[IDField] = items[idx].(map[string]interface{})[IDField]
			item = merged
		}
	}

	out := make([]interface{}, len(items))
	copy(out, items)
	out[idx] = item
	return out, nil
}

// Remove returns a copy of items without the item addressed by ref
func Remove(items []interface{}, ref string) ([]interface{}, error) {
	idx, ok := Locate(items, ref)
	if !ok {
		return nil, fmt.Errorf("%q: %w", ref, ErrItemNotFound)
	}

	out := make([]interface{}, 0, len(items)-1)
	out = append(out, items[:idx]...)
	return append(out, items[idx+1:]...), nil
}

// AsObject converts a decoded JSON value to an item
func AsObject(v interface{}) (map[string]interface{}, error) {
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, ErrNotObject
	}
	return m, nil
}
