// page.go
//
// Resource page workflow over the back-office API
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

package client

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/localnerve/backoffice-propsdb/pkg/nested"
)

// Page errors returned without any request being made
var (
	ErrNotLoaded     = errors.New("page not loaded")
	ErrNotAllowed    = errors.New("action not allowed for the caller's role")
	ErrNoDraft       = errors.New("edit modal is not open")
	ErrUnknownRecord = errors.New("record not found on the page")
	ErrUnknownField  = errors.New("field not declared by the resource")
	ErrNoProperty    = errors.New("resource is scoped to a property and none is selected")
)

// Banner messages, one per kind of operation
const (
	msgFetch  = "Failed to fetch %s"
	msgSave   = "Failed to save changes"
	msgDelete = "Failed to delete %s"
)

// ValidationError lists required fields left empty in a draft
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Missing, ", ")
}

// Target addresses a record, or one nested field or item of it.
// An empty RecordID on a report resource means the property's report.
type Target struct {
	RecordID string
	Field    string
	// Ref addresses a nested array item by id, or by index for items without one.
	// Empty when adding an item.
	Ref string
}

// Selection is the payload of the view modal
type Selection struct {
	Target
	Record Record
}

// Draft is the payload of the edit modal
type Draft struct {
	Target
	Values Record
}

// PageOption configures a Page
type PageOption func(*Page)

// WithConfirm sets the blocking confirmation asked before every delete.
// Without one, deletes proceed unasked.
func WithConfirm(confirm func(prompt string) bool) PageOption {
	return func(p *Page) {
		p.confirm = confirm
	}
}

// WithLegacyWrites makes nested edits rewrite the nested array locally and PUT the whole
// parent document back, without a version check
func WithLegacyWrites() PageOption {
	return func(p *Page) {
		p.legacy = true
	}
}

// WithProfileScan resolves the caller's role by scanning the profile list for userID
// instead of asking /api/profile/me
func WithProfileScan(userID string) PageOption {
	return func(p *Page) {
		p.scanUserID = userID
	}
}

// Page is the list/view/edit/delete workflow of one resource scoped to a property.
//
// Every failed operation leaves one generic message in Error until the next
// successful operation; Err keeps the underlying error. A Page is not safe for
// concurrent use.
type Page struct {
	client     *Client
	resource   string
	propertyID string

	confirm    func(prompt string) bool
	legacy     bool
	scanUserID string

	def     *Definition
	role    string
	records []Record
	message string
	err     error

	View Modal[Selection]
	Edit Modal[Draft]
}

// NewPage creates the page of resource for propertyID. Call Load before anything else.
func NewPage(c *Client, resource, propertyID string, opts ...PageOption) *Page {
	p := &Page{
		client:     c,
		resource:   resource,
		propertyID: propertyID,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Load fetches the resource definition and the caller's role, then the list
func (p *Page) Load(ctx context.Context) error {
	def, err := p.client.Definition(ctx, p.resource)
	if err != nil {
		return p.fail(fmt.Sprintf(msgFetch, p.resource), err)
	}
	p.def = def

	role, err := p.fetchRole(ctx)
	if err != nil {
		return p.fail(fmt.Sprintf(msgFetch, p.title()), err)
	}
	p.role = role

	return p.Refresh(ctx)
}

func (p *Page) fetchRole(ctx context.Context) (string, error) {
	if p.scanUserID == "" {
		me, err := p.client.Me(ctx)
		if err != nil {
			return "", err
		}
		return me.Role, nil
	}

	profiles, err := p.client.Profiles(ctx)
	if err != nil {
		return "", err
	}
	for _, profile := range profiles {
		if profile.UserID == p.scanUserID {
			return profile.Role, nil
		}
	}
	return "", nil
}

// Refresh replaces the list with the server's current documents
func (p *Page) Refresh(ctx context.Context) error {
	if p.def == nil {
		return ErrNotLoaded
	}

	propertyID := ""
	if p.def.PropertyScoped {
		if p.propertyID == "" {
			p.records = nil
			return p.fail(fmt.Sprintf(msgFetch, p.title()), ErrNoProperty)
		}
		propertyID = p.propertyID
	}

	records, err := p.client.List(ctx, p.resource, propertyID)
	if err != nil {
		return p.fail(fmt.Sprintf(msgFetch, p.title()), err)
	}

	p.records = records
	p.clear()
	return nil
}

// Definition returns the loaded resource definition
func (p *Page) Definition() *Definition {
	return p.def
}

// Role returns the caller's role, "" when unknown
func (p *Page) Role() string {
	return p.role
}

// Records returns the documents of the last successful fetch
func (p *Page) Records() []Record {
	return p.records
}

// Items returns the nested array field of a record
func (p *Page) Items(recordID, field string) []Record {
	record, ok := p.record(recordID)
	if !ok {
		return nil
	}
	return record.Items(field)
}

// Error returns the message of the last failed operation, "" after a success
func (p *Page) Error() string {
	return p.message
}

// Err returns the error behind Error
func (p *Page) Err() error {
	return p.err
}

// CanAdd reports whether the caller may add records and nested items
func (p *Page) CanAdd() bool {
	return p.def != nil && contains(p.def.EditRoles, p.role)
}

// CanEdit reports whether the caller may edit records and nested items
func (p *Page) CanEdit() bool {
	return p.CanAdd()
}

// CanDelete reports whether the caller may delete records and nested items
func (p *Page) CanDelete() bool {
	return p.def != nil && contains(p.def.DeleteRoles, p.role)
}

// OpenView opens the read-only modal on a record, or on one nested item when field
// and ref are given. Nothing is sent to the server.
func (p *Page) OpenView(recordID, field, ref string) error {
	record, ok := p.record(recordID)
	if !ok {
		return ErrUnknownRecord
	}

	shown := record
	if field != "" {
		item, err := p.locate(record, field, ref)
		if err != nil {
			return err
		}
		shown = item
	}

	p.View.Open(Selection{Target: Target{RecordID: record.ID(), Field: field, Ref: ref}, Record: shown})
	return nil
}

// CloseView closes the read-only modal
func (p *Page) CloseView() {
	p.View.Close()
}

// OpenCreate opens the edit modal on an empty record
func (p *Page) OpenCreate() error {
	if err := p.gate(p.CanAdd); err != nil {
		return err
	}
	if p.def.Kind == KindReport {
		return fmt.Errorf("%s keeps one report per property: %w", p.resource, ErrNotAllowed)
	}
	p.Edit.Open(Draft{Values: Record{}})
	return nil
}

// OpenAddItem opens the edit modal on a new item of the nested array field.
// For report resources recordID may be empty; the report is created on submit when needed.
func (p *Page) OpenAddItem(recordID, field string) error {
	if err := p.gate(p.CanAdd); err != nil {
		return err
	}
	if _, ok := p.def.Array(field); !ok {
		return fmt.Errorf("%s: %w", field, ErrUnknownField)
	}
	if recordID == "" && p.def.Kind != KindReport {
		return ErrUnknownRecord
	}
	if recordID != "" {
		if _, ok := p.record(recordID); !ok {
			return ErrUnknownRecord
		}
	}

	p.Edit.Open(Draft{Target: Target{RecordID: recordID, Field: field}, Values: Record{}})
	return nil
}

// OpenEdit opens the edit modal pre-filled with a record
func (p *Page) OpenEdit(recordID string) error {
	if err := p.gate(p.CanEdit); err != nil {
		return err
	}
	record, ok := p.record(recordID)
	if !ok {
		return ErrUnknownRecord
	}

	p.Edit.Open(Draft{Target: Target{RecordID: record.ID()}, Values: record.Clone()})
	return nil
}

// OpenEditItem opens the edit modal pre-filled with one nested item
func (p *Page) OpenEditItem(recordID, field, ref string) error {
	if err := p.gate(p.CanEdit); err != nil {
		return err
	}
	record, ok := p.record(recordID)
	if !ok {
		return ErrUnknownRecord
	}
	item, err := p.locate(record, field, ref)
	if err != nil {
		return err
	}

	p.Edit.Open(Draft{Target: Target{RecordID: record.ID(), Field: field, Ref: ref}, Values: item.Clone()})
	return nil
}

// OpenEditObject opens the edit modal pre-filled with a nested object field
func (p *Page) OpenEditObject(recordID, field string) error {
	if err := p.gate(p.CanEdit); err != nil {
		return err
	}
	if _, ok := p.def.Object(field); !ok {
		return fmt.Errorf("%s: %w", field, ErrUnknownField)
	}
	record, ok := p.record(recordID)
	if !ok {
		return ErrUnknownRecord
	}

	values := Record{}
	if current, ok := record[field].(map[string]interface{}); ok {
		values = Record(current).Clone()
	}
	p.Edit.Open(Draft{Target: Target{RecordID: record.ID(), Field: field}, Values: values})
	return nil
}

// SetValue sets one value of the open draft
func (p *Page) SetValue(key string, value interface{}) error {
	draft, ok := p.Edit.Payload()
	if !ok {
		return ErrNoDraft
	}
	draft.Values[key] = value
	return nil
}

// CloseEdit discards the open draft
func (p *Page) CloseEdit() {
	p.Edit.Close()
}

// Submit validates the open draft and writes it. A draft missing a required field
// returns a *ValidationError and sends nothing. On success the modal closes and the
// list is fetched again.
func (p *Page) Submit(ctx context.Context) error {
	draft, ok := p.Edit.Payload()
	if !ok {
		return ErrNoDraft
	}
	if missing := p.missingRequired(draft); len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}

	if err := p.write(ctx, draft); err != nil {
		return p.fail(msgSave, err)
	}

	p.Edit.Close()
	return p.Refresh(ctx)
}

func (p *Page) write(ctx context.Context, draft Draft) error {
	values := draft.Values.Clone()

	switch {
	case draft.Field == "" && draft.RecordID == "":
		if p.def.PropertyScoped && values.PropertyID() == "" {
			values["property_id"] = p.propertyID
		}
		_, err := p.client.Create(ctx, p.resource, values)
		return err

	case draft.Field == "":
		if p.legacy {
			delete(values, "version")
		}
		_, err := p.client.Replace(ctx, p.resource, draft.RecordID, values)
		return err
	}

	parent, err := p.parent(ctx, draft.RecordID)
	if err != nil {
		return err
	}

	if _, isObject := p.def.Object(draft.Field); isObject {
		if p.legacy {
			return p.replaceParent(ctx, parent, draft.Field, map[string]interface{}(values))
		}
		_, err := p.client.SetObject(ctx, p.resource, parent.ID(), draft.Field, values, parent.Version())
		return err
	}

	if draft.Ref == "" {
		if p.legacy {
			if values.ID() == "" {
				values["id"] = uuid.NewString()
			}
			items, err := nested.Items(parent, draft.Field)
			if err != nil {
				return err
			}
			return p.replaceParent(ctx, parent, draft.Field, nested.Append(items, values))
		}
		_, err := p.client.AppendItem(ctx, p.resource, parent.ID(), draft.Field, values, parent.Version())
		return err
	}

	if p.legacy {
		items, err := nested.Items(parent, draft.Field)
		if err != nil {
			return err
		}
		replaced, err := nested.Replace(items, draft.Ref, values)
		if err != nil {
			return err
		}
		return p.replaceParent(ctx, parent, draft.Field, replaced)
	}
	_, err = p.client.ReplaceItem(ctx, p.resource, parent.ID(), draft.Field, draft.Ref, values, parent.Version())
	return err
}

// Delete asks for confirmation, then deletes a record. It reports whether a delete was sent.
func (p *Page) Delete(ctx context.Context, recordID string) (bool, error) {
	if err := p.gate(p.CanDelete); err != nil {
		return false, err
	}
	record, ok := p.record(recordID)
	if !ok {
		return false, ErrUnknownRecord
	}
	if !p.confirmed(fmt.Sprintf("Delete this %s record?", p.title())) {
		return false, nil
	}

	version := record.Version()
	if p.legacy {
		version = 0
	}
	if err := p.client.Delete(ctx, p.resource, record.ID(), version); err != nil {
		return true, p.fail(fmt.Sprintf(msgDelete, p.title()), err)
	}
	return true, p.Refresh(ctx)
}

// DeleteItem asks for confirmation, then removes one nested item. It reports whether a
// request was sent.
func (p *Page) DeleteItem(ctx context.Context, recordID, field, ref string) (bool, error) {
	if err := p.gate(p.CanDelete); err != nil {
		return false, err
	}
	record, ok := p.record(recordID)
	if !ok {
		return false, ErrUnknownRecord
	}
	if _, err := p.locate(record, field, ref); err != nil {
		return false, err
	}
	if !p.confirmed(fmt.Sprintf("Delete this %s entry?", strings.ReplaceAll(field, "_", " "))) {
		return false, nil
	}

	var err error
	if p.legacy {
		var items []interface{}
		items, err = nested.Items(record, field)
		if err == nil {
			items, err = nested.Remove(items, ref)
		}
		if err == nil {
			err = p.replaceParent(ctx, record, field, items)
		}
	} else {
		_, err = p.client.RemoveItem(ctx, p.resource, record.ID(), field, ref, record.Version())
	}
	if err != nil {
		return true, p.fail(fmt.Sprintf(msgDelete, p.title()), err)
	}
	return true, p.Refresh(ctx)
}

// parent resolves the document a nested write goes to, creating the property's
// report when a report resource has none yet
func (p *Page) parent(ctx context.Context, recordID string) (Record, error) {
	if record, ok := p.record(recordID); ok {
		return record, nil
	}
	if recordID == "" && p.def.Kind == KindReport {
		if p.propertyID == "" {
			return nil, ErrNoProperty
		}
		return p.client.EnsureReport(ctx, p.resource, p.propertyID)
	}
	return nil, ErrUnknownRecord
}

// replaceParent PUTs the parent back with field swapped for value
func (p *Page) replaceParent(ctx context.Context, parent Record, field string, value interface{}) error {
	body := parent.Clone()
	delete(body, "version")
	body[field] = value
	_, err := p.client.Replace(ctx, p.resource, parent.ID(), body)
	return err
}

func (p *Page) record(recordID string) (Record, bool) {
	if recordID == "" {
		if p.def == nil || p.def.Kind != KindReport || p.propertyID == "" {
			return nil, false
		}
		for _, r := range p.records {
			if r.PropertyID() == p.propertyID {
				return r, true
			}
		}
		return nil, false
	}
	for _, r := range p.records {
		if r.ID() == recordID {
			return r, true
		}
	}
	return nil, false
}

func (p *Page) locate(record Record, field, ref string) (Record, error) {
	if _, ok := p.def.Array(field); !ok {
		return nil, fmt.Errorf("%s: %w", field, ErrUnknownField)
	}
	items, err := nested.Items(record, field)
	if err != nil {
		return nil, err
	}
	idx, ok := nested.Locate(items, ref)
	if !ok {
		return nil, fmt.Errorf("%s[%s]: %w", field, ref, nested.ErrItemNotFound)
	}
	item, err := nested.AsObject(items[idx])
	if err != nil {
		return nil, err
	}
	return Record(item), nil
}

func (p *Page) missingRequired(draft Draft) []string {
	required := p.def.Required
	if draft.Field != "" {
		if f, ok := p.def.Array(draft.Field); ok {
			required = f.Required
		} else if f, ok := p.def.Object(draft.Field); ok {
			required = f.Required
		}
	}

	var missing []string
	for _, key := range required {
		v, ok := draft.Values[key]
		if !ok || v == nil {
			missing = append(missing, key)
			continue
		}
		if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
			missing = append(missing, key)
		}
	}
	return missing
}

func (p *Page) gate(allowed func() bool) error {
	if p.def == nil {
		return ErrNotLoaded
	}
	if !allowed() {
		return ErrNotAllowed
	}
	return nil
}

func (p *Page) confirmed(prompt string) bool {
	return p.confirm == nil || p.confirm(prompt)
}

func (p *Page) fail(message string, err error) error {
	p.message = message
	p.err = err
	return err
}

func (p *Page) clear() {
	p.message = ""
	p.err = nil
}

func (p *Page) title() string {
	if p.def != nil && p.def.Title != "" {
		return p.def.Title
	}
	return p.resource
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
