package client

import (
	"encoding/json"
	"strconv"

	"github.com/localnerve/backoffice-propsdb/pkg/nested"
)

// Role labels returned by the API
const (
	RoleCAdmin       = "cadmin"
	RoleAdmin        = "admin"
	RolePropertyUser = "property_user"
)

// Resource kinds
const (
	KindRecord = "record"
	KindReport = "report"
)

// Record is a document or nested item as decoded from JSON
type Record map[string]interface{}

// ID returns the "id" of the record, or "" when it has none
func (r Record) ID() string {
	id, _ := nested.IDOf(map[string]interface{}(r))
	return id
}

// PropertyID returns the "property_id" of the record
func (r Record) PropertyID() string {
	s, _ := r["property_id"].(string)
	return s
}

// Version returns the document version, or 0 when absent
func (r Record) Version() uint64 {
	switch v := r["version"].(type) {
	case float64:
		if v > 0 {
			return uint64(v)
		}
	case json.Number:
		n, _ := strconv.ParseUint(v.String(), 10, 64)
		return n
	case uint64:
		return v
	case int:
		if v > 0 {
			return uint64(v)
		}
	}
	return 0
}

// Items returns the nested array field as records. Non-object entries are skipped.
func (r Record) Items(field string) []Record {
	items, err := nested.Items(map[string]interface{}(r), field)
	if err != nil {
		return nil
	}
	out := make([]Record, 0, len(items))
	for _, item := range items {
		if m, err := nested.AsObject(item); err == nil {
			out = append(out, Record(m))
		}
	}
	return out
}

// Clone returns a shallow copy of the record
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Field describes a nested array or object of a resource
type Field struct {
	Name     string   `json:"name"`
	Fields   []string `json:"fields"`
	Required []string `json:"required,omitempty"`
}

// Definition describes one resource served by the API
type Definition struct {
	Name           string   `json:"name"`
	Title          string   `json:"title"`
	Kind           string   `json:"kind"`
	PropertyScoped bool     `json:"property_scoped"`
	Required       []string `json:"required,omitempty"`
	Arrays         []Field  `json:"arrays"`
	Objects        []Field  `json:"objects,omitempty"`
	EditRoles      []string `json:"edit_roles"`
	DeleteRoles    []string `json:"delete_roles"`
}

// Array returns the nested array called name
func (d *Definition) Array(name string) (*Field, bool) {
	for i := range d.Arrays {
		if d.Arrays[i].Name == name {
			return &d.Arrays[i], true
		}
	}
	return nil, false
}

// Object returns the nested object called name
func (d *Definition) Object(name string) (*Field, bool) {
	for i := range d.Objects {
		if d.Objects[i].Name == name {
			return &d.Objects[i], true
		}
	}
	return nil, false
}

// Me is the caller as resolved by the server
type Me struct {
	UserID  string   `json:"user_id"`
	Email   string   `json:"email,omitempty"`
	Role    string   `json:"role"`
	Source  string   `json:"source"`
	Profile *Profile `json:"profile,omitempty"`
}

// Profile maps a user to a back-office role
type Profile struct {
	UserID      string   `json:"user_id"`
	Name        string   `json:"name,omitempty"`
	Email       string   `json:"email,omitempty"`
	Role        string   `json:"role"`
	PropertyIDs []string `json:"property_ids,omitempty"`
}

// Property is a managed site
type Property struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
}
