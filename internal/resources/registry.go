package resources

import (
	"fmt"
	"sort"
	"strings"
)

// Role labels carried by the caller's token
const (
	RoleCAdmin       = "cadmin"
	RoleAdmin        = "admin"
	RolePropertyUser = "property_user"
)

// Kind tells how documents of a resource are organized
type Kind string

const (
	// KindRecord resources hold any number of top-level records per property
	KindRecord Kind = "record"
	// KindReport resources hold one report document per property whose nested
	// arrays are the actual entries
	KindReport Kind = "report"
)

var defaultEditRoles = []string{RoleCAdmin, RoleAdmin}

// Field describes a nested array or nested object of a resource document
type Field struct {
	Name     string   `json:"name"`
	Fields   []string `json:"fields"`
	Required []string `json:"required,omitempty"`
}

// MissingRequired lists the required keys that are absent or blank in item
func (f Field) MissingRequired(item map[string]interface{}) []string {
	return missing(f.Required, item)
}

// Resource is the declarative definition of one REST collection
type Resource struct {
	Name           string   `json:"name"`
	Title          string   `json:"title"`
	Kind           Kind     `json:"kind"`
	PropertyScoped bool     `json:"property_scoped"`
	Required       []string `json:"required,omitempty"`
	Arrays         []Field  `json:"arrays"`
	Objects        []Field  `json:"objects,omitempty"`
	EditRoles      []string `json:"edit_roles"`
	DeleteRoles    []string `json:"delete_roles"`
}

// Array returns the nested array definition called name
func (r *Resource) Array(name string) (*Field, bool) {
	for i := range r.Arrays {
		if r.Arrays[i].Name == name {
			return &r.Arrays[i], true
		}
	}
	return nil, false
}

// Object returns the nested object definition called name
func (r *Resource) Object(name string) (*Field, bool) {
	for i := range r.Objects {
		if r.Objects[i].Name == name {
			return &r.Objects[i], true
		}
	}
	return nil, false
}

// MissingRequired lists the required top-level keys absent or blank in body
func (r *Resource) MissingRequired(body map[string]interface{}) []string {
	return missing(r.Required, body)
}

// CanEdit reports whether role may add or edit documents and nested items
func (r *Resource) CanEdit(role string) bool {
	return hasRole(r.EditRoles, role)
}

// CanDelete reports whether role may delete documents and nested items
func (r *Resource) CanDelete(role string) bool {
	return hasRole(r.DeleteRoles, role)
}

// Skeleton returns the body of an empty document: every nested array present and empty
func (r *Resource) Skeleton() map[string]interface{} {
	body := make(map[string]interface{}, len(r.Arrays))
	for _, a := range r.Arrays {
		body[a.Name] = []interface{}{}
	}
	return body
}

// Registry holds the resource definitions served by the API
type Registry struct {
	byName map[string]*Resource
	names  []string
}

// NewRegistry validates the definitions and indexes them by name
func NewRegistry(defs ...Resource) (*Registry, error) {
	reg := &Registry{byName: make(map[string]*Resource, len(defs))}

	for i := range defs {
		def := defs[i]
		if def.Name == "" {
			return nil, fmt.Errorf("resource %d has no name", i)
		}
		if _, dup := reg.byName[def.Name]; dup {
			return nil, fmt.Errorf("duplicate resource %q", def.Name)
		}
		if def.Kind != KindRecord && def.Kind != KindReport {
			return nil, fmt.Errorf("resource %q has unknown kind %q", def.Name, def.Kind)
		}
		if def.Kind == KindReport && !def.PropertyScoped {
			return nil, fmt.Errorf("report resource %q must be property scoped", def.Name)
		}

		seen := make(map[string]struct{})
		for _, f := range append(append([]Field{}, def.Arrays...), def.Objects...) {
			if _, dup := seen[f.Name]; dup {
				return nil, fmt.Errorf("resource %q declares field %q twice", def.Name, f.Name)
			}
			seen[f.Name] = struct{}{}
		}

		if len(def.EditRoles) == 0 {
			def.EditRoles = defaultEditRoles
		}
		if len(def.DeleteRoles) == 0 {
			def.DeleteRoles = defaultEditRoles
		}
		if def.Title == "" {
			def.Title = strings.ReplaceAll(def.Name, "-", " ")
		}

		reg.byName[def.Name] = &def
		reg.names = append(reg.names, def.Name)
	}

	sort.Strings(reg.names)
	return reg, nil
}

// Lookup returns the resource called name
func (reg *Registry) Lookup(name string) (*Resource, bool) {
	r, ok := reg.byName[name]
	return r, ok
}

// All returns every resource ordered by name
func (reg *Registry) All() []*Resource {
	out := make([]*Resource, 0, len(reg.names))
	for _, name := range reg.names {
		out = append(out, reg.byName[name])
	}
	return out
}

func hasRole(roles []string, role string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

func missing(required []string, values map[string]interface{}) []string {
	var out []string
	for _, key := range required {
		v, ok := values[key]
		if !ok || v == nil {
			out = append(out, key)
			continue
		}
		if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
			out = append(out, key)
		}
	}
	return out
}
