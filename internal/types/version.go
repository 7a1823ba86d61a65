package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Version is an optional document version sent by clients for optimistic locking.
// It unmarshals from a JSON number or a numeric string; Set reports whether the
// client supplied one at all.
type Version struct {
	Value uint64
	Set   bool
}

// NewVersion returns a Version that is set to v
func NewVersion(v uint64) Version {
	return Version{Value: v, Set: true}
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (v *Version) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*v = Version{}
		return nil
	}

	var n uint64
	if err := json.Unmarshal(data, &n); err == nil {
		*v = NewVersion(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" {
			*v = Version{}
			return nil
		}
		val, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return fmt.Errorf("Version: invalid uint64 string %q: %w", s, err)
		}
		*v = NewVersion(val)
		return nil
	}

	return fmt.Errorf("Version: unexpected type, expected number or string")
}

// MarshalJSON implements the json.Marshaler interface.
func (v Version) MarshalJSON() ([]byte, error) {
	if !v.Set {
		return []byte("null"), nil
	}
	return json.Marshal(v.Value)
}

// ParseVersion parses a query or header value; an empty string yields an unset Version
func ParseVersion(s string) (Version, error) {
	if s == "" {
		return Version{}, nil
	}
	val, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return Version{}, fmt.Errorf("invalid version %q: %w", s, err)
	}
	return NewVersion(val), nil
}
