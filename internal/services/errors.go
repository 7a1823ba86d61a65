package services

import (
	"errors"

	"github.com/localnerve/backoffice-propsdb/internal/store"
)

var (
	// ErrNotFound is returned for unknown resources, documents and nested items
	ErrNotFound = store.ErrNotFound
	// ErrVersion is returned when the caller's version is stale
	ErrVersion = store.ErrVersion
	// ErrInvalidInput is returned for bodies that fail validation
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnknownField is returned when a nested field is not declared by the resource
	ErrUnknownField = errors.New("unknown field")
)
