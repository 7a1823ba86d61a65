package utils

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validate is the shared struct validator
var Validate = validator.New()

// ValidationMessages flattens validator errors into field:tag pairs, sorted by field
func ValidationMessages(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err.Error()
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, fmt.Sprintf("%s:%s", e.Field(), e.Tag()))
	}
	sort.Strings(messages)
	return strings.Join(messages, ", ")
}
