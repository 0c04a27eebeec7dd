// Package engine computes every derived financial figure of a load: net
// weight, commission distribution, expense routing, farmer/mill settlement,
// and the early-payment credit cut. All functions are pure and safe to call
// concurrently; the same input always produces the same output, so a live
// preview and the final save path share one code path.
package engine

import (
	"fmt"
	"strings"
)

// FieldError points a validation failure at the offending input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError reports caller-fixable precondition violations on a load.
// The engine never partially computes: on error no result is produced.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "invalid load input"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "invalid load input: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// ConfigurationError reports administrator-fixable settings problems. These
// block a settings save; a load computation hitting one means the stored
// settings were corrupted out of band.
type ConfigurationError struct {
	Fields []FieldError
}

func (e *ConfigurationError) Error() string {
	if len(e.Fields) == 0 {
		return "invalid settings"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "invalid settings: " + strings.Join(parts, "; ")
}

func (e *ConfigurationError) add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}
