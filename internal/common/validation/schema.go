package validation

import (
	"fmt"
	"strings"
)

// FieldSchema describes one expected field in a request body.
type FieldSchema struct {
	Type      string // "string" or "number"
	Required  bool
	MinLength int
	MaxLength int
}

// Schema maps field names to their constraints.
type Schema map[string]FieldSchema

// ValidateInput checks a decoded JSON body against the schema and returns the
// list of violations, empty when valid.
func ValidateInput(input map[string]interface{}, schema Schema) []string {
	var violations []string

	for name, fs := range schema {
		raw, present := input[name]

		if !present || raw == nil {
			if fs.Required {
				violations = append(violations, fmt.Sprintf("missing required field: %s", name))
			}
			continue
		}

		switch fs.Type {
		case "string":
			s, ok := raw.(string)
			if !ok {
				violations = append(violations, fmt.Sprintf("field %s must be a string", name))
				continue
			}
			s = strings.TrimSpace(s)
			if fs.Required && s == "" {
				violations = append(violations, fmt.Sprintf("field %s must not be empty", name))
			}
			if fs.MinLength > 0 && len(s) < fs.MinLength {
				violations = append(violations, fmt.Sprintf("field %s must be at least %d characters", name, fs.MinLength))
			}
			if fs.MaxLength > 0 && len(s) > fs.MaxLength {
				violations = append(violations, fmt.Sprintf("field %s must be at most %d characters", name, fs.MaxLength))
			}
		case "number":
			// encoding/json decodes numbers as float64
			if _, ok := raw.(float64); !ok {
				violations = append(violations, fmt.Sprintf("field %s must be a number", name))
			}
		}
	}

	return violations
}
