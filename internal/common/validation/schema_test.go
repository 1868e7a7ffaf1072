package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateInput(t *testing.T) {
	schema := Schema{
		"username": {Type: "string", Required: true, MinLength: 1, MaxLength: 64},
		"keyword":  {Type: "string", Required: false},
		"limit":    {Type: "number", Required: false},
	}

	tests := []struct {
		name  string
		input map[string]interface{}
		want  int
	}{
		{
			name:  "valid full input",
			input: map[string]interface{}{"username": "creator123", "keyword": "unboxing", "limit": float64(10)},
			want:  0,
		},
		{
			name:  "valid without optionals",
			input: map[string]interface{}{"username": "creator123"},
			want:  0,
		},
		{
			name:  "missing required field",
			input: map[string]interface{}{"keyword": "unboxing"},
			want:  1,
		},
		{
			name:  "empty required string",
			input: map[string]interface{}{"username": "   "},
			want:  1,
		},
		{
			name:  "wrong types",
			input: map[string]interface{}{"username": float64(5), "limit": "ten"},
			want:  2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			violations := ValidateInput(tt.input, schema)
			assert.Len(t, violations, tt.want)
		})
	}
}
