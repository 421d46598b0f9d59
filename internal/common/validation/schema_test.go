package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `{
	"type": "object",
	"required": ["median"],
	"properties": {
		"median": {"type": "number", "exclusiveMinimum": 0},
		"currency": {"type": "string", "minLength": 3, "maxLength": 3}
	}
}`

func TestSchema_Validate(t *testing.T) {
	schema := MustCompile(testSchema)

	tests := []struct {
		name      string
		doc       interface{}
		wantValid bool
		wantField string
	}{
		{"valid", map[string]interface{}{"median": 95000.0, "currency": "USD"}, true, ""},
		{"missing median", map[string]interface{}{"currency": "USD"}, false, "median"},
		{"zero median", map[string]interface{}{"median": 0.0}, false, "median"},
		{"bad currency", map[string]interface{}{"median": 1.0, "currency": "dollars"}, false, "currency"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := schema.Validate(tt.doc)
			assert.Equal(t, tt.wantValid, res.Valid)
			if tt.wantField != "" {
				assert.True(t, res.HasErrors(tt.wantField), res.GetErrorMessages())
			}
		})
	}
}

func TestSchema_ValidateBytes(t *testing.T) {
	schema := MustCompile(testSchema)

	assert.True(t, schema.ValidateBytes([]byte(`{"median": 10}`)).Valid)

	res := schema.ValidateBytes([]byte(`{"median": `))
	require.False(t, res.Valid)
	assert.Equal(t, "INVALID_JSON", res.Errors[0].Code)
}

func TestCompile_InvalidSchema(t *testing.T) {
	_, err := Compile(`{"type": 12}`)
	assert.Error(t, err)
}
