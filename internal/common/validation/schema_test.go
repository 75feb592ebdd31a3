// internal/common/validation/schema_test.go
package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `{
	"type": "object",
	"required": ["name", "count"],
	"properties": {
		"name":  {"type": "string"},
		"count": {"type": "integer"}
	}
}`

func TestValidateJSON(t *testing.T) {
	tests := []struct {
		name      string
		document  string
		wantValid bool
	}{
		{"valid document", `{"name": "a", "count": 1}`, true},
		{"missing required field", `{"name": "a"}`, false},
		{"wrong type", `{"name": "a", "count": "one"}`, false},
		{"extra fields allowed", `{"name": "a", "count": 1, "other": true}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ValidateJSON(testSchema, []byte(tt.document))
			require.NoError(t, err)
			assert.Equal(t, tt.wantValid, result.Valid)
			if !tt.wantValid {
				assert.NotEmpty(t, result.Errors)
			}
		})
	}
}

func TestValidateJSON_MalformedDocument(t *testing.T) {
	_, err := ValidateJSON(testSchema, []byte("{broken"))
	assert.Error(t, err)
}

func TestValidateObject(t *testing.T) {
	result, err := ValidateObject(testSchema, map[string]interface{}{"name": "a", "count": 1})
	require.NoError(t, err)
	assert.True(t, result.Valid)
}
