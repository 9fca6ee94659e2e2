package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslate_Primitives(t *testing.T) {
	tests := []struct {
		name string
		decl map[string]interface{}
		kind Kind
	}{
		{"string", map[string]interface{}{"type": "string"}, KindString},
		{"number", map[string]interface{}{"type": "number"}, KindNumber},
		{"boolean", map[string]interface{}{"type": "boolean"}, KindBoolean},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Translate(tt.decl)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, s.Kind)
		})
	}
}

func TestTranslate_PreservesDescriptions(t *testing.T) {
	s, err := Translate(map[string]interface{}{
		"type":        "string",
		"description": "the page title",
	})
	require.NoError(t, err)
	assert.Equal(t, "the page title", s.Description)
}

func TestTranslate_UnsupportedType(t *testing.T) {
	tests := []string{"integer", "null", "date", ""}

	for _, typ := range tests {
		t.Run("type_"+typ, func(t *testing.T) {
			_, err := Translate(map[string]interface{}{"type": typ})
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUnsupportedType)
		})
	}
}

func TestTranslate_NestedUnsupportedType(t *testing.T) {
	_, err := Translate(map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"when": map[string]interface{}{"type": "date"},
		},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedType)
	assert.Contains(t, err.Error(), `"when"`)
}

func TestTranslate_ArrayRequiresItems(t *testing.T) {
	_, err := Translate(map[string]interface{}{"type": "array"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "items")
}

func TestValidate_RequiredAndItemTypes(t *testing.T) {
	s, err := Translate(map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"a": map[string]interface{}{"type": "string"},
			"b": map[string]interface{}{
				"type":  "array",
				"items": map[string]interface{}{"type": "number"},
			},
		},
		"required": []interface{}{"a"},
	})
	require.NoError(t, err)

	assert.NoError(t, s.Validate(map[string]interface{}{
		"a": "x",
		"b": []interface{}{float64(1), float64(2)},
	}))

	err = s.Validate(map[string]interface{}{
		"b": []interface{}{float64(1), float64(2)},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"a"`)

	err = s.Validate(map[string]interface{}{
		"a": "x",
		"b": []interface{}{"y"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "number")
}

func TestValidate_OptionalFieldsMayBeAbsent(t *testing.T) {
	s, err := Translate(map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"title": map[string]interface{}{"type": "string"},
		},
	})
	require.NoError(t, err)

	assert.NoError(t, s.Validate(map[string]interface{}{}))
}

func TestValidate_NestedObjects(t *testing.T) {
	s, err := Translate(map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"author": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"name":     map[string]interface{}{"type": "string"},
					"verified": map[string]interface{}{"type": "boolean"},
				},
				"required": []interface{}{"name"},
			},
		},
		"required": []interface{}{"author"},
	})
	require.NoError(t, err)

	assert.NoError(t, s.Validate(map[string]interface{}{
		"author": map[string]interface{}{"name": "ada", "verified": true},
	}))

	err = s.Validate(map[string]interface{}{
		"author": map[string]interface{}{"verified": true},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"name"`)
}

func TestPromptJSON_RendersShape(t *testing.T) {
	s, err := Translate(map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"title": map[string]interface{}{
				"type":        "string",
				"description": "the page title",
			},
		},
		"required": []interface{}{"title"},
	})
	require.NoError(t, err)

	rendered := s.PromptJSON()
	assert.Contains(t, rendered, `"title"`)
	assert.Contains(t, rendered, `"the page title"`)
	assert.Contains(t, rendered, `"required":["title"]`)
}
