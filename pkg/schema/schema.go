// Package schema translates declarative JSON-Schema-like structures into the
// validation form used by the automation engine. Translation is a pure
// function: it carries no state and the same input always yields an
// equivalent schema tree.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// ErrUnsupportedType is returned when a declarative schema uses a type
// keyword outside the supported set.
var ErrUnsupportedType = errors.New("unsupported schema type")

// Kind identifies the type constraint carried by a schema node.
type Kind string

const (
	KindString  Kind = "string"
	KindNumber  Kind = "number"
	KindBoolean Kind = "boolean"
	KindArray   Kind = "array"
	KindObject  Kind = "object"
)

// Schema is the engine's native validation form: a typed tree mirroring the
// declarative input, able to validate extracted values and render itself for
// prompt construction.
type Schema struct {
	Kind        Kind
	Description string

	// Items is set for array schemas.
	Items *Schema

	// Properties and Required are set for object schemas.
	Properties map[string]*Schema
	Required   []string
}

// Translate converts a declarative schema object into a validation Schema.
// Supported type keywords: string, number, boolean, array, object. Arrays
// may nest any supported type; objects may nest arbitrarily. Fails with
// ErrUnsupportedType for any other keyword.
func Translate(decl map[string]interface{}) (*Schema, error) {
	if decl == nil {
		return nil, fmt.Errorf("schema must be an object")
	}

	rawType, _ := decl["type"].(string)
	s := &Schema{Kind: Kind(rawType)}

	if desc, ok := decl["description"].(string); ok {
		s.Description = desc
	}

	switch s.Kind {
	case KindString, KindNumber, KindBoolean:
		return s, nil

	case KindArray:
		items, ok := decl["items"].(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("array schema requires an items object")
		}
		translated, err := Translate(items)
		if err != nil {
			return nil, fmt.Errorf("array items: %w", err)
		}
		s.Items = translated
		return s, nil

	case KindObject:
		if props, ok := decl["properties"].(map[string]interface{}); ok {
			s.Properties = make(map[string]*Schema, len(props))
			for name, raw := range props {
				propDecl, ok := raw.(map[string]interface{})
				if !ok {
					return nil, fmt.Errorf("property %q must be a schema object", name)
				}
				translated, err := Translate(propDecl)
				if err != nil {
					return nil, fmt.Errorf("property %q: %w", name, err)
				}
				s.Properties[name] = translated
			}
		}
		if rawRequired, ok := decl["required"].([]interface{}); ok {
			for _, raw := range rawRequired {
				name, ok := raw.(string)
				if !ok {
					return nil, fmt.Errorf("required entries must be strings")
				}
				s.Required = append(s.Required, name)
			}
		}
		// Accept []string as well, for schemas built in code rather than
		// decoded from JSON.
		if names, ok := decl["required"].([]string); ok {
			s.Required = append(s.Required, names...)
		}
		return s, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, rawType)
	}
}

// Validate checks value against the schema, returning a descriptive error on
// the first violation. Values are expected in their JSON-decoded form
// (string, float64, bool, []interface{}, map[string]interface{}); native Go
// numeric types are accepted for number nodes.
func (s *Schema) Validate(value interface{}) error {
	switch s.Kind {
	case KindString:
		if _, ok := value.(string); !ok {
			return fmt.Errorf("expected string, got %T", value)
		}

	case KindNumber:
		switch value.(type) {
		case float64, float32, int, int32, int64, json.Number:
		default:
			return fmt.Errorf("expected number, got %T", value)
		}

	case KindBoolean:
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("expected boolean, got %T", value)
		}

	case KindArray:
		items, ok := value.([]interface{})
		if !ok {
			return fmt.Errorf("expected array, got %T", value)
		}
		for i, item := range items {
			if err := s.Items.Validate(item); err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
		}

	case KindObject:
		obj, ok := value.(map[string]interface{})
		if !ok {
			return fmt.Errorf("expected object, got %T", value)
		}
		for _, name := range s.Required {
			if _, present := obj[name]; !present {
				return fmt.Errorf("missing required field %q", name)
			}
		}
		for name, prop := range s.Properties {
			fieldValue, present := obj[name]
			if !present {
				continue
			}
			if err := prop.Validate(fieldValue); err != nil {
				return fmt.Errorf("field %q: %w", name, err)
			}
		}

	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedType, s.Kind)
	}

	return nil
}

// PromptJSON renders the schema as compact JSON suitable for embedding in a
// model prompt. Property order is stable (sorted by name).
func (s *Schema) PromptJSON() string {
	data, err := json.Marshal(s.promptForm())
	if err != nil {
		return `{"type":"object"}`
	}
	return string(data)
}

func (s *Schema) promptForm() map[string]interface{} {
	form := map[string]interface{}{"type": string(s.Kind)}
	if s.Description != "" {
		form["description"] = s.Description
	}
	switch s.Kind {
	case KindArray:
		if s.Items != nil {
			form["items"] = s.Items.promptForm()
		}
	case KindObject:
		if len(s.Properties) > 0 {
			names := make([]string, 0, len(s.Properties))
			for name := range s.Properties {
				names = append(names, name)
			}
			sort.Strings(names)
			props := make(map[string]interface{}, len(names))
			for _, name := range names {
				props[name] = s.Properties[name].promptForm()
			}
			form["properties"] = props
		}
		if len(s.Required) > 0 {
			form["required"] = s.Required
		}
	}
	return form
}
