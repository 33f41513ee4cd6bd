package tool

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

// Param describes one property of an object schema.
type Param struct {
	Type        string
	Description string
}

// ObjectSchema creates an object jsonschema.Schema from a parameter map.
//
// Type accepts JSON Schema names ("string", "number", "integer", "boolean",
// "object") as well as Go type names ("float64", "int", "bool", "[]string").
func ObjectSchema(params map[string]Param, required ...string) *jsonschema.Schema {
	properties := make(map[string]*jsonschema.Schema, len(params))

	for name, p := range params {
		prop := goTypeToJSONSchema(p.Type)
		prop.Description = p.Description
		properties[name] = prop
	}

	return &jsonschema.Schema{
		Type:       "object",
		Properties: properties,
		Required:   required,
	}
}

// goTypeToJSONSchema converts a type name to a JSON Schema type.
func goTypeToJSONSchema(typeName string) *jsonschema.Schema {
	switch typeName {
	case "string", "":
		return &jsonschema.Schema{Type: "string"}
	case "integer", "int", "int8", "int16", "int32", "int64", "uint", "uint8", "uint16", "uint32", "uint64":
		return &jsonschema.Schema{Type: "integer"}
	case "number", "float32", "float64", "float":
		return &jsonschema.Schema{Type: "number"}
	case "bool", "boolean":
		return &jsonschema.Schema{Type: "boolean"}
	case "any", "object", "map[string]any":
		return &jsonschema.Schema{Type: "object"}
	default:
		if len(typeName) > 2 && typeName[:2] == "[]" {
			return &jsonschema.Schema{
				Type:  "array",
				Items: goTypeToJSONSchema(typeName[2:]),
			}
		}

		return &jsonschema.Schema{Type: "string"}
	}
}

// ParseArguments decodes the JSON-encoded arguments of a function call.
//
// Empty input and JSON null decode to an empty map. Anything that is not a
// JSON object is an error.
func ParseArguments(raw string) (map[string]any, error) {
	trimmed := bytes.TrimSpace([]byte(raw))
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return make(map[string]any), nil
	}

	var args map[string]any
	if err := json.Unmarshal(trimmed, &args); err != nil {
		return nil, fmt.Errorf("parse arguments: %w", err)
	}

	if args == nil {
		args = make(map[string]any)
	}

	return args, nil
}
