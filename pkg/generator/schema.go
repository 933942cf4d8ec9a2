package generator

import "sort"

// shape is the discriminant of a schema node, computed once before dispatch
type shape int

const (
	shapeInvalid shape = iota
	shapeFreeForm
	shapeNever
	shapeReference
	shapeOneOf
	shapeAllOf
	shapeAnyOf
	shapeUntyped
	shapeTyped
)

func (s shape) String() string {
	switch s {
	case shapeFreeForm:
		return "free-form"
	case shapeNever:
		return "never"
	case shapeReference:
		return "reference"
	case shapeOneOf:
		return "oneOf"
	case shapeAllOf:
		return "allOf"
	case shapeAnyOf:
		return "anyOf"
	case shapeUntyped:
		return "untyped"
	case shapeTyped:
		return "typed"
	}
	return "invalid"
}

func classify(node any) shape {
	switch v := node.(type) {
	case bool:
		if v {
			return shapeFreeForm
		}
		return shapeNever
	case map[string]any:
		if len(v) == 0 {
			return shapeFreeForm
		}
		if _, ok := v["$ref"].(string); ok {
			return shapeReference
		}
		if len(list(v, "oneOf")) > 0 {
			return shapeOneOf
		}
		if len(list(v, "allOf")) > 0 {
			return shapeAllOf
		}
		if len(list(v, "anyOf")) > 0 {
			return shapeAnyOf
		}
		if _, ok := v["type"]; ok {
			return shapeTyped
		}
		return shapeUntyped
	}
	return shapeInvalid
}

// inferType guesses the type of a schema without one from its other keywords
func inferType(schema map[string]any) string {
	switch {
	case has(schema, "properties", "additionalProperties", "required"):
		return "object"
	case has(schema, "items", "minItems", "maxItems", "uniqueItems"):
		return "array"
	}
	if enum := list(schema, "enum"); len(enum) > 0 {
		if _, ok := stringEnum(schema); ok {
			return "string"
		}
		if _, ok := numberEnum(schema); ok {
			return "number"
		}
	}
	switch {
	case has(schema, "minLength", "maxLength", "pattern"):
		return "string"
	case has(schema, "minimum", "maximum", "exclusiveMinimum", "exclusiveMaximum", "multipleOf"):
		return "number"
	}
	return ""
}

func has(m map[string]any, keys ...string) bool {
	for _, k := range keys {
		if _, ok := m[k]; ok {
			return true
		}
	}
	return false
}

func list(m map[string]any, key string) []any {
	l, _ := m[key].([]any)
	return l
}

func object(m map[string]any, key string) map[string]any {
	o, _ := m[key].(map[string]any)
	return o
}

func str(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func flag(m map[string]any, key string) bool {
	b, _ := m[key].(bool)
	return b
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// stringEnum returns the enum values when every one of them is a string
func stringEnum(schema map[string]any) ([]any, bool) {
	enum := list(schema, "enum")
	if len(enum) == 0 {
		return nil, false
	}
	for _, v := range enum {
		if _, ok := v.(string); !ok {
			return nil, false
		}
	}
	return enum, true
}

// numberEnum returns the enum values when every one of them is a number
func numberEnum(schema map[string]any) ([]any, bool) {
	enum := list(schema, "enum")
	if len(enum) == 0 {
		return nil, false
	}
	for _, v := range enum {
		if _, ok := v.(float64); !ok {
			return nil, false
		}
	}
	return enum, true
}
