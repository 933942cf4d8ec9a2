package generator

import (
	"log/slog"
	"strconv"

	"github.com/m-haketa/openapi-typescript-code-generator/pkg/ir"
	"github.com/m-haketa/openapi-typescript-code-generator/pkg/openapi"
)

// Converter turns schema nodes into structural types. It shares the run's
// Resolver; the Converter itself is not safe for concurrent use.
type Converter struct {
	resolver *Resolver
	logger   *slog.Logger
	// inline references currently being expanded
	inlining map[string]bool
}

// NewConverter creates a converter bound to resolver
func NewConverter(resolver *Resolver, logger *slog.Logger) *Converter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Converter{resolver: resolver, logger: logger, inlining: map[string]bool{}}
}

// Convert converts the schema node found at the given location
func (c *Converter) Convert(at openapi.Point, node any) (ir.Struct, error) {
	return c.convert(at, node, nil)
}

func (c *Converter) convert(at openapi.Point, node any, parent map[string]any) (ir.Struct, error) {
	var (
		out ir.Struct
		err error
	)
	switch classify(node) {
	case shapeFreeForm:
		return ir.Object(), nil
	case shapeNever:
		return ir.Never(), nil
	case shapeReference:
		out, err = c.convertReference(at, node.(map[string]any), parent)
	case shapeOneOf:
		var members []ir.Struct
		members, err = c.convertMembers(at, node.(map[string]any), "oneOf")
		out = ir.Union(members...)
	case shapeAllOf:
		var members []ir.Struct
		members, err = c.convertMembers(at, node.(map[string]any), "allOf")
		out = ir.Intersection(members...)
	case shapeAnyOf:
		// any-of semantics are not modeled
		out = ir.Never()
	case shapeUntyped:
		out, err = c.convertUntyped(at, node.(map[string]any), parent)
	case shapeTyped:
		out, err = c.convertTyped(at, node.(map[string]any))
	default:
		return ir.Struct{}, schemaError(ErrUnsupportedShape, at, node, "schema must be an object or a boolean")
	}
	if err != nil {
		return ir.Struct{}, err
	}
	if schema, ok := node.(map[string]any); ok && flag(schema, "nullable") {
		out = ir.Nullable(out)
	}
	return out, nil
}

func (c *Converter) convertReference(at openapi.Point, schema, parent map[string]any) (ir.Struct, error) {
	res, err := c.resolver.Resolve(at, str(schema, "$ref"))
	if err != nil {
		return ir.Struct{}, err
	}
	if res.Name != "" {
		return ir.Reference(res.Name), nil
	}

	key := res.Target.String()
	if c.inlining[key] {
		return ir.Struct{}, schemaError(ErrUnsupportedShape, at, schema, "cyclic reference to %s has no declaration name", key)
	}
	c.inlining[key] = true
	defer delete(c.inlining, key)
	return c.convert(res.Target, res.Node, parent)
}

func (c *Converter) convertMembers(at openapi.Point, schema map[string]any, keyword string) ([]ir.Struct, error) {
	nodes := list(schema, keyword)
	members := make([]ir.Struct, 0, len(nodes))
	for i, n := range nodes {
		m, err := c.convert(at.Child(keyword, strconv.Itoa(i)), n, schema)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, nil
}

func (c *Converter) convertUntyped(at openapi.Point, schema, parent map[string]any) (ir.Struct, error) {
	if t := inferType(schema); t != "" {
		return c.convertType(at, schema, t)
	}
	if flag(schema, "nullable") {
		return ir.Primitive(ir.KindAny), nil
	}
	c.logger.Info("schema has no type",
		"location", at.String(),
		"parent", openapi.Marshal(parent),
	)
	return ir.Struct{}, schemaError(ErrUnsetType, at, schema, "no type, $ref or inferable keywords")
}

func (c *Converter) convertTyped(at openapi.Point, schema map[string]any) (ir.Struct, error) {
	switch t := schema["type"].(type) {
	case string:
		return c.convertType(at, schema, t)
	case []any:
		// type: [T, "null"]
		var (
			members  []ir.Struct
			nullable bool
		)
		for _, v := range t {
			name, _ := v.(string)
			if name == "null" {
				nullable = true
				continue
			}
			m, err := c.convertType(at, schema, name)
			if err != nil {
				return ir.Struct{}, err
			}
			members = append(members, m)
		}
		if len(members) == 0 {
			if nullable {
				return ir.Primitive(ir.KindNull), nil
			}
			return ir.Primitive(ir.KindAny), nil
		}
		out := ir.Union(members...)
		if nullable {
			out = ir.Nullable(out)
		}
		return out, nil
	}
	return ir.Primitive(ir.KindAny), nil
}

func (c *Converter) convertType(at openapi.Point, schema map[string]any, typ string) (ir.Struct, error) {
	switch typ {
	case "boolean":
		return ir.Primitive(ir.KindBoolean), nil
	case "null":
		return ir.Primitive(ir.KindNull), nil
	case "number", "integer":
		out := ir.Primitive(ir.KindNumber)
		if enum, ok := numberEnum(schema); ok {
			out.Enum = enum
		}
		return out, nil
	case "string":
		out := ir.Primitive(ir.KindString)
		if enum, ok := stringEnum(schema); ok {
			out.Enum = enum
		}
		return out, nil
	case "array":
		return c.convertArray(at, schema)
	case "object":
		return c.convertObject(at, schema)
	}
	return ir.Primitive(ir.KindAny), nil
}

func (c *Converter) convertArray(at openapi.Point, schema map[string]any) (ir.Struct, error) {
	items, ok := schema["items"]
	if !ok {
		return ir.Array(ir.Undefined()), nil
	}
	switch items.(type) {
	case []any:
		return ir.Struct{}, schemaError(ErrUnsupportedShape, at, schema, "tuple-style items are not supported")
	case bool:
		return ir.Struct{}, schemaError(ErrUnsupportedShape, at, schema, "boolean items are not supported")
	}
	element, err := c.convert(at.Child("items"), items, schema)
	if err != nil {
		return ir.Struct{}, err
	}
	return ir.Array(element), nil
}

func (c *Converter) convertObject(at openapi.Point, schema map[string]any) (ir.Struct, error) {
	additional, hasAdditional := schema["additionalProperties"]
	if open, ok := additional.(bool); ok && open {
		return ir.Object(), nil
	}

	required := map[string]bool{}
	for _, r := range list(schema, "required") {
		if name, ok := r.(string); ok {
			required[name] = true
		}
	}

	properties := object(schema, "properties")
	var props []ir.Property
	for _, name := range sortedKeys(properties) {
		node := properties[name]
		s, err := c.convert(at.Child("properties", name), node, schema)
		if err != nil {
			return ir.Struct{}, err
		}
		prop := ir.Property{Name: name, Struct: s, Optional: !required[name]}
		if m, ok := node.(map[string]any); ok {
			prop.Comment = str(m, "description")
		}
		props = append(props, prop)
	}

	out := ir.Object(props...)
	if _, isBool := additional.(bool); hasAdditional && !isBool {
		index, err := c.convert(at.Child("additionalProperties"), additional, schema)
		if err != nil {
			return ir.Struct{}, err
		}
		out.Index = &index
	}
	return out, nil
}
