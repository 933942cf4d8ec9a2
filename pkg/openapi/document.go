package openapi

import (
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/go-openapi/jsonpointer"
	"github.com/oasdiff/yaml"
)

// Point addresses a node inside a loaded document: the absolute document
// location plus a JSON pointer (RFC 6901) into it.
type Point struct {
	URI     string
	Pointer string
}

// String renders the point as "uri#/pointer"
func (p Point) String() string {
	return p.URI + "#" + p.Pointer
}

// Child returns the point of a nested node, escaping each token
func (p Point) Child(tokens ...string) Point {
	var b strings.Builder
	b.WriteString(p.Pointer)
	for _, t := range tokens {
		b.WriteByte('/')
		b.WriteString(jsonpointer.Escape(t))
	}
	return Point{URI: p.URI, Pointer: b.String()}
}

// Tokens returns the unescaped pointer tokens
func (p Point) Tokens() ([]string, error) {
	ptr, err := jsonpointer.New(p.Pointer)
	if err != nil {
		return nil, err
	}
	return ptr.DecodedTokens(), nil
}

// Document is one parsed OpenAPI or JSON Schema document. Root is a generic
// tree of map[string]any, []any, string, float64, bool and nil.
type Document struct {
	URI  string
	Root any
}

// Lookup returns the node addressed by pointer
func (d *Document) Lookup(pointer string) (any, error) {
	if pointer == "" {
		return d.Root, nil
	}
	ptr, err := jsonpointer.New(pointer)
	if err != nil {
		return nil, fmt.Errorf("invalid pointer %q: %w", pointer, err)
	}
	node, _, err := ptr.Get(d.Root)
	if err != nil {
		return nil, fmt.Errorf("%s#%s: %w", d.URI, pointer, err)
	}
	return node, nil
}

// Decode parses YAML or JSON into the generic tree used by Document. Mapping
// keys are always strings, so unquoted status codes like 200 stay addressable.
func Decode(data []byte) (any, error) {
	js, err := yaml.YAMLToJSON(data)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	var out any
	if err := json.Unmarshal(js, &out); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return out, nil
}

// Marshal renders a node as compact JSON for diagnostics
func Marshal(node any) string {
	b, err := json.Marshal(node)
	if err != nil {
		return fmt.Sprint(node)
	}
	return string(b)
}
