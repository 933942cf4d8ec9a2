package typescript

import (
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/m-haketa/openapi-typescript-code-generator/pkg/ir"
	"github.com/m-haketa/openapi-typescript-code-generator/pkg/utils"
)

const indentUnit = "    "

// printer renders Structs as TypeScript type expressions. References are
// qualified with the declaration namespace.
type printer struct {
	namespace string
}

// tsType converts a Struct to a TypeScript type; indent is the nesting level
// of the line the expression starts on
func (p printer) tsType(s ir.Struct, indent int) string {
	switch s.Kind {
	case ir.KindObject:
		return p.objectType(s, indent)
	case ir.KindArray:
		if s.Element == nil || s.Element.Kind == ir.KindUndefined {
			return "unknown[]"
		}
		inner := p.tsType(*s.Element, indent)
		if needsParens(*s.Element) {
			inner = "(" + inner + ")"
		}
		return inner + "[]"
	case ir.KindUnion:
		return p.join(s.Members, " | ", indent, ir.KindIntersection)
	case ir.KindIntersection:
		return p.join(s.Members, " & ", indent, ir.KindUnion)
	case ir.KindReference:
		if p.namespace == "" {
			return s.Name
		}
		return p.namespace + "." + s.Name
	case ir.KindString:
		if len(s.Enum) > 0 {
			return literalUnion(s.Enum)
		}
		return "string"
	case ir.KindNumber:
		if len(s.Enum) > 0 {
			return literalUnion(s.Enum)
		}
		return "number"
	case ir.KindBoolean:
		return "boolean"
	case ir.KindNull:
		return "null"
	case ir.KindNever:
		return "never"
	case ir.KindUndefined:
		return "undefined"
	}
	return "any"
}

func (p printer) join(members []ir.Struct, sep string, indent int, wrap ir.Kind) string {
	parts := make([]string, 0, len(members))
	for _, m := range members {
		t := p.tsType(m, indent)
		if m.Kind == wrap {
			t = "(" + t + ")"
		}
		parts = append(parts, t)
	}
	return strings.Join(parts, sep)
}

func (p printer) objectType(s ir.Struct, indent int) string {
	if s.IsEmptyObject() {
		return "{}"
	}
	pad := strings.Repeat(indentUnit, indent+1)
	var b strings.Builder
	b.WriteString("{\n")
	for _, prop := range s.Properties {
		if prop.Comment != "" {
			b.WriteString(docComment(prop.Comment, indent+1))
		}
		b.WriteString(pad)
		b.WriteString(utils.QuoteProperty(prop.Name))
		if prop.Optional {
			b.WriteString("?")
		}
		b.WriteString(": ")
		b.WriteString(p.tsType(prop.Struct, indent+1))
		b.WriteString(";\n")
	}
	if s.Index != nil {
		b.WriteString(pad)
		b.WriteString("[key: string]: ")
		b.WriteString(p.tsType(*s.Index, indent+1))
		b.WriteString(";\n")
	}
	b.WriteString(strings.Repeat(indentUnit, indent))
	b.WriteString("}")
	return b.String()
}

func needsParens(s ir.Struct) bool {
	if s.Kind == ir.KindUnion || s.Kind == ir.KindIntersection {
		return true
	}
	return len(s.Enum) > 1
}

func literalUnion(values []any) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, literal(v))
	}
	return strings.Join(parts, " | ")
}

func literal(v any) string {
	switch x := v.(type) {
	case string:
		return stringLiteral(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	return "any"
}

// stringLiteral renders s as a double-quoted literal valid in both JSON and TypeScript
func stringLiteral(s string) string {
	out, err := json.Marshal(s)
	if err != nil {
		return strconv.Quote(s)
	}
	return string(out)
}

// docComment renders a JSDoc block at the given nesting level
func docComment(text string, indent int) string {
	pad := strings.Repeat(indentUnit, indent)
	text = strings.ReplaceAll(strings.TrimSpace(text), "*/", "*\\/")
	lines := strings.Split(text, "\n")
	if len(lines) == 1 {
		return pad + "/** " + lines[0] + " */\n"
	}
	var b strings.Builder
	b.WriteString(pad + "/**\n")
	for _, l := range lines {
		b.WriteString(strings.TrimRight(pad+" * "+l, " ") + "\n")
	}
	b.WriteString(pad + " */\n")
	return b.String()
}

// declarationView is one `export type` line of types.ts
type declarationView struct {
	Name    string
	Comment string
	Type    string
}

// namespaceView groups the declarations of one external document
type namespaceView struct {
	Name         string
	Declarations []declarationView
}

// buildDeclarations splits declarations into the root namespace and one
// nested namespace per external document
func buildDeclarations(in ir.IR, p printer) ([]declarationView, []namespaceView) {
	var root []declarationView
	var nested []namespaceView
	index := map[string]int{}
	for _, d := range in.Declarations {
		if d.Namespace == "" {
			root = append(root, declarationView{Name: d.Name, Comment: d.Comment, Type: p.tsType(d.Struct, 1)})
			continue
		}
		i, ok := index[d.Namespace]
		if !ok {
			i = len(nested)
			index[d.Namespace] = i
			nested = append(nested, namespaceView{Name: d.Namespace})
		}
		nested[i].Declarations = append(nested[i].Declarations, declarationView{Name: d.Name, Comment: d.Comment, Type: p.tsType(d.Struct, 2)})
	}
	return root, nested
}

// fieldView is a member of a generated object type
type fieldView struct {
	Key      string
	Optional bool
	Type     string
}

// operationView carries the rendered pieces of one contract
type operationView struct {
	ID string
	// Name is ID made safe for use inside type names
	Name string
	// Key is ID as an object key
	Key        string
	Method     string
	RequestURI string
	// Doc is the JSDoc text: summary and deprecation
	Doc string
	// Parameter is the Parameter$ type, empty when there are no parameters
	Parameter     string
	RequestBodies []fieldView
	// ParamsName is empty when the operation takes no argument
	ParamsName           string
	Params               []fieldView
	ArgType              string
	Response             string
	ResponseContentTypes string
	Errors               []fieldView
}

func buildOperation(c ir.Contract, p printer) operationView {
	name := typeSafe(c.OperationID)
	op := operationView{
		ID:                   c.OperationID,
		Name:                 name,
		Key:                  utils.QuoteProperty(c.OperationID),
		Method:               c.Method,
		RequestURI:           stringLiteral(c.RequestURI),
		Doc:                  c.Summary,
		ArgType:              "undefined",
		Response:             p.tsType(c.Response, 2),
		ResponseContentTypes: "undefined",
	}
	if c.Deprecated {
		op.Doc = strings.TrimSpace(op.Doc + "\n@deprecated")
	}
	if len(c.ResponseContentTypes) > 0 {
		op.ResponseContentTypes = literalUnion(stringsToAny(c.ResponseContentTypes))
	}

	pt := c.Parameters
	if pt.Parameter != nil {
		op.Parameter = p.tsType(*pt.Parameter, 0)
	}
	for _, body := range pt.RequestBodies {
		op.RequestBodies = append(op.RequestBodies, fieldView{Key: stringLiteral(body.ContentType), Type: p.tsType(body.Struct, 1)})
	}

	if !pt.Absent {
		op.ParamsName = "Params$" + name
		op.ArgType = op.ParamsName
		if headers, ok := pt.Headers(); ok {
			op.Params = append(op.Params, fieldView{Key: "headers", Type: p.tsType(headers, 1)})
		}
		if op.Parameter != "" {
			op.Params = append(op.Params, fieldView{Key: "parameter", Type: "Parameter$" + name})
		}
		if len(pt.RequestBodies) > 0 {
			op.Params = append(op.Params, fieldView{Key: "requestBody", Optional: !pt.RequestBodyRequired, Type: requestBodyType(name, pt)})
		}
	}

	for _, e := range c.ErrorResponses {
		op.Errors = append(op.Errors, fieldView{Key: utils.QuoteProperty(e.Name), Type: p.tsType(e.Struct, 2)})
	}
	return op
}

// requestBodyType indexes RequestBody$<id> by the slot content type, or by
// every content type when there is no slot
func requestBodyType(id string, pt ir.ParameterType) string {
	base := "RequestBody$" + id
	if pt.RequestContentType != "" {
		return base + "[" + stringLiteral(pt.RequestContentType) + "]"
	}
	keys := make([]string, 0, len(pt.RequestBodies))
	for _, b := range pt.RequestBodies {
		keys = append(keys, stringLiteral(b.ContentType))
	}
	return base + "[" + strings.Join(keys, " | ") + "]"
}

// successResponses is the union of all distinct success response types
func successResponses(ops []operationView) string {
	seen := map[string]bool{}
	var parts []string
	for _, op := range ops {
		if op.Response == "never" || seen[op.Response] {
			continue
		}
		seen[op.Response] = true
		parts = append(parts, op.Response)
	}
	if len(parts) == 0 {
		return "void"
	}
	return strings.Join(parts, " | ")
}

// typeSafe turns an operation id into something usable inside a type name
func typeSafe(id string) string {
	if utils.IsIdentifier(id) {
		return id
	}
	if name := utils.ToCamelCase(id); name != "" {
		return utils.DeclarationName(name)
	}
	return "_"
}

func stringsToAny(values []string) []any {
	out := make([]any, 0, len(values))
	for _, v := range values {
		out = append(out, v)
	}
	return out
}
