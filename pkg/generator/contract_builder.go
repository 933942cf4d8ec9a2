package generator

import (
	"fmt"
	"mime"
	"sort"
	"strconv"
	"strings"

	"github.com/m-haketa/openapi-typescript-code-generator/pkg/ir"
	"github.com/m-haketa/openapi-typescript-code-generator/pkg/openapi"
	"github.com/m-haketa/openapi-typescript-code-generator/pkg/utils"
)

// ParamsPrefix prefixes the name of every declared argument type
const ParamsPrefix = "Params$"

// Operation is one method of a path item
type Operation struct {
	// Method is upper case
	Method string
	Path   string
	Point  openapi.Point
	Node   map[string]any
	// PathParameters are declared on the path item and inherited by the operation
	PathParameters   []any
	PathParametersAt openapi.Point
}

// ContractBuilder assembles one contract per operation
type ContractBuilder struct {
	resolver  *Resolver
	converter *Converter
}

// NewContractBuilder creates a builder sharing the run's resolver and converter
func NewContractBuilder(resolver *Resolver, converter *Converter) *ContractBuilder {
	return &ContractBuilder{resolver: resolver, converter: converter}
}

// Build produces the contract of op. Any conversion failure aborts the
// whole contract.
func (b *ContractBuilder) Build(op Operation) (ir.Contract, error) {
	c, err := b.build(op)
	if err != nil {
		return ir.Contract{}, fmt.Errorf("%s %s: %w", op.Method, op.Path, err)
	}
	return c, nil
}

func (b *ContractBuilder) build(op Operation) (ir.Contract, error) {
	id := str(op.Node, "operationId")
	if id == "" {
		id = utils.ToCamelCase(strings.ToLower(op.Method) + " " + op.Path)
	}
	contract := ir.Contract{
		OperationID: id,
		Method:      op.Method,
		RequestURI:  op.Path,
		Summary:     str(op.Node, "summary"),
		Deprecated:  flag(op.Node, "deprecated"),
	}
	for _, t := range list(op.Node, "tags") {
		if tag, ok := t.(string); ok {
			contract.Tags = append(contract.Tags, tag)
		}
	}

	parameter, err := b.parameters(op)
	if err != nil {
		return ir.Contract{}, err
	}
	bodies, bodyRequired, err := b.requestBodies(op)
	if err != nil {
		return ir.Contract{}, err
	}
	for _, body := range bodies {
		contract.RequestContentTypes = append(contract.RequestContentTypes, body.ContentType)
	}

	if err := b.responses(op, &contract); err != nil {
		return ir.Contract{}, err
	}

	reqTypes, respTypes := contract.RequestContentTypes, contract.ResponseContentTypes
	if parameter == nil && len(bodies) == 0 && len(reqTypes) < 2 && len(respTypes) < 2 {
		contract.Parameters = ir.ParameterType{Absent: true}
		return contract, nil
	}
	pt := ir.ParameterType{
		Name:                ParamsPrefix + id,
		Parameter:           parameter,
		RequestBodies:       bodies,
		RequestBodyRequired: bodyRequired,
	}
	// only the JSON literal is distinguishable on the request axis
	if len(reqTypes) >= 2 && contains(reqTypes, "application/json") {
		pt.RequestContentType = "application/json"
	}
	if len(respTypes) >= 2 {
		pt.ResponseContentTypes = respTypes
	}
	contract.Parameters = pt
	return contract, nil
}

// parameters builds the object of path and query parameters; operation
// level parameters override path item ones of the same name
func (b *ContractBuilder) parameters(op Operation) (*ir.Struct, error) {
	byName := map[string]ir.Property{}
	collect := func(at openapi.Point, nodes []any) error {
		for i, n := range nodes {
			pat, p, err := b.resolver.Deref(at.Child(strconv.Itoa(i)), n)
			if err != nil {
				return err
			}
			in := str(p, "in")
			if in != "path" && in != "query" {
				continue
			}
			s, err := b.parameterSchema(pat, p)
			if err != nil {
				return err
			}
			name := str(p, "name")
			byName[name] = ir.Property{
				Name:     name,
				Struct:   s,
				Optional: in != "path" && !flag(p, "required"),
				Comment:  str(p, "description"),
			}
		}
		return nil
	}
	if err := collect(op.PathParametersAt, op.PathParameters); err != nil {
		return nil, err
	}
	if err := collect(op.Point.Child("parameters"), list(op.Node, "parameters")); err != nil {
		return nil, err
	}
	if len(byName) == 0 {
		return nil, nil
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)
	props := make([]ir.Property, 0, len(names))
	for _, name := range names {
		props = append(props, byName[name])
	}
	obj := ir.Object(props...)
	return &obj, nil
}

func (b *ContractBuilder) parameterSchema(at openapi.Point, p map[string]any) (ir.Struct, error) {
	if schema, ok := p["schema"]; ok {
		return b.converter.Convert(at.Child("schema"), schema)
	}
	content := object(p, "content")
	if keys := sortedKeys(content); len(keys) > 0 {
		return b.media(at.Child("content", keys[0]), content[keys[0]])
	}
	return ir.Primitive(ir.KindAny), nil
}

func (b *ContractBuilder) requestBodies(op Operation) ([]ir.MediaStruct, bool, error) {
	node, ok := op.Node["requestBody"]
	if !ok {
		return nil, false, nil
	}
	at, body, err := b.resolver.Deref(op.Point.Child("requestBody"), node)
	if err != nil {
		return nil, false, err
	}
	content := object(body, "content")
	var bodies []ir.MediaStruct
	for _, ct := range sortedKeys(content) {
		s, err := b.media(at.Child("content", ct), content[ct])
		if err != nil {
			return nil, false, err
		}
		bodies = append(bodies, ir.MediaStruct{ContentType: ct, Struct: s})
	}
	return bodies, flag(body, "required"), nil
}

// responses fills the success response union, the success content types
// and the error table
func (b *ContractBuilder) responses(op Operation, contract *ir.Contract) error {
	responses := object(op.Node, "responses")
	seen := map[string]bool{}
	var success []ir.Struct
	for _, code := range sortedKeys(responses) {
		at, resp, err := b.resolver.Deref(op.Point.Child("responses", code), responses[code])
		if err != nil {
			return err
		}
		content := object(resp, "content")
		var members []ir.Struct
		for _, ct := range sortedKeys(content) {
			if isSuccess(code) && !seen[ct] {
				seen[ct] = true
				contract.ResponseContentTypes = append(contract.ResponseContentTypes, ct)
			}
			if !isJSON(ct) {
				continue
			}
			s, err := b.media(at.Child("content", ct), content[ct])
			if err != nil {
				return err
			}
			members = append(members, s)
		}
		if isSuccess(code) {
			success = append(success, members...)
			continue
		}
		contract.ErrorResponses = append(contract.ErrorResponses, ir.NamedStruct{Name: code, Struct: ir.Union(members...)})
	}
	sort.Strings(contract.ResponseContentTypes)
	contract.Response = ir.Union(success...)
	return nil
}

func (b *ContractBuilder) media(at openapi.Point, node any) (ir.Struct, error) {
	m, _ := node.(map[string]any)
	schema, ok := m["schema"]
	if !ok {
		return ir.Primitive(ir.KindAny), nil
	}
	return b.converter.Convert(at.Child("schema"), schema)
}

// isSuccess reports whether a response key is a 2xx status or the 2XX range
func isSuccess(code string) bool {
	return len(code) == 3 && code[0] == '2'
}

// isJSON reports whether a content type carries JSON
func isJSON(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mt = strings.ToLower(strings.TrimSpace(contentType))
	}
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}

func contains(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}
