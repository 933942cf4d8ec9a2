package generator

import (
	"errors"
	"fmt"
	"log/slog"
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/m-haketa/openapi-typescript-code-generator/pkg/config"
	"github.com/m-haketa/openapi-typescript-code-generator/pkg/ir"
	"github.com/m-haketa/openapi-typescript-code-generator/pkg/openapi"
)

// Methods lists the HTTP methods of a path item, in walk order
var Methods = []string{"GET", "PUT", "POST", "DELETE", "OPTIONS", "HEAD", "PATCH", "TRACE"}

// untaggedTag is the tag filters see for operations without tags
const untaggedTag = "misc"

// Options tune one IR build
type Options struct {
	Logger *slog.Logger
}

// BuildIR converts the entry document of store into declarations and
// contracts. A fresh Resolver is created for, and discarded after, the run.
func BuildIR(store *openapi.Store, opts Options) (ir.IR, error) {
	doc := store.Entry()
	if doc == nil {
		return ir.IR{}, errors.New("no entry document loaded")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	resolver := NewResolver(store)
	converter := NewConverter(resolver, logger)
	builder := NewContractBuilder(resolver, converter)

	if err := resolver.SeedComponents(); err != nil {
		return ir.IR{}, err
	}
	contracts, err := buildContracts(doc, resolver, builder, logger)
	if err != nil {
		return ir.IR{}, err
	}
	declarations, err := drainDeclarations(doc.URI, resolver, converter)
	if err != nil {
		return ir.IR{}, err
	}

	sort.Slice(declarations, func(i, j int) bool {
		if declarations[i].Namespace == declarations[j].Namespace {
			return declarations[i].Name < declarations[j].Name
		}
		return declarations[i].Namespace < declarations[j].Namespace
	})
	sort.Slice(contracts, func(i, j int) bool {
		if contracts[i].RequestURI == contracts[j].RequestURI {
			return methodIndex(contracts[i].Method) < methodIndex(contracts[j].Method)
		}
		return contracts[i].RequestURI < contracts[j].RequestURI
	})
	logger.Debug("built contract set", "declarations", len(declarations), "contracts", len(contracts))
	return ir.IR{Declarations: declarations, Contracts: contracts, Entries: resolver.Entries()}, nil
}

func buildContracts(doc *openapi.Document, resolver *Resolver, builder *ContractBuilder, logger *slog.Logger) ([]ir.Contract, error) {
	root, _ := doc.Root.(map[string]any)
	paths := object(root, "paths")
	byRoute := map[string]bool{}
	byID := map[string]string{}

	var contracts []ir.Contract
	for _, p := range sortedKeys(paths) {
		at, item, err := resolver.Deref(openapi.Point{URI: doc.URI}.Child("paths", p), paths[p])
		if err != nil {
			return nil, fmt.Errorf("path %s: %w", p, err)
		}
		for _, method := range Methods {
			node, ok := item[strings.ToLower(method)].(map[string]any)
			if !ok {
				continue
			}
			c, err := builder.Build(Operation{
				Method:           method,
				Path:             p,
				Point:            at.Child(strings.ToLower(method)),
				Node:             node,
				PathParameters:   list(item, "parameters"),
				PathParametersAt: at.Child("parameters"),
			})
			if err != nil {
				return nil, err
			}

			route := c.Method + " " + c.RequestURI
			if byRoute[route] {
				return nil, fmt.Errorf("%w: %s declared twice", ErrDuplicateOperation, route)
			}
			byRoute[route] = true
			if other, ok := byID[c.OperationID]; ok {
				return nil, fmt.Errorf("%w: operationId %q used by %s and %s", ErrDuplicateOperation, c.OperationID, other, route)
			}
			byID[c.OperationID] = route

			logger.Debug("built contract", "operationId", c.OperationID, "method", c.Method, "uri", c.RequestURI)
			contracts = append(contracts, c)
		}
	}
	return contracts, nil
}

// drainDeclarations converts pending declarations until none are left;
// converting one target may enqueue more
func drainDeclarations(entry string, resolver *Resolver, converter *Converter) ([]ir.Declaration, error) {
	var out []ir.Declaration
	for {
		next, ok := resolver.NextPending()
		if !ok {
			return out, nil
		}
		s, err := converter.Convert(next.target, next.node)
		if err != nil {
			return nil, fmt.Errorf("declaration %s: %w", next.name, err)
		}
		d := ir.Declaration{
			Name:      next.name,
			Namespace: next.namespace,
			Location:  relativeLocation(entry, next.target),
			Struct:    s,
		}
		if m, ok := next.node.(map[string]any); ok {
			d.Comment = str(m, "description")
		}
		out = append(out, d)
	}
}

// relativeLocation renders p relative to the directory of the entry document
func relativeLocation(entry string, p openapi.Point) string {
	if p.URI == entry {
		return "#" + p.Pointer
	}
	dir := path.Dir(entry) + "/"
	if strings.HasPrefix(p.URI, dir) {
		return strings.TrimPrefix(p.URI, dir) + "#" + p.Pointer
	}
	return p.String()
}

func methodIndex(method string) int {
	for i, m := range Methods {
		if m == method {
			return i
		}
	}
	return len(Methods)
}

// filterIR keeps the contracts whose tags pass the output's filters.
// Declarations are kept whole so references stay valid.
func filterIR(full ir.IR, output config.Output) (ir.IR, error) {
	include, exclude, err := compileTagFilters(output.IncludeTags, output.ExcludeTags)
	if err != nil {
		return ir.IR{}, err
	}
	if len(include) == 0 && len(exclude) == 0 {
		return full, nil
	}

	filtered := full
	filtered.Contracts = make([]ir.Contract, 0, len(full.Contracts))
	for _, c := range full.Contracts {
		tags := c.Tags
		if len(tags) == 0 {
			tags = []string{untaggedTag}
		}
		if shouldIncludeOperation(tags, include, exclude) {
			filtered.Contracts = append(filtered.Contracts, c)
		}
	}
	return filtered, nil
}

// compileTagFilters compiles regex patterns for tag filtering
func compileTagFilters(include, exclude []string) ([]*regexp.Regexp, []*regexp.Regexp, error) {
	inc := make([]*regexp.Regexp, 0, len(include))
	for _, p := range include {
		r, err := regexp.Compile(p)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid includeTags pattern %q: %w", p, err)
		}
		inc = append(inc, r)
	}
	exc := make([]*regexp.Regexp, 0, len(exclude))
	for _, p := range exclude {
		r, err := regexp.Compile(p)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid excludeTags pattern %q: %w", p, err)
		}
		exc = append(exc, r)
	}
	return inc, exc, nil
}

// shouldIncludeOperation reports whether any tag matches an include pattern
// (or there are none) and no tag matches an exclude pattern
func shouldIncludeOperation(tags []string, include, exclude []*regexp.Regexp) bool {
	included := len(include) == 0
	for _, tag := range tags {
		if included {
			break
		}
		for _, r := range include {
			if r.MatchString(tag) {
				included = true
				break
			}
		}
	}
	if !included {
		return false
	}

	for _, tag := range tags {
		for _, r := range exclude {
			if r.MatchString(tag) {
				return false
			}
		}
	}
	return true
}
