// Package query narrows a contract set to the operations matching a method
// and request URI. Matching is exact string comparison; a URI template such
// as /items/{id} only matches the literal text "/items/{id}".
package query

import (
	"errors"
	"fmt"
	"sort"

	"github.com/m-haketa/openapi-typescript-code-generator/pkg/ir"
)

// Wildcard narrows by method only
const Wildcard = "*"

// ErrDuplicateEntry is returned when two contracts share method and request URI
var ErrDuplicateEntry = errors.New("duplicate entry")

type key struct {
	method string
	uri    string
}

// Table is a keyed lookup over the aggregate operation map
type Table struct {
	entries []ir.Contract
	index   map[key]int
}

// New builds a table, rejecting duplicate (method, request URI) pairs
func New(contracts []ir.Contract) (*Table, error) {
	t := &Table{
		entries: make([]ir.Contract, 0, len(contracts)),
		index:   make(map[key]int, len(contracts)),
	}
	for _, c := range contracts {
		k := key{method: c.Method, uri: c.RequestURI}
		if _, ok := t.index[k]; ok {
			return nil, fmt.Errorf("%w: %s %s", ErrDuplicateEntry, c.Method, c.RequestURI)
		}
		t.index[k] = len(t.entries)
		t.entries = append(t.entries, c)
	}
	return t, nil
}

// Lookup returns the single contract registered for method and uri
func (t *Table) Lookup(method, uri string) (ir.Contract, bool) {
	i, ok := t.index[key{method: method, uri: uri}]
	if !ok {
		return ir.Contract{}, false
	}
	return t.entries[i], true
}

// Narrow filters the table. An empty uri or Wildcard keeps every entry of
// method; no match yields an empty Result.
func (t *Table) Narrow(method, uri string) Result {
	if uri != "" && uri != Wildcard {
		if c, ok := t.Lookup(method, uri); ok {
			return Result{Entries: []ir.Contract{c}}
		}
		return Result{}
	}
	var r Result
	for _, c := range t.entries {
		if c.Method == method {
			r.Entries = append(r.Entries, c)
		}
	}
	return r
}

// Methods returns the distinct methods present, sorted
func (t *Table) Methods() []string {
	seen := map[string]bool{}
	var out []string
	for _, c := range t.entries {
		if !seen[c.Method] {
			seen[c.Method] = true
			out = append(out, c.Method)
		}
	}
	sort.Strings(out)
	return out
}

// URIs returns the request URIs registered for method, sorted
func (t *Table) URIs(method string) []string {
	var out []string
	for _, c := range t.entries {
		if c.Method == method {
			out = append(out, c.RequestURI)
		}
	}
	sort.Strings(out)
	return out
}

// Result is the outcome of narrowing
type Result struct {
	Entries []ir.Contract
}

// Empty reports whether nothing matched
func (r Result) Empty() bool {
	return len(r.Entries) == 0
}

// Parameters is the union of the matched argument types, never when empty
func (r Result) Parameters() ir.Struct {
	members := make([]ir.Struct, 0, len(r.Entries))
	for _, c := range r.Entries {
		members = append(members, c.Parameters.Struct())
	}
	return ir.Union(members...)
}

// Response is the union of the matched response types, never when empty
func (r Result) Response() ir.Struct {
	members := make([]ir.Struct, 0, len(r.Entries))
	for _, c := range r.Entries {
		members = append(members, c.Response)
	}
	return ir.Union(members...)
}

// ResponseContentTypes returns the distinct success content types of the
// matched entries, sorted
func (r Result) ResponseContentTypes() []string {
	seen := map[string]bool{}
	var out []string
	for _, c := range r.Entries {
		for _, ct := range c.ResponseContentTypes {
			if !seen[ct] {
				seen[ct] = true
				out = append(out, ct)
			}
		}
	}
	sort.Strings(out)
	return out
}
