package generator

import (
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/m-haketa/openapi-typescript-code-generator/pkg/ir"
	"github.com/m-haketa/openapi-typescript-code-generator/pkg/openapi"
	"github.com/m-haketa/openapi-typescript-code-generator/pkg/utils"
)

const maxRefDepth = 32

// Resolution is the outcome of resolving one $ref. Name is empty when the
// target has no naming convention and must be converted inline.
type Resolution struct {
	Name   string
	Target openapi.Point
	Node   any
}

type pendingDeclaration struct {
	name      string
	namespace string
	target    openapi.Point
	node      any
}

// Resolver owns the declaration table of one generation run. It is shared
// by pointer between the converter and the contract builder; the mutex lets
// concurrent callers agree on names.
type Resolver struct {
	mu    sync.Mutex
	store *openapi.Store
	entry string

	names      map[string]string // target → qualified name
	taken      map[string]string // qualified name → target
	namespaces map[string]string // document uri → namespace
	nsTaken    map[string]bool
	entries    []ir.Entry
	pending    []pendingDeclaration
}

// NewResolver creates the table for one run over the store's entry document
func NewResolver(store *openapi.Store) *Resolver {
	r := &Resolver{
		store:      store,
		names:      map[string]string{},
		taken:      map[string]string{},
		namespaces: map[string]string{},
		nsTaken:    map[string]bool{},
	}
	if doc := store.Entry(); doc != nil {
		r.entry = doc.URI
	}
	return r
}

// Resolve resolves ref found at source, assigning a declaration name the
// first time a nameable target is seen
func (r *Resolver) Resolve(source openapi.Point, ref string) (Resolution, error) {
	return r.resolve(source, ref, true)
}

func (r *Resolver) resolve(source openapi.Point, ref string, record bool) (Resolution, error) {
	target, node, err := r.Locate(source, ref)
	if err != nil {
		return Resolution{}, err
	}
	tokens, _ := target.Tokens()
	key := target.String()

	r.mu.Lock()
	defer r.mu.Unlock()

	if name, ok := r.names[key]; ok {
		if record {
			r.entries = append(r.entries, ir.Entry{Source: source.String(), Target: key, Name: name})
		}
		return Resolution{Name: name, Target: target, Node: node}, nil
	}

	namespace, name, ok := r.nameFor(target, tokens)
	if !ok {
		return Resolution{Target: target, Node: node}, nil
	}
	name, qualified := r.unique(namespace, name, key)
	r.names[key] = qualified
	r.taken[qualified] = key
	r.pending = append(r.pending, pendingDeclaration{name: name, namespace: namespace, target: target, node: node})
	if record {
		r.entries = append(r.entries, ir.Entry{Source: source.String(), Target: key, Name: qualified})
	}
	return Resolution{Name: qualified, Target: target, Node: node}, nil
}

// Locate finds the target of ref without touching the declaration table
func (r *Resolver) Locate(source openapi.Point, ref string) (openapi.Point, any, error) {
	target, err := r.store.Locate(source.URI, ref)
	if err != nil {
		return openapi.Point{}, nil, schemaError(ErrUnresolvedReference, source, nil, "%q: %v", ref, err)
	}
	if _, err := target.Tokens(); err != nil {
		return openapi.Point{}, nil, schemaError(ErrUnresolvedReference, source, nil, "%q: %v", ref, err)
	}
	node, err := r.store.Node(target)
	if err != nil {
		return openapi.Point{}, nil, schemaError(ErrUnresolvedReference, source, nil, "%q: %v", ref, err)
	}
	return target, node, nil
}

// Deref follows $ref chains on non-schema objects (parameters, request
// bodies, responses) until a concrete object is reached
func (r *Resolver) Deref(at openapi.Point, node any) (openapi.Point, map[string]any, error) {
	for i := 0; i < maxRefDepth; i++ {
		m, ok := node.(map[string]any)
		if !ok {
			return at, nil, schemaError(ErrUnsupportedShape, at, node, "expected an object")
		}
		ref, ok := m["$ref"].(string)
		if !ok {
			return at, m, nil
		}
		target, next, err := r.Locate(at, ref)
		if err != nil {
			return at, nil, err
		}
		at, node = target, next
	}
	return at, nil, schemaError(ErrUnresolvedReference, at, nil, "reference chain deeper than %d", maxRefDepth)
}

// SeedComponents declares every schema under components.schemas of the
// entry document, so each one is declared exactly once even when unused
func (r *Resolver) SeedComponents() error {
	doc := r.store.Entry()
	if doc == nil {
		return nil
	}
	at := openapi.Point{URI: doc.URI, Pointer: "/components/schemas"}
	node, err := doc.Lookup(at.Pointer)
	if err != nil {
		return nil
	}
	schemas, ok := node.(map[string]any)
	if !ok {
		return nil
	}
	names := make([]string, 0, len(schemas))
	for name := range schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, err := r.resolve(at, "#"+at.Child(name).Pointer, false); err != nil {
			return err
		}
	}
	return nil
}

// NextPending pops the oldest declaration still waiting to be converted
func (r *Resolver) NextPending() (pendingDeclaration, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.pending) == 0 {
		return pendingDeclaration{}, false
	}
	next := r.pending[0]
	r.pending = r.pending[1:]
	return next, true
}

// Entries returns a copy of the resolution records made so far
func (r *Resolver) Entries() []ir.Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ir.Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Names returns target location → qualified name for every assigned name
func (r *Resolver) Names() map[string]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]string, len(r.names))
	for k, v := range r.names {
		out[k] = v
	}
	return out
}

// nameFor applies the naming conventions; ok is false for locations that
// have none
func (r *Resolver) nameFor(target openapi.Point, tokens []string) (namespace, name string, ok bool) {
	if len(tokens) >= 3 && tokens[0] == "components" && tokens[1] == "schemas" {
		name = utils.DeclarationName(tokens[2])
		for _, t := range tokens[3:] {
			name += utils.ToPascalCase(t)
		}
		if target.URI == r.entry {
			return "", name, true
		}
		return r.namespaceOf(target.URI), name, true
	}
	// a whole document stored in a schemas directory is a component too
	if len(tokens) == 0 && target.URI != r.entry && path.Base(path.Dir(target.URI)) == "schemas" {
		return "", utils.DeclarationName(fileStem(target.URI)), true
	}
	return "", "", false
}

func (r *Resolver) namespaceOf(uri string) string {
	if ns, ok := r.namespaces[uri]; ok {
		return ns
	}
	base := utils.DeclarationName(utils.ToPascalCase(fileStem(uri)))
	ns := base
	for i := 2; r.nsTaken[ns]; i++ {
		ns = base + strconv.Itoa(i)
	}
	r.nsTaken[ns] = true
	r.namespaces[uri] = ns
	return ns
}

func (r *Resolver) unique(namespace, name, key string) (string, string) {
	qualify := func(n string) string {
		if namespace == "" {
			return n
		}
		return namespace + "." + n
	}
	candidate := name
	for i := 2; ; i++ {
		owner, taken := r.taken[qualify(candidate)]
		if !taken || owner == key {
			return candidate, qualify(candidate)
		}
		candidate = fmt.Sprintf("%s%d", name, i)
	}
}

func fileStem(uri string) string {
	base := path.Base(uri)
	return strings.TrimSuffix(base, path.Ext(base))
}
