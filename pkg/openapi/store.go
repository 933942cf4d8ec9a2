package openapi

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"sync"
)

// Store loads documents on demand and keeps them for the lifetime of a run.
// The first loaded document is the entry document.
type Store struct {
	mu    sync.Mutex
	ctx   context.Context
	docs  map[string]*Document
	entry string
}

// NewStore creates an empty store. ctx bounds remote fetches.
func NewStore(ctx context.Context) *Store {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Store{ctx: ctx, docs: map[string]*Document{}}
}

// Load reads the entry document from a local path or an HTTP(S) URL
func (s *Store) Load(input string) (*Document, error) {
	uri, err := normalizeLocation(input)
	if err != nil {
		return nil, err
	}
	doc, err := s.Get(uri)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	if s.entry == "" {
		s.entry = uri
	}
	s.mu.Unlock()
	return doc, nil
}

// Add registers an in-memory document under uri. The first added document
// becomes the entry document unless Load was called before.
func (s *Store) Add(uri string, data []byte) (*Document, error) {
	root, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", uri, err)
	}
	doc := &Document{URI: uri, Root: root}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[uri] = doc
	if s.entry == "" {
		s.entry = uri
	}
	return doc, nil
}

// Entry returns the entry document, nil before anything was loaded
func (s *Store) Entry() *Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docs[s.entry]
}

// Get returns the document at uri, fetching it when not cached
func (s *Store) Get(uri string) (*Document, error) {
	s.mu.Lock()
	if doc, ok := s.docs[uri]; ok {
		s.mu.Unlock()
		return doc, nil
	}
	s.mu.Unlock()

	data, err := fetch(s.ctx, uri)
	if err != nil {
		return nil, err
	}
	root, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", uri, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if doc, ok := s.docs[uri]; ok {
		return doc, nil
	}
	doc := &Document{URI: uri, Root: root}
	s.docs[uri] = doc
	return doc, nil
}

// Node returns the node addressed by p
func (s *Store) Node(p Point) (any, error) {
	doc, err := s.Get(p.URI)
	if err != nil {
		return nil, err
	}
	return doc.Lookup(p.Pointer)
}

// Locate turns a $ref found in the document at base into an absolute Point.
// It does not check that the target exists.
func (s *Store) Locate(base, ref string) (Point, error) {
	docPart, fragment, _ := strings.Cut(ref, "#")
	if fragment != "" && !strings.HasPrefix(fragment, "/") {
		return Point{}, fmt.Errorf("unsupported fragment %q in %q", fragment, ref)
	}
	if unescaped, err := url.PathUnescape(fragment); err == nil {
		fragment = unescaped
	}
	if docPart == "" {
		return Point{URI: base, Pointer: fragment}, nil
	}
	uri, err := joinLocation(base, docPart)
	if err != nil {
		return Point{}, err
	}
	return Point{URI: uri, Pointer: fragment}, nil
}

func normalizeLocation(input string) (string, error) {
	if input == "" {
		return "", errors.New("document location is empty")
	}
	if isURL(input) {
		return input, nil
	}
	abs, err := filepath.Abs(input)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(abs), nil
}

func joinLocation(base, rel string) (string, error) {
	if isURL(rel) {
		return rel, nil
	}
	if isURL(base) {
		b, err := url.Parse(base)
		if err != nil {
			return "", err
		}
		r, err := url.Parse(rel)
		if err != nil {
			return "", err
		}
		return b.ResolveReference(r).String(), nil
	}
	if path.IsAbs(rel) || filepath.IsAbs(rel) {
		return filepath.ToSlash(rel), nil
	}
	return path.Join(path.Dir(filepath.ToSlash(base)), filepath.ToSlash(rel)), nil
}

func isURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https")
}
