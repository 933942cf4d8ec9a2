package openapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
)

const fetchTimeout = 30 * time.Second

// LoadDocument loads the entry document from a local file path or an HTTP(S)
// URL into a fresh Store
func LoadDocument(ctx context.Context, input string) (*Store, error) {
	store := NewStore(ctx)
	if _, err := store.Load(input); err != nil {
		return nil, err
	}
	return store, nil
}

// ValidateDocument validates an OpenAPI document against the OpenAPI 3
// specification, following external references
func ValidateDocument(ctx context.Context, input string) error {
	loader := &openapi3.Loader{Context: ctx, IsExternalRefsAllowed: true}
	doc, err := loadWithLoader(loader, input)
	if err != nil {
		return fmt.Errorf("load %s: %w", input, err)
	}
	if err := doc.Validate(loader.Context, openapi3.DisableExamplesValidation()); err != nil {
		return fmt.Errorf("validate %s: %w", input, err)
	}
	return nil
}

func loadWithLoader(loader *openapi3.Loader, input string) (*openapi3.T, error) {
	// Try to parse as URL; if it looks like http(s), fetch via URL
	if u, err := url.Parse(input); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return loader.LoadFromURI(u)
	}
	return loader.LoadFromFile(input)
}

func fetch(ctx context.Context, uri string) ([]byte, error) {
	if !isURL(uri) {
		data, err := os.ReadFile(uri)
		if err != nil {
			return nil, fmt.Errorf("read document: %w", err)
		}
		return data, nil
	}

	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", uri, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch %s: unexpected status %s", uri, resp.Status)
	}
	return io.ReadAll(resp.Body)
}
