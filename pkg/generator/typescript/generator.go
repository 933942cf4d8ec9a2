package typescript

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/m-haketa/openapi-typescript-code-generator/pkg/config"
	"github.com/m-haketa/openapi-typescript-code-generator/pkg/ir"
	"github.com/m-haketa/openapi-typescript-code-generator/pkg/utils"
)

//go:embed templates/*
var templatesFS embed.FS

// DefaultNamespace holds the schema declarations unless configured otherwise
const DefaultNamespace = "Schemas"

// TypeScriptGenerator writes types.ts and apiClient.ts
type TypeScriptGenerator struct{}

func NewTypeScriptGenerator() *TypeScriptGenerator {
	return &TypeScriptGenerator{}
}

func (g *TypeScriptGenerator) Type() string {
	return "typescript"
}

// Generate writes types.ts and apiClient.ts into output.OutDir
func (g *TypeScriptGenerator) Generate(output config.Output, in ir.IR) error {
	if err := os.MkdirAll(output.OutDir, 0o755); err != nil {
		return err
	}

	namespace := output.Namespace
	if namespace == "" {
		namespace = DefaultNamespace
	}
	p := printer{namespace: namespace}

	root, nested := buildDeclarations(in, p)
	ops := make([]operationView, 0, len(in.Contracts))
	for _, c := range in.Contracts {
		ops = append(ops, buildOperation(c, p))
	}

	tmpl, err := parseTemplates()
	if err != nil {
		return err
	}
	data := map[string]any{
		"Output":           output,
		"Namespace":        namespace,
		"Declarations":     root,
		"Namespaces":       nested,
		"Operations":       ops,
		"SuccessResponses": successResponses(ops),
		"Methods":          methods(),
	}
	files := []struct{ template, name string }{
		{"types.ts.gotmpl", "types.ts"},
		{"api_client.ts.gotmpl", "apiClient.ts"},
	}
	for _, f := range files {
		target := filepath.Join(output.OutDir, f.name)
		if output.ShouldExcludeFile(target) {
			continue
		}
		var buf bytes.Buffer
		if err := tmpl.ExecuteTemplate(&buf, f.template, data); err != nil {
			return fmt.Errorf("render %s: %w", f.name, err)
		}
		if err := os.WriteFile(target, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", target, err)
		}
	}
	return nil
}

// parseTemplates loads every embedded template with sprig and the local helpers
func parseTemplates() (*template.Template, error) {
	funcs := sprig.TxtFuncMap()
	funcs["doc"] = docComment
	funcs["quote"] = stringLiteral
	funcs["prop"] = utils.QuoteProperty
	tmpl, err := template.New("typescript").Funcs(funcs).ParseFS(templatesFS, "templates/*.gotmpl")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return tmpl, nil
}

func methods() []string {
	return []string{"GET", "PUT", "POST", "DELETE", "OPTIONS", "HEAD", "PATCH", "TRACE"}
}
