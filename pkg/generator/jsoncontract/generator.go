// Package jsoncontract dumps the contract set as JSON for tooling that does
// not consume TypeScript.
package jsoncontract

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"github.com/m-haketa/openapi-typescript-code-generator/pkg/config"
	"github.com/m-haketa/openapi-typescript-code-generator/pkg/ir"
)

// FileName is the file written into the output directory
const FileName = "contract.json"

// Document is the on-disk layout of contract.json
type Document struct {
	Declarations []ir.Declaration      `json:"declarations"`
	Operations   map[string]ir.Contract `json:"operations"`
}

// Generator writes contract.json
type Generator struct{}

// NewGenerator creates a new JSON contract generator
func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) Type() string {
	return "json"
}

// Generate writes the declarations and the operation map keyed by operationId
func (g *Generator) Generate(output config.Output, in ir.IR) error {
	target := filepath.Join(output.OutDir, FileName)
	if output.ShouldExcludeFile(target) {
		return nil
	}
	data, err := Marshal(in)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(output.OutDir, 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", target, err)
	}
	return nil
}

// Marshal renders in as indented JSON
func Marshal(in ir.IR) ([]byte, error) {
	doc := Document{
		Declarations: in.Declarations,
		Operations:   in.Operations(),
	}
	if doc.Declarations == nil {
		doc.Declarations = []ir.Declaration{}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal contract: %w", err)
	}
	return append(data, '\n'), nil
}
