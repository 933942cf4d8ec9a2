// Package codegen turns OpenAPI documents into typed operation contracts.
//
// A contract pairs every (method, request URI) of a document with the
// structural types of its arguments and responses. Contracts can be written
// as TypeScript declarations or as a JSON dump, or queried in process.
//
// Quick Start:
//
//	import codegen "github.com/m-haketa/openapi-typescript-code-generator"
//
//	// Write types.ts and apiClient.ts
//	err := codegen.GenerateTypeScript(ctx, "./openapi.yaml", "./generated")
//
// For more advanced usage, see the generator package.
package codegen

import (
	"context"

	"github.com/m-haketa/openapi-typescript-code-generator/pkg/generator"
	"github.com/m-haketa/openapi-typescript-code-generator/pkg/ir"
	"github.com/m-haketa/openapi-typescript-code-generator/pkg/query"
)

// GenerateTypeScript writes types.ts and apiClient.ts for spec into outDir.
//
// Example:
//
//	err := codegen.GenerateTypeScript(ctx, "./openapi.yaml", "./src/api")
func GenerateTypeScript(ctx context.Context, spec, outDir string) error {
	return generator.GenerateTypeScript(ctx, spec, outDir)
}

// Generate generates contracts with full configuration options.
//
// Example:
//
//	err := codegen.Generate(ctx, codegen.GenerateOptions{
//		Spec:        "./openapi.yaml",
//		Type:        "json",
//		OutDir:      "./contract",
//		IncludeTags: []string{"users", "orders"},
//		ExcludeTags: []string{"internal"},
//	})
func Generate(ctx context.Context, opts GenerateOptions) error {
	return generator.GenerateContract(ctx, opts)
}

// GenerateFromConfig generates every output of a YAML configuration file.
// Optionally, a single output name restricts generation to that output.
//
// Example:
//
//	err := codegen.GenerateFromConfig(ctx, "./contract-gen.yaml")
//	err := codegen.GenerateFromConfig(ctx, "./contract-gen.yaml", "web")
func GenerateFromConfig(ctx context.Context, configPath string, singleOutput ...string) error {
	return generator.GenerateFromConfig(ctx, configPath, singleOutput...)
}

// ValidateSpec validates an OpenAPI document against the OpenAPI 3 specification.
func ValidateSpec(ctx context.Context, specPath string) error {
	return generator.ValidateSpec(ctx, specPath)
}

// Build loads spec and returns its declarations and contracts without writing anything.
func Build(ctx context.Context, spec string) (ir.IR, error) {
	return generator.NewService().Build(ctx, spec)
}

// NewQuery builds spec and indexes its contracts by method and request URI.
//
// Example:
//
//	table, err := codegen.NewQuery(ctx, "./openapi.yaml")
//	result := table.Narrow("GET", "/pets/{petId}")
//	fmt.Println(result.Response())
func NewQuery(ctx context.Context, spec string) (*query.Table, error) {
	contract, err := Build(ctx, spec)
	if err != nil {
		return nil, err
	}
	return query.New(contract.Contracts)
}

// GenerateOptions selects either a config file or a single ad hoc output.
// Spec, Type and OutDir are required when ConfigPath is empty.
type GenerateOptions = generator.GenerateContractOptions
