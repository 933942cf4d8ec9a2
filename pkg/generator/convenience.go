package generator

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"

	"github.com/m-haketa/openapi-typescript-code-generator/pkg/config"
	"github.com/m-haketa/openapi-typescript-code-generator/pkg/openapi"
)

// GenerateContractOptions selects either a config file or a single ad hoc output
type GenerateContractOptions struct {
	ConfigPath string
	// SingleOutput restricts a config file to the output with this name
	SingleOutput string

	// Used when ConfigPath is empty. Spec, Type and OutDir are required then.
	Spec        string
	Type        string // "typescript" or "json"
	OutDir      string
	Name        string // defaults to Type
	Namespace   string
	Sync        bool
	Validate    bool
	IncludeTags []string // regular expressions
	ExcludeTags []string

	Logger *slog.Logger
}

// Config returns the configuration these options describe
func (o GenerateContractOptions) Config() (*config.Config, error) {
	if o.ConfigPath != "" {
		return config.Load(o.ConfigPath)
	}
	if o.Spec == "" || o.Type == "" || o.OutDir == "" {
		return nil, errors.New("either a config path or spec, type and outDir must be provided")
	}
	name := o.Name
	if name == "" {
		name = o.Type
	}
	return &config.Config{
		Spec:     o.Spec,
		Validate: o.Validate,
		Outputs: []config.Output{{
			Type:        o.Type,
			Name:        name,
			OutDir:      o.OutDir,
			Namespace:   o.Namespace,
			Sync:        o.Sync,
			IncludeTags: o.IncludeTags,
			ExcludeTags: o.ExcludeTags,
		}},
	}, nil
}

// GenerateContract builds the document once and writes the selected outputs
func GenerateContract(ctx context.Context, opts GenerateContractOptions) error {
	cfg, err := opts.Config()
	if err != nil {
		return err
	}
	service := NewService()
	service.SetLogger(opts.Logger)
	return service.GenerateFromConfig(ctx, cfg, opts.SingleOutput)
}

// GenerateTypeScript writes types.ts and apiClient.ts for spec into outDir
func GenerateTypeScript(ctx context.Context, spec, outDir string) error {
	absOutDir, err := filepath.Abs(outDir)
	if err != nil {
		return err
	}
	return GenerateContract(ctx, GenerateContractOptions{Spec: spec, Type: "typescript", OutDir: absOutDir})
}

func GenerateFromConfig(ctx context.Context, configPath string, singleOutput ...string) error {
	opts := GenerateContractOptions{ConfigPath: configPath}
	if len(singleOutput) > 0 {
		opts.SingleOutput = singleOutput[0]
	}
	return GenerateContract(ctx, opts)
}

// ValidateSpec checks the document at specPath against the OpenAPI 3 schema
func ValidateSpec(ctx context.Context, specPath string) error {
	return openapi.ValidateDocument(ctx, specPath)
}
