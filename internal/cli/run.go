package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/m-haketa/openapi-typescript-code-generator/pkg/generator"
	"github.com/m-haketa/openapi-typescript-code-generator/pkg/ir"
	"github.com/m-haketa/openapi-typescript-code-generator/pkg/openapi"
	"github.com/m-haketa/openapi-typescript-code-generator/pkg/query"
)

type FallbackParams struct {
	Spec        string
	Type        string
	OutDir      string
	Name        string
	Namespace   string
	Sync        bool
	Validate    bool
	IncludeTags []string
	ExcludeTags []string
}

type RunGenerateParams struct {
	ConfigPath   string
	SingleOutput string
	Fallback     FallbackParams
}

type RunQueryParams struct {
	Spec   string
	Method string
	URI    string
	// Format is json or yaml
	Format string
}

func RunValidate(ctx context.Context, input string) error {
	return openapi.ValidateDocument(ctx, input)
}

func RunGenerate(ctx context.Context, p RunGenerateParams, logger *slog.Logger) error {
	opts := generator.GenerateContractOptions{
		ConfigPath:   p.ConfigPath,
		SingleOutput: p.SingleOutput,
		Logger:       logger,
	}
	if p.ConfigPath == "" {
		if p.Fallback.Spec == "" || p.Fallback.Type == "" || p.Fallback.OutDir == "" {
			return errors.New("either --config or all of --input, --type, --out must be provided")
		}
		opts.Spec = specPath(p.Fallback.Spec)
		opts.Type = p.Fallback.Type
		opts.OutDir = absPath(p.Fallback.OutDir)
		opts.Name = p.Fallback.Name
		opts.Namespace = p.Fallback.Namespace
		opts.Sync = p.Fallback.Sync
		opts.Validate = p.Fallback.Validate
		opts.IncludeTags = p.Fallback.IncludeTags
		opts.ExcludeTags = p.Fallback.ExcludeTags
	}
	return generator.GenerateContract(ctx, opts)
}

// queryView is what `query` prints
type queryView struct {
	Method               string    `json:"method"`
	URI                  string    `json:"uri"`
	Operations           []string  `json:"operations"`
	Parameters           ir.Struct `json:"parameters"`
	Response             ir.Struct `json:"response"`
	ResponseContentTypes []string  `json:"responseContentTypes"`
}

func RunQuery(ctx context.Context, p RunQueryParams, w io.Writer, logger *slog.Logger) error {
	if p.Spec == "" || p.Method == "" {
		return errors.New("--input and --method are required")
	}
	service := generator.NewService()
	service.SetLogger(logger)
	contract, err := service.Build(ctx, specPath(p.Spec))
	if err != nil {
		return err
	}
	table, err := query.New(contract.Contracts)
	if err != nil {
		return err
	}

	method := strings.ToUpper(p.Method)
	result := table.Narrow(method, p.URI)
	if result.Empty() {
		logger.Warn("no operation matched", "method", method, "uri", p.URI)
	}
	view := queryView{
		Method:               method,
		URI:                  p.URI,
		Operations:           []string{},
		Parameters:           result.Parameters(),
		Response:             result.Response(),
		ResponseContentTypes: result.ResponseContentTypes(),
	}
	for _, c := range result.Entries {
		view.Operations = append(view.Operations, c.OperationID)
	}
	if view.ResponseContentTypes == nil {
		view.ResponseContentTypes = []string{}
	}
	return writeView(w, view, p.Format)
}

func writeView(w io.Writer, view any, format string) error {
	data, err := json.MarshalIndent(view, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	switch format {
	case "", "json":
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "yaml":
		// round-trip through the JSON form so the yaml keys follow the json tags
		var tree any
		if err := json.Unmarshal(data, &tree); err != nil {
			return fmt.Errorf("decode result: %w", err)
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(tree); err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
		return enc.Close()
	}
	return fmt.Errorf("unsupported format: %s (available: json, yaml)", format)
}
