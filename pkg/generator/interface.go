package generator

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/m-haketa/openapi-typescript-code-generator/pkg/config"
	"github.com/m-haketa/openapi-typescript-code-generator/pkg/generator/jsoncontract"
	"github.com/m-haketa/openapi-typescript-code-generator/pkg/generator/typescript"
	"github.com/m-haketa/openapi-typescript-code-generator/pkg/ir"
	"github.com/m-haketa/openapi-typescript-code-generator/pkg/openapi"
)

// Generator renders a contract set for one output
type Generator interface {
	// Generate writes the rendered contract into output.OutDir
	Generate(output config.Output, contract ir.IR) error
	// Type is the value of config.Output.Type this generator handles
	Type() string
}

// Registry maps output types to generators
type Registry struct {
	byType map[string]Generator
}

func NewRegistry(generators ...Generator) *Registry {
	r := &Registry{byType: map[string]Generator{}}
	for _, g := range generators {
		r.Register(g)
	}
	return r
}

// Register adds g, replacing any generator of the same type
func (r *Registry) Register(g Generator) {
	r.byType[g.Type()] = g
}

func (r *Registry) Lookup(outputType string) (Generator, bool) {
	g, ok := r.byType[outputType]
	return g, ok
}

// Types lists the registered output types in sorted order
func (r *Registry) Types() []string {
	types := make([]string, 0, len(r.byType))
	for t := range r.byType {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Service builds contract sets and hands them to the registered generators
type Service struct {
	registry *Registry
	logger   *slog.Logger
}

// NewService returns a service with the typescript and json generators
func NewService() *Service {
	return NewServiceWithRegistry(NewRegistry(
		typescript.NewTypeScriptGenerator(),
		jsoncontract.NewGenerator(),
	))
}

func NewServiceWithRegistry(registry *Registry) *Service {
	return &Service{registry: registry, logger: slog.Default()}
}

// SetLogger replaces the logger used for progress and diagnostics
func (s *Service) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Build loads the document at spec and builds its contract set
func (s *Service) Build(ctx context.Context, spec string) (ir.IR, error) {
	store, err := openapi.LoadDocument(ctx, spec)
	if err != nil {
		return ir.IR{}, err
	}
	return BuildIR(store, Options{Logger: s.logger})
}

// GenerateFromConfig generates every configured output, or only the one named onlyOutput
func (s *Service) GenerateFromConfig(ctx context.Context, cfg *config.Config, onlyOutput string) error {
	if cfg.Validate {
		if err := openapi.ValidateDocument(ctx, cfg.Spec); err != nil {
			return err
		}
	}

	full, err := s.Build(ctx, cfg.Spec)
	if err != nil {
		return err
	}

	for _, output := range cfg.Outputs {
		if onlyOutput != "" && output.Name != onlyOutput {
			continue
		}
		if err := s.generateOutput(ctx, full, output); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) generateOutput(ctx context.Context, full ir.IR, output config.Output) error {
	g, ok := s.registry.Lookup(output.Type)
	if !ok {
		return fmt.Errorf("unsupported output type: %s (available: %s)", output.Type, strings.Join(s.registry.Types(), ", "))
	}
	if err := os.MkdirAll(output.OutDir, 0o755); err != nil {
		return fmt.Errorf("create output directory for %s: %w", output.Name, err)
	}
	if err := s.runHook(ctx, output.PreCommand, output.OutDir); err != nil {
		return fmt.Errorf("preCommand for %s: %w", output.Name, err)
	}

	filtered, err := filterIR(full, output)
	if err != nil {
		return err
	}
	if err := g.Generate(output, filtered); err != nil {
		return fmt.Errorf("generate %s: %w", output.Name, err)
	}
	s.logger.Info("generated output",
		"name", output.Name,
		"type", output.Type,
		"outDir", output.OutDir,
		"contracts", len(filtered.Contracts),
	)

	if err := s.runHook(ctx, output.PostCommand, output.OutDir); err != nil {
		return fmt.Errorf("postCommand for %s: %w", output.Name, err)
	}
	return nil
}

// runHook runs argv (exec form, no shell) with dir as working directory
func (s *Service) runHook(ctx context.Context, argv []string, dir string) error {
	if len(argv) == 0 {
		return nil
	}
	line := strings.Join(argv, " ")
	s.logger.Debug("running hook", "command", line, "dir", dir)

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", line, err)
	}
	return nil
}
