package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the complete configuration for contract generation
type Config struct {
	// Spec is the entry OpenAPI document, a file path or an HTTP(S) URL
	Spec string `yaml:"spec"`
	// Validate runs strict OpenAPI validation before generating
	Validate bool     `yaml:"validate"`
	Outputs  []Output `yaml:"outputs"`
}

// Output represents configuration for a single emitted contract
type Output struct {
	// Type selects the backend, e.g. "typescript" or "json"
	Type   string `yaml:"type"`
	OutDir string `yaml:"outDir"`
	// Name identifies the output; defaults to Type
	Name string `yaml:"name"`
	// Namespace is the TypeScript namespace holding declarations (default "Schemas")
	Namespace string `yaml:"namespace"`
	// Sync makes ApiClient methods return values instead of promises
	Sync        bool     `yaml:"sync"`
	IncludeTags []string `yaml:"includeTags"`
	ExcludeTags []string `yaml:"excludeTags"`
	// PreCommand runs in OutDir before generation. Uses Docker Compose array
	// format: ["npx", "prettier", "--version"]
	PreCommand []string `yaml:"preCommand"`
	// PostCommand runs in OutDir after generation
	PostCommand []string `yaml:"postCommand"`
	// ExcludeFiles lists paths relative to OutDir that must not be written
	ExcludeFiles []string `yaml:"exclude"`
}

// ShouldExcludeFile reports whether the absolute targetPath falls under one of
// the ExcludeFiles entries, matched relative to OutDir
func (o *Output) ShouldExcludeFile(targetPath string) bool {
	if len(o.ExcludeFiles) == 0 {
		return false
	}
	relPath, err := filepath.Rel(o.OutDir, targetPath)
	if err != nil {
		return false
	}
	relPath = filepath.ToSlash(relPath)
	if relPath == "." || strings.HasPrefix(relPath, "../") {
		return false
	}

	for _, pattern := range o.ExcludeFiles {
		pattern = strings.TrimSuffix(filepath.ToSlash(pattern), "/")
		if pattern == "" {
			continue
		}
		// "src" excludes "src/types.ts" as well
		if relPath == pattern || strings.HasPrefix(relPath, pattern+"/") {
			return true
		}
	}
	return false
}

// Load reads and parses the YAML file at path
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes and validates configuration, absolutizing local paths
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) normalize() error {
	if cfg.Spec == "" {
		return errors.New("config.spec is required")
	}
	if len(cfg.Outputs) == 0 {
		return errors.New("config.outputs must list at least one output")
	}
	names := map[string]bool{}
	for i := range cfg.Outputs {
		o := &cfg.Outputs[i]
		if o.Type == "" || o.OutDir == "" {
			return fmt.Errorf("outputs[%d] missing required fields (type, outDir)", i)
		}
		if o.Name == "" {
			o.Name = o.Type
		}
		if names[o.Name] {
			return fmt.Errorf("outputs[%d]: duplicate output name %q", i, o.Name)
		}
		names[o.Name] = true
		if !filepath.IsAbs(o.OutDir) {
			abs, err := filepath.Abs(o.OutDir)
			if err != nil {
				return err
			}
			o.OutDir = abs
		}
	}
	// Do not absolutize when spec is an HTTP(S) URL
	if u, err := url.Parse(cfg.Spec); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return nil
	}
	if !filepath.IsAbs(cfg.Spec) {
		abs, err := filepath.Abs(cfg.Spec)
		if err != nil {
			return err
		}
		cfg.Spec = abs
	}
	return nil
}
