package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
spec: https://example.com/openapi.yml
validate: true
outputs:
  - type: typescript
    outDir: /tmp/out
    namespace: Api
    sync: true
    includeTags: ["^pets"]
    exclude: ["apiClient.ts"]
  - type: json
    outDir: gen
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Spec != "https://example.com/openapi.yml" {
		t.Errorf("Spec = %q, expected URL kept as-is", cfg.Spec)
	}
	if !cfg.Validate {
		t.Error("Validate = false, expected true")
	}
	if len(cfg.Outputs) != 2 {
		t.Fatalf("len(Outputs) = %d, expected 2", len(cfg.Outputs))
	}
	ts := cfg.Outputs[0]
	if ts.Name != "typescript" || ts.Namespace != "Api" || !ts.Sync {
		t.Errorf("Outputs[0] = %+v, expected name defaulted to type with namespace Api and sync", ts)
	}
	if !filepath.IsAbs(cfg.Outputs[1].OutDir) || !strings.HasSuffix(cfg.Outputs[1].OutDir, "gen") {
		t.Errorf("Outputs[1].OutDir = %q, expected absolute path ending in gen", cfg.Outputs[1].OutDir)
	}
}

func TestParseAbsolutizesSpec(t *testing.T) {
	cfg, err := Parse([]byte("spec: api/openapi.yml\noutputs:\n  - type: json\n    outDir: out\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !filepath.IsAbs(cfg.Spec) {
		t.Errorf("Spec = %q, expected absolute path", cfg.Spec)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"missing spec", "outputs:\n  - type: json\n    outDir: out\n", "config.spec is required"},
		{"no outputs", "spec: a.yml\n", "at least one output"},
		{"missing outDir", "spec: a.yml\noutputs:\n  - type: json\n", "missing required fields"},
		{"duplicate name", "spec: a.yml\noutputs:\n  - type: json\n    outDir: a\n  - type: json\n    outDir: b\n", "duplicate output name"},
		{"bad yaml", "spec: [", "parse config"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Parse([]byte(test.input))
			if err == nil {
				t.Fatalf("Parse succeeded, expected error containing %q", test.want)
			}
			if !strings.Contains(err.Error(), test.want) {
				t.Errorf("Parse error = %q, expected it to contain %q", err, test.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contract-gen.yml")
	if err := os.WriteFile(path, []byte("spec: openapi.yml\noutputs:\n  - type: typescript\n    outDir: out\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Outputs[0].Name != "typescript" {
		t.Errorf("Name = %q, expected %q", cfg.Outputs[0].Name, "typescript")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestShouldExcludeFile(t *testing.T) {
	o := Output{OutDir: "/out", ExcludeFiles: []string{"apiClient.ts", "src/"}}
	tests := []struct {
		path     string
		expected bool
	}{
		{"/out/apiClient.ts", true},
		{"/out/types.ts", false},
		{"/out/src/index.ts", true},
		{"/out", false},
		{"/elsewhere/apiClient.ts", false},
	}
	for _, test := range tests {
		if got := o.ShouldExcludeFile(test.path); got != test.expected {
			t.Errorf("ShouldExcludeFile(%q) = %v, expected %v", test.path, got, test.expected)
		}
	}
}
