package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/reoring/zodgen/config"
)

func TestLoad_ValidConfig(t *testing.T) {
	content := `
inputs:
  - ./api
  - types.yaml
output: gen/schemas.ts
format: jsonschema
references: true
header: generated by zodgen
language: ja

logging:
  level: debug
  format: json

watch:
  debounce: 1s
`
	cfg, dir := writeAndLoad(t, content)

	if len(cfg.Inputs) != 2 {
		t.Fatalf("len(Inputs) = %d, want 2", len(cfg.Inputs))
	}
	if cfg.Inputs[0] != filepath.Join(dir, "api") {
		t.Errorf("Inputs[0] = %s, want %s", cfg.Inputs[0], filepath.Join(dir, "api"))
	}
	if cfg.Output != filepath.Join(dir, "gen", "schemas.ts") {
		t.Errorf("Output = %s", cfg.Output)
	}
	if cfg.Format != config.FormatJSONSchema {
		t.Errorf("Format = %s, want jsonschema", cfg.Format)
	}
	if !cfg.References {
		t.Errorf("References = false, want true")
	}
	if cfg.Header != "generated by zodgen" {
		t.Errorf("Header = %q", cfg.Header)
	}
	if cfg.Language != "ja" {
		t.Errorf("Language = %s, want ja", cfg.Language)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
	if cfg.Watch.Debounce != time.Second {
		t.Errorf("Watch.Debounce = %v, want 1s", cfg.Watch.Debounce)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, _ := writeAndLoad(t, "inputs: [/abs/pkg]\n")

	if cfg.Inputs[0] != "/abs/pkg" {
		t.Errorf("absolute input rewritten: %s", cfg.Inputs[0])
	}
	if !cfg.ToStdout() {
		t.Errorf("default output should be stdout, got %q", cfg.Output)
	}
	if cfg.Format != config.FormatZod {
		t.Errorf("default Format = %s, want zod", cfg.Format)
	}
	if cfg.Language != "en" {
		t.Errorf("default Language = %s, want en", cfg.Language)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("default Logging.Level = %s, want info", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "console" {
		t.Errorf("default Logging.Format = %s, want console", cfg.Logging.Format)
	}
	if cfg.Watch.Debounce != 200*time.Millisecond {
		t.Errorf("default Watch.Debounce = %v, want 200ms", cfg.Watch.Debounce)
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("TEST_ZODGEN_HEADER", "from env")
	cfg, _ := writeAndLoad(t, "inputs: [a.yaml]\nheader: ${TEST_ZODGEN_HEADER}\n")
	if cfg.Header != "from env" {
		t.Errorf("Header = %q, want from env", cfg.Header)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("ZODGEN_FORMAT", "jsonschema")
	t.Setenv("ZODGEN_REFERENCES", "yes")
	t.Setenv("ZODGEN_LOG_LEVEL", "warn")
	t.Setenv("ZODGEN_WATCH_DEBOUNCE", "50ms")

	cfg, _ := writeAndLoad(t, "inputs: [a.yaml]\nformat: zod\nlogging:\n  level: debug\n")
	if cfg.Format != config.FormatJSONSchema {
		t.Errorf("Format = %s, want jsonschema", cfg.Format)
	}
	if !cfg.References {
		t.Errorf("References not overridden")
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %s, want warn", cfg.Logging.Level)
	}
	if cfg.Watch.Debounce != 50*time.Millisecond {
		t.Errorf("Watch.Debounce = %v, want 50ms", cfg.Watch.Debounce)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("ZODGEN_INPUTS", " ./a , ./b ,, ")
	t.Setenv("ZODGEN_OUTPUT", "out.ts")

	cfg, err := config.LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}
	if len(cfg.Inputs) != 2 || cfg.Inputs[0] != "./a" || cfg.Inputs[1] != "./b" {
		t.Errorf("Inputs = %v", cfg.Inputs)
	}
	if cfg.Output != "out.ts" || cfg.ToStdout() {
		t.Errorf("Output = %q", cfg.Output)
	}
}

func TestLoadWithFallback(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, config.DefaultFile)

	if _, err := config.LoadWithFallback(path); err == nil {
		t.Fatal("expected error without file or env")
	}

	t.Setenv("ZODGEN_INPUTS", "x.yaml")
	cfg, err := config.LoadWithFallback(path)
	if err != nil {
		t.Fatalf("env fallback: %v", err)
	}
	if cfg.Inputs[0] != "x.yaml" {
		t.Errorf("Inputs = %v", cfg.Inputs)
	}

	if err := os.WriteFile(path, []byte("inputs: [file.yaml]\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err = config.LoadWithFallback(path)
	if err != nil {
		t.Fatalf("file: %v", err)
	}
	// env overrides still win over the file
	if cfg.Inputs[0] != "x.yaml" {
		t.Errorf("Inputs = %v, want env override", cfg.Inputs)
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]struct {
		content string
		want    string
	}{
		"missing inputs":   {"format: zod\n", "inputs is required"},
		"empty input":      {"inputs: ['']\n", "inputs[0] is empty"},
		"bad format":       {"inputs: [a]\nformat: ts\n", "format must be"},
		"bad language":     {"inputs: [a]\nlanguage: fr\n", "language must be"},
		"bad level":        {"inputs: [a]\nlogging: { level: loud }\n", "logging.level"},
		"bad log format":   {"inputs: [a]\nlogging: { format: xml }\n", "logging.format"},
		"negative wait":    {"inputs: [a]\nwatch: { debounce: -1s }\n", "watch.debounce"},
		"invalid yaml":     {"inputs: [a\n", "parse config"},
		"wrong value type": {"inputs: 3\n", "parse config"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := writeAndLoadErr(t, tc.content)
			if err == nil {
				t.Fatalf("expected error containing %q", tc.want)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error = %v, want containing %q", err, tc.want)
			}
		})
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil || !strings.Contains(err.Error(), "read config") {
		t.Errorf("err = %v", err)
	}
}

func TestValidate_AfterOverrides(t *testing.T) {
	cfg := &config.Config{Inputs: []string{"a"}}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Format != config.FormatZod {
		t.Errorf("Validate did not apply defaults")
	}
	cfg.Format = "yaml"
	if err := cfg.Validate(); err == nil {
		t.Error("expected format error")
	}
}

func writeAndLoad(t *testing.T, content string) (*config.Config, string) {
	t.Helper()
	path := writeConfig(t, content)
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	return cfg, filepath.Dir(path)
}

func writeAndLoadErr(t *testing.T, content string) (*config.Config, error) {
	t.Helper()
	return config.Load(writeConfig(t, content))
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), config.DefaultFile)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestRead_SkipsValidation(t *testing.T) {
	cfg, err := config.Read(writeConfig(t, "output: out.ts\n"))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(cfg.Inputs) != 0 {
		t.Errorf("Inputs = %v", cfg.Inputs)
	}
	cfg.Inputs = []string{"a.yaml"}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate after override: %v", err)
	}
}
