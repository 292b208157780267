// Package config loads zodgen project configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the configuration file looked up when none is given.
const DefaultFile = "zodgen.yaml"

// Output formats.
const (
	FormatZod        = "zod"
	FormatJSONSchema = "jsonschema"
)

// Config is the root configuration structure.
type Config struct {
	Inputs     []string      `yaml:"inputs"`     // Go package dirs, .go files, or .yaml/.json manifests
	Output     string        `yaml:"output"`     // "-" or empty writes to stdout
	Format     string        `yaml:"format"`     // "zod" or "jsonschema"
	References bool          `yaml:"references"` // reference registered types by name instead of inlining
	Header     string        `yaml:"header"`
	Language   string        `yaml:"language"` // diagnostic language: "en" or "ja"
	Logging    LoggingConfig `yaml:"logging"`
	Watch      WatchConfig   `yaml:"watch"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "console"
}

// WatchConfig configures watch mode.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// Load reads configuration from a YAML file and validates it.
func Load(path string) (*Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Read reads configuration from a YAML file without validating it, so that
// command line overrides can be applied first. Relative inputs and output
// are resolved against the file's directory.
func Read(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	base := filepath.Dir(path)
	for i, in := range cfg.Inputs {
		cfg.Inputs[i] = resolve(base, in)
	}
	if cfg.Output != "" && cfg.Output != "-" {
		cfg.Output = resolve(base, cfg.Output)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)
	return &cfg, nil
}

// LoadFromEnv creates configuration from environment variables only.
//
// Environment variables:
//
//	ZODGEN_INPUTS          - comma-separated inputs
//	ZODGEN_OUTPUT          - output file (default: stdout)
//	ZODGEN_FORMAT          - zod or jsonschema (default: zod)
//	ZODGEN_REFERENCES      - emit lazy references (default: false)
//	ZODGEN_HEADER          - header comment line
//	ZODGEN_LANGUAGE        - diagnostic language (default: en)
//	ZODGEN_LOG_LEVEL       - debug, info, warn, error (default: info)
//	ZODGEN_LOG_FORMAT      - json or console (default: console)
//	ZODGEN_WATCH_DEBOUNCE  - watch debounce (default: 200ms)
func LoadFromEnv() (*Config, error) {
	cfg := FromEnv()
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// FromEnv is LoadFromEnv without validation.
func FromEnv() *Config {
	var cfg Config
	applyEnvOverrides(&cfg)
	setDefaults(&cfg)
	return &cfg
}

// LoadWithFallback loads path when it exists and falls back to the
// environment otherwise.
func LoadWithFallback(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	if os.Getenv("ZODGEN_INPUTS") != "" {
		return LoadFromEnv()
	}
	return nil, fmt.Errorf("no configuration found: provide %s or set ZODGEN_INPUTS", DefaultFile)
}

// Validate checks cfg after command line overrides were applied.
func (c *Config) Validate() error {
	setDefaults(c)
	return validate(c)
}

// ToStdout reports whether generated output goes to standard output.
func (c *Config) ToStdout() bool { return c.Output == "" || c.Output == "-" }

func resolve(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// applyEnvOverrides applies ZODGEN_* environment variables to the config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ZODGEN_INPUTS"); v != "" {
		cfg.Inputs = splitList(v)
	}
	if v := os.Getenv("ZODGEN_OUTPUT"); v != "" {
		cfg.Output = v
	}
	if v := os.Getenv("ZODGEN_FORMAT"); v != "" {
		cfg.Format = v
	}
	if v := os.Getenv("ZODGEN_REFERENCES"); v != "" {
		cfg.References = parseBool(v)
	}
	if v := os.Getenv("ZODGEN_HEADER"); v != "" {
		cfg.Header = v
	}
	if v := os.Getenv("ZODGEN_LANGUAGE"); v != "" {
		cfg.Language = v
	}
	if v := os.Getenv("ZODGEN_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("ZODGEN_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("ZODGEN_WATCH_DEBOUNCE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Watch.Debounce = d
		}
	}
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// parseBool parses a boolean from common string values.
func parseBool(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "true" || v == "1" || v == "yes" || v == "on"
}

func setDefaults(cfg *Config) {
	if cfg.Format == "" {
		cfg.Format = FormatZod
	}
	if cfg.Language == "" {
		cfg.Language = "en"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 200 * time.Millisecond
	}
}

func validate(cfg *Config) error {
	if len(cfg.Inputs) == 0 {
		return fmt.Errorf("inputs is required")
	}
	for i, in := range cfg.Inputs {
		if strings.TrimSpace(in) == "" {
			return fmt.Errorf("inputs[%d] is empty", i)
		}
	}

	validFormats := map[string]bool{FormatZod: true, FormatJSONSchema: true}
	if !validFormats[cfg.Format] {
		return fmt.Errorf("format must be 'zod' or 'jsonschema', got %q", cfg.Format)
	}

	validLanguages := map[string]bool{"en": true, "ja": true}
	if !validLanguages[cfg.Language] {
		return fmt.Errorf("language must be 'en' or 'ja', got %q", cfg.Language)
	}

	validLevels := map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "error": true, "disabled": true}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: trace, debug, info, warn, error, disabled")
	}
	validLogFormats := map[string]bool{"json": true, "console": true}
	if !validLogFormats[cfg.Logging.Format] {
		return fmt.Errorf("logging.format must be 'json' or 'console', got %q", cfg.Logging.Format)
	}

	if cfg.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative")
	}
	return nil
}
