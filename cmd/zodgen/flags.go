package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/reoring/zodgen/config"
)

// outputFlags are the config overrides shared by generate and watch.
type outputFlags struct {
	output     string
	format     string
	references bool
	header     string
}

func (f *outputFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (- for stdout)")
	cmd.Flags().StringVar(&f.format, "format", "", "output format: zod or jsonschema")
	cmd.Flags().BoolVar(&f.references, "references", false, "reference registered types by name instead of inlining")
	cmd.Flags().StringVar(&f.header, "header", "", "comment line written above the import")
}

func (f *outputFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("output") {
		cfg.Output = f.output
	}
	if cmd.Flags().Changed("format") {
		cfg.Format = f.format
	}
	if cmd.Flags().Changed("references") {
		cfg.References = f.references
	}
	if cmd.Flags().Changed("header") {
		cfg.Header = f.header
	}
}

// loadConfig reads the config file when present, falls back to the
// environment otherwise, then applies positional inputs and flags.
func loadConfig(cmd *cobra.Command, args []string, flags *outputFlags) (*config.Config, error) {
	var cfg *config.Config
	if _, err := os.Stat(cfgFile); err == nil {
		c, err := config.Read(cfgFile)
		if err != nil {
			return nil, err
		}
		cfg = c
	} else if cmd.Flags().Changed("config") {
		return nil, fmt.Errorf("config file not found: %s", cfgFile)
	} else {
		cfg = config.FromEnv()
	}

	if len(args) > 0 {
		cfg.Inputs = args
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if flags != nil {
		flags.apply(cmd, cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}
