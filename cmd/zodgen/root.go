package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile  string
	logLevel string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "zodgen",
	Short: "Generate zod schemas that match serde's wire format",
	Long: `zodgen turns type descriptions into zod schemas.

Inputs are Go package directories, .go files, or YAML/JSON manifests.
Sum types follow serde's external, internal, adjacent, and untagged
representations.

Quick start:
  zodgen generate ./api -o schemas.ts
  zodgen check types.yaml
  zodgen watch --config zodgen.yaml`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "zodgen.yaml", "config file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")
}
