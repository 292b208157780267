package main

import (
	"github.com/spf13/cobra"
)

var generateFlags outputFlags

var generateCmd = &cobra.Command{
	Use:   "generate [inputs...]",
	Short: "Generate schemas from Go packages and manifests",
	Long: `Generate one schema document from every input.

Inputs given on the command line replace the inputs of the config file.

Examples:
  zodgen generate ./api -o web/src/schemas.ts
  zodgen generate types.yaml --format jsonschema
  zodgen generate --config zodgen.yaml --references`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, args, &generateFlags)
		if err != nil {
			return err
		}
		log := newLogger(cfg.Logging, cmd.ErrOrStderr())
		return runOnce(cfg, log, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateFlags.bind(generateCmd)
}
