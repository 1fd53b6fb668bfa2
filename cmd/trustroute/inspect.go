package main

import (
	"fmt"

	"github.com/aretw0/trustroute/internal/cli"
	"github.com/aretw0/trustroute/internal/config"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print the tables held in the shared redis store",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cfg.Store.Backend != config.BackendRedis {
			return fmt.Errorf("inspect needs store.backend: redis (got %q); an in-memory store is empty in a new process", cfg.Store.Backend)
		}
		format, _ := cmd.Flags().GetString("format")

		cfg.Metrics.Enabled = false
		rt, err := cli.Build(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer rt.Close()

		snap, err := rt.Engine.Snapshot(cmd.Context())
		if err != nil {
			return err
		}
		return cli.WriteSnapshot(cmd.OutOrStdout(), snap, cfg.Engine.TrustThreshold, format)
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringP("format", "f", cli.FormatMarkdown, "Output format: markdown, yaml or mermaid")
}
