package main

import (
	"fmt"

	"github.com/aretw0/trustroute/internal/cli"
	"github.com/spf13/cobra"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate <trace.yaml>",
	Short: "Replay a trace of frames and outcomes",
	Long: `Replays a scripted trace through the controller with an in-memory (or configured)
store, printing each decision and the final tables.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")

		trace, err := cli.LoadTrace(args[0])
		if err != nil {
			return err
		}
		rt, err := cli.Build(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer rt.Close()

		out := cmd.OutOrStdout()
		report, err := cli.Simulate(cmd.Context(), rt, trace, out)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\n%d decisions, %d outcomes, %d feedback errors\n\n",
			len(report.Decisions), report.Outcomes, report.FeedbackErrors)

		snap, err := rt.Engine.Snapshot(cmd.Context())
		if err != nil {
			return err
		}
		return cli.WriteSnapshot(out, snap, cfg.Engine.TrustThreshold, format)
	},
}

func init() {
	rootCmd.AddCommand(simulateCmd)
	simulateCmd.Flags().StringP("format", "f", cli.FormatMarkdown, "Snapshot format: markdown, yaml or mermaid")
}
