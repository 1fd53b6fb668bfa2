package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/trustroute/internal/config"
	"github.com/aretw0/trustroute/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "trustroute",
	Short: "trustroute is a trust-gated, Q-learning forwarding engine",
	Long: `trustroute decides where an SDN switch should send frames it cannot match,
learning per source/destination pair which port pays off and flooding traffic
from sources whose trust has dropped below the gate.`,
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
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to a YAML or JSON config file")
	rootCmd.PersistentFlags().String("log-level", "", "Override log_level (debug, info, warn, error)")
}

// loadConfig reads --config and applies --log-level, returning the logger to use.
func loadConfig(cmd *cobra.Command) (config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, nil, err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, logging.New(level), nil
}
