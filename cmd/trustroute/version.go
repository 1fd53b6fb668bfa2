package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/trustroute"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of trustroute",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "trustroute version %s\n", strings.TrimSpace(trustroute.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
