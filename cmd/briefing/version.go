package main

import (
	"fmt"

	"github.com/aretw0/briefing"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of briefing",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "briefing version %s\n", briefing.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
