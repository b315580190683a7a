package main

import (
	"os"

	"github.com/aretw0/briefing/internal/cli"
	"github.com/spf13/cobra"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run the built-in demo cases",
	Long:  `Generates briefings for New York, London and Tokyo and prints the state each task kept.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		env, _, err := setup(sigCtx, cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		return cli.RunDemo(sigCtx, env.Agent, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(demoCmd)
}
