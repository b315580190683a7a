package main

import (
	"github.com/aretw0/briefing/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Exposes the agent over a JSON API:

  POST /briefings   {"location", "topic", "count"}
  GET  /tasks       task states of the last run
  GET  /tree        shape of the behavior tree
  GET  /events      server-sent run events
  GET  /health
  GET  /metrics     Prometheus metrics`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		env, cfg, err := setup(sigCtx, cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		addr := cfg.HTTP.Address
		if cmd.Flags().Changed("addr") {
			addr, _ = cmd.Flags().GetString("addr")
		}
		return cli.Serve(sigCtx, env, addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", ":8080", "Address to listen on (overrides http.address)")
}
