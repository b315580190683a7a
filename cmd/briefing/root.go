package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/briefing/internal/cli"
	"github.com/aretw0/briefing/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "briefing",
	Short: "Daily briefing agent",
	Long: `Briefing gathers the weather of a location and the top headlines of a topic
in parallel, then synthesizes them into a daily briefing.`,
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
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML or JSON config file (default ./"+config.DefaultPath+" if present)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().Bool("plain", false, "Print plain text instead of rendered markdown")
}

// loadConfig reads the config file and applies the persistent flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level, _ = cmd.Flags().GetString("log-level")
		if err := cfg.Validate(); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

// setup loads the configuration and wires the agent environment.
func setup(ctx context.Context, cmd *cobra.Command) (*cli.Environment, config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, cfg, err
	}
	logger, err := cli.NewLogger(cfg.Log)
	if err != nil {
		return nil, cfg, err
	}
	env, err := cli.NewEnvironment(ctx, cfg, logger)
	if err != nil {
		return nil, cfg, err
	}
	return env, cfg, nil
}
