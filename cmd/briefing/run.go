package main

import (
	"os"

	"github.com/aretw0/briefing/internal/cli"
	"github.com/aretw0/briefing/internal/presentation/tui"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Generate a daily briefing",
	Long: `Generates one briefing for the given location and topic.
Without --location, --topic or --count it starts an interactive prompt; type 'quit' to leave.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		env, _, err := setup(sigCtx, cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		location, _ := cmd.Flags().GetString("location")
		topic, _ := cmd.Flags().GetString("topic")
		count, _ := cmd.Flags().GetInt("count")
		headless, _ := cmd.Flags().GetBool("headless")
		plain, _ := cmd.Flags().GetBool("plain")

		interactive := !cmd.Flags().Changed("location") &&
			!cmd.Flags().Changed("topic") &&
			!cmd.Flags().Changed("count")

		return cli.Execute(sigCtx, env.Agent, cli.RunOptions{
			Location:    location,
			Topic:       topic,
			Count:       count,
			Interactive: interactive,
			Headless:    headless || !tui.IsTerminal(os.Stdin),
			Plain:       plain || !tui.IsTerminal(os.Stdout),
			Width:       tui.Width(os.Stdout),
		}, os.Stdin, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("location", "l", "", "Location for the weather report")
	runCmd.Flags().StringP("topic", "t", "", "News topic (technology, world, business)")
	runCmd.Flags().IntP("count", "n", 0, "Number of headlines")
	runCmd.Flags().Bool("headless", false, "Run without banner and prompts")

	// 'run' is the default if no command is provided
	rootCmd.RunE = runCmd.RunE
	rootCmd.Flags().AddFlagSet(runCmd.Flags())
}
