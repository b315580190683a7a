package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/briefing"
	"github.com/aretw0/briefing/internal/presentation/tui"
)

// RunOptions contains all the configuration for the Run command.
type RunOptions struct {
	Location string
	Topic    string
	Count    int
	// Interactive starts the prompt loop instead of a single run.
	Interactive bool
	Headless    bool
	Plain       bool // Disable markdown rendering
	Width       int
}

// Execute handles the 'run' command logic, dispatching to a single run or
// the interactive prompt loop.
func Execute(ctx context.Context, agent *briefing.Agent, opts RunOptions, in io.Reader, out io.Writer) error {
	var render briefing.ContentRenderer
	if !opts.Plain {
		render = tui.NewRenderer(opts.Width)
	}

	if opts.Interactive {
		if !opts.Headless {
			tui.PrintBanner(out)
		}
		r := &briefing.Runner{
			Input:    in,
			Output:   out,
			Headless: opts.Headless,
			Renderer: render,
			Count:    opts.Count,
		}
		return handleExecutionError(r.Run(ctx, agent))
	}

	text, err := agent.Run(ctx, opts.Location, opts.Topic, opts.Count)
	if err != nil {
		if isInterrupted(err) {
			printSystemMessage(out, "Interrupted.")
			return nil
		}
		return fmt.Errorf("failed to generate daily briefing: %w", err)
	}
	if render != nil {
		if rendered, err := render(text); err == nil {
			text = rendered
		}
	}
	fmt.Fprintln(out, strings.TrimSpace(text))
	return nil
}
