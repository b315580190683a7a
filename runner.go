package briefing

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/briefing/pkg/domain"
)

// Runner drives the interactive prompt loop of the agent using the provided
// IO. This allows for easy testing and integration with different frontends.
type Runner struct {
	Input    io.Reader
	Output   io.Writer
	Headless bool
	Renderer ContentRenderer
	// Count is the number of headlines requested per briefing (agent default when <= 0).
	Count int
}

// ContentRenderer transforms the briefing before it is printed.
// This allows for TUI rendering (markdown to ANSI) without coupling the core package.
type ContentRenderer func(string) (string, error)

// NewRunner creates a Runner reading from in and writing to out.
func NewRunner(in io.Reader, out io.Writer) *Runner {
	return &Runner{Input: in, Output: out}
}

// Run prompts for a location and a topic, prints the briefing and repeats
// until the user types quit or exit, or the input ends. Empty answers take
// the agent defaults. A failed run is reported and the loop continues.
func (r *Runner) Run(ctx context.Context, agent *Agent) error {
	if r.Input == nil {
		return fmt.Errorf("input reader must be set (use os.Stdin)")
	}
	if r.Output == nil {
		return fmt.Errorf("output writer must be set (use os.Stdout)")
	}
	lines := bufio.NewReader(r.Input)
	w := r.Output

	if !r.Headless {
		fmt.Fprintln(w, "--- Daily Briefing Agent ---")
		fmt.Fprintln(w, "Press enter to accept a default, type 'quit' to leave.")
	}

	for {
		location, done, err := r.ask(lines, fmt.Sprintf("Location [%s]: ", agent.defaults.String(domain.KeyLocation, "")))
		if done || err != nil {
			return err
		}
		topic, done, err := r.ask(lines, fmt.Sprintf("Topic [%s]: ", agent.defaults.String(domain.KeyTopic, "")))
		if done || err != nil {
			return err
		}

		text, err := agent.Run(ctx, location, topic, r.Count)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			fmt.Fprintln(w, Describe(err))
			continue
		}

		output := text
		if r.Renderer != nil {
			if rendered, err := r.Renderer(text); err == nil {
				output = rendered
			}
		}
		fmt.Fprintln(w, strings.TrimSpace(output))
	}
}

// ask prints prompt and reads one answer. done is true on EOF or an exit command.
func (r *Runner) ask(lines *bufio.Reader, prompt string) (answer string, done bool, err error) {
	if !r.Headless {
		fmt.Fprint(r.Output, prompt)
	}
	text, err := lines.ReadString('\n')
	if err != nil && !(err == io.EOF && strings.TrimSpace(text) != "") {
		if err == io.EOF {
			// Graceful exit on EOF
			return "", true, nil
		}
		return "", true, fmt.Errorf("input error: %w", err)
	}
	answer = strings.TrimSpace(text)
	if strings.EqualFold(answer, "exit") || strings.EqualFold(answer, "quit") {
		fmt.Fprintln(r.Output, "Bye!")
		return "", true, nil
	}
	return answer, false, nil
}
