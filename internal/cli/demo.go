package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/aretw0/briefing"
)

// DemoCase is one request of the demo.
type DemoCase struct {
	Location string
	Topic    string
}

// DemoCases are the requests RunDemo issues.
var DemoCases = []DemoCase{
	{Location: "New York", Topic: "technology"},
	{Location: "London", Topic: "world"},
	{Location: "Tokyo", Topic: "business"},
}

// RunDemo generates a briefing for each of DemoCases and prints how much
// diagnostic state every task kept. A failed case is reported and the demo
// continues.
func RunDemo(ctx context.Context, agent *briefing.Agent, out io.Writer) error {
	rule := strings.Repeat("=", 50)
	fmt.Fprintln(out, "🚀 Daily Briefing Agent Demo")
	fmt.Fprintln(out, rule)

	for i, c := range DemoCases {
		if err := ctx.Err(); err != nil {
			return handleExecutionError(err)
		}
		fmt.Fprintf(out, "\n📋 Test Case %d: location=%s topic=%s\n", i+1, c.Location, c.Topic)
		fmt.Fprintln(out, strings.Repeat("-", 30))

		text, err := agent.Run(ctx, c.Location, c.Topic, 0)
		if err != nil {
			fmt.Fprintln(out, briefing.Describe(err))
		} else {
			fmt.Fprintln(out, text)
		}

		fmt.Fprintln(out, "\n🔍 Agent States:")
		states := agent.TaskStates()
		names := make([]string, 0, len(states))
		for name := range states {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(out, "  %s: %d items in state\n", name, len(states[name]))
		}
		fmt.Fprintln(out, "\n"+rule)
	}
	return nil
}
