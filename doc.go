/*
Package briefing is a behavior-tree engine that assembles a daily briefing
from concurrent sub-tasks.

A run gathers the weather for a location and the top headlines of a topic in
parallel, checks that both results were published, and synthesizes the
final briefing text from them. Every step is a node of a small behavior
tree; tasks never talk to each other, they only publish into named slots of
a write-once shared state.

# Tree

	briefing (Sequence, with memory)
	├── gather (Parallel, SuccessOnAll)
	│   ├── weather     Action → weather_data
	│   └── news        Action → news_data
	├── data_ready      Condition [weather_data, news_data]
	└── synthesize      Action → briefing (requires weather_data, news_data)

A gathering failure cancels the sibling task and skips synthesis. Failed
runs return a *domain.TreeEvaluationFailure naming the stage and the node
responsible.

# Usage

	agent, err := briefing.New()
	if err != nil {
		log.Fatal(err)
	}
	text, err := agent.Run(ctx, "London", "world", 3)

Sources, tasks, the text generator, timeouts and observability hooks are
injected with functional options.
*/
package briefing
