package briefing_test

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/aretw0/briefing"
)

// ExampleNew runs the briefing tree against the built-in mock sources.
func ExampleNew() {
	agent, err := briefing.New(briefing.WithClock(func() time.Time {
		return time.Date(2026, time.October, 17, 8, 0, 0, 0, time.UTC)
	}))
	if err != nil {
		log.Fatal(err)
	}

	text, err := agent.Run(context.Background(), "Tokyo", "technology", 2)
	if err != nil {
		fmt.Println(briefing.Describe(err))
		return
	}

	// Print only the header and the weather block.
	lines := strings.Split(text, "\n")
	fmt.Println(strings.Join(lines[:5], "\n"))
	// Output:
	// 🌅 Daily Briefing - October 17, 2026
	//
	// 📍 Weather Update for Tokyo:
	// Temperature: 25°C
	// Conditions: Sunny
}

// ExampleAgent_Tree prints the shape of the briefing tree.
func ExampleAgent_Tree() {
	agent, err := briefing.New()
	if err != nil {
		log.Fatal(err)
	}

	var walk func(d briefing.NodeDescription, depth int)
	walk = func(d briefing.NodeDescription, depth int) {
		fmt.Printf("%s%s (%s)\n", strings.Repeat("  ", depth), d.Name, d.Kind)
		for _, c := range d.Children {
			walk(c, depth+1)
		}
	}
	walk(agent.Tree(), 0)
	// Output:
	// briefing (sequence)
	//   gather (parallel)
	//     weather (action)
	//     news (action)
	//   data_ready (condition)
	//   synthesize (action)
}
