package tui

import (
	"os"
	"regexp"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// DefaultWidth is used when the terminal width cannot be detected.
const DefaultWidth = 80

var numbered = regexp.MustCompile(`^\d+\. `)

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Width returns the width of the terminal behind f, or DefaultWidth.
func Width(f *os.File) int {
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil || w <= 0 {
		return DefaultWidth
	}
	return w
}

// NewRenderer returns a function that renders a briefing using glamour.
// The plain briefing text is first converted to markdown by ToMarkdown.
func NewRenderer(width int) func(string) (string, error) {
	if width <= 0 {
		width = DefaultWidth
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
		glamour.WithWordWrap(width),
		glamour.WithEmoji(),
	)

	return func(text string) (string, error) {
		if err != nil {
			return text, err
		}
		return r.Render(ToMarkdown(text))
	}
}

// ToMarkdown turns the briefing layout into markdown: the dated header
// becomes a title, section lines ending in a colon become headings and
// "Key: value" lines inside a section become bullets.
func ToMarkdown(text string) string {
	var b strings.Builder
	for i, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			b.WriteString("\n")
		case i == 0:
			b.WriteString("# " + trimmed + "\n")
		case strings.HasSuffix(trimmed, ":"):
			b.WriteString("\n## " + trimmed + "\n\n")
		case numbered.MatchString(trimmed):
			b.WriteString(trimmed + "\n")
		case isField(trimmed):
			b.WriteString("- " + trimmed + "\n")
		default:
			b.WriteString(trimmed + "\n")
		}
	}
	return b.String()
}

func isField(line string) bool {
	key, _, ok := strings.Cut(line, ": ")
	return ok && !strings.Contains(key, " ")
}
