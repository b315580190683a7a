package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the application banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	// Sunrise gradient (amber to rose)
	lines := []struct {
		text, color string
	}{
		{"  ___      _ _        ___      _      __ _           ", "#fbbf24"},
		{" |   \\ __ _(_) |_  _  | _ )_ _(_)___ / _(_)_ _  __ _ ", "#f59e0b"},
		{" | |) / _` | | | || | | _ \\ '_| / -_)  _| | ' \\/ _` |", "#f97316"},
		{" |___/\\__,_|_|_|\\_, | |___/_| |_\\___|_| |_|_||_\\__, |", "#f43f5e"},
		{"                |__/                            |___/ ", "#e11d48"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
