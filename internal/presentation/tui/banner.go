package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the jsonval ASCII art banner to w.
func PrintBanner(w io.Writer) {
	out := termenv.NewOutput(w)
	// Using a subtle gradient-like color scheme (Indigo/Violet)
	lines := []struct {
		text, color string
	}{
		{"    _                          _ ", "#818cf8"},
		{"   (_)___  ___  _ ____   ____ _| |", "#a78bfa"},
		{"   | / __|/ _ \\| '_ \\ \\ / / _` | |", "#c084fc"},
		{"   | \\__ \\ (_) | | | \\ V / (_| | |", "#e879f9"},
		{"  _/ |___/\\___/|_| |_|\\_/ \\__,_|_|", "#f472b6"},
		{" |__/", "#fb7185"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w)
}
