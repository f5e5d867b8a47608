package tui

import (
	"fmt"
	"io"

	"github.com/aretw0/jsonval/pkg/report"
	"github.com/muesli/termenv"
)

var levelColors = map[report.Level]string{
	report.Debug:   "#9ca3af",
	report.Info:    "#60a5fa",
	report.Warning: "#fbbf24",
	report.Error:   "#f87171",
	report.Fatal:   "#e11d48",
}

// WriteText prints one line per message, with the level colored when w is a
// terminal that supports it, followed by a summary line.
func WriteText(w io.Writer, rep *report.Report) error {
	out := termenv.NewOutput(w)
	for _, m := range rep.Messages() {
		label := out.String(fmt.Sprintf("%-7s", m.Level)).Foreground(out.Color(levelColors[m.Level]))
		if m.Level >= report.Error {
			label = label.Bold()
		}
		ptr := string(m.Pointer)
		if ptr == "" {
			ptr = "/"
		}
		if _, err := fmt.Fprintf(w, "%s %s [%s] %s\n", label, ptr, m.Keyword, m.Text); err != nil {
			return err
		}
	}

	summary := out.String("valid").Foreground(out.Color("#34d399"))
	if !rep.IsSuccess() {
		summary = out.String("invalid").Foreground(out.Color(levelColors[report.Error])).Bold()
	}
	_, err := fmt.Fprintf(w, "%s (%d message(s), highest level %s)\n", summary, rep.Len(), rep.CurrentLevel())
	return err
}
