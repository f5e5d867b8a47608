// Package tui renders validation reports for terminals.
package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/jsonval/pkg/report"
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders markdown using glamour.
// A non-positive width keeps glamour's default word wrap.
func NewRenderer(width int) func(string) (string, error) {
	opts := []glamour.TermRendererOption{
		glamour.WithAutoStyle(), // Automatically detect light/dark background
	}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}
	r, err := glamour.NewTermRenderer(opts...)

	return func(markdown string) (string, error) {
		if err != nil {
			return markdown, err
		}
		return r.Render(markdown)
	}
}

// Markdown describes a report as a markdown document, one section per
// instance pointer.
func Markdown(title string, rep *report.Report) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", title)

	status := "**valid**"
	if !rep.IsSuccess() {
		status = "**invalid**"
	}
	fmt.Fprintf(&sb, "Result: %s (highest level: `%s`, %d message(s))\n\n", status, rep.CurrentLevel(), rep.Len())

	for _, g := range rep.Grouped() {
		ptr := string(g.Pointer)
		if ptr == "" {
			ptr = "(root)"
		}
		fmt.Fprintf(&sb, "## `%s`\n\n", ptr)
		for _, m := range g.Messages {
			kw := m.Keyword
			if kw == "" {
				kw = string(m.Domain)
			}
			fmt.Fprintf(&sb, "- **%s** `%s`: %s  \n  _schema_ `%s`\n", strings.ToUpper(m.Level.String()), kw, m.Text, m.Schema)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// RenderReport renders a report for a terminal of the given width.
func RenderReport(title string, rep *report.Report, width int) (string, error) {
	return NewRenderer(width)(Markdown(title, rep))
}
