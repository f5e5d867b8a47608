package tui_test

import (
	"bytes"
	"testing"

	"github.com/aretw0/jsonval/internal/presentation/tui"
	"github.com/aretw0/jsonval/pkg/jsonptr"
	"github.com/aretw0/jsonval/pkg/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample(t *testing.T) *report.Report {
	t.Helper()
	rep := report.New(report.Debug, report.None)
	require.NoError(t, rep.Log(report.Message{
		Level: report.Error, Domain: report.DomainValidation, Keyword: "minimum",
		Text: "too small", Pointer: jsonptr.MustParse("/age"), Schema: "mem://p.json#/properties/age",
	}))
	require.NoError(t, rep.Log(report.Message{
		Level: report.Warning, Domain: report.DomainValidation, Keyword: "format",
		Text: "unknown format", Schema: "mem://p.json#",
	}))
	return rep
}

func TestMarkdown(t *testing.T) {
	md := tui.Markdown("person.json", sample(t))

	assert.Contains(t, md, "# person.json")
	assert.Contains(t, md, "**invalid**")
	assert.Contains(t, md, "## `(root)`")
	assert.Contains(t, md, "## `/age`")
	assert.Contains(t, md, "**ERROR** `minimum`: too small")
	assert.Contains(t, md, "_schema_ `mem://p.json#/properties/age`")
}

func TestRenderReport(t *testing.T) {
	out, err := tui.RenderReport("person.json", sample(t), 80)
	require.NoError(t, err)
	assert.Contains(t, out, "person.json")
	assert.Contains(t, out, "too small")
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, tui.WriteText(&buf, sample(t)))

	out := buf.String()
	assert.Contains(t, out, "/age [minimum] too small")
	assert.Contains(t, out, "/ [format] unknown format")
	assert.Contains(t, out, "invalid (2 message(s), highest level error)")
	assert.NotContains(t, out, "\x1b[", "no colors when not writing to a terminal")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	tui.PrintBanner(&buf)
	assert.Contains(t, buf.String(), "|__/")
}
