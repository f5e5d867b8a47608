package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/jsonval/pkg/adapters/file"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the CLI with fresh flag state and returns stdout and the
// exit code.
func run(t *testing.T, stdin string, args ...string) (string, int) {
	t.Helper()
	reset := func(fs *pflag.FlagSet) {
		fs.VisitAll(func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		})
	}
	var walk func(c *cobra.Command)
	walk = func(c *cobra.Command) {
		reset(c.Flags())
		reset(c.PersistentFlags())
		for _, sub := range c.Commands() {
			walk(sub)
		}
	}
	walk(rootCmd)

	var out bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})

	err := rootCmd.Execute()
	if err == nil {
		return out.String(), 0
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return out.String(), ee.code
	}
	t.Logf("error: %v", err)
	return out.String(), 2
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "defs.json", `{"positive":{"type":"integer","minimum":1}}`)
	schema := writeFile(t, dir, "order.json", `{
		"type": "object",
		"required": ["id"],
		"properties": {"qty": {"$ref": "defs.json#/positive"}}
	}`)
	good := writeFile(t, dir, "good.yaml", "id: a1\nqty: 3\n")
	bad := writeFile(t, dir, "bad.json", `{"qty": 0}`)

	out, code := run(t, "", "validate", "--schema", schema, "--format", "text", good)
	assert.Equal(t, 0, code, out)
	assert.Regexp(t, `(?m)^valid \(`, out)

	out, code = run(t, "", "validate", "-s", schema, "-f", "text", "--deep", good, bad)
	assert.Equal(t, 1, code, out)
	assert.Contains(t, out, "[required]")
	assert.Contains(t, out, "/qty [minimum]")

	out, code = run(t, `{"id":"x","qty":2}`, "validate", "-s", schema, "-f", "json")
	assert.Equal(t, 0, code, out)
	var rep map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, true, rep["valid"])

	out, code = run(t, "", "validate", "-s", schema, "-f", "text", "--threshold", "error", bad)
	assert.Equal(t, 2, code, out)

	_, code = run(t, "", "validate", "-s", filepath.Join(dir, "missing.json"), good)
	assert.Equal(t, 2, code)

	_, code = run(t, "", "validate", "-s", schema, "--report-level", "loud", good)
	assert.Equal(t, 2, code)
}

func TestSchemasCommands(t *testing.T) {
	dir := t.TempDir()
	registry := filepath.Join(dir, "registry")
	src := writeFile(t, dir, "tags.yaml", "type: array\nuniqueItems: true\n")
	uri := file.URI(filepath.Join(registry, "tags.json"))

	_, code := run(t, "", "schemas", "list")
	assert.Equal(t, 2, code, "no registry configured")

	_, code = run(t, "", "--schema-dir", registry, "schemas", "put", uri, src)
	require.Equal(t, 0, code)

	out, code := run(t, "", "--schema-dir", registry, "schemas", "list")
	require.Equal(t, 0, code)
	assert.Equal(t, uri+"\n", out)

	out, code = run(t, "", "--schema-dir", registry, "schemas", "get", uri)
	require.Equal(t, 0, code)
	assert.Contains(t, out, `"uniqueItems"`)

	_, code = run(t, `["a","a"]`, "--schema-dir", registry, "validate", "-s", uri, "-f", "text")
	assert.Equal(t, 1, code)

	_, code = run(t, "", "--schema-dir", registry, "schemas", "delete", uri)
	require.Equal(t, 0, code)
	out, _ = run(t, "", "--schema-dir", registry, "schemas", "list")
	assert.Empty(t, out)
}

func TestGraphCommand(t *testing.T) {
	dir := t.TempDir()
	schema := writeFile(t, dir, "s.json", `{"properties":{"a":{"type":"string"}}}`)
	instance := writeFile(t, dir, "i.json", `{"a":1}`)

	out, code := run(t, "", "graph", "-s", schema, instance)
	require.Equal(t, 0, code)
	assert.Contains(t, out, "graph TD")
	assert.Contains(t, out, "class n1 failed;")
}

func TestKeywordsAndVersion(t *testing.T) {
	out, code := run(t, "", "keywords")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "multipleOf")
	assert.Contains(t, out, "shape only")

	out, code = run(t, "", "version")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "jsonval version")
}
