package mcp

import (
	"context"
	"testing"

	"github.com/aretw0/jsonval"
	"github.com/aretw0/jsonval/pkg/adapters/memory"
	"github.com/aretw0/jsonval/pkg/value"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	store := memory.NewStore()
	require.NoError(t, store.Put(context.Background(), "mem://order.json",
		value.MustParse(`{"type":"object","properties":{"qty":{"type":"integer","minimum":1}}}`)))
	return NewServer(jsonval.New(jsonval.WithResolver(store)), WithStore(store))
}

func TestHandleValidate_Inline(t *testing.T) {
	s := newTestServer(t)

	res, err := s.handleValidate(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{
		"schema":   `{"type":"string","maxLength":3}`,
		"instance": `"abcd"`,
	})
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.False(t, res.Aborted)
	assert.Equal(t, "error", res.Level)
	require.Len(t, res.Messages, 1)
	assert.Equal(t, "maxLength", res.Messages[0].Keyword)
	assert.Equal(t, "validation", res.Messages[0].Domain)
}

func TestHandleValidate_SchemaURIAndOptions(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	res, err := s.handleValidate(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"schema_uri": "mem://order.json#/properties/qty",
		"instance":   `0`,
		"log_level":  "none",
	})
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Empty(t, res.Messages)

	res, err = s.handleValidate(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"schema_uri": "mem://order.json",
		"instance":   `{"qty": 2}`,
		"deep_check": true,
	})
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.NotNil(t, res.Messages)
}

func TestHandleValidate_Aborted(t *testing.T) {
	s := newTestServer(t)
	res, err := s.handleValidate(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{
		"schema":   `{"$ref":"mem://missing.json"}`,
		"instance": `1`,
	})
	require.NoError(t, err)
	assert.True(t, res.Aborted)
	assert.False(t, res.Valid)
	require.Len(t, res.Messages, 1)
	assert.Equal(t, "ref_resolving", res.Messages[0].Domain)
}

func TestHandleValidate_Errors(t *testing.T) {
	s := newTestServer(t)
	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{"Bad Instance", map[string]interface{}{"schema": `{}`, "instance": `{`}},
		{"No Schema", map[string]interface{}{"instance": `1`}},
		{"Both Schemas", map[string]interface{}{"schema": `{}`, "schema_uri": "mem://order.json", "instance": `1`}},
		{"Unknown URI", map[string]interface{}{"schema_uri": "mem://nope.json", "instance": `1`}},
		{"Bad Level", map[string]interface{}{"schema": `{}`, "instance": `1`, "log_level": "loud"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.handleValidate(context.Background(), mcp.CallToolRequest{}, tt.args)
			assert.Error(t, err)
		})
	}
}

func TestNewServer_Registers(t *testing.T) {
	s := newTestServer(t)
	assert.NotNil(t, s.MCPServer())
}
