package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/jsonval/internal/presentation/graph"
	"github.com/aretw0/jsonval/pkg/jsonptr"
	"github.com/aretw0/jsonval/pkg/tree"
	"github.com/aretw0/jsonval/pkg/value"
	"github.com/stretchr/testify/assert"
)

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		schema   string
		contains []string
		excludes []string
	}{
		{
			name:     "Root Shape",
			schema:   `{"type":"string"}`,
			contains: []string{"graph TD", `n0(("#"))`},
		},
		{
			name:   "Keyword Edges",
			schema: `{"properties":{"a":{},"b":{"items":[{},{}]}}}`,
			contains: []string{
				`n0 -- "properties/a" --> n1`,
				`n1["#/properties/a"]`,
				`n0 -- "properties/b" --> n2`,
				`n2 -- "items/0" --> n3`,
				`n2 -- "items/1" --> n4`,
			},
		},
		{
			name:   "Internal Reference",
			schema: `{"definitions":{"pos":{"minimum":0}},"items":{"$ref":"#/definitions/pos"}}`,
			contains: []string{
				`n0 -- "definitions/pos" --> n1`,
				`n2[["#/items"]]`,
				`n2 -. "$ref" .-> n1`,
			},
		},
		{
			name:   "External Reference",
			schema: `{"allOf":[{"$ref":"mem://other.json#/x"},{"$ref":"mem://other.json#/x"}]}`,
			contains: []string{
				`ext0{{"mem://other.json#/x"}}`,
				`n1 -. "$ref" .-> ext0`,
				`n2 -. "$ref" .-> ext0`,
			},
		},
		{
			name:     "Non Schema Values Ignored",
			schema:   `{"properties":{"a":true},"enum":[{"properties":{}}],"additionalProperties":false}`,
			contains: []string{`n0(("#"))`},
			excludes: []string{"-->"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tree.MustSchema("mem://main.json", value.MustParse(tt.schema))
			out := graph.GenerateMermaid(s, nil)
			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
			for _, unwanted := range tt.excludes {
				assert.NotContains(t, out, unwanted)
			}
		})
	}
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	s := tree.MustSchema("mem://main.json", value.MustParse(`{"properties":{"a":{"type":"string"}}}`))
	out := graph.GenerateMermaid(s, &graph.Overlay{Failed: []jsonptr.Pointer{
		jsonptr.MustParse("/properties/a"),
		jsonptr.MustParse("/properties/a"),
		jsonptr.MustParse("/nowhere"),
	}})

	assert.Contains(t, out, "classDef failed")
	assert.Equal(t, 1, strings.Count(out, "class n1 failed;"))
	assert.NotContains(t, out, "class n0 failed;")
}
