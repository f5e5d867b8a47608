// Package graph draws schema documents as Mermaid flowcharts.
package graph

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/aretw0/jsonval/pkg/jsonptr"
	"github.com/aretw0/jsonval/pkg/tree"
	"github.com/aretw0/jsonval/pkg/value"
)

// Overlay marks fragments on the chart, typically those that produced
// failing report messages.
type Overlay struct {
	Failed []jsonptr.Pointer
}

// subschemas lists, per keyword, how child schemas hang below it.
var subschemas = map[string]string{
	"additionalItems":      "single",
	"additionalProperties": "single",
	"not":                  "single",
	"items":                "single-or-array",
	"allOf":                "array",
	"anyOf":                "array",
	"oneOf":                "array",
	"definitions":          "map",
	"properties":           "map",
	"patternProperties":    "map",
	"dependencies":         "map",
}

type chart struct {
	sb       strings.Builder
	schema   tree.Schema
	ids      map[jsonptr.Pointer]string
	external map[string]string
}

// GenerateMermaid produces a Mermaid flowchart of the fragments of schema.
// It applies semantic styling:
// - Root: ((Circle))
// - Fragment holding a $ref: [[Subroutine]]
// - Document outside schema: {{Hexagon}}
// - Default: [Rectangle]
// Solid arrows follow keywords, dotted arrows follow references.
func GenerateMermaid(schema tree.Schema, overlay *Overlay) string {
	c := &chart{
		schema:   schema,
		ids:      make(map[jsonptr.Pointer]string),
		external: make(map[string]string),
	}
	c.sb.WriteString("graph TD\n")
	c.walk(schema.Node(), schema.Pointer())

	if overlay != nil && len(overlay.Failed) > 0 {
		c.sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds
		c.sb.WriteString("    classDef failed fill:#ffebee,stroke:#b71c1c,stroke-width:3px,color:#000;\n")
		seen := make(map[string]bool)
		for _, ptr := range overlay.Failed {
			id, ok := c.ids[ptr]
			if ok && !seen[id] {
				seen[id] = true
				fmt.Fprintf(&c.sb, "    class %s failed;\n", id)
			}
		}
	}
	return c.sb.String()
}

func (c *chart) id(ptr jsonptr.Pointer) string {
	if id, ok := c.ids[ptr]; ok {
		return id
	}
	id := fmt.Sprintf("n%d", len(c.ids))
	c.ids[ptr] = id
	return id
}

func (c *chart) walk(node value.Value, ptr jsonptr.Pointer) {
	if node.Kind() != value.KindObject {
		return
	}
	id := c.id(ptr)
	label := escape(ptr.Fragment())

	opener, closer := "[", "]"
	ref, isRef := node.Field("$ref")
	switch {
	case ptr == c.schema.Pointer():
		opener, closer = "((", "))"
	case isRef:
		opener, closer = "[[", "]]"
	}
	fmt.Fprintf(&c.sb, "    %s%s\"%s\"%s\n", id, opener, label, closer)

	if isRef && ref.Kind() == value.KindString {
		c.reference(id, ref.Str())
	}

	for _, kw := range node.Fields() {
		shape, ok := subschemas[kw]
		if !ok {
			continue
		}
		child, _ := node.Field(kw)
		base := ptr.Append(kw)
		switch {
		case shape == "map" && child.Kind() == value.KindObject:
			for _, name := range child.Fields() {
				sub, _ := child.Field(name)
				c.edge(id, base.Append(name), sub, kw+"/"+name)
			}
		case (shape == "array" || shape == "single-or-array") && child.Kind() == value.KindArray:
			for i, sub := range child.Elements() {
				c.edge(id, base.AppendIndex(i), sub, fmt.Sprintf("%s/%d", kw, i))
			}
		case shape != "map" && shape != "array":
			c.edge(id, base, child, kw)
		}
	}
}

func (c *chart) edge(from string, ptr jsonptr.Pointer, sub value.Value, label string) {
	if sub.Kind() != value.KindObject {
		return
	}
	fmt.Fprintf(&c.sb, "    %s -- \"%s\" --> %s\n", from, escape(label), c.id(ptr))
	c.walk(sub, ptr)
}

// reference draws a dotted arrow to the target of ref: a fragment of the
// same document when it resolves into it, an external node otherwise.
func (c *chart) reference(from, ref string) {
	u, err := c.schema.ResolveReference(ref)
	if err != nil {
		return
	}
	if target, ok, err := c.schema.Root().Lookup(u); ok && err == nil {
		fmt.Fprintf(&c.sb, "    %s -. \"$ref\" .-> %s\n", from, c.id(target.Pointer()))
		return
	}
	c.sb.WriteString(c.externalNode(u))
	fmt.Fprintf(&c.sb, "    %s -. \"$ref\" .-> %s\n", from, c.external[u.String()])
}

func (c *chart) externalNode(u *url.URL) string {
	key := u.String()
	if _, ok := c.external[key]; ok {
		return ""
	}
	id := fmt.Sprintf("ext%d", len(c.external))
	c.external[key] = id
	return fmt.Sprintf("    %s{{\"%s\"}}\n", id, escape(key))
}

// escape makes text safe inside a quoted Mermaid label.
func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "#quot;")
}
