// Package digest summarizes the parts of a schema fragment that decide which
// sub-schemas apply to the children of a container, and selects them.
//
// A digest depends only on the schema fragment's content. An empty selection
// means the child is unconstrained. Object selection fails only when the
// regex engine cannot decide a patternProperties match.
package digest

import (
	"slices"

	"github.com/aretw0/jsonval/pkg/jsonptr"
	"github.com/aretw0/jsonval/pkg/regex"
	"github.com/aretw0/jsonval/pkg/value"
)

// Digest is either an Array or an Object digest.
type Digest interface {
	kind() value.Kind
}

// Array summarizes items and additionalItems.
type Array struct {
	HasItems      bool
	ItemsIsArray  bool
	ItemsSize     int
	HasAdditional bool
}

// Object summarizes properties, patternProperties and additionalProperties.
// Both name lists are sorted.
type Object struct {
	Properties        []string
	PatternProperties []string
	HasAdditional     bool
}

func (Array) kind() value.Kind  { return value.KindArray }
func (Object) kind() value.Kind { return value.KindObject }

// For returns the digest of schema for instances of kind, or nil when kind
// is not a container.
func For(schema value.Value, kind value.Kind) Digest {
	switch kind {
	case value.KindArray:
		return ForArray(schema)
	case value.KindObject:
		return ForObject(schema)
	}
	return nil
}

// ForArray digests the array keywords of schema.
func ForArray(schema value.Value) Array {
	var d Array
	if items, ok := schema.Field("items"); ok {
		d.HasItems = true
		if items.Kind() == value.KindArray {
			d.ItemsIsArray = true
			d.ItemsSize = items.Len()
		}
	}
	if add, ok := schema.Field("additionalItems"); ok && add.Kind() == value.KindObject {
		d.HasAdditional = true
	}
	return d
}

// ForObject digests the object keywords of schema.
func ForObject(schema value.Value) Object {
	var d Object
	if props, ok := schema.Field("properties"); ok {
		d.Properties = props.Fields()
	}
	if patterns, ok := schema.Field("patternProperties"); ok {
		d.PatternProperties = patterns.Fields()
	}
	if add, ok := schema.Field("additionalProperties"); ok && add.Kind() == value.KindObject {
		d.HasAdditional = true
	}
	return d
}

var (
	ptrItems           = jsonptr.Root.Append("items")
	ptrAdditionalItems = jsonptr.Root.Append("additionalItems")
	ptrAdditionalProps = jsonptr.Root.Append("additionalProperties")
	ptrProperties      = jsonptr.Root.Append("properties")
	ptrPatternProps    = jsonptr.Root.Append("patternProperties")
)

// Select returns the schema pointers, relative to the digested fragment,
// that apply to the array element at index i.
func (d Array) Select(i int) []jsonptr.Pointer {
	if d.HasItems {
		if !d.ItemsIsArray {
			return []jsonptr.Pointer{ptrItems}
		}
		if i < d.ItemsSize {
			return []jsonptr.Pointer{ptrItems.AppendIndex(i)}
		}
	}
	if d.HasAdditional {
		return []jsonptr.Pointer{ptrAdditionalItems}
	}
	return nil
}

// Select returns the schema pointers, relative to the digested fragment,
// that apply to the object member named field. Every matching pattern
// contributes; additionalProperties applies only when nothing else does.
// An error means a pattern could not be evaluated against field, in which
// case no selection is made.
func (d Object) Select(field string, re regex.Engine) ([]jsonptr.Pointer, error) {
	var out []jsonptr.Pointer
	if contains(d.Properties, field) {
		out = append(out, ptrProperties.Append(field))
	}
	for _, p := range d.PatternProperties {
		ok, err := re.Matches(p, field)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, ptrPatternProps.Append(p))
		}
	}
	if len(out) > 0 {
		return out, nil
	}
	if d.HasAdditional {
		return []jsonptr.Pointer{ptrAdditionalProps}, nil
	}
	return nil, nil
}

func contains(sorted []string, s string) bool {
	_, found := slices.BinarySearch(sorted, s)
	return found
}
