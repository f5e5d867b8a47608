// Package tree provides schema and instance trees: a JSON value paired with
// the pointer that locates it inside its document. Schema trees also carry
// the URI scope needed to resolve references.
package tree

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"sync"

	"github.com/aretw0/jsonval/pkg/jsonptr"
	"github.com/aretw0/jsonval/pkg/value"
)

// ErrNoSuchNode is returned when a pointer does not address a node.
var ErrNoSuchNode = errors.New("no such node")

// document is shared by every Schema derived from the same root.
type document struct {
	root        value.Value
	locator     *url.URL
	rootContext *url.URL
	fingerprint uint64

	idsOnce sync.Once
	ids     map[string]jsonptr.Pointer
}

// Schema is an immutable schema fragment inside its document.
type Schema struct {
	doc     *document
	node    value.Value
	context *url.URL
	pointer jsonptr.Pointer
}

// Key identifies a schema fragment. Two fragments with equal keys have the
// same content, the same resolution scope and the same location.
type Key struct {
	Fingerprint uint64
	Locator     string
	Context     string
	Pointer     jsonptr.Pointer
}

// NewSchema returns the root tree of a schema document loaded from locator.
// An empty locator denotes an anonymous document.
func NewSchema(locator string, root value.Value) (Schema, error) {
	loc, err := url.Parse(locator)
	if err != nil {
		return Schema{}, fmt.Errorf("invalid schema locator %q: %w", locator, err)
	}
	loc.Fragment = ""
	loc.RawFragment = ""

	doc := &document{
		root:        root,
		locator:     loc,
		fingerprint: value.Hash(root),
	}
	ctx := scope(loc, root)
	doc.rootContext = ctx
	return Schema{doc: doc, node: root, context: ctx, pointer: jsonptr.Root}, nil
}

// MustSchema is like NewSchema but panics on error.
func MustSchema(locator string, root value.Value) Schema {
	s, err := NewSchema(locator, root)
	if err != nil {
		panic(err)
	}
	return s
}

// scope returns the resolution scope for node given the enclosing scope.
// Both the draft-4 "id" and the later "$id" keywords are honored.
func scope(base *url.URL, node value.Value) *url.URL {
	for _, name := range []string{"$id", "id"} {
		id, ok := node.Field(name)
		if !ok || id.Kind() != value.KindString {
			continue
		}
		ref, err := url.Parse(id.Str())
		if err != nil {
			continue
		}
		return base.ResolveReference(ref)
	}
	return base
}

// Node returns the schema fragment.
func (s Schema) Node() value.Value { return s.node }

// Pointer returns the location of the fragment inside its document.
func (s Schema) Pointer() jsonptr.Pointer { return s.pointer }

// Locator returns the URI the document was loaded from.
func (s Schema) Locator() string { return s.doc.locator.String() }

// Context returns the URI against which references in the fragment resolve.
func (s Schema) Context() string { return s.context.String() }

// Root returns the tree of the whole document.
func (s Schema) Root() Schema {
	return Schema{doc: s.doc, node: s.doc.root, context: s.doc.rootContext, pointer: jsonptr.Root}
}

// Location returns the absolute address of the fragment, locator#pointer.
func (s Schema) Location() string {
	return s.Locator() + s.pointer.Fragment()
}

// Key returns the equivalence key of the fragment.
func (s Schema) Key() Key {
	return Key{
		Fingerprint: s.doc.fingerprint,
		Locator:     s.Locator(),
		Context:     s.Context(),
		Pointer:     s.pointer,
	}
}

func (s Schema) String() string { return s.Location() }

// Append returns the fragment addressed by ptr relative to s. The resolution
// scope follows any id found along the way.
func (s Schema) Append(ptr jsonptr.Pointer) (Schema, error) {
	node, ctx := s.node, s.context
	for _, tok := range ptr.Tokens() {
		next, ok := child(node, tok)
		if !ok {
			return Schema{}, fmt.Errorf("%w: %s in %s", ErrNoSuchNode, s.pointer.Join(ptr), s.Locator())
		}
		node = next
		ctx = scope(ctx, node)
	}
	return Schema{doc: s.doc, node: node, context: ctx, pointer: s.pointer.Join(ptr)}, nil
}

// At returns the fragment at ptr from the document root.
func (s Schema) At(ptr jsonptr.Pointer) (Schema, error) {
	return s.Root().Append(ptr)
}

// Ref returns the value of the $ref keyword, if the fragment has one.
func (s Schema) Ref() (string, bool) {
	ref, ok := s.node.Field("$ref")
	if !ok || ref.Kind() != value.KindString {
		return "", false
	}
	return ref.Str(), true
}

// ResolveReference resolves ref against the fragment's scope.
func (s Schema) ResolveReference(ref string) (*url.URL, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return nil, fmt.Errorf("invalid reference %q: %w", ref, err)
	}
	return s.context.ResolveReference(u), nil
}

// Lookup returns the fragment of this document addressed by uri, if uri
// points into this document. The fragment of uri may be a JSON pointer or a
// plain name declared with an id.
func (s Schema) Lookup(uri *url.URL) (Schema, bool, error) {
	abs := *uri
	abs.Fragment, abs.RawFragment = "", ""
	base := abs.String()

	if base == s.doc.locator.String() || base == stripFragment(s.doc.rootContext) {
		if uri.Fragment == "" || uri.Fragment[0] == '/' {
			ptr, err := jsonptr.Parse(uri.Fragment)
			if err != nil {
				return Schema{}, true, err
			}
			target, err := s.At(ptr)
			return target, true, err
		}
	}
	ids := s.doc.index()
	if ptr, ok := ids[uri.String()]; ok {
		target, err := s.At(ptr)
		return target, true, err
	}
	if ptr, ok := ids[base]; ok && (uri.Fragment == "" || uri.Fragment[0] == '/') {
		sub, err := jsonptr.Parse(uri.Fragment)
		if err != nil {
			return Schema{}, true, err
		}
		target, err := s.At(ptr.Join(sub))
		return target, true, err
	}
	return Schema{}, false, nil
}

func stripFragment(u *url.URL) string {
	c := *u
	c.Fragment, c.RawFragment = "", ""
	return c.String()
}

// index maps every absolute id declared in the document to its pointer.
func (d *document) index() map[string]jsonptr.Pointer {
	d.idsOnce.Do(func() {
		d.ids = make(map[string]jsonptr.Pointer)
		var walk func(node value.Value, base *url.URL, ptr jsonptr.Pointer)
		walk = func(node value.Value, base *url.URL, ptr jsonptr.Pointer) {
			switch node.Kind() {
			case value.KindObject:
				ctx := scope(base, node)
				if ctx != base {
					if _, seen := d.ids[ctx.String()]; !seen {
						d.ids[ctx.String()] = ptr
					}
				}
				for _, name := range node.Fields() {
					if name == "enum" || name == "const" {
						continue
					}
					f, _ := node.Field(name)
					walk(f, ctx, ptr.Append(name))
				}
			case value.KindArray:
				for i, e := range node.Elements() {
					walk(e, base, ptr.AppendIndex(i))
				}
			}
		}
		walk(d.root, d.locator, jsonptr.Root)
	})
	return d.ids
}

func child(node value.Value, tok string) (value.Value, bool) {
	switch node.Kind() {
	case value.KindObject:
		return node.Field(tok)
	case value.KindArray:
		i, err := strconv.Atoi(tok)
		if err != nil || i < 0 || i >= node.Len() {
			return value.Value{}, false
		}
		return node.Index(i), true
	}
	return value.Value{}, false
}
