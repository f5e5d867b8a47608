// Package jsonptr implements RFC 6901 JSON Pointers as plain comparable strings.
package jsonptr

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-openapi/jsonpointer"
)

// Pointer is a JSON Pointer in its escaped string form. The empty pointer
// addresses the whole document.
type Pointer string

// Root addresses the whole document.
const Root Pointer = ""

// Parse validates s and returns it as a Pointer. A leading '#' (URI fragment
// form) is accepted and stripped.
func Parse(s string) (Pointer, error) {
	s = strings.TrimPrefix(s, "#")
	if _, err := jsonpointer.New(s); err != nil {
		return "", fmt.Errorf("invalid JSON pointer %q: %w", s, err)
	}
	return Pointer(s), nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) Pointer {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return p
}

// Append returns p extended by the given unescaped reference tokens.
func (p Pointer) Append(tokens ...string) Pointer {
	if len(tokens) == 0 {
		return p
	}
	var b strings.Builder
	b.WriteString(string(p))
	for _, t := range tokens {
		b.WriteByte('/')
		b.WriteString(jsonpointer.Escape(t))
	}
	return Pointer(b.String())
}

// AppendIndex returns p extended by an array index.
func (p Pointer) AppendIndex(i int) Pointer {
	return p + Pointer("/"+strconv.Itoa(i))
}

// Join returns p followed by every token of q.
func (p Pointer) Join(q Pointer) Pointer {
	return p + q
}

// Tokens returns the unescaped reference tokens of p.
func (p Pointer) Tokens() []string {
	if p == Root {
		return nil
	}
	jp, err := jsonpointer.New(string(p))
	if err != nil {
		return nil
	}
	return jp.DecodedTokens()
}

// Parent returns p without its last token. The parent of Root is Root.
func (p Pointer) Parent() Pointer {
	i := strings.LastIndexByte(string(p), '/')
	if i < 0 {
		return Root
	}
	return p[:i]
}

// Last returns the unescaped last token of p, or "" for Root.
func (p Pointer) Last() string {
	i := strings.LastIndexByte(string(p), '/')
	if i < 0 {
		return ""
	}
	return jsonpointer.Unescape(string(p[i+1:]))
}

// HasPrefix reports whether q is p or an ancestor of p.
func (p Pointer) HasPrefix(q Pointer) bool {
	if q == Root || p == q {
		return true
	}
	return strings.HasPrefix(string(p), string(q)+"/")
}

// Fragment returns p in URI fragment form, with the leading '#'.
func (p Pointer) Fragment() string {
	return "#" + string(p)
}

func (p Pointer) String() string { return string(p) }
