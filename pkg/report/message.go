package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/aretw0/jsonval/pkg/jsonptr"
	"github.com/aretw0/jsonval/pkg/value"
)

// Domain classifies where a message comes from.
type Domain string

const (
	DomainValidation   Domain = "validation"
	DomainSyntax       Domain = "syntax"
	DomainRefResolving Domain = "ref_resolving"
)

// Message is a single report entry.
type Message struct {
	Level   Level
	Domain  Domain
	Keyword string
	Text    string
	// Pointer locates the offending node in the instance.
	Pointer jsonptr.Pointer
	// Schema is the location of the schema fragment that produced the message.
	Schema string
	Extra  map[string]value.Value
}

// With returns a copy of m with an extra attribute set.
func (m Message) With(key string, v value.Value) Message {
	extra := make(map[string]value.Value, len(m.Extra)+1)
	maps.Copy(extra, m.Extra)
	extra[key] = v
	m.Extra = extra
	return m
}

func (m Message) String() string {
	return fmt.Sprintf("%s: %s [%s] at %q: %s", m.Level, m.Domain, m.Keyword, string(m.Pointer), m.Text)
}

// MarshalJSON writes the message as a flat object; extra attributes sit next
// to the fixed fields and never override them.
func (m Message) MarshalJSON() ([]byte, error) {
	fixed := []struct {
		key string
		val any
	}{
		{"level", m.Level.String()},
		{"domain", string(m.Domain)},
		{"keyword", m.Keyword},
		{"message", m.Text},
		{"pointer", string(m.Pointer)},
		{"schema", m.Schema},
	}
	reserved := make(map[string]bool, len(fixed))

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range fixed {
		reserved[f.key] = true
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeMember(&buf, f.key, f.val); err != nil {
			return nil, err
		}
	}
	for _, k := range slices.Sorted(maps.Keys(m.Extra)) {
		if reserved[k] {
			continue
		}
		buf.WriteByte(',')
		if err := writeMember(&buf, k, m.Extra[k]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeMember(buf *bytes.Buffer, key string, v any) error {
	k, err := json.Marshal(key)
	if err != nil {
		return err
	}
	val, err := json.Marshal(v)
	if err != nil {
		return err
	}
	buf.Write(k)
	buf.WriteByte(':')
	buf.Write(val)
	return nil
}
