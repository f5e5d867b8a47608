package keyword

import (
	"fmt"
	"slices"
	"sync"

	"github.com/aretw0/jsonval/pkg/jsonptr"
	"github.com/aretw0/jsonval/pkg/regex"
	"github.com/aretw0/jsonval/pkg/value"
)

// Registry maps keyword names to their entries.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]Entry),
	}
}

// Register adds a keyword to the registry.
// If a keyword with the same name exists, it is overwritten.
func (r *Registry) Register(e Entry) error {
	if e.Name == "" {
		return fmt.Errorf("keyword entry has no name")
	}
	if e.Check == nil {
		return fmt.Errorf("keyword %q has no syntax checker", e.Name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[e.Name] = e
	return nil
}

// Unregister removes a keyword. Unknown keywords are ignored by validation.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, name)
}

// Lookup returns the entry for name.
func (r *Registry) Lookup(name string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	return e, ok
}

// Names returns the registered keyword names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for n := range r.entries {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Check verifies the syntax of every registered keyword present in schema.
// All problems are returned, in keyword order.
func (r *Registry) Check(schema value.Value, re regex.Engine) []error {
	if schema.Kind() != value.KindObject {
		return []error{&SyntaxError{Reason: fmt.Sprintf("schema is %s, not an object", schema.Kind()), Value: schema}}
	}
	var errs []error
	for _, name := range schema.Fields() {
		e, ok := r.Lookup(name)
		if !ok {
			continue
		}
		kw, _ := schema.Field(name)
		if err := e.Check(kw, schema, re); err != nil {
			errs = append(errs, withKeyword(err, name))
		}
	}
	return errs
}

func withKeyword(err error, name string) error {
	se, ok := err.(*SyntaxError)
	if !ok {
		return &SyntaxError{Keyword: name, Pointer: jsonptr.Root.Append(name), Reason: err.Error()}
	}
	c := *se
	c.Keyword = name
	c.Pointer = jsonptr.Root.Append(name).Join(se.Pointer)
	return &c
}
