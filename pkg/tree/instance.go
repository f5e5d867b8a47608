package tree

import (
	"github.com/aretw0/jsonval/pkg/jsonptr"
	"github.com/aretw0/jsonval/pkg/value"
)

// Instance is a node of the document under validation. The pointer is used
// for diagnostics and loop detection only.
type Instance struct {
	node    value.Value
	pointer jsonptr.Pointer
}

// NewInstance returns the root of an instance document.
func NewInstance(root value.Value) Instance {
	return Instance{node: root, pointer: jsonptr.Root}
}

func (i Instance) Node() value.Value { return i.node }
func (i Instance) Pointer() jsonptr.Pointer { return i.pointer }
func (i Instance) Kind() value.Kind { return i.node.Kind() }

// Field returns the child instance for an object member.
func (i Instance) Field(name string) Instance {
	f, _ := i.node.Field(name)
	return Instance{node: f, pointer: i.pointer.Append(name)}
}

// Index returns the child instance for an array element.
func (i Instance) Index(n int) Instance {
	return Instance{node: i.node.Index(n), pointer: i.pointer.AppendIndex(n)}
}
