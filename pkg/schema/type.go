package schema

import (
	"fmt"
	"slices"
)

// Type is the declared schema of one object kind: its descriptor and its
// bindings in wire order. Types are built once at package initialization
// and are safe for concurrent use.
type Type struct {
	name   string
	parent *Type
	desc   *Descriptor
	order  []*Binding
}

// NewType declares a type. Its binding order is the parent's order followed
// by bindings; a binding with the same wire name and versions as an
// inherited one takes over the inherited position. A nil descriptor
// inherits the parent's.
//
// NewType panics with ErrInvalidBinding on duplicate bindings or on two
// bindings sharing a field name for overlapping versions.
func NewType(name string, parent *Type, desc *Descriptor, bindings ...*Binding) *Type {
	t := &Type{
		name:   name,
		parent: parent,
		desc:   desc,
	}

	var inherited []*Binding
	if parent != nil {
		inherited = parent.order
		if t.desc == nil {
			t.desc = parent.desc
		}
	}
	t.order = slices.Clone(inherited)

	own := make(map[string]bool, len(bindings))
	for _, b := range bindings {
		if b == nil {
			panic(fmt.Errorf("%w: %s: nil binding", ErrInvalidBinding, name))
		}
		id := b.identity()
		if own[id] {
			panic(fmt.Errorf("%w: %s: duplicate binding %s", ErrInvalidBinding, name, b))
		}
		own[id] = true

		if i := slices.IndexFunc(t.order, func(o *Binding) bool { return o.identity() == id }); i >= 0 {
			t.order[i] = b
			continue
		}
		t.order = append(t.order, b)
	}

	for i, a := range t.order {
		for _, b := range t.order[i+1:] {
			if a.name == b.name && a.overlaps(b) {
				panic(fmt.Errorf("%w: %s: field %s bound twice (%s, %s)", ErrInvalidBinding, name, a.name, a, b))
			}
		}
	}

	return t
}

// Name returns the type name.
func (t *Type) Name() string { return t.name }

// Parent returns the parent type, or nil.
func (t *Type) Parent() *Type { return t.parent }

// Descriptor returns the wire identity of the type, or nil.
func (t *Type) Descriptor() *Descriptor { return t.desc }

// Bindings returns the bindings in declared order.
func (t *Type) Bindings() []*Binding {
	return slices.Clone(t.order)
}

// Is reports whether t is o or derives from it.
func (t *Type) Is(o *Type) bool {
	for c := t; c != nil; c = c.parent {
		if c == o {
			return true
		}
	}
	return false
}

// Binding returns the binding with the given field name active for
// version.
func (t *Type) Binding(name, version string) (*Binding, bool) {
	for _, b := range t.order {
		if b.name == name && (version == "" || b.Matches(version)) {
			return b, true
		}
	}
	return nil, false
}

// Lookup returns every binding with wire name wire.
func (t *Type) Lookup(wire string) []*Binding {
	var out []*Binding
	for _, b := range t.order {
		if b.wire == wire {
			out = append(out, b)
		}
	}
	return out
}

// Table maps wire names to the bindings populated while reading a
// document.
type Table struct {
	Attributes map[string]*Binding
	Elements   map[string]*Binding
}

// InboundTable returns the inbound bindings active for version. Without a
// version every inbound binding takes part; the first declared wins on a
// shared wire name.
func (t *Type) InboundTable(version string) Table {
	tbl := Table{
		Attributes: make(map[string]*Binding),
		Elements:   make(map[string]*Binding),
	}

	for _, b := range t.order {
		if !b.inbound {
			continue
		}
		if version != "" && !b.Matches(version) {
			continue
		}

		m := tbl.Elements
		if b.cap == CapAttribute {
			m = tbl.Attributes
		}
		if _, ok := m[b.wire]; !ok {
			m[b.wire] = b
		}
	}

	return tbl
}

// String returns the type name.
func (t *Type) String() string {
	return t.name
}
