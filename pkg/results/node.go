package results

import (
	"encoding/json"
	"slices"
)

// Attr is a copied attribute.
type Attr struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Value is a leaf measurement attached to a node.
type Value struct {
	Kind  string `json:"kind"`
	Attrs []Attr `json:"attributes,omitempty"`
	Text  string `json:"text,omitempty"`
}

// Attr returns the named attribute of the value.
func (v Value) Attr(name string) string {
	return lookup(v.Attrs, name)
}

// Node is an entry of a result tree. Nodes are not modified after Parse
// returns. The parent link is for navigation only.
type Node struct {
	kind     string
	name     string
	attrs    []Attr
	values   []*Value
	children []*Node
	parent   *Node
}

// Kind returns the node kind, such as "testClass".
func (n *Node) Kind() string { return n.kind }

// Name returns the node name, or "".
func (n *Node) Name() string { return n.name }

// Parent returns the enclosing node, or nil for the document root.
func (n *Node) Parent() *Node { return n.parent }

// Attr returns the named attribute, or "".
func (n *Node) Attr(name string) string {
	return lookup(n.attrs, name)
}

// Attrs returns the copied attributes in document order.
func (n *Node) Attrs() []Attr {
	return slices.Clone(n.attrs)
}

// Children returns the child nodes in document order.
func (n *Node) Children() []*Node {
	return slices.Clone(n.children)
}

// Values returns the leaf values in document order.
func (n *Node) Values() []Value {
	out := make([]Value, 0, len(n.values))
	for _, v := range n.values {
		out = append(out, *v)
	}
	return out
}

// ValuesOf returns the leaf values of one kind.
func (n *Node) ValuesOf(kind string) []Value {
	var out []Value
	for _, v := range n.values {
		if v.Kind == kind {
			out = append(out, *v)
		}
	}
	return out
}

// Depth returns the number of ancestors below the document root.
func (n *Node) Depth() int {
	d := 0
	for p := n.parent; p != nil && p.parent != nil; p = p.parent {
		d++
	}
	return d
}

// Walk visits n and its descendants depth first. Returning false from fn
// skips the children of the visited node.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.children {
		c.Walk(fn)
	}
}

// Find returns every descendant of the given kind in document order.
func (n *Node) Find(kind string) []*Node {
	var out []*Node
	for _, c := range n.children {
		c.Walk(func(d *Node) bool {
			if d.kind == kind {
				out = append(out, d)
			}
			return true
		})
	}
	return out
}

type jsonNode struct {
	Kind     string  `json:"kind"`
	Name     string  `json:"name,omitempty"`
	Attrs    []Attr  `json:"attributes,omitempty"`
	Values   []Value `json:"values,omitempty"`
	Children []*Node `json:"children,omitempty"`
}

// MarshalJSON encodes the subtree without parent links.
func (n *Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonNode{
		Kind:     n.kind,
		Name:     n.name,
		Attrs:    n.attrs,
		Values:   n.Values(),
		Children: n.children,
	})
}

func lookup(attrs []Attr, name string) string {
	for _, a := range attrs {
		if a.Name == name {
			return a.Value
		}
	}
	return ""
}
