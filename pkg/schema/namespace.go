package schema

import "slices"

// Namespace is an XML namespace with the prefix used on the wire.
// Parents name the namespaces whose declarations must accompany this one
// at a document root. Namespaces are immutable.
type Namespace struct {
	name    string
	uri     string
	parents []*Namespace
}

// NewNamespace creates a namespace with prefix name bound to uri.
func NewNamespace(name, uri string, parents ...*Namespace) *Namespace {
	return &Namespace{
		name:    name,
		uri:     uri,
		parents: slices.Clone(parents),
	}
}

// Name returns the namespace prefix.
func (n *Namespace) Name() string {
	return n.name
}

// URI returns the namespace URI.
func (n *Namespace) URI() string {
	return n.uri
}

// Parents returns the directly inherited namespaces.
func (n *Namespace) Parents() []*Namespace {
	return slices.Clone(n.parents)
}

// Qualify prefixes local with the namespace name.
func (n *Namespace) Qualify(local string) string {
	return n.name + ":" + local
}

// Closure returns n followed by all of its ancestors, depth first in
// declaration order. A namespace reachable over several paths is listed
// once, at its first occurrence.
func (n *Namespace) Closure() []*Namespace {
	var out []*Namespace
	seen := make(map[string]bool)

	var walk func(ns *Namespace)
	walk = func(ns *Namespace) {
		if ns == nil || seen[ns.name] {
			return
		}
		seen[ns.name] = true
		out = append(out, ns)
		for _, p := range ns.parents {
			walk(p)
		}
	}
	walk(n)

	return out
}
