// Package schema declares how ADT objects map onto XML.
//
// # Types and Bindings
//
// Every object kind is described once, at package initialization, by a
// Type: an ordered list of Bindings plus an optional Descriptor naming the
// root element, namespace and resource location.
//
//	var nameAttr = schema.Attribute("Name", "adtcore:name")
//	var labelText = schema.Text("Label", "label", schema.OmitEmpty())
//
//	var ElemType = schema.NewType("Elem", nil, desc, nameAttr, labelText)
//
// A subtype lists its parent and its own bindings. The resulting order is
// the parent's order followed by the new bindings. A binding whose wire
// name (and version set) is already inherited replaces the inherited one
// in place.
//
// # Per-Instance Storage
//
// Bindings are shared by every instance of a type and hold no values.
// Values live in the Store embedded in each object through Base:
//
//	type Elem struct{ schema.Base }
//
//	e := &Elem{Base: schema.NewBase(ElemType, "")}
//	labelText.Set(e, "Hello")
//
// List bindings materialize an independent Container per instance on first
// write, so a default list is never shared between instances.
//
// # Versions
//
// A binding may carry version tags. Its storage key is qualified by the
// version, so several spellings of one logical field coexist on an object
// without clobbering each other. The version active for an object is fixed
// when its Base is created.
package schema
