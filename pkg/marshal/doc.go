// Package marshal converts schema-bound objects to and from ADT XML.
//
// # Outbound
//
// Serialize walks the object's bindings in declared order, builds an
// Element tree and renders it. Output is byte-exact and deterministic:
//   - Namespace declarations appear once, on the root, for the root
//     namespace and all of its ancestors
//   - Attributes and children follow binding order
//   - Empty attributes are omitted unless the binding asks otherwise
//   - Elements without children or text self-close
//
// # Inbound
//
// Deserialize populates an existing object in a single forward pass. The
// root object is never constructed here; nested objects come from binding
// factories. Unknown elements and attributes are skipped so that additive
// changes on the service side do not break older clients.
package marshal
