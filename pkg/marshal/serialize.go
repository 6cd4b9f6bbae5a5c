package marshal

import (
	"encoding/xml"
	"fmt"
	"reflect"
	"unicode/utf8"

	"github.com/adt-protocol/adt-go/pkg/schema"
)

// Serialize renders obj as an XML element without the XML declaration.
func Serialize(obj schema.Object) (string, error) {
	root, err := Tree(obj)
	if err != nil {
		return "", err
	}
	return root.String(), nil
}

// SerializeAs renders obj for the content type mime, which must be one of
// the types registered on its descriptor.
func SerializeAs(obj schema.Object, mime string) (string, error) {
	desc := obj.Schema().Descriptor()
	if desc == nil {
		return "", fmt.Errorf("%w: %s", ErrNoDescriptor, obj.Schema())
	}
	if !desc.Accepts(mime) {
		return "", fmt.Errorf("%w: %s cannot be sent as %s", schema.ErrFormatNotSupported, obj.Schema(), mime)
	}
	return Serialize(obj)
}

// Document renders obj as a complete XML document.
func Document(obj schema.Object) (string, error) {
	s, err := Serialize(obj)
	if err != nil {
		return "", err
	}
	return xml.Header + s, nil
}

// Tree builds the element tree of obj.
func Tree(obj schema.Object) (*Element, error) {
	if isNil(obj) {
		return nil, fmt.Errorf("%w: nil object", ErrNoDescriptor)
	}
	desc := obj.Schema().Descriptor()
	if desc == nil || desc.Element == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoDescriptor, obj.Schema())
	}

	root := NewElement(desc.Tag())
	if desc.Namespace != nil {
		for _, ns := range desc.Namespace.Closure() {
			root.SetAttr("xmlns:"+ns.Name(), ns.URI())
		}
	}
	for _, a := range desc.Attributes {
		root.SetAttr(a.Name, a.Value)
	}

	if err := build(root, obj); err != nil {
		return nil, err
	}
	return root, nil
}

// build adds the bindings of obj to el.
func build(el *Element, obj schema.Object) error {
	version := schema.VersionOf(obj)

	for _, b := range obj.Schema().Bindings() {
		if !b.Matches(version) {
			continue
		}

		if b.Capability() == schema.CapAttribute {
			v := b.Format(b.Get(obj))
			if err := checkChars(b.Wire(), v); err != nil {
				return err
			}
			if v != "" || b.EmitAlways() {
				el.SetAttr(b.Wire(), v)
			}
			continue
		}

		if b.IsList() {
			for _, item := range b.Get(obj).(*schema.Container).All() {
				if err := addChild(el, b, item); err != nil {
					return err
				}
			}
			continue
		}

		if err := addChild(el, b, b.Get(obj)); err != nil {
			return err
		}
	}

	return nil
}

func addChild(el *Element, b *schema.Binding, v any) error {
	if b.Kind() == schema.KindText {
		text := ""
		if !isNil(v) {
			text = b.Format(v)
		}
		if text == "" && b.OmitsEmpty() && !b.EmitAlways() {
			return nil
		}
		if err := checkChars(b.Wire(), text); err != nil {
			return err
		}
		el.AddText(b.Wire(), text)
		return nil
	}

	if isNil(v) {
		if b.EmitAlways() {
			el.Add(NewElement(b.Wire()))
		}
		return nil
	}

	nested, ok := v.(schema.Object)
	if !ok {
		return fmt.Errorf("%s: %w: %T is not a bound object", b.Wire(), schema.ErrInvalidValue, v)
	}

	child := el.Add(NewElement(b.Wire()))
	if err := build(child, nested); err != nil {
		return fmt.Errorf("%s: %w", b.Wire(), err)
	}
	return nil
}

// checkChars rejects values that cannot appear in an XML 1.0 document.
func checkChars(wire, s string) error {
	if !utf8.ValidString(s) {
		return fmt.Errorf("%s: %w: invalid UTF-8", wire, schema.ErrInvalidValue)
	}
	for _, r := range s {
		if !isXMLChar(r) {
			return fmt.Errorf("%s: %w: character %U not allowed in XML", wire, schema.ErrInvalidValue, r)
		}
	}
	return nil
}

func isXMLChar(r rune) bool {
	switch {
	case r == '\t', r == '\n', r == '\r':
		return true
	case r >= 0x20 && r <= 0xD7FF:
		return true
	case r >= 0xE000 && r <= 0xFFFD:
		return true
	case r >= 0x10000 && r <= utf8.MaxRune:
		return true
	}
	return false
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func:
		return rv.IsNil()
	}
	return false
}
