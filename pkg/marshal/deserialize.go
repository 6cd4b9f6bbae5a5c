package marshal

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/adt-protocol/adt-go/pkg/schema"
)

type frameKind uint8

const (
	frameObject frameKind = iota
	frameText
	frameIgnore
)

// frame is one open element while reading a document.
type frame struct {
	kind  frameKind
	tag   string
	obj   schema.Object
	table schema.Table

	// text frames only
	owner   schema.Object
	binding *schema.Binding
	text    strings.Builder
}

// Deserialize populates target from the XML document data.
// A target touched by a failed call must be considered invalid.
func Deserialize(data []byte, target schema.Object) error {
	return Decode(bytes.NewReader(data), target)
}

// Decode populates target from the XML document read from r.
func Decode(r io.Reader, target schema.Object) error {
	if isNil(target) {
		return errors.New("deserialize: nil target")
	}

	d := xml.NewDecoder(r)
	var stack []*frame
	rooted := false

	for {
		tok, err := d.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read document: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			tag := qname(t.Name)

			if len(stack) == 0 {
				if rooted {
					return fmt.Errorf("%w: unexpected element <%s> after document root", ErrStructure, tag)
				}
				rooted = true
				f := objectFrame(tag, target)
				if err := applyAttrs(f, t.Attr); err != nil {
					return err
				}
				stack = append(stack, f)
				continue
			}

			f, err := open(stack[len(stack)-1], tag, t.Attr)
			if err != nil {
				return err
			}
			stack = append(stack, f)

		case xml.CharData:
			if len(stack) > 0 {
				if top := stack[len(stack)-1]; top.kind == frameText {
					top.text.Write(t)
				}
			}

		case xml.EndElement:
			tag := qname(t.Name)
			if len(stack) == 0 {
				return fmt.Errorf("%w: unexpected </%s>", ErrStructure, tag)
			}

			top := stack[len(stack)-1]
			if top.tag != tag {
				return fmt.Errorf("%w: </%s> closes <%s>", ErrStructure, tag, top.tag)
			}
			stack = stack[:len(stack)-1]

			if top.kind == frameText {
				if err := commit(top); err != nil {
					return err
				}
			}
		}
	}

	if len(stack) > 0 {
		return fmt.Errorf("%w: unexpected end of document, <%s> not closed", ErrStructure, stack[len(stack)-1].tag)
	}
	if !rooted {
		return fmt.Errorf("%w: empty document", ErrStructure)
	}
	return nil
}

func objectFrame(tag string, obj schema.Object) *frame {
	return &frame{
		kind:  frameObject,
		tag:   tag,
		obj:   obj,
		table: obj.Schema().InboundTable(schema.VersionOf(obj)),
	}
}

// open resolves a child element of parent.
func open(parent *frame, tag string, attrs []xml.Attr) (*frame, error) {
	if parent.kind != frameObject {
		return &frame{kind: frameIgnore, tag: tag}, nil
	}

	b, ok := parent.table.Elements[tag]
	if !ok {
		return &frame{kind: frameIgnore, tag: tag}, nil
	}

	if b.Kind() == schema.KindText {
		return &frame{kind: frameText, tag: tag, owner: parent.obj, binding: b}, nil
	}

	child, err := nested(parent.obj, b)
	if err != nil {
		return nil, err
	}
	f := objectFrame(tag, child)
	if err := applyAttrs(f, attrs); err != nil {
		return nil, err
	}
	return f, nil
}

// nested returns the object a child element is read into: a new list
// item, the object already held by the owner, or a new one from the
// factory.
func nested(owner schema.Object, b *schema.Binding) (schema.Object, error) {
	if !b.IsList() && b.IsSet(owner) {
		if cur, ok := b.Get(owner).(schema.Object); ok && !isNil(cur) {
			return cur, nil
		}
	}

	child := b.Factory()(owner)
	if isNil(child) {
		return nil, fmt.Errorf("%s: factory returned nil", b.Wire())
	}

	if b.IsList() {
		b.Append(owner, child)
	} else {
		b.Set(owner, child)
	}
	return child, nil
}

func applyAttrs(f *frame, attrs []xml.Attr) error {
	for _, a := range attrs {
		b, ok := f.table.Attributes[qname(a.Name)]
		if !ok {
			continue
		}
		v, err := b.Parse(a.Value)
		if err != nil {
			return fmt.Errorf("<%s>: %w", f.tag, err)
		}
		b.Set(f.obj, v)
	}
	return nil
}

func commit(f *frame) error {
	v, err := f.binding.Parse(f.text.String())
	if err != nil {
		return err
	}
	if f.binding.IsList() {
		f.binding.Append(f.owner, v)
	} else {
		f.binding.Set(f.owner, v)
	}
	return nil
}

// qname returns the prefixed name as written in the document.
func qname(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}
