package results

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
)

// ErrStructure reports a result document whose elements do not nest.
var ErrStructure = errors.New("malformed result document")

// StructureError describes where a result document stopped nesting.
type StructureError struct {
	Grammar string
	Line    int
	Tag     string // closing tag, empty at end of input
	Open    string // innermost open element, empty when none or when the document has no element
}

func (e *StructureError) Error() string {
	switch {
	case e.Tag == "" && e.Open == "":
		return fmt.Sprintf("%s: line %d: empty document", e.Grammar, e.Line)
	case e.Tag == "":
		return fmt.Sprintf("%s: line %d: unexpected end of document, <%s> not closed", e.Grammar, e.Line, e.Open)
	case e.Open == "":
		return fmt.Sprintf("%s: line %d: </%s> without matching open element", e.Grammar, e.Line, e.Tag)
	default:
		return fmt.Sprintf("%s: line %d: </%s> closes <%s>", e.Grammar, e.Line, e.Tag, e.Open)
	}
}

// Unwrap returns ErrStructure.
func (e *StructureError) Unwrap() error { return ErrStructure }

// NodeRule describes a node-kind element.
type NodeRule struct {
	// Kind labels the node. Defaults to the local tag name.
	Kind string
	// NameAttr names the attribute holding the node name.
	NameAttr string
	// Attrs lists the attributes to copy. Nil copies every attribute.
	Attrs []string
}

// LeafRule describes a measurement attached to the current node.
type LeafRule struct {
	// Kind labels the value. Defaults to the local tag name.
	Kind string
	// Attrs lists the attributes to copy. Nil copies every attribute.
	Attrs []string
	// Text keeps the trimmed character data.
	Text bool
	// NameAttr names the current node when it has no name yet.
	NameAttr string
}

// Grammar tells Parse which tags start nodes and which carry values.
// Tags are matched with their prefix as written in the document.
type Grammar struct {
	Name   string
	Nodes  map[string]NodeRule
	Leaves map[string]LeafRule
}

type entryKind uint8

const (
	entryOther entryKind = iota
	entryNode
	entryLeaf
)

type entry struct {
	kind  entryKind
	tag   string
	node  *Node
	value *Value
	text  bool
	buf   strings.Builder
}

// Parse builds the result tree of data. The returned root has the
// grammar's name as kind and the top-level nodes as children.
func Parse(data []byte, g *Grammar) (*Node, error) {
	return Decode(bytes.NewReader(data), g)
}

// Decode builds the result tree of the document read from r.
func Decode(r io.Reader, g *Grammar) (*Node, error) {
	d := xml.NewDecoder(r)
	root := &Node{kind: g.Name}
	current := root
	var stack []*entry
	rooted := false

	for {
		tok, err := d.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: failed to read document: %w", g.Name, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			tag := qname(t.Name)
			e := &entry{tag: tag}
			rooted = true

			if rule, ok := g.Nodes[tag]; ok {
				n := &Node{
					kind:   kindOr(rule.Kind, t.Name.Local),
					attrs:  copyAttrs(t.Attr, rule.Attrs),
					parent: current,
				}
				if rule.NameAttr != "" {
					n.name = attrValue(t.Attr, rule.NameAttr)
				}
				current.children = append(current.children, n)
				current = n
				e.kind, e.node = entryNode, n
			} else if rule, ok := g.Leaves[tag]; ok {
				v := &Value{
					Kind:  kindOr(rule.Kind, t.Name.Local),
					Attrs: copyAttrs(t.Attr, rule.Attrs),
				}
				current.values = append(current.values, v)
				if rule.NameAttr != "" && current.name == "" {
					current.name = attrValue(t.Attr, rule.NameAttr)
				}
				e.kind, e.value, e.text = entryLeaf, v, rule.Text
			}
			stack = append(stack, e)

		case xml.CharData:
			if len(stack) > 0 {
				if top := stack[len(stack)-1]; top.text {
					top.buf.Write(t)
				}
			}

		case xml.EndElement:
			tag := qname(t.Name)
			line, _ := d.InputPos()

			if len(stack) == 0 {
				return nil, &StructureError{Grammar: g.Name, Line: line, Tag: tag}
			}
			top := stack[len(stack)-1]
			if top.tag != tag {
				return nil, &StructureError{Grammar: g.Name, Line: line, Tag: tag, Open: top.tag}
			}
			stack = stack[:len(stack)-1]

			switch top.kind {
			case entryNode:
				current = top.node.parent
			case entryLeaf:
				if top.text {
					top.value.Text = strings.TrimSpace(top.buf.String())
				}
			}
		}
	}

	if len(stack) > 0 {
		line, _ := d.InputPos()
		return nil, &StructureError{Grammar: g.Name, Line: line, Open: stack[len(stack)-1].tag}
	}
	if !rooted {
		line, _ := d.InputPos()
		return nil, &StructureError{Grammar: g.Name, Line: line}
	}
	return root, nil
}

func kindOr(kind, local string) string {
	if kind != "" {
		return kind
	}
	return local
}

// copyAttrs keeps the attributes named in keep, or all but namespace
// declarations when keep is nil.
func copyAttrs(attrs []xml.Attr, keep []string) []Attr {
	var out []Attr
	for _, a := range attrs {
		name := qname(a.Name)
		if a.Name.Space == "xmlns" || name == "xmlns" {
			continue
		}
		if keep != nil && !slices.Contains(keep, name) {
			continue
		}
		out = append(out, Attr{Name: name, Value: a.Value})
	}
	return out
}

func attrValue(attrs []xml.Attr, name string) string {
	for _, a := range attrs {
		if qname(a.Name) == name {
			return a.Value
		}
	}
	return ""
}

func qname(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}
