package marshal

import "strings"

// Attr is one attribute of an Element.
type Attr struct {
	Name  string
	Value string
}

// Element is a node of the intermediate tree built by the serializer.
// Trees are created per call and owned by the caller.
type Element struct {
	Tag      string
	Attrs    []Attr
	Text     string
	Children []*Element
}

// NewElement returns an empty element.
func NewElement(tag string) *Element {
	return &Element{Tag: tag}
}

// SetAttr sets an attribute. A new name is appended; an existing one keeps
// its position.
func (e *Element) SetAttr(name, value string) {
	for i := range e.Attrs {
		if e.Attrs[i].Name == name {
			e.Attrs[i].Value = value
			return
		}
	}
	e.Attrs = append(e.Attrs, Attr{Name: name, Value: value})
}

// Attr returns the value of the named attribute.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Add appends a child and returns it.
func (e *Element) Add(child *Element) *Element {
	e.Children = append(e.Children, child)
	return child
}

// AddText appends a child holding text.
func (e *Element) AddText(tag, text string) *Element {
	return e.Add(&Element{Tag: tag, Text: text})
}

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", "\r", "&#xD;")
	attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;",
		"\n", "&#xA;", "\r", "&#xD;", "\t", "&#x9;")
)

// String renders the element and its subtree.
func (e *Element) String() string {
	var sb strings.Builder
	e.render(&sb)
	return sb.String()
}

func (e *Element) render(sb *strings.Builder) {
	sb.WriteByte('<')
	sb.WriteString(e.Tag)
	for _, a := range e.Attrs {
		sb.WriteByte(' ')
		sb.WriteString(a.Name)
		sb.WriteString(`="`)
		attrEscaper.WriteString(sb, a.Value)
		sb.WriteByte('"')
	}

	if len(e.Children) == 0 && e.Text == "" {
		sb.WriteString("/>")
		return
	}
	sb.WriteByte('>')

	textEscaper.WriteString(sb, e.Text)
	if len(e.Children) > 0 {
		sb.WriteByte('\n')
		for _, c := range e.Children {
			c.render(sb)
			sb.WriteByte('\n')
		}
	}

	sb.WriteString("</")
	sb.WriteString(e.Tag)
	sb.WriteByte('>')
}
