package schema

import (
	"fmt"
	"maps"
	"slices"

	"github.com/yosida95/uritemplate/v3"
)

// DefaultMIMEType is used when a descriptor registers no content type.
const DefaultMIMEType = "application/xml"

// Attr is a fixed attribute emitted on every root element of a type.
type Attr struct {
	Name  string
	Value string
}

// Editor addresses the editable source text of one object.
type Editor struct {
	URI         string
	ContentType string
}

// EditorFactory builds the source editor for obj, located at objectURI.
type EditorFactory func(obj Object, objectURI string) Editor

// Descriptor is the wire identity of a type: its root element, namespace,
// accepted content types and location on the service. Descriptors are
// shared by every instance and must be treated as read-only; use
// WithParent to obtain a specialized copy.
type Descriptor struct {
	// Element is the local name of the root element.
	Element string

	// Namespace owns the root element. Nil means an unqualified root.
	Namespace *Namespace

	// MIMETypes lists accepted content types, preferred first.
	MIMETypes []string

	// Basepath is an RFC 6570 template of the collection path relative
	// to the service root.
	Basepath string

	// Representations maps alternate content types to URI suffixes.
	Representations map[string]string

	// Code is the stable type code, such as "PROG/P".
	Code string

	// Attributes are emitted on the root element before any binding.
	Attributes []Attr

	// Editor is optional.
	Editor EditorFactory
}

// Tag returns the prefixed root element name.
func (d *Descriptor) Tag() string {
	if d.Namespace == nil {
		return d.Element
	}
	return d.Namespace.Qualify(d.Element)
}

// MIMEType returns the preferred content type.
func (d *Descriptor) MIMEType() string {
	if len(d.MIMETypes) == 0 {
		return DefaultMIMEType
	}
	return d.MIMETypes[0]
}

// Accepts reports whether mime is one of the registered content types.
func (d *Descriptor) Accepts(mime string) bool {
	if len(d.MIMETypes) == 0 {
		return mime == DefaultMIMEType
	}
	return slices.Contains(d.MIMETypes, mime)
}

// URIFor returns the URI suffix of the representation with content type
// mime.
func (d *Descriptor) URIFor(mime string) (string, error) {
	suffix, ok := d.Representations[mime]
	if !ok {
		return "", fmt.Errorf("%w: %s has no %q representation", ErrFormatNotSupported, d.Tag(), mime)
	}
	return suffix, nil
}

// Path expands the basepath template with vars.
func (d *Descriptor) Path(vars map[string]string) (string, error) {
	tmpl, err := uritemplate.New(d.Basepath)
	if err != nil {
		return "", fmt.Errorf("invalid basepath %q: %w", d.Basepath, err)
	}

	values := uritemplate.Values{}
	for k, v := range vars {
		values.Set(k, uritemplate.String(v))
	}

	path, err := tmpl.Expand(values)
	if err != nil {
		return "", fmt.Errorf("failed to expand basepath %q: %w", d.Basepath, err)
	}
	return path, nil
}

// Variables returns the names of the template variables in the basepath.
func (d *Descriptor) Variables() []string {
	tmpl, err := uritemplate.New(d.Basepath)
	if err != nil {
		return nil
	}
	return tmpl.Varnames()
}

// WithParent returns a copy of d whose basepath has the template
// variables in vars substituted. d itself is not modified.
func (d *Descriptor) WithParent(vars map[string]string) (*Descriptor, error) {
	path, err := d.Path(vars)
	if err != nil {
		return nil, err
	}

	c := *d
	c.Basepath = path
	c.MIMETypes = slices.Clone(d.MIMETypes)
	c.Representations = maps.Clone(d.Representations)
	c.Attributes = slices.Clone(d.Attributes)
	return &c, nil
}
