package schema

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// Capability tells where a binding appears in the XML.
type Capability uint8

const (
	// CapAttribute renders the value as an attribute of the owner element.
	CapAttribute Capability = iota

	// CapElement renders the value as a child element.
	CapElement
)

// String returns the capability name.
func (c Capability) String() string {
	switch c {
	case CapAttribute:
		return "attribute"
	case CapElement:
		return "element"
	default:
		return fmt.Sprintf("Capability(%d)", c)
	}
}

// Kind tells how an element binding's content is produced.
type Kind uint8

const (
	// KindText renders the value as the element's character data.
	KindText Kind = iota

	// KindObject renders the value as a nested object with its own bindings.
	KindObject
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindObject:
		return "object"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Factory constructs an empty nested object while deserializing into owner.
type Factory func(owner Object) Object

// Binding maps one logical field of a type onto an attribute or element.
//
// A Binding is created once per type declaration and shared by every
// instance of that type. It holds no per-instance state; values are kept
// in the owning object's Store under a key derived from the binding name
// and the object's version.
type Binding struct {
	name      string
	wire      string
	cap       Capability
	kind      Kind
	list      bool
	inbound   bool
	always    bool
	omitEmpty bool
	versions  []string
	def       any
	factory   Factory
	codec     Codec
}

// Option configures a Binding at declaration.
type Option func(*Binding)

// WithDefault sets the value returned when an instance holds none.
// List bindings require a slice.
func WithDefault(v any) Option {
	return func(b *Binding) { b.def = v }
}

// WithVersion restricts the binding to objects of the given versions.
func WithVersion(tags ...string) Option {
	return func(b *Binding) {
		if len(tags) == 0 {
			panic(fmt.Errorf("%w: %s: empty version set", ErrInvalidBinding, b.wire))
		}
		b.versions = slices.Clone(tags)
	}
}

// WithFactory sets the constructor for nested objects. On a list binding
// it turns the items into objects.
func WithFactory(f Factory) Option {
	return func(b *Binding) {
		b.factory = f
		if b.list && f != nil {
			b.kind = KindObject
		}
	}
}

// WithCodec sets the text conversion. The default is StringCodec.
func WithCodec(c Codec) Option {
	return func(b *Binding) { b.codec = c }
}

// OutboundOnly excludes the binding from deserialization.
func OutboundOnly() Option {
	return func(b *Binding) { b.inbound = false }
}

// Always emits the binding even when its value is empty.
func Always() Option {
	return func(b *Binding) { b.always = true }
}

// OmitEmpty skips an empty text element instead of rendering <tag/>.
func OmitEmpty() Option {
	return func(b *Binding) { b.omitEmpty = true }
}

// Attribute declares a binding rendered as the attribute wire.
func Attribute(name, wire string, opts ...Option) *Binding {
	return newBinding(name, wire, CapAttribute, KindText, false, opts)
}

// Text declares a binding rendered as a child element with text content.
func Text(name, wire string, opts ...Option) *Binding {
	return newBinding(name, wire, CapElement, KindText, false, opts)
}

// Element declares a binding rendered as a nested object built by factory.
func Element(name, wire string, factory Factory, opts ...Option) *Binding {
	b := newBinding(name, wire, CapElement, KindObject, false, append([]Option{WithFactory(factory)}, opts...))
	if b.factory == nil {
		panic(fmt.Errorf("%w: %s: object element without factory", ErrInvalidBinding, wire))
	}
	return b
}

// List declares a repeated element: every item of the bound Container is
// rendered as a sibling tagged itemTag. Items are text unless WithFactory
// is given.
func List(name, itemTag string, opts ...Option) *Binding {
	return newBinding(name, itemTag, CapElement, KindText, true, opts)
}

func newBinding(name, wire string, c Capability, k Kind, list bool, opts []Option) *Binding {
	if name == "" || wire == "" {
		panic(fmt.Errorf("%w: binding needs a name and a wire name", ErrInvalidBinding))
	}

	b := &Binding{
		name:    name,
		wire:    wire,
		cap:     c,
		kind:    k,
		list:    list,
		inbound: true,
		codec:   StringCodec,
	}
	for _, opt := range opts {
		opt(b)
	}

	seen := make(map[string]bool, len(b.versions))
	for _, v := range b.versions {
		if v == "" || strings.ContainsAny(v, "@|,") {
			panic(fmt.Errorf("%w: %s: invalid version tag %q", ErrInvalidBinding, wire, v))
		}
		if seen[v] {
			panic(fmt.Errorf("%w: %s: duplicate version tag %q", ErrInvalidBinding, wire, v))
		}
		seen[v] = true
	}

	if list && b.def != nil && reflect.ValueOf(b.def).Kind() != reflect.Slice {
		panic(fmt.Errorf("%w: %s: list default must be a slice, got %T", ErrInvalidBinding, wire, b.def))
	}
	if b.cap == CapAttribute && b.kind == KindObject {
		panic(fmt.Errorf("%w: %s: attributes cannot hold objects", ErrInvalidBinding, wire))
	}

	return b
}

// Name returns the logical field name.
func (b *Binding) Name() string { return b.name }

// Wire returns the attribute or element name used on the wire.
func (b *Binding) Wire() string { return b.wire }

// Capability returns whether the binding is an attribute or an element.
func (b *Binding) Capability() Capability { return b.cap }

// Kind returns whether the element content is text or a nested object.
func (b *Binding) Kind() Kind { return b.kind }

// IsList reports whether the binding holds a Container.
func (b *Binding) IsList() bool { return b.list }

// Inbound reports whether deserialization populates the binding.
func (b *Binding) Inbound() bool { return b.inbound }

// EmitAlways reports whether the binding is emitted even when empty.
func (b *Binding) EmitAlways() bool { return b.always }

// OmitsEmpty reports whether an empty text element is skipped.
func (b *Binding) OmitsEmpty() bool { return b.omitEmpty }

// Versions returns the version tags, or nil for an unversioned binding.
func (b *Binding) Versions() []string { return slices.Clone(b.versions) }

// Codec returns the text conversion.
func (b *Binding) Codec() Codec { return b.codec }

// Factory returns the nested object constructor, if any.
func (b *Binding) Factory() Factory { return b.factory }

// Matches reports whether the binding applies to objects of version.
// Unversioned bindings match every version.
func (b *Binding) Matches(version string) bool {
	if len(b.versions) == 0 {
		return true
	}
	return slices.Contains(b.versions, version)
}

// identity distinguishes bindings within one type.
func (b *Binding) identity() string {
	vs := slices.Clone(b.versions)
	slices.Sort(vs)
	return b.wire + "|" + strings.Join(vs, ",")
}

// overlaps reports whether b and o can be active for the same version.
func (b *Binding) overlaps(o *Binding) bool {
	if len(b.versions) == 0 || len(o.versions) == 0 {
		return true
	}
	for _, v := range b.versions {
		if slices.Contains(o.versions, v) {
			return true
		}
	}
	return false
}

// key returns the storage key for version. A versioned binding read
// without a version falls back to the version-less key.
func (b *Binding) key(version string) string {
	if len(b.versions) == 0 || version == "" {
		return b.name
	}
	return b.name + "@" + version
}

// Get returns the value stored on obj, or the default.
// List bindings return a *Container.
func (b *Binding) Get(obj Object) any {
	return b.GetVersion(obj, obj.Store().Version())
}

// GetVersion returns the value stored on obj under version.
func (b *Binding) GetVersion(obj Object, version string) any {
	if v, ok := obj.Store().lookup(b.key(version)); ok {
		return v
	}
	if b.list {
		return b.defaultContainer()
	}
	return b.def
}

// Set stores v on obj under the object's version.
func (b *Binding) Set(obj Object, v any) {
	b.SetVersion(obj, obj.Store().Version(), v)
}

// SetVersion stores v on obj under version. List bindings accept a
// *Container or a slice.
func (b *Binding) SetVersion(obj Object, version string, v any) {
	if b.list {
		v = b.toContainer(v)
	}
	obj.Store().put(b.key(version), v)
}

// Append adds v to the list held by obj. The first append copies the
// default items into a container owned by obj.
func (b *Binding) Append(obj Object, v any) {
	b.Container(obj).Append(v)
}

// Container returns the list held by obj, materializing it on obj from the
// default when absent. It panics on non-list bindings.
func (b *Binding) Container(obj Object) *Container {
	if !b.list {
		panic(fmt.Errorf("%w: %s is not a list", ErrInvalidBinding, b.wire))
	}

	key := b.key(obj.Store().Version())
	if v, ok := obj.Store().lookup(key); ok {
		if c, ok := v.(*Container); ok {
			return c
		}
	}

	c := b.defaultContainer()
	obj.Store().put(key, c)
	return c
}

// IsSet reports whether obj holds its own value for the binding.
func (b *Binding) IsSet(obj Object) bool {
	_, ok := obj.Store().lookup(b.key(obj.Store().Version()))
	return ok
}

func (b *Binding) defaultContainer() *Container {
	return b.toContainer(b.def)
}

func (b *Binding) toContainer(v any) *Container {
	switch t := v.(type) {
	case *Container:
		return t
	case nil:
		return NewContainer(b.wire)
	case []any:
		return NewContainer(b.wire, t...)
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		panic(fmt.Errorf("%w: %s: cannot store %T in a list", ErrInvalidValue, b.wire, v))
	}
	c := NewContainer(b.wire)
	for i := range rv.Len() {
		c.Append(rv.Index(i).Interface())
	}
	return c
}

// Format returns the wire text of v.
func (b *Binding) Format(v any) string {
	return b.codec.Format(v)
}

// Parse converts wire text to a value.
func (b *Binding) Parse(s string) (any, error) {
	v, err := b.codec.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.wire, err)
	}
	return v, nil
}

// String returns a short description for diagnostics.
func (b *Binding) String() string {
	s := b.cap.String() + " " + b.wire
	if b.cap == CapElement {
		s += " (" + b.kind.String()
		if b.list {
			s += " list"
		}
		s += ")"
	}
	if len(b.versions) > 0 {
		s += " [" + strings.Join(b.versions, ",") + "]"
	}
	return s
}

// Value returns the value of b on obj as T, or the zero T when the value
// is absent or of another type.
func Value[T any](obj Object, b *Binding) T {
	v, _ := b.Get(obj).(T)
	return v
}
