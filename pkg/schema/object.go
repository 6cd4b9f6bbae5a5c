package schema

// Object is an instance of a declared Type.
type Object interface {
	// Schema returns the runtime type whose bindings describe the object.
	Schema() *Type

	// Store returns the per-instance values.
	Store() *Store
}

// Base implements Object and is embedded by every bound struct.
type Base struct {
	typ   *Type
	store *Store
}

// NewBase returns a Base of type t whose versioned bindings follow version.
func NewBase(t *Type, version string) Base {
	return Base{
		typ:   t,
		store: NewStore(version),
	}
}

// Schema implements Object.
func (b *Base) Schema() *Type {
	return b.typ
}

// Store implements Object.
func (b *Base) Store() *Store {
	if b.store == nil {
		b.store = NewStore("")
	}
	return b.store
}

// VersionOf returns the version obj was created with.
func VersionOf(obj Object) string {
	if obj == nil {
		return ""
	}
	return obj.Store().Version()
}
