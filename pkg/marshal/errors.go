package marshal

import "errors"

var (
	// ErrStructure reports a document whose tags do not nest properly.
	ErrStructure = errors.New("malformed document structure")

	// ErrNoDescriptor is returned when serializing an object whose type has
	// no root element.
	ErrNoDescriptor = errors.New("type has no descriptor")
)
