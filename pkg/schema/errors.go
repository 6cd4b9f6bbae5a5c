package schema

import "errors"

// Schema errors.
var (
	// ErrInvalidBinding reports a malformed binding or type declaration.
	// Declarations happen at package initialization, so constructors panic
	// with an error wrapping this value.
	ErrInvalidBinding = errors.New("invalid binding declaration")

	// ErrFormatNotSupported is returned when a representation is requested
	// that the type descriptor does not register.
	ErrFormatNotSupported = errors.New("format not supported")

	// ErrInvalidValue reports a value that cannot be converted to or from
	// its wire text.
	ErrInvalidValue = errors.New("invalid value")
)
