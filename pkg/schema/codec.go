package schema

import (
	"fmt"
	"strconv"
	"strings"
)

// Codec converts a bound value to and from its wire text.
type Codec interface {
	Format(v any) string
	Parse(s string) (any, error)
}

// Built-in codecs.
var (
	StringCodec Codec = stringCodec{}
	IntCodec    Codec = intCodec{}
	BoolCodec   Codec = boolCodec{}
)

type stringCodec struct{}

func (stringCodec) Format(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprint(v)
}

func (stringCodec) Parse(s string) (any, error) {
	return s, nil
}

type intCodec struct{}

func (intCodec) Format(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

func (intCodec) Parse(s string) (any, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not an integer", ErrInvalidValue, s)
	}
	return n, nil
}

// boolCodec follows the service's lowercase spelling.
type boolCodec struct{}

func (boolCodec) Format(v any) string {
	b, ok := v.(bool)
	if !ok {
		return ""
	}
	return strconv.FormatBool(b)
}

func (boolCodec) Parse(s string) (any, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "x":
		return true, nil
	case "false", "":
		return false, nil
	}
	return nil, fmt.Errorf("%w: %q is not a boolean", ErrInvalidValue, s)
}
