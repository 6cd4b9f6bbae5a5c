package schema

import (
	"maps"
	"slices"
)

// Store holds the field values of one object instance. The version is
// fixed at construction and selects which versioned bindings are active.
type Store struct {
	version string
	values  map[string]any
}

// NewStore creates an empty store for version. An empty version selects
// unversioned storage.
func NewStore(version string) *Store {
	return &Store{
		version: version,
		values:  make(map[string]any),
	}
}

// Version returns the active version.
func (s *Store) Version() string {
	return s.version
}

// Len returns the number of stored values.
func (s *Store) Len() int {
	return len(s.values)
}

// Keys returns the storage keys in sorted order.
func (s *Store) Keys() []string {
	return slices.Sorted(maps.Keys(s.values))
}

func (s *Store) lookup(key string) (any, bool) {
	v, ok := s.values[key]
	return v, ok
}

func (s *Store) put(key string, v any) {
	s.values[key] = v
}
