package schema

import (
	"iter"
	"slices"
)

// Container is an ordered sequence of same-tagged sibling elements.
type Container struct {
	itemTag string
	items   []any
}

// NewContainer creates a container holding a copy of items.
func NewContainer(itemTag string, items ...any) *Container {
	return &Container{
		itemTag: itemTag,
		items:   slices.Clone(items),
	}
}

// ItemTag returns the element name of every item.
func (c *Container) ItemTag() string {
	return c.itemTag
}

// Append adds v at the end.
func (c *Container) Append(v any) {
	c.items = append(c.items, v)
}

// Len returns the number of items.
func (c *Container) Len() int {
	if c == nil {
		return 0
	}
	return len(c.items)
}

// Index returns the item at position i.
func (c *Container) Index(i int) any {
	return c.items[i]
}

// All iterates over the items in order.
func (c *Container) All() iter.Seq2[int, any] {
	return func(yield func(int, any) bool) {
		if c == nil {
			return
		}
		for i, v := range c.items {
			if !yield(i, v) {
				return
			}
		}
	}
}

// Values returns a copy of the items.
func (c *Container) Values() []any {
	if c == nil {
		return nil
	}
	return slices.Clone(c.items)
}

// Items returns the items that are of type T, in order.
func Items[T any](c *Container) []T {
	var out []T
	for _, v := range c.All() {
		if t, ok := v.(T); ok {
			out = append(out, t)
		}
	}
	return out
}
