package property

import (
	"maps"
	"slices"
)

// Bag is an ordered set of named field values.
type Bag struct {
	names  []string
	values map[string]any
}

// NewBag creates an empty bag.
func NewBag() *Bag {
	return &Bag{values: make(map[string]any)}
}

// AddField sets a field, appending it to the order when new.
func (b *Bag) AddField(name string, value any) *Bag {
	if _, ok := b.values[name]; !ok {
		b.names = append(b.names, name)
	}
	b.values[name] = value
	return b
}

// SetFields replaces all fields. Map iteration order is not stable, so the
// fields are ordered by name.
func (b *Bag) SetFields(fields map[string]any) *Bag {
	b.names = slices.Sorted(maps.Keys(fields))
	b.values = maps.Clone(fields)
	if b.values == nil {
		b.values = make(map[string]any)
	}
	return b
}

// Fields returns a copy of the field values.
func (b *Bag) Fields() map[string]any {
	return maps.Clone(b.values)
}

// Names returns field names in insertion order.
func (b *Bag) Names() []string {
	return slices.Clone(b.names)
}

// Value returns a field value and whether the field exists.
func (b *Bag) Value(name string) (any, bool) {
	v, ok := b.values[name]
	return v, ok
}

func (b *Bag) Len() int { return len(b.names) }
