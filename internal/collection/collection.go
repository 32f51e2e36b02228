package collection

import "fmt"

// Entity is anything with a stable, unique identity.
type Entity interface {
	EntityID() string
}

// Collection holds an ordered sequence of uniquely-identified entities.
// Position is meaningful and mutable; ids are unique for the lifetime of the
// collection. It is the single source of truth for order within one scope
// (one task list, one category list, one timeline). Not safe for concurrent
// use; callers serialize access.
type Collection[T Entity] struct {
	items []T
	index map[string]int // id -> position
}

func New[T Entity]() *Collection[T] {
	return &Collection[T]{
		index: make(map[string]int),
	}
}

// FromSlice builds a collection from entities in order.
// Fails on the first duplicate id.
func FromSlice[T Entity](items []T) (*Collection[T], error) {
	c := New[T]()
	for _, item := range items {
		if err := c.Insert(item); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Collection[T]) Len() int {
	return len(c.items)
}

// Insert appends an entity. Fails with ErrDuplicateID if the id is present.
func (c *Collection[T]) Insert(item T) error {
	return c.InsertAt(item, len(c.items))
}

// InsertAt inserts an entity at the given position, shifting later elements.
func (c *Collection[T]) InsertAt(item T, at int) error {
	id := item.EntityID()
	if _, exists := c.index[id]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateID, id)
	}
	if at < 0 || at > len(c.items) {
		return fmt.Errorf("%w: at=%d, length=%d", ErrIndexOutOfRange, at, len(c.items))
	}

	c.items = append(c.items, item)
	copy(c.items[at+1:], c.items[at:])
	c.items[at] = item
	c.reindexFrom(at)
	return nil
}

// RemoveByID removes an entity. Absence is a no-op, not an error; the return
// value reports whether a removal occurred.
func (c *Collection[T]) RemoveByID(id string) bool {
	pos, exists := c.index[id]
	if !exists {
		return false
	}
	c.items = append(c.items[:pos], c.items[pos+1:]...)
	delete(c.index, id)
	c.reindexFrom(pos)
	return true
}

// IndexOf returns the entity's position, or -1 when absent.
func (c *Collection[T]) IndexOf(id string) int {
	pos, exists := c.index[id]
	if !exists {
		return -1
	}
	return pos
}

// Get returns the entity with the given id.
func (c *Collection[T]) Get(id string) (T, bool) {
	pos, exists := c.index[id]
	if !exists {
		var zero T
		return zero, false
	}
	return c.items[pos], true
}

// At returns the entity at the given position.
func (c *Collection[T]) At(pos int) (T, error) {
	if pos < 0 || pos >= len(c.items) {
		var zero T
		return zero, fmt.Errorf("%w: at=%d, length=%d", ErrIndexOutOfRange, pos, len(c.items))
	}
	return c.items[pos], nil
}

// Move relocates the element at from to to. The id set is unchanged; all
// other elements keep their relative order. Out-of-range indices are rejected
// before any state change.
func (c *Collection[T]) Move(from, to int) error {
	reordered, err := Reorder(c.items, from, to)
	if err != nil {
		return err
	}
	c.items = reordered
	c.reindexFrom(0)
	return nil
}

// Replace swaps the stored entity for an updated one with the same id,
// keeping its position.
func (c *Collection[T]) Replace(item T) error {
	id := item.EntityID()
	pos, exists := c.index[id]
	if !exists {
		return fmt.Errorf("%w: %q not present", ErrIndexOutOfRange, id)
	}
	c.items[pos] = item
	return nil
}

// Snapshot returns a copy of the sequence for read-only consumers.
func (c *Collection[T]) Snapshot() []T {
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// IDs returns the ids in positional order.
func (c *Collection[T]) IDs() []string {
	out := make([]string, len(c.items))
	for i, item := range c.items {
		out[i] = item.EntityID()
	}
	return out
}

// Contains reports whether an id is present.
func (c *Collection[T]) Contains(id string) bool {
	_, exists := c.index[id]
	return exists
}

// SetOrder replaces the sequence wholesale, used when adopting a reordered
// snapshot. The id set must match exactly.
func (c *Collection[T]) SetOrder(items []T) error {
	if len(items) != len(c.items) {
		return fmt.Errorf("%w: new order has %d items, collection has %d", ErrIndexOutOfRange, len(items), len(c.items))
	}
	seen := make(map[string]int, len(items))
	for i, item := range items {
		id := item.EntityID()
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateID, id)
		}
		if _, exists := c.index[id]; !exists {
			return fmt.Errorf("%w: %q not present", ErrIndexOutOfRange, id)
		}
		seen[id] = i
	}
	c.items = append(c.items[:0:0], items...)
	c.index = seen
	return nil
}

func (c *Collection[T]) reindexFrom(pos int) {
	for i := pos; i < len(c.items); i++ {
		c.index[c.items[i].EntityID()] = i
	}
}
