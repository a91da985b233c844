// Package resource provides append-only, index-addressed storage for engine resources and the typed
// handles used to refer to them.
package resource

import "fmt"

// Handle is an opaque, typed reference to a value stored in a Pool[T]. Handles of different resource
// kinds are distinct Go types and cannot be mixed up. A handle stays valid for the lifetime of the pool
// that issued it, since pools never remove entries.
type Handle[T any] struct {
	index uint32
}

// HandleAt builds a handle for the given index. It exists for serialization and tests; engine code
// should only use handles returned by Pool.Add.
//
// Parameters:
//   - index: the slot index inside the pool
//
// Returns:
//   - Handle[T]: a handle referring to that slot
func HandleAt[T any](index int) Handle[T] {
	return Handle[T]{index: uint32(index)}
}

// Index returns the slot index the handle refers to.
//
// Returns:
//   - int: the slot index
func (h Handle[T]) Index() int {
	return int(h.index)
}

// String implements fmt.Stringer.
func (h Handle[T]) String() string {
	var zero T
	return fmt.Sprintf("%T#%d", zero, h.index)
}
