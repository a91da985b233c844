package resource

// Pool is an append-only arena holding values of a single resource kind.
// Values are addressed by the Handle returned from Add. There is no removal, so
// handles never dangle; a lookup with an index that was never issued simply
// reports that nothing was found.
//
// Pointers returned by Borrow point into the pool's backing storage and are
// only valid until the next call to Add.
type Pool[T any] struct {
	items []T
}

// NewPool creates an empty Pool with the given initial capacity.
//
// Parameters:
//   - capacity: the number of values to reserve space for
//
// Returns:
//   - *Pool[T]: an empty pool
func NewPool[T any](capacity int) *Pool[T] {
	return &Pool[T]{items: make([]T, 0, capacity)}
}

// Add appends a value and returns its handle. O(1) amortized, never fails.
//
// Parameters:
//   - v: the value to store
//
// Returns:
//   - Handle[T]: the handle addressing the stored value
func (p *Pool[T]) Add(v T) Handle[T] {
	p.items = append(p.items, v)
	return Handle[T]{index: uint32(len(p.items) - 1)}
}

// Borrow resolves a handle to a pointer into the pool.
//
// Parameters:
//   - h: the handle to resolve
//
// Returns:
//   - *T: pointer to the stored value, or nil
//   - bool: false if the handle does not address a value in this pool
func (p *Pool[T]) Borrow(h Handle[T]) (*T, bool) {
	if p == nil || int(h.index) >= len(p.items) {
		return nil, false
	}
	return &p.items[h.index], true
}

// Get returns a copy of the value addressed by h.
//
// Parameters:
//   - h: the handle to resolve
//
// Returns:
//   - T: a copy of the stored value, or the zero value
//   - bool: false if the handle does not address a value in this pool
func (p *Pool[T]) Get(h Handle[T]) (T, bool) {
	v, ok := p.Borrow(h)
	if !ok {
		var zero T
		return zero, false
	}
	return *v, true
}

// Len returns the number of values stored.
func (p *Pool[T]) Len() int {
	if p == nil {
		return 0
	}
	return len(p.items)
}

// Each calls fn for every stored value in insertion order. Iteration stops early
// when fn returns false. fn must not call Add on the same pool.
//
// Parameters:
//   - fn: callback receiving each handle and a pointer to its value
func (p *Pool[T]) Each(fn func(h Handle[T], v *T) bool) {
	if p == nil {
		return
	}
	for i := range p.items {
		if !fn(Handle[T]{index: uint32(i)}, &p.items[i]) {
			return
		}
	}
}
