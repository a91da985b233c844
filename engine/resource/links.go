package resource

// Links is a one-directional association from handles of kind A to handles of kind B.
// A pair of Links (A→B and B→A) models a 1:1 attachment such as scene node ↔ mesh.
// A handle can be linked once; re-adding a link for a handle that already has one
// leaves the existing link in place.
type Links[A, B any] struct {
	m map[Handle[A]]Handle[B]
}

// NewLinks creates an empty link table.
//
// Returns:
//   - *Links[A, B]: an empty link table
func NewLinks[A, B any]() *Links[A, B] {
	return &Links[A, B]{m: make(map[Handle[A]]Handle[B])}
}

// Add links from to to. If from is already linked nothing changes.
//
// Parameters:
//   - from: the source handle
//   - to: the target handle
//
// Returns:
//   - bool: true if the link was created, false if from was already linked
func (l *Links[A, B]) Add(from Handle[A], to Handle[B]) bool {
	if _, ok := l.m[from]; ok {
		return false
	}
	l.m[from] = to
	return true
}

// Has reports whether from has a link.
func (l *Links[A, B]) Has(from Handle[A]) bool {
	_, ok := l.m[from]
	return ok
}

// Borrow returns the handle linked to from.
//
// Parameters:
//   - from: the source handle
//
// Returns:
//   - Handle[B]: the linked handle
//   - bool: false if from has no link
func (l *Links[A, B]) Borrow(from Handle[A]) (Handle[B], bool) {
	to, ok := l.m[from]
	return to, ok
}

// Len returns the number of links in the table.
func (l *Links[A, B]) Len() int {
	return len(l.m)
}
