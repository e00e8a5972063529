package track

// MapNode tracks a map[K]V. Child handles are keyed by map key.
type MapNode[K comparable, V any, X any, N nodePtr[X]] struct {
	Tracked[map[K]V]
	child Factory[V, N]
	items *handleCache[K, X, N]
}

// NewMap returns the node for a map edge; child builds value nodes.
func NewMap[K comparable, V any, X any, N nodePtr[X]](e *Edge[map[K]V], child Factory[V, N]) *MapNode[K, V, X, N] {
	m := &MapNode[K, V, X, N]{
		Tracked: Track(e),
		child:   child,
		items:   newHandleCache[K, X, N](KindMap, e.link),
	}
	m.replaced = m.items.invalidateAll
	return m
}

// MapOf returns a Factory for maps whose values are built by child.
func MapOf[K comparable, V any, X any, N nodePtr[X]](child Factory[V, N]) Factory[map[K]V, *MapNode[K, V, X, N]] {
	return func(e *Edge[map[K]V]) *MapNode[K, V, X, N] {
		return NewMap(e, child)
	}
}

// HandleAt returns the node for key k. The key does not need to exist.
func (m *MapNode[K, V, X, N]) HandleAt(k K) N {
	return m.items.get(k, func() N {
		return m.child(Child(m.edge, Key[K, V](k)))
	})
}

// Insert stores v under k and returns the previous value, if any. When a
// value was replaced, the live handle for k is invalidated down after the
// upward notification. If the map itself is absent nothing is written.
func (m *MapNode[K, V, X, N]) Insert(k K, v V) (V, bool, error) {
	var prev V
	replaced := false
	ok, err := m.edge.BorrowMut(func(items *map[K]V) {
		if *items == nil {
			*items = make(map[K]V)
		}
		prev, replaced = (*items)[k]
		(*items)[k] = v
	})
	if err != nil || !ok {
		return prev, false, err
	}
	m.edge.InvalidateInsideUp()
	if replaced {
		m.items.invalidate(k)
	}
	return prev, replaced, nil
}

// Remove deletes k and returns the removed value. Removing a missing key
// returns false and notifies nobody.
func (m *MapNode[K, V, X, N]) Remove(k K) (V, bool, error) {
	var removed V
	found := false
	_, err := m.edge.BorrowMut(func(items *map[K]V) {
		removed, found = (*items)[k]
		if found {
			delete(*items, k)
		}
	})
	if err != nil || !found {
		return removed, false, err
	}
	m.edge.InvalidateInsideUp()
	m.items.invalidate(k)
	return removed, true, nil
}

// Lookup returns a copy of the value under k.
func (m *MapNode[K, V, X, N]) Lookup(k K) (V, bool, error) {
	var out V
	found := false
	_, err := m.edge.Borrow(func(items *map[K]V) {
		out, found = (*items)[k]
	})
	return out, found, err
}

// Len returns the number of entries.
func (m *MapNode[K, V, X, N]) Len() (int, bool, error) {
	n := 0
	ok, err := m.edge.Borrow(func(items *map[K]V) {
		n = len(*items)
	})
	return n, ok, err
}

// Keys returns the keys in unspecified order.
func (m *MapNode[K, V, X, N]) Keys() ([]K, bool, error) {
	var keys []K
	ok, err := m.edge.Borrow(func(items *map[K]V) {
		keys = make([]K, 0, len(*items))
		for k := range *items {
			keys = append(keys, k)
		}
	})
	return keys, ok, err
}

// InvalidateOutsideDown implements Node.
func (m *MapNode[K, V, X, N]) InvalidateOutsideDown() {
	m.InvalidateHere()
	m.items.invalidateAll()
}
