package track

import "slices"

// SliceNode tracks a []E. Child handles are keyed by position.
//
// Handles are not re-keyed when elements shift. After RemoveAt(i) the
// handle cached for position i is invalidated, but a handle for k > i is
// left alone and from then on resolves to whatever element now sits at
// position k. Containers whose items need a stable identity across
// structural edits should be keyed by an identifier (MapNode) instead.
type SliceNode[E any, X any, N nodePtr[X]] struct {
	Tracked[[]E]
	child Factory[E, N]
	items *handleCache[int, X, N]
}

// NewSlice returns the node for a slice edge; child builds element nodes.
func NewSlice[E any, X any, N nodePtr[X]](e *Edge[[]E], child Factory[E, N]) *SliceNode[E, X, N] {
	s := &SliceNode[E, X, N]{
		Tracked: Track(e),
		child:   child,
		items:   newHandleCache[int, X, N](KindSlice, e.link),
	}
	s.replaced = s.items.invalidateAll
	return s
}

// SliceOf returns a Factory for slices whose elements are built by child.
func SliceOf[E any, X any, N nodePtr[X]](child Factory[E, N]) Factory[[]E, *SliceNode[E, X, N]] {
	return func(e *Edge[[]E]) *SliceNode[E, X, N] {
		return NewSlice(e, child)
	}
}

// HandleAt returns the node for position i. The handle may be created for
// a position that does not exist yet; it reports absence until it does.
func (s *SliceNode[E, X, N]) HandleAt(i int) N {
	return s.items.get(i, func() N {
		return s.child(Child(s.edge, Index[E](i)))
	})
}

// Len returns the number of elements.
func (s *SliceNode[E, X, N]) Len() (int, bool, error) {
	n := 0
	ok, err := s.edge.Borrow(func(v *[]E) {
		n = len(*v)
	})
	return n, ok, err
}

// Push appends v.
func (s *SliceNode[E, X, N]) Push(v E) (bool, error) {
	ok, err := s.edge.BorrowMut(func(items *[]E) {
		*items = append(*items, v)
	})
	if err != nil || !ok {
		return false, err
	}
	s.edge.InvalidateInsideUp()
	return true, nil
}

// InsertAt inserts v before position i; 0 <= i <= len. It returns false
// when i is out of range or the slice itself is absent.
func (s *SliceNode[E, X, N]) InsertAt(i int, v E) (bool, error) {
	inserted := false
	_, err := s.edge.BorrowMut(func(items *[]E) {
		if i < 0 || i > len(*items) {
			return
		}
		*items = slices.Insert(*items, i, v)
		inserted = true
	})
	if err != nil || !inserted {
		return false, err
	}
	s.edge.InvalidateInsideUp()
	return true, nil
}

// RemoveAt removes and returns the element at i. The live handle cached
// for position i, if any, is invalidated after observers of the slice have
// been notified.
func (s *SliceNode[E, X, N]) RemoveAt(i int) (E, bool, error) {
	var removed E
	found := false
	_, err := s.edge.BorrowMut(func(items *[]E) {
		if i < 0 || i >= len(*items) {
			return
		}
		removed = (*items)[i]
		*items = slices.Delete(*items, i, i+1)
		found = true
	})
	if err != nil || !found {
		return removed, false, err
	}
	s.edge.InvalidateInsideUp()
	s.items.invalidate(i)
	return removed, true, nil
}

// Splice removes up to deleteCount elements starting at start, inserts
// items in their place and returns the removed elements. start must be in
// [0, len]; deleteCount is clamped to the elements available. A splice
// that neither removes nor inserts reports success without notifying.
//
// Handles cached for the removed positions are invalidated; handles above
// them are not re-keyed.
func (s *SliceNode[E, X, N]) Splice(start, deleteCount int, items ...E) ([]E, bool, error) {
	var removed []E
	valid := false
	_, err := s.edge.BorrowMut(func(cur *[]E) {
		if start < 0 || start > len(*cur) {
			return
		}
		valid = true
		end := start + max(deleteCount, 0)
		if end > len(*cur) {
			end = len(*cur)
		}
		if end == start && len(items) == 0 {
			return
		}
		removed = slices.Clone((*cur)[start:end])
		*cur = slices.Replace(*cur, start, end, items...)
	})
	if err != nil || !valid {
		return nil, false, err
	}
	if len(removed) == 0 && len(items) == 0 {
		return nil, true, nil
	}
	s.edge.InvalidateInsideUp()
	for i := start; i < start+len(removed); i++ {
		s.items.invalidate(i)
	}
	return removed, true, nil
}

// InvalidateOutsideDown implements Node.
func (s *SliceNode[E, X, N]) InvalidateOutsideDown() {
	s.InvalidateHere()
	s.items.invalidateAll()
}
