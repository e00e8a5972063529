package track

// OptionNode tracks an optional value stored as *E. Its only child is the
// Some handle.
type OptionNode[E any, X any, N nodePtr[X]] struct {
	Tracked[*E]
	child Factory[E, N]
	some  *handleCache[struct{}, X, N]
}

// NewOption returns the node for a pointer edge.
func NewOption[E any, X any, N nodePtr[X]](e *Edge[*E], child Factory[E, N]) *OptionNode[E, X, N] {
	o := &OptionNode[E, X, N]{
		Tracked: Track(e),
		child:   child,
		some:    newHandleCache[struct{}, X, N](KindOption, e.link),
	}
	o.replaced = o.some.invalidateAll
	return o
}

// OptionOf returns a Factory for optional values built by child.
func OptionOf[E any, X any, N nodePtr[X]](child Factory[E, N]) Factory[*E, *OptionNode[E, X, N]] {
	return func(e *Edge[*E]) *OptionNode[E, X, N] {
		return NewOption(e, child)
	}
}

// Some returns the handle for the payload. It reports absence while the
// option is nil.
func (o *OptionNode[E, X, N]) Some() N {
	return o.some.get(struct{}{}, func() N {
		return o.child(Child(o.edge, Some[E]()))
	})
}

// IsSome reports whether a payload is present. The second result is false
// when the option itself is absent.
func (o *OptionNode[E, X, N]) IsSome() (bool, bool, error) {
	some := false
	ok, err := o.edge.Borrow(func(p **E) {
		some = *p != nil
	})
	return some, ok, err
}

// Replace stores v and returns the previous payload, if any. A previous
// payload's live handle is invalidated down.
func (o *OptionNode[E, X, N]) Replace(v E) (E, bool, error) {
	var prev E
	had := false
	ok, err := o.edge.BorrowMut(func(p **E) {
		if *p != nil {
			prev, had = **p, true
		}
		*p = &v
	})
	if err != nil || !ok {
		return prev, false, err
	}
	o.edge.InvalidateInsideUp()
	if had {
		o.some.invalidate(struct{}{})
	}
	return prev, had, nil
}

// Take clears the option and returns the payload it held.
func (o *OptionNode[E, X, N]) Take() (E, bool, error) {
	var prev E
	had := false
	_, err := o.edge.BorrowMut(func(p **E) {
		if *p != nil {
			prev, had = **p, true
			*p = nil
		}
	})
	if err != nil || !had {
		return prev, false, err
	}
	o.edge.InvalidateInsideUp()
	o.some.invalidate(struct{}{})
	return prev, true, nil
}

// InvalidateOutsideDown implements Node.
func (o *OptionNode[E, X, N]) InvalidateOutsideDown() {
	o.InvalidateHere()
	o.some.invalidateAll()
}
