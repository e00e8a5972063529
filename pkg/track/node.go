package track

// Node is a tracked proxy for one point of the tree.
//
// InvalidateOutsideDown is called on the live handle of an entry that was
// removed or replaced. It reports a Down invalidation for the node's own
// path and forwards to every live node below it. It never changes data:
// later borrows report absence on their own because mappers re-evaluate.
type Node interface {
	InvalidateOutsideDown()
}

// Factory builds the node for an edge. A factory is how a type declares
// that it can be tracked and which node kind represents it.
type Factory[T any, N Node] func(*Edge[T]) N

// nodePtr constrains N to a pointer to X implementing Node, so caches can
// hold weak.Pointer[X] while handing out N.
type nodePtr[X any] interface {
	*X
	Node
}

// Tracked is the part every node shares: read and write access through its
// incoming edge. Struct nodes embed it, built with Track.
type Tracked[T any] struct {
	edge *Edge[T]

	// replaced runs after a whole-value write so containers can invalidate
	// their cached children.
	replaced func()
}

// Track returns the Tracked base for e.
func Track[T any](e *Edge[T]) Tracked[T] {
	return Tracked[T]{edge: e}
}

// OnReplace registers fn to run after every successful Write or Set on
// the node. Struct nodes pass the fan-out to their fields so a whole-value
// write invalidates the field handles down, as containers do for their
// children.
func (t *Tracked[T]) OnReplace(fn func()) {
	t.replaced = fn
}

// Edge returns the incoming edge.
func (t *Tracked[T]) Edge() *Edge[T] {
	return t.edge
}

// Path returns the address of the node.
func (t *Tracked[T]) Path() Path {
	return t.edge.Path()
}

// Version returns the number of invalidations that reached the node.
func (t *Tracked[T]) Version() uint64 {
	return t.edge.Version()
}

// Read calls fn with shared access to the value. It returns false when
// the value no longer exists.
func (t *Tracked[T]) Read(fn func(*T)) (bool, error) {
	return t.edge.Borrow(fn)
}

// Write calls fn with exclusive access to the value and, if the value
// exists, notifies observers once access has been released.
func (t *Tracked[T]) Write(fn func(*T)) (bool, error) {
	ok, err := t.edge.BorrowMut(fn)
	if err != nil || !ok {
		return false, err
	}
	t.edge.InvalidateInsideUp()
	if t.replaced != nil {
		t.replaced()
	}
	return true, nil
}

// Get returns a copy of the value.
func (t *Tracked[T]) Get() (T, bool, error) {
	var out T
	ok, err := t.edge.Borrow(func(v *T) {
		out = *v
	})
	return out, ok, err
}

// Set replaces the value.
func (t *Tracked[T]) Set(v T) (bool, error) {
	return t.Write(func(p *T) {
		*p = v
	})
}

// Present reports whether the value currently exists.
func (t *Tracked[T]) Present() (bool, error) {
	return t.edge.Borrow(func(*T) {})
}

// InvalidateHere reports a Down invalidation for this node only. Struct
// nodes call it from InvalidateOutsideDown before forwarding to fields.
func (t *Tracked[T]) InvalidateHere() {
	t.edge.link.invalidateHere()
}

// Leaf is a node without children.
type Leaf[T any] struct {
	Tracked[T]
}

// NewLeaf is the Factory for scalar values.
func NewLeaf[T any](e *Edge[T]) *Leaf[T] {
	return &Leaf[T]{Tracked: Track(e)}
}

// InvalidateOutsideDown implements Node.
func (l *Leaf[T]) InvalidateOutsideDown() {
	l.InvalidateHere()
}

// Open builds the root node of a store.
func Open[T any, N Node](s *Store[T], f Factory[T, N]) N {
	return f(s.Root())
}
