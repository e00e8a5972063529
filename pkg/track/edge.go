package track

import (
	"context"
	"log/slog"
)

// core is the per-store state shared by every link of the chain.
type core struct {
	logger    *slog.Logger
	observers []Observer
	monitor   Monitor
}

func (c *core) notify(inv Invalidation) {
	for _, o := range c.observers {
		o.Invalidated(inv)
	}
}

func (c *core) debugEnabled() bool {
	return c.logger.Enabled(context.Background(), slog.LevelDebug)
}

// link is the type-erased part of an edge: its place in the chain, its
// access cell and its version.
type link struct {
	parent  *link
	core    *core
	path    Path
	cell    cell
	version uint64
}

func (l *link) child(s Segment) *link {
	return &link{
		parent: l,
		core:   l.core,
		path:   l.path.child(s),
	}
}

func (l *link) conflict(m Mode) error {
	err := &ConflictError{
		Path:      l.path,
		Requested: m,
		State:     l.cell.state(),
	}
	l.core.logger.Error("borrow conflict",
		"path", l.path.String(),
		"requested", m.String(),
		"state", err.State)
	l.core.monitor.BorrowConflict(err)
	return err
}

// invalidateUp bumps every version from l to the root, then notifies each
// level in the same order. All versions are updated before the first
// observer runs so that observers see a consistent chain.
func (l *link) invalidateUp() {
	levels := 0
	for cur := l; cur != nil; cur = cur.parent {
		cur.version++
		levels++
	}
	for cur := l; cur != nil; cur = cur.parent {
		l.core.notify(Invalidation{
			Path:      cur.path,
			Version:   cur.version,
			Direction: Up,
			Origin:    l.path,
		})
	}
	l.core.monitor.Invalidated(Up, levels)
}

// invalidateHere reports a Down invalidation for l alone.
func (l *link) invalidateHere() {
	l.version++
	l.core.notify(Invalidation{
		Path:      l.path,
		Version:   l.version,
		Direction: Down,
		Origin:    l.path,
	})
	l.core.monitor.Invalidated(Down, 1)
}

// Edge is the path from the store root to a T. It holds its ancestor chain
// and a mapper, never the data itself.
type Edge[T any] struct {
	link  *link
	reach func(m Mode, visit func(*T)) (bool, error)
}

// Child returns the edge reached from parent through m.
func Child[P, T any](parent *Edge[P], m Mapper[P, T]) *Edge[T] {
	return &Edge[T]{
		link: parent.link.child(m.Segment()),
		reach: func(mode Mode, visit func(*T)) (bool, error) {
			found := false
			_, err := parent.walk(mode, func(p *P) {
				if mode == Exclusive {
					found = m.MapMut(p, visit)
				} else {
					found = m.Map(p, visit)
				}
			})
			if err != nil {
				return false, err
			}
			return found, nil
		},
	}
}

// walk acquires this level in mode m, then resolves the parent chain.
// Access is released on every exit path, panics included.
func (e *Edge[T]) walk(m Mode, visit func(*T)) (bool, error) {
	release, ok := e.link.cell.acquire(m)
	if !ok {
		return false, e.link.conflict(m)
	}
	defer release()
	return e.reach(m, visit)
}

// Borrow calls fn with shared access to the value. It returns false if
// any level of the path no longer exists. fn must not retain or modify
// the pointer.
func (e *Edge[T]) Borrow(fn func(*T)) (bool, error) {
	return e.walk(Shared, fn)
}

// BorrowMut calls fn with exclusive access to the value. It returns a
// *ConflictError if any level is already borrowed. BorrowMut does not
// notify observers; see InvalidateInsideUp.
func (e *Edge[T]) BorrowMut(fn func(*T)) (bool, error) {
	return e.walk(Exclusive, fn)
}

// InvalidateInsideUp reports a change at this edge to every observer of
// this edge and of its ancestors. It returns after all observers ran.
func (e *Edge[T]) InvalidateInsideUp() {
	e.link.invalidateUp()
}

// Path returns the address of this edge.
func (e *Edge[T]) Path() Path {
	return e.link.path
}

// Version returns the number of invalidations that reached this edge.
func (e *Edge[T]) Version() uint64 {
	return e.link.version
}

// Idle reports whether no borrow is outstanding on this edge.
func (e *Edge[T]) Idle() bool {
	return e.link.cell.free()
}
