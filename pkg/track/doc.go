// Package track provides fine-grained change tracking over nested state.
//
// A Store owns a value tree. Any point inside that tree (a struct field, a
// slice index, a map key, an optional payload or a sum-type variant) can be
// addressed through a lazily created handle. Handles are identity-stable:
// asking a container twice for the same key returns the same node while
// anyone still holds it.
//
// # Core Types
//
// Edge[T] describes how to reach a T from the root: a parent edge plus a
// Mapper. Edges never own data. Every access walks the full chain again, so
// a handle whose entry has been removed simply reports absence.
//
//	store := track.NewStore(map[string]int{"a": 1})
//	counts := track.Open(store, track.MapOf[string](track.NewLeaf[int]))
//	a := counts.HandleAt("a")
//	v, ok, err := a.Get()  // 1, true, nil
//	counts.Remove("a")
//	v, ok, err = a.Get()   // 0, false, nil
//
// Nodes come in two flavours. Leaf[T] only reads and writes. Containers
// (SliceNode, MapNode, OptionNode, SumNode) also hand out child handles and
// expose structural mutators that notify observers and invalidate the
// handles of removed entries.
//
// # Access Rules
//
// Access is checked at runtime. Each level of the tree carries a cell that
// is free, shared by N readers, or held exclusively. Read walks the chain in
// shared mode, Write in exclusive mode. Requesting exclusive access while a
// borrow is outstanding returns a *ConflictError wrapping ErrBorrowConflict:
//
//	root.Read(func(s *State) {
//	    _, err := root.Set(State{}) // err: track: borrow conflict
//	})
//
// The pointer handed to a Read or Write callback is only valid inside the
// callback.
//
// # Notifications
//
// A successful mutation calls Observer.Invalidated once for every level from
// the mutated edge up to the root, before the mutating call returns and after
// all access has been released. Observers may read the store from inside the
// callback. Removing an entry additionally notifies the live handles below
// it (direction Down).
//
// # Thread Safety
//
// None of the types in this package are safe for concurrent use. Run a
// store on a single goroutine; package dispatch provides such a loop.
package track
