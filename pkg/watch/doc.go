// Package watch delivers track invalidations to listeners.
//
// A Registry is installed on a store as its observer:
//
//	reg := watch.New()
//	store := track.NewStore(state, track.WithObserver(reg))
//
// Listeners subscribe to a path. Because the store reports every level from
// a mutated edge up to the root, subscribing to an ancestor path is enough
// to hear about any change below it:
//
//	w := reg.Watch(todos.Path())
//	defer w.Close()
//	for range w.C() {
//	    render(w.Last())
//	}
//
// # Batching
//
// Batch defers listener delivery until the outermost batch returns, then
// notifies each listener once:
//
//	reg.Batch(func() {
//	    todos.Insert(1, a)
//	    todos.Insert(2, b)
//	}) // one MarkDirty per listener
//
// The store itself still reports synchronously; only the fan out to
// listeners is deferred.
//
// # Thread Safety
//
// A Registry may be used from multiple goroutines. Listeners run on the
// goroutine that mutated the store, without registry locks held.
package watch
