package watch

import (
	"sync"

	"github.com/vango-dev/xbow/pkg/track"
)

// Watcher turns invalidations of one path into a coalescing channel
// signal, for consumers that live on another goroutine.
type Watcher struct {
	id    uint64
	ch    chan struct{}
	close func()

	mu      sync.Mutex
	last    track.Invalidation
	changes uint64
}

// Watch returns a watcher for path p. Close it when done.
func (r *Registry) Watch(p track.Path) *Watcher {
	w := &Watcher{
		id: NextID(),
		ch: make(chan struct{}, 1),
	}
	w.close = r.Subscribe(p, w)
	return w
}

// C returns a channel that receives a value after one or more changes.
// Signals coalesce: several changes between two receives yield one value.
func (w *Watcher) C() <-chan struct{} {
	return w.ch
}

// Last returns the most recent invalidation seen.
func (w *Watcher) Last() track.Invalidation {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.last
}

// Changes returns the number of invalidations seen.
func (w *Watcher) Changes() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.changes
}

// Close unsubscribes the watcher. The channel is not closed, so a pending
// signal may still be received.
func (w *Watcher) Close() {
	w.close()
}

// ID implements Listener.
func (w *Watcher) ID() uint64 {
	return w.id
}

// MarkDirty implements Listener.
func (w *Watcher) MarkDirty() {
	select {
	case w.ch <- struct{}{}:
	default:
	}
}

func (w *Watcher) detail(inv track.Invalidation) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.last = inv
	w.changes++
}
