package watch

import (
	"sync/atomic"

	"github.com/vango-dev/xbow/pkg/track"
)

// Listener is anything that can be notified when a watched path changes.
type Listener interface {
	// MarkDirty notifies the listener that the watched path changed.
	MarkDirty()

	// ID returns a unique identifier for this listener.
	// Used for deduplication during batch processing.
	ID() uint64
}

// detailListener is implemented by listeners that also want the
// invalidation itself. detail is called immediately, even inside a batch.
type detailListener interface {
	Listener
	detail(inv track.Invalidation)
}

var idCounter uint64

// NextID returns a process-unique listener ID.
func NextID() uint64 {
	return atomic.AddUint64(&idCounter, 1)
}

// Func adapts fn to a Listener with a fresh ID.
func Func(fn func()) Listener {
	return &funcListener{id: NextID(), fn: fn}
}

type funcListener struct {
	id uint64
	fn func()
}

func (f *funcListener) MarkDirty() { f.fn() }
func (f *funcListener) ID() uint64 { return f.id }
