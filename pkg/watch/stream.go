package watch

import (
	"sync/atomic"

	"github.com/vango-dev/xbow/pkg/track"
)

// Stream delivers every invalidation of one path, in order, on a buffered
// channel. When the buffer is full the invalidation is dropped and counted;
// the store is never blocked by a slow reader.
type Stream struct {
	id      uint64
	path    string
	ch      chan track.Invalidation
	close   func()
	dropped atomic.Uint64
	reg     *Registry
}

// Stream returns a stream for path p with room for size pending
// invalidations. Close it when done.
func (r *Registry) Stream(p track.Path, size int) *Stream {
	if size < 1 {
		size = 1
	}
	s := &Stream{
		id:   NextID(),
		path: p.String(),
		ch:   make(chan track.Invalidation, size),
		reg:  r,
	}
	s.close = r.Subscribe(p, s)
	return s
}

// C returns the delivery channel. It is never closed.
func (s *Stream) C() <-chan track.Invalidation {
	return s.ch
}

// Dropped returns how many invalidations did not fit in the buffer.
func (s *Stream) Dropped() uint64 {
	return s.dropped.Load()
}

// Close unsubscribes the stream.
func (s *Stream) Close() {
	s.close()
}

// ID implements Listener.
func (s *Stream) ID() uint64 {
	return s.id
}

// MarkDirty implements Listener. Delivery happens in detail.
func (s *Stream) MarkDirty() {}

func (s *Stream) detail(inv track.Invalidation) {
	select {
	case s.ch <- inv:
	default:
		if s.dropped.Add(1) == 1 {
			s.reg.logger.Warn("watch stream full, dropping invalidations",
				"path", s.path,
				"stream", s.id)
		}
	}
}
