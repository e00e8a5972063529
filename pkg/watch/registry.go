package watch

import (
	"context"
	"log/slog"
	"sync"

	"github.com/vango-dev/xbow/pkg/track"
)

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger. If nil, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// Registry maps paths to listeners. It implements track.Observer.
type Registry struct {
	mu   sync.Mutex
	subs map[string][]Listener

	// batchDepth tracks nested Batch calls.
	batchDepth int

	// pending accumulates listeners to notify when the batch completes.
	pending []Listener

	logger *slog.Logger
}

var _ track.Observer = (*Registry)(nil)

// New returns an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{subs: make(map[string][]Listener)}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Subscribe registers l for invalidations of path p. Subscribing the same
// listener ID twice is a no-op. The returned func unsubscribes.
func (r *Registry) Subscribe(p track.Path, l Listener) (unsubscribe func()) {
	if l == nil {
		return func() {}
	}
	key := p.String()

	r.mu.Lock()
	lid := l.ID()
	dup := false
	for _, existing := range r.subs[key] {
		if existing.ID() == lid {
			dup = true
			break
		}
	}
	if !dup {
		r.subs[key] = append(r.subs[key], l)
	}
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.unsubscribe(key, lid)
		})
	}
}

func (r *Registry) unsubscribe(key string, lid uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	subs := r.subs[key]
	for i, existing := range subs {
		if existing.ID() == lid {
			// Remove by swapping with last element (order doesn't matter)
			subs[i] = subs[len(subs)-1]
			subs = subs[:len(subs)-1]
			break
		}
	}
	if len(subs) == 0 {
		delete(r.subs, key)
	} else {
		r.subs[key] = subs
	}
}

// Count returns the number of listeners subscribed to p.
func (r *Registry) Count(p track.Path) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs[p.String()])
}

// Invalidated implements track.Observer.
func (r *Registry) Invalidated(inv track.Invalidation) {
	key := inv.Path.String()

	// Copy subscribers while holding lock
	r.mu.Lock()
	subs := make([]Listener, len(r.subs[key]))
	copy(subs, r.subs[key])
	batching := r.batchDepth > 0
	if batching {
		r.pending = append(r.pending, subs...)
	}
	r.mu.Unlock()

	if len(subs) == 0 {
		return
	}
	if r.logger.Enabled(context.Background(), slog.LevelDebug) {
		r.logger.Debug("invalidation",
			"path", key,
			"direction", inv.Direction.String(),
			"version", inv.Version,
			"listeners", len(subs),
			"batched", batching)
	}

	for _, sub := range subs {
		if d, ok := sub.(detailListener); ok {
			d.detail(inv)
		}
	}
	if batching {
		return
	}
	for _, sub := range subs {
		sub.MarkDirty()
	}
}

// Batch runs fn and delivers the MarkDirty calls it caused once fn (and
// every enclosing batch) returns, each listener at most once.
func (r *Registry) Batch(fn func()) {
	r.mu.Lock()
	r.batchDepth++
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.batchDepth--
		var updates []Listener
		if r.batchDepth == 0 {
			updates = r.pending
			r.pending = nil
		}
		r.mu.Unlock()
		notifyUnique(updates)
	}()

	fn()
}

// notifyUnique deduplicates by listener ID and notifies.
func notifyUnique(updates []Listener) {
	if len(updates) == 0 {
		return
	}
	seen := make(map[uint64]bool, len(updates))
	for _, l := range updates {
		id := l.ID()
		if seen[id] {
			continue
		}
		seen[id] = true
		l.MarkDirty()
	}
}
