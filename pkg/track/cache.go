package track

import "weak"

// minSweep is the table size below which dead entries are not swept on
// insert.
const minSweep = 16

// handleCache maps keys to weak references of materialized child nodes.
// It guarantees at most one live node per key and never keeps a node alive.
type handleCache[K comparable, X any, N nodePtr[X]] struct {
	kind    Kind
	owner   *link
	entries map[K]weak.Pointer[X]
	sweepAt int
}

func newHandleCache[K comparable, X any, N nodePtr[X]](kind Kind, owner *link) *handleCache[K, X, N] {
	return &handleCache[K, X, N]{
		kind:    kind,
		owner:   owner,
		entries: make(map[K]weak.Pointer[X]),
		sweepAt: minSweep,
	}
}

// get returns the live node for key, or builds, records and returns a new
// one.
func (c *handleCache[K, X, N]) get(key K, build func() N) N {
	if n, ok := c.live(key); ok {
		c.owner.core.monitor.HandleResolved(c.kind, true)
		return n
	}
	if len(c.entries) >= c.sweepAt {
		c.compact()
		c.sweepAt = max(2*len(c.entries), minSweep)
	}
	n := build()
	c.entries[key] = weak.Make((*X)(n))
	c.owner.core.monitor.HandleResolved(c.kind, false)
	if c.owner.core.debugEnabled() {
		c.owner.core.logger.Debug("handle materialized",
			"container", c.owner.path.String(),
			"kind", c.kind.String(),
			"key", keyLabel(key))
	}
	return n
}

// live returns the cached node for key if it is still reachable.
func (c *handleCache[K, X, N]) live(key K) (N, bool) {
	wp, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	x := wp.Value()
	if x == nil {
		return nil, false
	}
	return N(x), true
}

// invalidate forwards a Down invalidation to the live node for key. The
// entry stays so that the node keeps its identity if the key comes back.
func (c *handleCache[K, X, N]) invalidate(key K) {
	if n, ok := c.live(key); ok {
		n.InvalidateOutsideDown()
	}
}

// invalidateAll forwards to every live node and drops dead entries.
func (c *handleCache[K, X, N]) invalidateAll() {
	dropped := 0
	for k, wp := range c.entries {
		x := wp.Value()
		if x == nil {
			delete(c.entries, k)
			dropped++
			continue
		}
		N(x).InvalidateOutsideDown()
	}
	c.reportCompacted(dropped)
}

// compact drops entries whose node has been collected.
func (c *handleCache[K, X, N]) compact() {
	dropped := 0
	for k, wp := range c.entries {
		if wp.Value() == nil {
			delete(c.entries, k)
			dropped++
		}
	}
	c.reportCompacted(dropped)
}

func (c *handleCache[K, X, N]) reportCompacted(dropped int) {
	if dropped == 0 {
		return
	}
	c.owner.core.monitor.Compacted(c.kind, dropped)
	if c.owner.core.debugEnabled() {
		c.owner.core.logger.Debug("handle cache compacted",
			"container", c.owner.path.String(),
			"dropped", dropped,
			"remaining", len(c.entries))
	}
}

// size returns the number of entries, live or not.
func (c *handleCache[K, X, N]) size() int {
	return len(c.entries)
}
