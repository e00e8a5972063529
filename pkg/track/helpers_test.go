package track

import "sync"

// recorder collects invalidations in delivery order.
type recorder struct {
	events []Invalidation
}

func (r *recorder) Invalidated(inv Invalidation) {
	r.events = append(r.events, inv)
}

func (r *recorder) paths(dir Direction) []string {
	var out []string
	for _, ev := range r.events {
		if ev.Direction == dir {
			out = append(out, ev.Path.String())
		}
	}
	return out
}

func (r *recorder) reset() {
	r.events = nil
}

// countingMonitor counts Monitor calls.
type countingMonitor struct {
	mu        sync.Mutex
	hits      int
	misses    int
	conflicts []*ConflictError
	up        int
	down      int
	dropped   int
}

func (m *countingMonitor) HandleResolved(_ Kind, hit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if hit {
		m.hits++
	} else {
		m.misses++
	}
}

func (m *countingMonitor) BorrowConflict(err *ConflictError) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conflicts = append(m.conflicts, err)
}

func (m *countingMonitor) Invalidated(dir Direction, levels int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if dir == Up {
		m.up += levels
	} else {
		m.down += levels
	}
}

func (m *countingMonitor) Compacted(_ Kind, dropped int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dropped += dropped
}

// doc is a small nested value used across tests.
type doc struct {
	Title string
	Tags  []string
	Meta  map[string]int
}

type docNode struct {
	Tracked[doc]
	Title *Leaf[string]
	Tags  *SliceNode[string, Leaf[string], *Leaf[string]]
	Meta  *MapNode[string, int, Leaf[int], *Leaf[int]]
}

func newDocNode(e *Edge[doc]) *docNode {
	n := &docNode{
		Tracked: Track(e),
		Title:   NewLeaf(Child(e, Field("title", func(d *doc) *string { return &d.Title }))),
		Tags:    NewSlice(Child(e, Field("tags", func(d *doc) *[]string { return &d.Tags })), NewLeaf[string]),
		Meta:    NewMap(Child(e, Field("meta", func(d *doc) *map[string]int { return &d.Meta })), NewLeaf[int]),
	}
	n.OnReplace(n.invalidateFields)
	return n
}

func (n *docNode) InvalidateOutsideDown() {
	n.InvalidateHere()
	n.invalidateFields()
}

func (n *docNode) invalidateFields() {
	n.Title.InvalidateOutsideDown()
	n.Tags.InvalidateOutsideDown()
	n.Meta.InvalidateOutsideDown()
}

func newDocStore(opts ...Option) (*Store[doc], *docNode) {
	store := NewStore(doc{
		Title: "draft",
		Tags:  []string{"go", "state"},
		Meta:  map[string]int{"rev": 1},
	}, opts...)
	return store, Open(store, newDocNode)
}
