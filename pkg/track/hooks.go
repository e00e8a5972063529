package track

// Direction tells which way an invalidation travels.
type Direction uint8

const (
	// Up is reported for the mutated edge and each of its ancestors.
	Up Direction = iota + 1

	// Down is reported for live handles below a removed or replaced entry.
	Down
)

// String returns "up" or "down".
func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return "unknown"
	}
}

// Invalidation is the change notification delivered to observers.
type Invalidation struct {
	// Path is the level being notified.
	Path Path

	// Version is the edge version after the change.
	Version uint64

	// Direction is Up for the mutated edge and its ancestors, Down for
	// handles below a removed entry.
	Direction Direction

	// Origin is the mutated path for Up. For Down it is the invalidated
	// node itself.
	Origin Path
}

// Observer receives change notifications. Invalidated is called
// synchronously, before the mutating call returns, with no borrow held.
type Observer interface {
	Invalidated(inv Invalidation)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(inv Invalidation)

// Invalidated calls f(inv).
func (f ObserverFunc) Invalidated(inv Invalidation) {
	f(inv)
}

// Kind names the kind of a container node.
type Kind uint8

const (
	KindSlice Kind = iota + 1
	KindMap
	KindOption
	KindSum
)

// String returns the kind name used in logs and metric labels.
func (k Kind) String() string {
	switch k {
	case KindSlice:
		return "slice"
	case KindMap:
		return "map"
	case KindOption:
		return "option"
	case KindSum:
		return "sum"
	default:
		return "unknown"
	}
}

// Monitor receives instrumentation events from a store. Implementations
// must be cheap; they run inline on every access.
type Monitor interface {
	// HandleResolved is called by HandleAt; hit is true when a live cached
	// node was returned.
	HandleResolved(kind Kind, hit bool)

	// BorrowConflict is called for every refused borrow.
	BorrowConflict(err *ConflictError)

	// Invalidated is called once per propagation with the number of levels
	// notified.
	Invalidated(dir Direction, levels int)

	// Compacted is called when dead cache entries are dropped.
	Compacted(kind Kind, dropped int)
}

type nopMonitor struct{}

func (nopMonitor) HandleResolved(Kind, bool)     {}
func (nopMonitor) BorrowConflict(*ConflictError) {}
func (nopMonitor) Invalidated(Direction, int)    {}
func (nopMonitor) Compacted(Kind, int)           {}
