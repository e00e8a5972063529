package track

import "strconv"

// Mode is the kind of access requested on a level of the tree.
type Mode uint8

const (
	// Shared access allows any number of concurrent readers.
	Shared Mode = iota + 1

	// Exclusive access excludes every other borrow.
	Exclusive
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case Shared:
		return "shared"
	case Exclusive:
		return "exclusive"
	default:
		return "mode(" + strconv.Itoa(int(m)) + ")"
	}
}

// cell is the runtime access state of one level: free, shared by N
// readers, or exclusive.
type cell struct {
	readers int
	writer  bool
}

// acquire takes access in mode m. The returned release func must run on
// every exit path; callers defer it.
func (c *cell) acquire(m Mode) (release func(), ok bool) {
	switch m {
	case Shared:
		if c.writer {
			return nil, false
		}
		c.readers++
		return c.releaseShared, true
	case Exclusive:
		if c.writer || c.readers > 0 {
			return nil, false
		}
		c.writer = true
		return c.releaseExclusive, true
	default:
		return nil, false
	}
}

func (c *cell) releaseShared() {
	c.readers--
}

func (c *cell) releaseExclusive() {
	c.writer = false
}

// free reports whether no borrow is outstanding.
func (c *cell) free() bool {
	return !c.writer && c.readers == 0
}

// state describes the cell for error messages.
func (c *cell) state() string {
	switch {
	case c.writer:
		return "exclusive"
	case c.readers > 0:
		return "shared-" + strconv.Itoa(c.readers)
	default:
		return "free"
	}
}
