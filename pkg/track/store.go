package track

import "log/slog"

// DefaultRootName is the label of the root segment.
const DefaultRootName = "$"

// Option configures a Store.
type Option func(*storeConfig)

type storeConfig struct {
	name      string
	logger    *slog.Logger
	observers []Observer
	monitor   Monitor
}

// WithName sets the label of the root segment (default "$").
func WithName(name string) Option {
	return func(c *storeConfig) {
		c.name = name
	}
}

// WithLogger sets the logger. If nil, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(c *storeConfig) {
		c.logger = logger
	}
}

// WithObserver adds an observer. Observers are called in registration
// order.
func WithObserver(o Observer) Option {
	return func(c *storeConfig) {
		if o != nil {
			c.observers = append(c.observers, o)
		}
	}
}

// WithMonitor sets the instrumentation hook.
func WithMonitor(m Monitor) Option {
	return func(c *storeConfig) {
		c.monitor = m
	}
}

// Store is the sole owner of a value tree.
type Store[T any] struct {
	value T
	root  *Edge[T]
}

// NewStore takes ownership of initial and returns its store.
func NewStore[T any](initial T, opts ...Option) *Store[T] {
	cfg := storeConfig{name: DefaultRootName}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if cfg.monitor == nil {
		cfg.monitor = nopMonitor{}
	}

	s := &Store[T]{value: initial}
	s.root = &Edge[T]{
		link: &link{
			core: &core{
				logger:    cfg.logger,
				observers: cfg.observers,
				monitor:   cfg.monitor,
			},
			path: Path{{Kind: SegmentRoot, Label: cfg.name}},
		},
		reach: func(_ Mode, visit func(*T)) (bool, error) {
			visit(&s.value)
			return true, nil
		},
	}
	return s
}

// Root returns the root edge. It is never absent.
func (s *Store[T]) Root() *Edge[T] {
	return s.root
}

// Snapshot returns a shallow copy of the root value.
func (s *Store[T]) Snapshot() (T, error) {
	var out T
	_, err := s.root.Borrow(func(v *T) {
		out = *v
	})
	return out, err
}

// Logger returns the store logger.
func (s *Store[T]) Logger() *slog.Logger {
	return s.root.link.core.logger
}
