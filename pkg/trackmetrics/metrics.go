// Package trackmetrics exports store instrumentation to Prometheus.
//
// A Monitor implements track.Monitor and is installed with
// track.WithMonitor:
//
//	m := trackmetrics.New(trackmetrics.WithRegistry(reg))
//	store := track.NewStore(initial, track.WithMonitor(m))
//
// Metrics collected (with the default namespace):
//   - xbow_track_handles_total: handle lookups by container kind and result
//   - xbow_track_borrow_conflicts_total: refused borrows by requested mode
//   - xbow_track_invalidations_total: propagations by direction
//   - xbow_track_invalidation_levels: levels notified per propagation
//   - xbow_track_cache_entries_dropped_total: dead handle entries compacted
package trackmetrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/xbow/pkg/track"
)

// Config configures the Prometheus monitor.
type Config struct {
	// Namespace is the metrics namespace (default: "xbow").
	Namespace string

	// Subsystem is the metrics subsystem (default: "track").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for invalidation depth.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the Prometheus monitor.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the invalidation depth buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "xbow",
		Subsystem: "track",
		Buckets:   prometheus.LinearBuckets(1, 1, 8),
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Monitor records store events as Prometheus metrics. It is safe for
// concurrent use, so one Monitor may serve several stores.
type Monitor struct {
	handles       *prometheus.CounterVec
	conflicts     *prometheus.CounterVec
	invalidations *prometheus.CounterVec
	levels        *prometheus.HistogramVec
	dropped       *prometheus.CounterVec
}

var _ track.Monitor = (*Monitor)(nil)

// New registers the metrics with the configured registry and returns the
// monitor. It panics if the metrics are already registered there.
func New(opts ...Option) *Monitor {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Monitor{
		handles: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "handles_total",
			Help:        "Total number of child handle lookups",
			ConstLabels: config.ConstLabels,
		}, []string{"kind", "result"}),

		conflicts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "borrow_conflicts_total",
			Help:        "Total number of refused borrows",
			ConstLabels: config.ConstLabels,
		}, []string{"mode"}),

		invalidations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "invalidations_total",
			Help:        "Total number of invalidation propagations",
			ConstLabels: config.ConstLabels,
		}, []string{"direction"}),

		levels: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "invalidation_levels",
			Help:        "Number of levels notified per propagation",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"direction"}),

		dropped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "cache_entries_dropped_total",
			Help:        "Total number of dead handle cache entries removed",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),
	}
}

// HandleResolved counts a handle lookup as a hit or a miss.
func (m *Monitor) HandleResolved(kind track.Kind, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.handles.WithLabelValues(kind.String(), result).Inc()
}

// BorrowConflict counts a refused borrow.
func (m *Monitor) BorrowConflict(err *track.ConflictError) {
	m.conflicts.WithLabelValues(err.Requested.String()).Inc()
}

// Invalidated counts a propagation and records its depth.
func (m *Monitor) Invalidated(dir track.Direction, levels int) {
	d := dir.String()
	m.invalidations.WithLabelValues(d).Inc()
	m.levels.WithLabelValues(d).Observe(float64(levels))
}

// Compacted counts dropped cache entries.
func (m *Monitor) Compacted(kind track.Kind, dropped int) {
	if dropped <= 0 {
		return
	}
	m.dropped.WithLabelValues(kind.String()).Add(float64(dropped))
}
