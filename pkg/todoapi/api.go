// Package todoapi serves a todo.Store over HTTP.
//
// Routes:
//
//	GET    /todos                   list in display order
//	POST   /todos                   {"value": "..."} creates a todo
//	PATCH  /todos/{id}              {"value"?: "...", "done"?: bool}
//	DELETE /todos/{id}
//	POST   /todos/clear-completed
//	GET    /watch?path=$.todos{1}   websocket feed of invalidations
//	GET    /healthz
//
// Every store access runs on a dispatch.Loop, so handlers may be called
// from any number of goroutines.
package todoapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/vango-dev/xbow/pkg/dispatch"
	"github.com/vango-dev/xbow/pkg/todo"
	"github.com/vango-dev/xbow/pkg/watch"
)

// Config configures the API.
type Config struct {
	// Logger receives request and error logs. Default: slog.Default().
	Logger *slog.Logger

	// Metrics, if set, is served at /metrics.
	Metrics http.Handler

	// CheckOrigin validates websocket origins. Default: same origin only.
	CheckOrigin func(r *http.Request) bool

	// WriteTimeout bounds each websocket write (default: 10s).
	WriteTimeout time.Duration

	// PingInterval is the websocket keepalive period (default: 30s).
	PingInterval time.Duration

	// StreamBuffer is the number of invalidations buffered per websocket
	// before they are dropped (default: 64).
	StreamBuffer int
}

// Option configures the API.
type Option func(*Config)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithMetrics serves h at /metrics.
func WithMetrics(h http.Handler) Option {
	return func(c *Config) {
		c.Metrics = h
	}
}

// WithCheckOrigin sets the websocket origin check.
func WithCheckOrigin(fn func(r *http.Request) bool) Option {
	return func(c *Config) {
		c.CheckOrigin = fn
	}
}

// WithWriteTimeout sets the websocket write timeout.
func WithWriteTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.WriteTimeout = d
	}
}

// WithPingInterval sets the websocket keepalive period.
func WithPingInterval(d time.Duration) Option {
	return func(c *Config) {
		c.PingInterval = d
	}
}

// WithStreamBuffer sets the per-connection invalidation buffer.
func WithStreamBuffer(n int) Option {
	return func(c *Config) {
		c.StreamBuffer = n
	}
}

func defaultConfig() Config {
	return Config{
		WriteTimeout: 10 * time.Second,
		PingInterval: 30 * time.Second,
		StreamBuffer: 64,
	}
}

// API is the HTTP front end of a todo store.
type API struct {
	loop     *dispatch.Loop
	todos    *todo.Store
	watch    *watch.Registry
	config   Config
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// New returns an API over todos. reg must be installed as an observer of
// the store; loop must be running for requests to complete.
func New(loop *dispatch.Loop, todos *todo.Store, reg *watch.Registry, opts ...Option) *API {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	return &API{
		loop:   loop,
		todos:  todos,
		watch:  reg,
		config: config,
		logger: config.Logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     config.CheckOrigin,
		},
	}
}

// Handler returns the router.
func (a *API) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(a.requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	if a.config.Metrics != nil {
		r.Handle("/metrics", a.config.Metrics)
	}

	r.Route("/todos", func(r chi.Router) {
		r.Get("/", a.handleList)
		r.Post("/", a.handleCreate)
		r.Post("/clear-completed", a.handleClearCompleted)
		r.Patch("/{id}", a.handleUpdate)
		r.Delete("/{id}", a.handleDelete)
	})
	r.Get("/watch", a.handleWatch)

	return r
}

// requestLogger logs one line per request at debug level.
func (a *API) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		a.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
