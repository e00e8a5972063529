// Package dispatch serializes actions onto a single goroutine.
//
// Stores in package track are not safe for concurrent use. A Loop owns a
// store and runs every action that touches it, one at a time, in the
// order they were queued:
//
//	loop := dispatch.New(dispatch.WithLogger(logger))
//	go loop.Run(ctx)
//
//	err := loop.Do(ctx, "todo.add", func(ctx context.Context) error {
//	    _, err := todos.Add("write docs")
//	    return err
//	})
//
// Each action runs inside an OpenTelemetry span named after the action.
// A panicking action is recovered and reported as ErrActionPanic; the loop
// keeps running.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const defaultTracerName = "xbow/dispatch"

var (
	// ErrActionPanic is returned by Do when the action panicked.
	ErrActionPanic = errors.New("dispatch: action panicked")

	// ErrClosed is returned by Do after Close.
	ErrClosed = errors.New("dispatch: loop closed")

	// ErrRunning is returned by Run when the loop is already running.
	ErrRunning = errors.New("dispatch: loop already running")
)

// Action is a unit of work run on the loop goroutine.
type Action func(ctx context.Context) error

type config struct {
	queueSize int
	logger    *slog.Logger
	provider  trace.TracerProvider
	tracer    string
}

// Option configures a Loop.
type Option func(*config)

// WithQueueSize sets how many actions may wait before Do blocks.
func WithQueueSize(n int) Option {
	return func(c *config) {
		c.queueSize = n
	}
}

// WithLogger sets the logger used for panics and dropped actions.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithTracerProvider sets the provider spans are created from.
// Default: the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *config) {
		c.provider = tp
	}
}

// WithTracerName sets the tracer name (default: "xbow/dispatch").
func WithTracerName(name string) Option {
	return func(c *config) {
		c.tracer = name
	}
}

type job struct {
	ctx    context.Context
	name   string
	fn     func(ctx context.Context) (any, error)
	result chan outcome
}

// outcome is what an action hands back to the goroutine waiting on it.
type outcome struct {
	value any
	err   error
}

// Loop runs queued actions one at a time.
type Loop struct {
	queue   chan *job
	done    chan struct{}
	once    sync.Once
	running atomic.Bool
	logger  *slog.Logger
	tracer  trace.Tracer
}

// New creates a loop. Call Run to start processing.
func New(opts ...Option) *Loop {
	c := config{
		queueSize: 64,
		tracer:    defaultTracerName,
	}
	for _, opt := range opts {
		opt(&c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.provider == nil {
		c.provider = otel.GetTracerProvider()
	}
	if c.queueSize < 0 {
		c.queueSize = 0
	}

	return &Loop{
		queue:  make(chan *job, c.queueSize),
		done:   make(chan struct{}),
		logger: c.logger,
		tracer: c.provider.Tracer(c.tracer),
	}
}

// Run processes actions until ctx is done or Close is called. It returns
// ctx.Err() in the first case and nil in the second.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return ErrRunning
	}
	defer l.running.Store(false)

	for {
		select {
		case j := <-l.queue:
			l.execute(j)

		case <-ctx.Done():
			return ctx.Err()

		case <-l.done:
			return nil
		}
	}
}

// Do queues fn and waits for it to finish. It returns the action's error,
// ErrActionPanic if it panicked, ctx.Err() if ctx ends first, or ErrClosed.
// An action whose context is done by the time it is dequeued is skipped.
func (l *Loop) Do(ctx context.Context, name string, fn Action) error {
	_, err := l.submit(ctx, name, func(ctx context.Context) (any, error) {
		return nil, fn(ctx)
	})
	return err
}

// submit queues fn and waits for its outcome. The value only crosses
// goroutines through the job's result channel.
func (l *Loop) submit(ctx context.Context, name string, fn func(ctx context.Context) (any, error)) (any, error) {
	j := &job{
		ctx:    ctx,
		name:   name,
		fn:     fn,
		result: make(chan outcome, 1),
	}

	select {
	case <-l.done:
		return nil, ErrClosed
	default:
	}

	select {
	case l.queue <- j:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-l.done:
		return nil, ErrClosed
	}

	select {
	case o := <-j.result:
		return o.value, o.err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-l.done:
		return nil, ErrClosed
	}
}

// Close stops the loop. Actions already queued are not run.
func (l *Loop) Close() {
	l.once.Do(func() {
		close(l.done)
	})
}

// execute runs one action with panic recovery and tracing.
func (l *Loop) execute(j *job) {
	if err := j.ctx.Err(); err != nil {
		l.logger.Debug("action skipped", "action", j.name, "error", err)
		j.result <- outcome{err: err}
		return
	}

	ctx, span := l.tracer.Start(j.ctx, j.name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("xbow.action", j.name)),
	)

	v, err := l.safeRun(ctx, j)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	// End before replying so the span is complete when Do returns.
	span.End()
	if err != nil {
		v = nil
	}
	j.result <- outcome{value: v, err: err}
}

func (l *Loop) safeRun(ctx context.Context, j *job) (v any, err error) {
	defer func() {
		if r := recover(); r != nil {
			stack := debug.Stack()
			l.logger.Error("action panic",
				"action", j.name,
				"panic", r,
				"stack", string(stack))
			err = fmt.Errorf("%w: %s: %v", ErrActionPanic, j.name, r)
		}
	}()
	return j.fn(ctx)
}

// Query runs fn on the loop and returns its result. On any error the
// zero T is returned, including when ctx ends while fn is still running.
func Query[T any](ctx context.Context, l *Loop, name string, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	v, err := l.submit(ctx, name, func(ctx context.Context) (any, error) {
		return fn(ctx)
	})
	if err != nil {
		return zero, err
	}
	out, _ := v.(T)
	return out, nil
}
