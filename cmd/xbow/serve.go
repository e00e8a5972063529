package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/vango-dev/xbow/internal/config"
	"github.com/vango-dev/xbow/pkg/dispatch"
	"github.com/vango-dev/xbow/pkg/todo"
	"github.com/vango-dev/xbow/pkg/todoapi"
	"github.com/vango-dev/xbow/pkg/track"
	"github.com/vango-dev/xbow/pkg/trackmetrics"
	"github.com/vango-dev/xbow/pkg/watch"
)

const shutdownTimeout = 5 * time.Second

func serveCmd() *cobra.Command {
	var (
		configPath string
		addr       string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a TodoMVC store over HTTP",
		Long: `Serve a TodoMVC store over HTTP.

Settings come from xbow.json (the nearest one in the working directory
or its parents, or --config), then XBOW_ADDR, XBOW_LOG_LEVEL and
XBOW_LOG_FORMAT, then flags.

Examples:
  xbow serve
  xbow serve --addr=:9000
  xbow serve --config=deploy/xbow.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Resolve(configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
				if err := cfg.Validate(); err != nil {
					return err
				}
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to xbow.json")
	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default from xbow.json)")

	return cmd
}

// server holds the wired components of a running instance.
type server struct {
	logger *slog.Logger
	loop   *dispatch.Loop
	todos  *todo.Store
	http   *http.Server
}

// newServer wires the store, the action loop, metrics and the API.
func newServer(cfg *config.Config, logger *slog.Logger) (*server, error) {
	reg := watch.New(watch.WithLogger(logger))
	opts := []track.Option{
		track.WithName(cfg.Store.Name),
		track.WithLogger(logger),
		track.WithObserver(reg),
	}

	apiOpts := []todoapi.Option{
		todoapi.WithLogger(logger),
		todoapi.WithPingInterval(cfg.PingInterval()),
		todoapi.WithWriteTimeout(cfg.WriteTimeout()),
		todoapi.WithStreamBuffer(cfg.Watch.StreamBuffer),
	}

	if cfg.Metrics.Enabled {
		promReg := prometheus.NewRegistry()
		promReg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		monitor := trackmetrics.New(
			trackmetrics.WithRegistry(promReg),
			trackmetrics.WithNamespace(cfg.Metrics.Namespace),
		)
		opts = append(opts, track.WithMonitor(monitor))
		apiOpts = append(apiOpts, todoapi.WithMetrics(promhttp.HandlerFor(promReg, promhttp.HandlerOpts{})))
	}

	todos := todo.NewStore(opts...)
	// Add puts each todo on top, so seed in reverse to keep file order.
	for i := len(cfg.Store.Seed) - 1; i >= 0; i-- {
		if _, err := todos.Add(cfg.Store.Seed[i]); err != nil {
			return nil, fmt.Errorf("seed store: %w", err)
		}
	}

	loop := dispatch.New(
		dispatch.WithLogger(logger),
		dispatch.WithQueueSize(cfg.Dispatch.QueueSize),
	)
	api := todoapi.New(loop, todos, reg, apiOpts...)

	return &server{
		logger: logger,
		loop:   loop,
		todos:  todos,
		http: &http.Server{
			Addr:              cfg.Addr,
			Handler:           api.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

func runServe(ctx context.Context, cfg *config.Config, out io.Writer) error {
	logger := cfg.NewLogger(os.Stderr)
	slog.SetDefault(logger)

	s, err := newServer(cfg, logger)
	if err != nil {
		return err
	}

	fmt.Fprint(out, banner)
	info(out, "Listening on %s", cfg.Addr)
	if cfg.Path() != "" {
		info(out, "Config: %s", cfg.Path())
	}
	fmt.Fprintln(out)

	loopDone := make(chan error, 1)
	go func() {
		loopDone <- s.loop.Run(ctx)
	}()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.http.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		s.loop.Close()
		if !stderrors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen on %s: %w", cfg.Addr, err)
		}
		return nil

	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown incomplete", "error", err)
	}
	s.loop.Close()
	<-loopDone
	return nil
}
