// Package engine composes the planner, the problem library, metrics and the
// RPC server into one runtime.
//
// The engine initializes from configuration via New. Functional options
// override the config-created observer, store and metrics registry, which is
// mostly useful in tests.
//
//	e, err := engine.New(&cfg)
//	result, err := e.Solve(ctx, "firewood")
package engine

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tailored-agentic-units/goap/goap"
	"github.com/tailored-agentic-units/goap/library"
	"github.com/tailored-agentic-units/goap/observability"
	"github.com/tailored-agentic-units/goap/rpc"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Option configures an Engine before its subsystems are built.
type Option func(*Engine)

// WithObserver replaces the observer named by the planner config. Metrics
// are still recorded alongside it.
func WithObserver(o observability.Observer) Option {
	return func(e *Engine) { e.observer = o }
}

// WithStore backs the problem library with s instead of the configured
// directory.
func WithStore(s library.Store) Option {
	return func(e *Engine) { e.store = s }
}

// WithRegistry registers metrics with r and serves r on the metrics path
// instead of a private registry.
func WithRegistry(r *prometheus.Registry) Option {
	return func(e *Engine) { e.registry = r }
}

// Engine owns one planner and, when configured, one problem library.
type Engine struct {
	observer observability.Observer
	store    library.Store
	registry *prometheus.Registry

	metrics *Metrics
	planner *goap.Planner
	served  *goap.Planner
	library *library.Library
	server  rpc.Config
}

// New creates an Engine from configuration. Every event reaches both the
// configured observer and the Prometheus metrics.
func New(cfg *Config, opts ...Option) (*Engine, error) {
	e := &Engine{server: cfg.Server}

	for _, opt := range opts {
		opt(e)
	}

	if e.observer == nil {
		obs, err := observability.GetObserver(cfg.Planner.Observer)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve observer: %w", err)
		}
		e.observer = obs
	}

	if e.registry == nil {
		e.registry = prometheus.NewRegistry()
	}
	e.metrics = NewMetrics(e.registry)

	observer := observability.NewMultiObserver(e.observer, e.metrics)

	e.planner = goap.NewWithObserver(cfg.Planner, observer)
	e.served = goap.NewWithObserver(servedConfig(cfg), observer)

	if e.store != nil {
		e.library = library.New(e.store, observer)
	} else {
		lib, err := library.NewLibrary(&cfg.Library, observer)
		if err != nil {
			return nil, fmt.Errorf("failed to open problem library: %w", err)
		}
		e.library = lib
	}

	return e, nil
}

// Planner returns the engine's planner.
func (e *Engine) Planner() *goap.Planner {
	return e.planner
}

// Library returns the problem library, or nil when none is configured.
func (e *Engine) Library() *library.Library {
	return e.library
}

// Metrics returns the engine's Prometheus series.
func (e *Engine) Metrics() *Metrics {
	return e.metrics
}

// Names lists the problems in the library.
func (e *Engine) Names(ctx context.Context) ([]string, error) {
	if e.library == nil {
		return nil, ErrNoLibrary
	}
	return e.library.Names(ctx)
}

// Solve plans the named library problem.
func (e *Engine) Solve(ctx context.Context, name string) (*goap.Result, error) {
	if e.library == nil {
		return nil, ErrNoLibrary
	}

	p, err := e.library.Problem(ctx, name)
	if err != nil {
		return nil, err
	}
	return e.planner.Plan(ctx, p.Actions, p.Current, p.Goal)
}

// SolveAll plans several library problems concurrently. Results line up with
// names.
func (e *Engine) SolveAll(ctx context.Context, names ...string) ([]*goap.Result, error) {
	if e.library == nil {
		return nil, ErrNoLibrary
	}

	problems, err := e.library.Problems(ctx, names...)
	if err != nil {
		return nil, err
	}
	return e.planner.PlanAll(ctx, problems)
}

// Handler serves the planner RPC service and, unless the metrics path is
// empty, the Prometheus endpoint. Served searches are capped at the server's
// MaxNodes; Solve and SolveAll keep the planner's own limit.
func (e *Engine) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(rpc.NewHandler(e.served))
	if e.server.MetricsPath != "" {
		mux.Handle(e.server.MetricsPath, promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{
			Registry: e.registry,
		}))
	}
	return mux
}

// Serve listens on the configured address until ctx is done, then shuts the
// server down gracefully.
func (e *Engine) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              e.server.Addr,
		Handler:           e.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	e.observer.OnEvent(ctx, observability.NewEvent(EventServeStart, observability.LevelInfo, "engine.Serve", map[string]any{
		"addr":    e.server.Addr,
		"metrics": e.server.MetricsPath,
	}))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := srv.Shutdown(shutdownCtx)
	if serveErr := <-errCh; !errors.Is(serveErr, http.ErrServerClosed) {
		err = errors.Join(err, serveErr)
	}

	e.observer.OnEvent(ctx, observability.NewEvent(EventServeStop, observability.LevelInfo, "engine.Serve", map[string]any{
		"addr": e.server.Addr,
	}))

	if err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

// servedConfig is the planner config for RPC requests: the server node cap
// applies unless the planner is already stricter.
func servedConfig(cfg *Config) goap.Config {
	served := cfg.Planner
	limit := cfg.Server.MaxNodes
	if limit > 0 && (served.MaxNodes == 0 || served.MaxNodes > limit) {
		served.MaxNodes = limit
	}
	return served
}
