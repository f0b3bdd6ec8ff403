package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/specialistvlad/featuregraph/internal/builder"
	"github.com/specialistvlad/featuregraph/internal/config"
	"github.com/specialistvlad/featuregraph/internal/ctxlog"
	"github.com/specialistvlad/featuregraph/internal/depgraph"
	"github.com/specialistvlad/featuregraph/internal/document"
	"github.com/specialistvlad/featuregraph/internal/export"
	"github.com/specialistvlad/featuregraph/internal/inmemorystore"
	"github.com/specialistvlad/featuregraph/internal/metrics"
	"github.com/specialistvlad/featuregraph/internal/notify"
	"github.com/specialistvlad/featuregraph/internal/recompute"
	"github.com/specialistvlad/featuregraph/internal/redisstore"
	"github.com/specialistvlad/featuregraph/internal/registry"
	"github.com/specialistvlad/featuregraph/internal/reportstore"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
//
// Every operation on the document goes through the App's mutex; the
// document itself is not safe for concurrent use.
type App struct {
	ctx      context.Context
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	registry *registry.Registry
	engine   *recompute.Engine
	metrics  *metrics.Observer
	store    reportstore.Store
	emitter  *notify.SocketEmitter

	mu      sync.Mutex
	doc     *document.Document
	loadErr error

	httpServer *http.Server
}

// NewApp loads the document at cfg.DocumentPath and wires it to the engine
// and its observers. A document that could only be partially restored is
// kept; the restore errors are available from LoadErr. Failures to read,
// parse or validate the document are returned.
func NewApp(ctx context.Context, outW io.Writer, cfg *Config, loader config.Loader, modules ...registry.Module) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Logger configured successfully.")

	if len(modules) == 0 {
		modules = coreModules
	}
	reg := registry.NewWithModules(modules...)
	logger.Debug("All Go modules registered.", "count", len(modules), "types", reg.TypeNames())

	model, err := loader.Load(ctx, cfg.DocumentPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load document: %w", err)
	}
	if err := reg.ValidateModel(ctx, model); err != nil {
		return nil, err
	}
	logger.Debug("Document model loaded and validated.", "document", model.Name, "objects", len(model.Objects))

	a := &App{
		ctx:      ctx,
		outW:     outW,
		logger:   logger,
		config:   cfg,
		registry: reg,
		engine:   recompute.New(recompute.WithMaxExecutions(cfg.MaxExecutionsPerObject)),
		metrics:  metrics.New(),
		store:    newReportStore(cfg),
	}

	d := document.New(model.Name)
	d.SetRecomputer(a.engine)
	d.Observe(a.metrics)

	if cfg.NotifyURL != "" {
		em, err := notify.Dial(ctx, notify.DialOptions{URL: cfg.NotifyURL, Namespace: cfg.NotifyNamespace})
		if err != nil {
			a.closeStore()
			return nil, fmt.Errorf("failed to connect notifications: %w", err)
		}
		a.emitter = em
		d.Observe(notify.NewPublisher(ctx, em, d.Name()))
	}

	if err := builder.Build(ctx, model, reg, d); err != nil {
		logger.Warn("Document restored with errors.", "error", err)
		a.loadErr = err
	}
	a.doc = d
	return a, nil
}

func newReportStore(cfg *Config) reportstore.Store {
	if cfg.RedisAddr != "" {
		return redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, redisstore.WithMaxHistory(cfg.ReportHistory))
	}
	return inmemorystore.New(cfg.ReportHistory)
}

// Context returns the App's base context, which carries its logger.
func (a *App) Context() context.Context { return a.ctx }

// Logger returns the App's logger.
func (a *App) Logger() *slog.Logger { return a.logger }

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Metrics returns the metrics observer attached to the document.
func (a *App) Metrics() *metrics.Observer { return a.metrics }

// Store returns the report history store.
func (a *App) Store() reportstore.Store { return a.store }

// LoadErr returns the errors collected while restoring the document, or nil.
func (a *App) LoadErr() error { return a.loadErr }

// DocumentName returns the name of the loaded document.
func (a *App) DocumentName() string { return a.doc.Name() }

// WithDocument runs fn while holding the document lock.
func (a *App) WithDocument(fn func(d *document.Document) error) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return fn(a.doc)
}

// Recompute runs one pass over the document and saves its report. Failing
// to save the report is logged, not returned.
func (a *App) Recompute(ctx context.Context) (*recompute.Report, error) {
	ctx = a.withLogger(ctx)

	a.mu.Lock()
	r, err := a.engine.Recompute(ctx, a.doc)
	a.mu.Unlock()
	if err != nil {
		return nil, err
	}

	if err := a.store.Save(ctx, r); err != nil {
		a.logger.Error("Failed to save recompute report.", "error", err)
	}
	return r, nil
}

// RecomputeObject recomputes one object and what it depends on.
func (a *App) RecomputeObject(ctx context.Context, name string) error {
	ctx = a.withLogger(ctx)
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.doc.RecomputeObject(ctx, name)
}

// Touch marks the named object as needing recompute.
func (a *App) Touch(name string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	o := a.doc.Object(name)
	if o == nil {
		return fmt.Errorf("touching '%s': %w", name, document.ErrObjectNotFound)
	}
	o.Touch()
	a.logger.Debug("Object touched.", "object", name)
	return nil
}

// Graph renders the current dependency graph.
func (a *App) Graph(ctx context.Context, format string) (string, error) {
	ctx = a.withLogger(ctx)
	a.mu.Lock()
	defer a.mu.Unlock()
	return export.Render(depgraph.Build(ctx, a.doc.Objects()), format)
}

// LatestReport returns the newest saved report of the document.
func (a *App) LatestReport(ctx context.Context) (*recompute.Report, error) {
	return a.store.Latest(ctx, a.doc.Name())
}

// Reports returns up to limit saved reports, newest first.
func (a *App) Reports(ctx context.Context, limit int) ([]*recompute.Report, error) {
	return a.store.History(ctx, a.doc.Name(), limit)
}

// Close releases the notification connection and the report store.
func (a *App) Close() error {
	if a.emitter != nil {
		a.emitter.Close()
	}
	return a.closeStore()
}

func (a *App) closeStore() error {
	if c, ok := a.store.(io.Closer); ok {
		if err := c.Close(); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("failed to close report store: %w", err)
		}
	}
	return nil
}

func (a *App) withLogger(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}
