// Package watcher keeps compiled style-sheet output in step with a source
// tree. A Controller subscribes to filesystem notifications under the source
// root, compiles files whose last-write time moved forward, deletes artifacts
// of removed or renamed sources and falls back to a full rebuild when a
// partial disappears.
package watcher

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/conneroisu/livesass/internal/config"
	"github.com/conneroisu/livesass/internal/errors"
	"github.com/conneroisu/livesass/internal/logging"
)

// State is the lifecycle state of a Controller.
type State int

const (
	StateUninitialized State = iota
	StateActive
	StateStopped
)

// String returns the string representation of the State
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateActive:
		return "active"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// FailureReporter receives every compile failure.
type FailureReporter func(err error)

// Option configures a Controller.
type Option func(*Controller)

// WithSource replaces the fsnotify notification source.
func WithSource(source Source) Option {
	return func(c *Controller) { c.source = source }
}

// WithFs replaces the filesystem used for last-write times and artifact
// deletion.
func WithFs(fs afero.Fs) Option {
	return func(c *Controller) { c.fs = fs }
}

// WithLogger sets the logger.
func WithLogger(logger logging.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

// WithFailureReporter registers a callback for compile failures.
func WithFailureReporter(reporter FailureReporter) Option {
	return func(c *Controller) { c.reporter = reporter }
}

// WithClock overrides the clock used for staleness entries.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// Controller owns the watch session lifecycle.
type Controller struct {
	cfg      *config.WatchConfig
	compiler Compiler
	source   Source
	fs       afero.Fs
	logger   logging.Logger
	reporter FailureReporter
	now      func() time.Time

	failures   *errors.ErrorCollector
	reporting  *reportingCompiler
	tracker    *Tracker
	artifacts  *ArtifactManager
	normalizer *Normalizer

	mutex   sync.Mutex
	state   State
	session *session
}

// session is one Active subscription.
type session struct {
	id     string
	sub    Subscription
	queue  *eventQueue
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a controller. The configuration has already been validated by
// config.NewWatchConfig; a nil configuration or compiler is a configuration
// error.
func New(cfg *config.WatchConfig, compiler Compiler, opts ...Option) (*Controller, error) {
	if cfg == nil {
		return nil, errors.NewConfigError(errors.ErrCodeMissingConfig, "watch configuration is required")
	}
	if compiler == nil {
		return nil, errors.NewConfigError(errors.ErrCodeMissingCompiler, "compiler is required")
	}

	c := &Controller{
		cfg:      cfg,
		compiler: compiler,
		fs:       afero.NewOsFs(),
		logger:   logging.NopLogger{},
		now:      time.Now,
		failures: errors.NewErrorCollector(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.source == nil {
		c.source = NewFSNotifySource(c.logger)
	}

	c.reporting = &reportingCompiler{
		Compiler: compiler,
		failures: c.failures,
		reporter: c.reporter,
		logger:   c.logger.WithComponent("compiler"),
	}
	resolver := NewOutputResolver(cfg.SourceRoot(), cfg.DestinationRoot())

	c.tracker = NewTracker(c.fs, c.reporting, c.logger)
	c.tracker.now = c.now
	c.artifacts = NewArtifactManager(c.fs, c.reporting, resolver, cfg.SourceRoot(), c.logger)
	c.normalizer = NewNormalizer(c.tracker, c.artifacts)
	c.logger = c.logger.WithComponent("controller")

	return c, nil
}

// Start subscribes to the source root and, when configured, compiles the whole
// tree before returning. Notifications arriving during that compile are
// queued and processed afterwards. Start fails with a lifecycle error while a
// session is active.
func (c *Controller) Start(ctx context.Context) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.state == StateActive {
		return errors.NewLifecycleError(errors.ErrCodeAlreadyStarted, "watcher already started")
	}

	// Staleness entries belong to one session.
	c.tracker.reset()

	queue := newEventQueue()
	sub, err := c.source.Subscribe(c.cfg.SourceRoot(), c.cfg.MatchName, func(ev RawEvent) {
		queue.Push(ev)
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", c.cfg.SourceRoot(), err)
	}

	s := &session{
		id:    uuid.NewString(),
		sub:   sub,
		queue: queue,
		done:  make(chan struct{}),
	}
	logger := c.logger.With("session", s.id)
	logger.Info(ctx, "watching for changes",
		"source", c.cfg.SourceRoot(),
		"destination", c.cfg.DestinationRoot(),
		"filters", c.cfg.NameFilters())

	if c.cfg.CompileOnStart() {
		// Failures were reported by the reporting compiler.
		_ = c.reporting.Compile(ctx, c.cfg.SourceRoot())
	}

	var sessionCtx context.Context
	sessionCtx, s.cancel = context.WithCancel(context.WithoutCancel(ctx))
	go c.consume(sessionCtx, s, logger)

	c.session = s
	c.state = StateActive
	return nil
}

// Stop unsubscribes and ends the active session. Nothing new is accepted once
// the subscription is closed, but events already queued are handled before
// Stop returns. Stop on a controller without an active session is a no-op.
func (c *Controller) Stop() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.state != StateActive {
		return nil
	}

	s := c.session
	err := s.sub.Close()
	s.queue.Close()
	<-s.done
	s.cancel()

	c.session = nil
	c.state = StateStopped
	c.logger.Info(context.Background(), "stopped watching", "session", s.id)

	if err != nil {
		return fmt.Errorf("failed to close subscription: %w", err)
	}
	return nil
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.state
}

// Failures returns the compile failures that have not been fixed by a later
// successful compile of the same path.
func (c *Controller) Failures() []errors.CompileFailure {
	return c.failures.GetFailures()
}

func (c *Controller) consume(ctx context.Context, s *session, logger logging.Logger) {
	defer close(s.done)

	// Compiles are not cancelled by Stop.
	dispatchCtx := context.WithoutCancel(ctx)
	for {
		ev, ok := s.queue.Pop(ctx)
		if !ok {
			return
		}
		c.dispatch(dispatchCtx, ev, logger)
	}
}

func (c *Controller) dispatch(ctx context.Context, ev RawEvent, logger logging.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error(ctx, fmt.Errorf("panic: %v", r), "event handler panicked", "event", ev.String())
		}
	}()

	logger.Debug(ctx, "event received", "event", ev.String())
	if err := c.normalizer.Dispatch(ctx, ev); err != nil {
		logger.Debug(ctx, "event handled with failures", "event", ev.String(), "error", err.Error())
	}
}

// reportingCompiler turns compile failures into CompileErrors, records them
// and forwards them to the reporter. A successful compile clears the failure
// recorded for the same path.
type reportingCompiler struct {
	Compiler
	failures *errors.ErrorCollector
	reporter FailureReporter
	logger   logging.Logger
}

func (r *reportingCompiler) Compile(ctx context.Context, path string) error {
	perf := logging.StartOperation(r.logger, "compile")
	err := r.Compiler.Compile(ctx, path)
	if err == nil {
		perf.End(ctx)
		r.failures.Resolve(path)
		r.logger.Info(ctx, "compiled", "path", path)
		return nil
	}

	compileErr := err
	if !errors.IsCompileError(err) {
		compileErr = errors.NewCompileError(path, err)
	}
	perf.EndWithError(ctx, compileErr)
	r.failures.AddError(compileErr)
	if r.reporter != nil {
		r.reporter(compileErr)
	}
	return compileErr
}
