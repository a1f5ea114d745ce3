// Package engine wires the places manager to the daemon: it owns the main
// loop, the system volume monitor and the store the server reads from.
package engine

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/grovetools/places/command"
	"github.com/grovetools/places/config"
	"github.com/grovetools/places/internal/daemon/store"
	"github.com/grovetools/places/internal/metrics"
	"github.com/grovetools/places/logging"
	"github.com/grovetools/places/pkg/fswatch"
	"github.com/grovetools/places/pkg/mainloop"
	"github.com/grovetools/places/pkg/paths"
	"github.com/grovetools/places/pkg/places"
	"github.com/grovetools/places/pkg/volumes"
)

// Options configures an Engine.
type Options struct {
	Config *config.Config
	// ConfigFiles are watched; changes are broadcast to stream clients.
	ConfigFiles []string
	Runner      command.Runner
	Metrics     *metrics.Metrics
	Logger      *logrus.Entry

	// Monitor replaces the system monitor. Used by tests.
	Monitor volumes.Monitor
}

// Engine manages the manager, its loop and its monitor.
type Engine struct {
	loop    *mainloop.Loop
	monitor volumes.Monitor
	manager *places.Manager
	store   *store.Store
	logger  *logrus.Entry

	configFiles []string
	startedAt   time.Time
}

// New builds the monitor and the manager. The lists are populated when it
// returns; nothing changes until Run is called.
func New(ctx context.Context, opts Options) (*Engine, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	if opts.Runner == nil {
		opts.Runner = command.NewRunner()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewLogger("placesd")
	}

	monitor := opts.Monitor
	if monitor == nil {
		sys, err := volumes.NewSystemMonitor(ctx, volumes.SystemOptions{
			Runner:       opts.Runner,
			PollInterval: cfg.Mounts.PollInterval.Std(),
			Ignore:       cfg.Mounts.Ignore,
			MediaRoots:   cfg.Mounts.MediaRoots,
			GvfsDir:      paths.GvfsMountDir(),
			Logger:       opts.Logger.WithField("subsystem", "volumes"),
		})
		if err != nil {
			return nil, err
		}
		monitor = sys
	}

	e := &Engine{
		loop:        mainloop.New(),
		monitor:     monitor,
		store:       store.New(),
		logger:      opts.Logger,
		configFiles: opts.ConfigFiles,
		startedAt:   time.Now(),
	}

	manager, err := places.NewManager(places.Options{
		UseSymbolicIcons: cfg.UseSymbolicIcons,
		Monitor:          monitor,
		Scheduler:        e.loop,
		BookmarkFiles:    cfg.Bookmarks.Files,
		Debounce:         cfg.Bookmarks.Debounce.Std(),
		Logger:           opts.Logger,
		Metrics:          opts.Metrics,
	})
	if err != nil {
		return nil, err
	}
	e.manager = manager
	e.store.Reset(manager.Snapshot())

	for _, event := range places.Events {
		event := event
		manager.Subscribe(event, func() {
			e.store.ApplyEvent(event, places.Views(manager.GetPlace(event.Kind())))
		})
	}
	return e, nil
}

// Run drives the loop and the monitor until ctx is cancelled or either
// fails, then tears the manager down.
func (e *Engine) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return e.loop.Run(ctx)
	})
	if sys, ok := e.monitor.(*volumes.SystemMonitor); ok {
		g.Go(func() error {
			return sys.Start(ctx)
		})
	}
	if len(e.configFiles) > 0 {
		g.Go(func() error {
			return e.watchConfig(ctx)
		})
	}

	err := g.Wait()
	// The loop has returned, so the manager can be destroyed from here.
	e.manager.Destroy()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (e *Engine) watchConfig(ctx context.Context) error {
	w, err := fswatch.Watch(e.configFiles, func(path string) {
		if err := config.ValidateFile(path); err != nil {
			e.logger.WithError(err).WithField("file", path).Warn("Changed config is invalid")
			return
		}
		e.logger.WithField("file", path).Info("Config changed; restart the daemon to apply it")
		e.store.BroadcastConfigReload(path)
	})
	if err != nil {
		e.logger.WithError(err).Warn("Config watch disabled")
		<-ctx.Done()
		return nil
	}
	defer closeQuietly(w)
	<-ctx.Done()
	return nil
}

func closeQuietly(c io.Closer) {
	_ = c.Close()
}

// Store returns the engine's state store.
func (e *Engine) Store() *store.Store {
	return e.store
}

// Manager returns the places manager. Queries are safe from any goroutine.
func (e *Engine) Manager() *places.Manager {
	return e.manager
}

// StartedAt returns when the engine was created.
func (e *Engine) StartedAt() time.Time {
	return e.startedAt
}
