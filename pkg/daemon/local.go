package daemon

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/grovetools/places/config"
	"github.com/grovetools/places/errors"
	"github.com/grovetools/places/logging"
	"github.com/grovetools/places/pkg/paths"
	"github.com/grovetools/places/pkg/places"
	"github.com/grovetools/places/pkg/volumes"
)

// LocalClient implements Client by scanning the system in-process.
// The first query builds a one-shot manager; later queries reuse its
// snapshot.
type LocalClient struct {
	cfg    *config.Config
	logger *logrus.Entry

	// newMonitor is replaced in tests.
	newMonitor func(ctx context.Context) (volumes.Monitor, error)

	once sync.Once
	snap places.Snapshot
	err  error
}

// NewLocalClient creates a new LocalClient.
func NewLocalClient(cfg *config.Config) *LocalClient {
	if cfg == nil {
		cfg = config.Default()
	}
	c := &LocalClient{cfg: cfg, logger: logging.NewLogger("places-client")}
	c.newMonitor = func(ctx context.Context) (volumes.Monitor, error) {
		return volumes.NewSystemMonitor(ctx, volumes.SystemOptions{
			Ignore:     cfg.Mounts.Ignore,
			MediaRoots: cfg.Mounts.MediaRoots,
			GvfsDir:    paths.GvfsMountDir(),
			Logger:     c.logger,
		})
	}
	return c
}

func (c *LocalClient) load(ctx context.Context) (places.Snapshot, error) {
	c.once.Do(func() {
		monitor, err := c.newMonitor(ctx)
		if err != nil {
			c.err = errors.Wrap(err, errors.ErrCodeInternal, "failed to scan volumes")
			return
		}
		manager, err := places.NewManager(places.Options{
			UseSymbolicIcons: c.cfg.UseSymbolicIcons,
			Monitor:          monitor,
			BookmarkFiles:    c.cfg.Bookmarks.Files,
			Logger:           c.logger,
		})
		if err != nil {
			c.err = err
			return
		}
		defer manager.Destroy()
		c.snap = manager.Snapshot()
	})
	return c.snap, c.err
}

// GetPlaces returns all four lists.
func (c *LocalClient) GetPlaces(ctx context.Context) (places.Snapshot, error) {
	return c.load(ctx)
}

// GetPlace returns one list.
func (c *LocalClient) GetPlace(ctx context.Context, kind places.Kind) ([]places.EntryView, error) {
	snap, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	return snap.List(kind), nil
}

// StreamPlaces returns an error since streaming is only available via the daemon.
func (c *LocalClient) StreamPlaces(ctx context.Context) (<-chan Update, error) {
	return nil, errors.New(errors.ErrCodeDaemonNotRunning,
		"streaming needs the daemon; start it with 'places daemon start'")
}

// IsRunning returns false since this is the local fallback client.
func (c *LocalClient) IsRunning() bool {
	return false
}

// Close is a no-op for LocalClient.
func (c *LocalClient) Close() error {
	return nil
}

var _ Client = (*LocalClient)(nil)
