package volumes

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/moby/patternmatcher"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/sirupsen/logrus"

	"github.com/grovetools/places/command"
	"github.com/grovetools/places/logging"
)

// DefaultPollInterval is how often SystemMonitor rescans when no filesystem
// hint arrives.
const DefaultPollInterval = 2 * time.Second

// DefaultHintDelay is how long SystemMonitor waits after a filesystem hint
// before rescanning. Hints arriving in that window share one rescan.
const DefaultHintDelay = 250 * time.Millisecond

// PartitionsFunc lists the mount table.
type PartitionsFunc func(ctx context.Context) ([]disk.PartitionStat, error)

// SystemOptions configures a SystemMonitor. Zero values select defaults.
type SystemOptions struct {
	Runner       command.Runner
	Partitions   PartitionsFunc
	PollInterval time.Duration
	HintDelay    time.Duration
	// Ignore holds mount point patterns (patternmatcher syntax) to hide.
	Ignore []string
	// MediaRoots are directories whose sub-mounts are shown. They are also
	// watched so new mounts are picked up before the next poll.
	MediaRoots []string
	GvfsDir    string
	HomeDir    string
	Logger     *logrus.Entry
}

// SystemMonitor is the Monitor backed by lsblk, the kernel mount table and
// the gvfs FUSE directory.
type SystemMonitor struct {
	handlerSet

	opts   SystemOptions
	ignore *patternmatcher.PatternMatcher
	logger *logrus.Entry

	mu   sync.RWMutex
	snap *snapshot

	scanMu sync.Mutex
}

// DefaultMediaRoots returns the usual removable-media mount parents.
func DefaultMediaRoots() []string {
	roots := []string{"/media", "/mnt", "/run/media"}
	if user := os.Getenv("USER"); user != "" {
		roots = append(roots, filepath.Join("/media", user), filepath.Join("/run/media", user))
	}
	return roots
}

// NewSystemMonitor builds a monitor and performs the first scan, so the
// enumeration methods are populated as soon as it returns.
func NewSystemMonitor(ctx context.Context, opts SystemOptions) (*SystemMonitor, error) {
	if opts.Runner == nil {
		opts.Runner = command.NewRunner()
	}
	if opts.Partitions == nil {
		opts.Partitions = func(ctx context.Context) ([]disk.PartitionStat, error) {
			return disk.PartitionsWithContext(ctx, true)
		}
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.HintDelay <= 0 {
		opts.HintDelay = DefaultHintDelay
	}
	if len(opts.MediaRoots) == 0 {
		opts.MediaRoots = DefaultMediaRoots()
	}
	if opts.HomeDir == "" {
		opts.HomeDir, _ = os.UserHomeDir()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewLogger("volumes")
	}

	m := &SystemMonitor{opts: opts, logger: opts.Logger, snap: &snapshot{}}
	if len(opts.Ignore) > 0 {
		pm, err := patternmatcher.New(trimLeadingSlashes(opts.Ignore))
		if err != nil {
			return nil, err
		}
		m.ignore = pm
	}

	if err := m.Refresh(ctx); err != nil {
		m.logger.WithError(err).Warn("Initial volume scan incomplete")
	}
	return m, nil
}

func trimLeadingSlashes(patterns []string) []string {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		for len(p) > 1 && p[0] == '/' {
			p = p[1:]
		}
		out = append(out, p)
	}
	return out
}

// Refresh rescans the system and emits an event for every kind of change
// found since the previous scan. Partial failures keep whatever could be
// read and are returned after the snapshot is installed.
func (m *SystemMonitor) Refresh(ctx context.Context) error {
	m.scanMu.Lock()
	defer m.scanMu.Unlock()

	in := scanInput{
		gvfsDir:    m.opts.GvfsDir,
		home:       filepath.Clean(m.opts.HomeDir),
		mediaRoots: m.opts.MediaRoots,
		ignore:     m.ignore,
	}

	var firstErr error
	devices, err := listBlockDevices(ctx, m.opts.Runner)
	if err != nil {
		m.logger.WithError(err).Debug("lsblk failed")
		firstErr = err
	}
	in.blockDevices = devices

	parts, err := m.opts.Partitions(ctx)
	if err != nil {
		m.logger.WithError(err).Debug("Reading mount table failed")
		if firstErr == nil {
			firstErr = err
		}
	}
	in.partitions = parts
	in.gvfs = readGvfsDir(m.opts.GvfsDir)

	next := buildSnapshot(in)

	m.mu.Lock()
	prev := m.snap
	m.snap = next
	m.mu.Unlock()

	events := eventsBetween(prev, next)
	if len(events) > 0 {
		m.logger.WithFields(logrus.Fields{
			"drives":  len(next.drives),
			"volumes": len(next.volumes),
			"mounts":  len(next.mounts),
			"events":  len(events),
		}).Debug("Volume state changed")
	}
	for _, e := range events {
		m.emit(e)
	}
	return firstErr
}

// Start polls for changes until ctx is cancelled. Media roots and the gvfs
// directory are watched with fsnotify so mounts appear without waiting for
// the next tick.
func (m *SystemMonitor) Start(ctx context.Context) error {
	ticker := time.NewTicker(m.opts.PollInterval)
	defer ticker.Stop()

	var hints <-chan fsnotify.Event
	if w, err := fsnotify.NewWatcher(); err != nil {
		m.logger.WithError(err).Warn("Mount hints disabled")
	} else {
		defer w.Close()
		dirs := append([]string{}, m.opts.MediaRoots...)
		if m.opts.GvfsDir != "" {
			dirs = append(dirs, m.opts.GvfsDir)
		}
		for _, dir := range dirs {
			if err := w.Add(dir); err == nil {
				m.logger.Debugf("Watching %s for mounts", dir)
			}
		}
		hints = w.Events
	}

	// settle is armed by the first hint of a burst; later hints in the
	// burst are absorbed until it fires.
	var settle <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-hints:
			if settle == nil {
				settle = time.After(m.opts.HintDelay)
			}
			continue
		case <-settle:
			settle = nil
		case <-ticker.C:
		}
		if err := m.Refresh(ctx); err != nil && ctx.Err() == nil {
			m.logger.WithError(err).Debug("Volume rescan incomplete")
		}
	}
}

func (m *SystemMonitor) current() *snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snap
}

func (m *SystemMonitor) ConnectedDrives() []*Drive {
	return append([]*Drive(nil), m.current().drives...)
}

func (m *SystemMonitor) Volumes() []*Volume {
	return append([]*Volume(nil), m.current().volumes...)
}

func (m *SystemMonitor) Mounts() []*Mount {
	return append([]*Mount(nil), m.current().mounts...)
}

func (m *SystemMonitor) Connect(kind EventKind, fn func()) HandlerID {
	return m.connect(kind, fn)
}

func (m *SystemMonitor) Disconnect(id HandlerID) {
	m.disconnect(id)
}
