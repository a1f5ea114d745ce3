package places

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/grovetools/places/internal/metrics"
	"github.com/grovetools/places/pkg/fswatch"
	"github.com/grovetools/places/pkg/location"
	"github.com/grovetools/places/pkg/mainloop"
)

// DefaultDebounce is how long bookmark file changes are coalesced.
const DefaultDebounce = 100 * time.Millisecond

// WatchFunc starts watching files and calls onChange from any goroutine.
type WatchFunc func(files []string, onChange func(path string)) (io.Closer, error)

// WatchFiles is the fsnotify-backed WatchFunc.
func WatchFiles(files []string, onChange func(path string)) (io.Closer, error) {
	return fswatch.Watch(files, onChange)
}

// NoWatch watches nothing. Managers that are queried once and destroyed
// use it.
func NoWatch([]string, func(string)) (io.Closer, error) {
	return nopCloser{}, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// BookmarksFunc receives a freshly parsed bookmarks list.
type BookmarksFunc func(bookmarks []*Entry)

// BookmarkStoreOptions configures a BookmarkStore.
type BookmarkStoreOptions struct {
	// Candidates are tried in order; the first existing file is used.
	Candidates []string
	Debounce   time.Duration
	Watch      WatchFunc
	Factory    *Factory
	Locations  location.Service
	Scheduler  mainloop.Scheduler
	// Special returns the current special places; bookmarks duplicating
	// one of them are dropped.
	Special func() []*Entry
	Deliver BookmarksFunc
	Logger  *logrus.Entry
	Metrics *metrics.Metrics
}

// BookmarkStore keeps the bookmarks list in sync with the GTK bookmarks
// file. Bursts of file changes are coalesced with a single pending timer.
//
// Everything except construction runs on the scheduler's goroutine.
type BookmarkStore struct {
	opts   BookmarkStoreOptions
	path   string
	watch  io.Closer
	logger *logrus.Entry

	pending mainloop.Timer
	closed  bool
}

// NewBookmarkStore locates the bookmarks file, loads it and starts watching
// it. Without a bookmarks file the store is inert: it never delivers.
func NewBookmarkStore(opts BookmarkStoreOptions) *BookmarkStore {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Watch == nil {
		opts.Watch = WatchFiles
	}
	s := &BookmarkStore{opts: opts, logger: opts.Logger}

	s.path = findBookmarksFile(opts.Candidates)
	if s.path == "" {
		s.logger.Debug("No bookmarks file found")
		return s
	}
	s.logger.WithField("path", s.path).Debug("Using bookmarks file")

	w, err := opts.Watch([]string{s.path}, func(string) {
		opts.Scheduler.Post(s.onFileChanged)
	})
	if err != nil {
		s.logger.WithError(err).Warn("Cannot watch bookmarks file; changes will not be picked up")
	} else {
		s.watch = w
	}

	s.Reload()
	return s
}

func findBookmarksFile(candidates []string) string {
	for _, p := range candidates {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Path returns the bookmarks file in use, or "" when the store is inert.
func (s *BookmarkStore) Path() string {
	return s.path
}

func (s *BookmarkStore) onFileChanged() {
	if s.closed || s.pending != nil {
		return
	}
	s.pending = s.opts.Scheduler.AfterFunc(s.opts.Debounce, func() {
		s.pending = nil
		if s.closed {
			return
		}
		s.Reload()
	})
}

// Reload reads and parses the bookmarks file and delivers the result. A
// read failure yields an empty list.
func (s *BookmarkStore) Reload() {
	if s.closed || s.path == "" {
		return
	}
	start := time.Now()

	var bookmarks []*Entry
	data, err := os.ReadFile(s.path)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to read bookmarks file")
	} else {
		bookmarks = s.parse(string(data))
	}

	s.opts.Deliver(bookmarks)
	s.opts.Metrics.RecordBookmarkReload(time.Since(start))
}

// parse turns bookmarks file content into entries. Each line is
// "<uri>[ <label>]". Missing native paths and duplicates of special places
// or earlier bookmarks are dropped.
func (s *BookmarkStore) parse(content string) []*Entry {
	var special []*Entry
	if s.opts.Special != nil {
		special = s.opts.Special()
	}

	bookmarks := []*Entry{}
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSuffix(line, "\r")
		uri, label, _ := strings.Cut(line, " ")
		if uri == "" {
			continue
		}

		loc := location.NewForURI(uri)
		if loc.IsZero() {
			s.logger.WithField("uri", uri).Debug("Skipping malformed bookmark")
			continue
		}
		if loc.IsNative() && !s.opts.Locations.Exists(loc) {
			s.logger.WithField("uri", uri).Debug("Skipping bookmark to missing path")
			continue
		}
		if containsLocation(special, loc) || containsLocation(bookmarks, loc) {
			continue
		}

		bookmarks = append(bookmarks, s.opts.Factory.Place(KindBookmarks, loc, label, ""))
	}
	return bookmarks
}

func containsLocation(entries []*Entry, loc location.Location) bool {
	for _, e := range entries {
		if e.Location().Equal(loc) {
			return true
		}
	}
	return false
}

// Close stops watching and cancels a pending reload. It is idempotent.
func (s *BookmarkStore) Close() {
	if s.closed {
		return
	}
	s.closed = true
	if s.watch != nil {
		if err := s.watch.Close(); err != nil {
			s.logger.WithError(err).Debug("Closing bookmarks watch")
		}
		s.watch = nil
	}
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
}
