// Package fswatch reports changes to a fixed set of files.
//
// fsnotify watches directories, not files, and does not follow symlinks. A
// Watcher therefore watches each file's parent directory, filters events by
// name, and additionally watches the directory a symlinked file points into
// so edits to the link target are reported under the link's path.
package fswatch

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/grovetools/places/logging"
	"github.com/sirupsen/logrus"
)

// ChangeFunc receives the watched path that changed. It is called from the
// watcher's goroutine.
type ChangeFunc func(path string)

// Watcher watches a set of files for writes, creation, removal and renames.
type Watcher struct {
	watcher  *fsnotify.Watcher
	logger   *logrus.Entry
	onChange ChangeFunc

	// names maps an event path to the watched path it stands for. Link
	// targets map back to the link.
	names map[string]string

	closeOnce sync.Once
	done      chan struct{}
}

// Watch starts watching files. Files need not exist yet; their parent
// directory must. Files whose directory cannot be watched are skipped with a
// warning, and an error is returned only if nothing could be watched at all.
func Watch(files []string, onChange ChangeFunc) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:  fw,
		logger:   logging.NewLogger("fswatch"),
		onChange: onChange,
		names:    make(map[string]string),
		done:     make(chan struct{}),
	}

	watchedDirs := make(map[string]bool)
	addDir := func(dir string) bool {
		if watchedDirs[dir] {
			return true
		}
		if err := fw.Add(dir); err != nil {
			w.logger.WithError(err).Warnf("Failed to watch directory %s", dir)
			return false
		}
		watchedDirs[dir] = true
		return true
	}

	var lastErr error
	for _, file := range files {
		file = filepath.Clean(file)
		if !addDir(filepath.Dir(file)) {
			lastErr = os.ErrNotExist
			continue
		}
		w.names[file] = file

		info, err := os.Lstat(file)
		if err != nil || info.Mode()&os.ModeSymlink == 0 {
			continue
		}
		target, err := filepath.EvalSymlinks(file)
		if err != nil {
			w.logger.WithError(err).Warnf("Failed to resolve symlink %s", file)
			continue
		}
		if addDir(filepath.Dir(target)) {
			w.names[target] = file
			w.logger.Debugf("Watching symlink target %s for %s", target, file)
		}
	}

	if len(watchedDirs) == 0 {
		fw.Close()
		if lastErr == nil {
			lastErr = os.ErrInvalid
		}
		return nil, lastErr
	}

	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			name, ok := w.names[filepath.Clean(event.Name)]
			if !ok {
				continue
			}
			w.logger.Debugf("fsnotify event: %s op=%v", event.Name, event.Op)
			select {
			case <-w.done:
				return
			default:
			}
			if w.onChange != nil {
				w.onChange(name)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Errorf("Watcher error: %v", err)
		case <-w.done:
			return
		}
	}
}

// Close stops the watcher. Changes made after Close returns are never
// reported, but a callback already being dispatched when Close is called may
// still run once, so callers that need a hard stop must check their own
// closed state in the callback. It is safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.watcher.Close()
	})
	return err
}
