package watcher

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// IgnoreChecker is used by the watcher to check if a path should be ignored.
type IgnoreChecker interface {
	ShouldIgnoreDir(absolutePath string) bool
	ShouldIgnore(absolutePath string) bool
}

// Watcher turns file system notifications under a root into debounced save
// and remove changes, the save-event source of the sync loop.
type Watcher struct {
	fsWatcher     *fsnotify.Watcher
	debouncer     *Debouncer
	ignoreChecker IgnoreChecker
	rootDir       string
	logger        *slog.Logger
	// alwaysEmit lists paths reported even when ignored (ignore rule files)
	alwaysEmit func(path string) bool
}

// Options configures a Watcher.
type Options struct {
	RootDir       string
	IgnoreChecker IgnoreChecker
	Debounce      time.Duration // default 100ms
	AlwaysEmit    func(path string) bool
	Logger        *slog.Logger
}

// NewWatcher registers every non-ignored directory under the root.
func NewWatcher(options Options) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if options.Debounce <= 0 {
		options.Debounce = 100 * time.Millisecond
	}
	if options.AlwaysEmit == nil {
		options.AlwaysEmit = func(string) bool { return false }
	}

	w := &Watcher{
		fsWatcher:     fsWatcher,
		debouncer:     NewDebouncer(options.Debounce),
		ignoreChecker: options.IgnoreChecker,
		rootDir:       options.RootDir,
		logger:        options.Logger,
		alwaysEmit:    options.AlwaysEmit,
	}

	err = filepath.WalkDir(w.rootDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.rootDir && w.ignoreChecker.ShouldIgnoreDir(path) {
			return filepath.SkipDir
		}
		if watchErr := fsWatcher.Add(path); watchErr != nil {
			w.logger.Warn("failed to watch directory", "path", path, "error", watchErr)
		}
		return nil
	})
	if err != nil {
		fsWatcher.Close()
		return nil, err
	}

	return w, nil
}

// Changes returns the channel of debounced change batches.
func (w *Watcher) Changes() <-chan []Change {
	return w.debouncer.Output()
}

// Start consumes fsnotify events until the watcher is closed. Call it in a goroutine.
func (w *Watcher) Start() {
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if !w.ignoreChecker.ShouldIgnoreDir(path) {
				if err := w.fsWatcher.Add(path); err != nil {
					w.logger.Warn("failed to watch new directory", "path", path, "error", err)
				}
			}
			return
		}
	}

	if !w.alwaysEmit(path) && w.ignoreChecker.ShouldIgnore(path) {
		return
	}

	switch {
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		w.debouncer.Add(path, OpSave)
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		w.debouncer.Add(path, OpRemove)
	}
}

// Close stops the watcher and releases resources.
func (w *Watcher) Close() error {
	return w.fsWatcher.Close()
}
