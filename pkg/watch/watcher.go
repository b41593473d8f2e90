package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period used when Config.Debounce is zero.
const DefaultDebounce = 200 * time.Millisecond

// Config configures a Watcher.
type Config struct {
	// Paths are the files to watch.
	Paths []string

	// Debounce is the quiet period after the last event before the
	// callback runs (default: DefaultDebounce).
	Debounce time.Duration
}

// Watcher watches files for changes.
type Watcher struct {
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	debounce *Debouncer

	mu      sync.Mutex
	files   map[string]bool
	dirs    map[string]bool // directories added to watcher
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// New creates a watcher for cfg.Paths.
func New(cfg Config, logger *slog.Logger) (*Watcher, error) {
	if len(cfg.Paths) == 0 {
		return nil, fmt.Errorf("no paths to watch")
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}

	files, err := absFiles(cfg.Paths)
	if err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	return &Watcher{
		watcher:  fw,
		logger:   logger,
		files:    files,
		dirs:     make(map[string]bool),
		debounce: NewDebouncer(cfg.Debounce),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Watch blocks until ctx is cancelled or Stop is called, calling onChange
// with the sorted changed paths after each burst of events. Errors from
// onChange are logged and watching continues. A Watcher runs Watch once.
func (w *Watcher) Watch(ctx context.Context, onChange func(changed []string) error) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	err := w.syncDirs()
	files, dirs := len(w.files), len(w.dirs)
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		close(w.doneCh)
	}()

	if err != nil {
		return err
	}
	w.logger.Info("file watcher started", "files", files, "directories", dirs)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("file watcher stopped (context cancelled)")
			return nil

		case <-w.stopCh:
			w.logger.Info("file watcher stopped")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			path, ok := w.relevant(event)
			if !ok {
				continue
			}
			w.logger.Debug("file event detected", "path", path, "op", event.Op.String())

			w.debounce.Trigger(path, func(changed []string) {
				w.logger.Info("files changed", "paths", changed)
				if err := onChange(changed); err != nil {
					w.logger.Error("change handler failed", "error", err)
				}
			})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("file watcher error", "error", err)
		}
	}
}

// relevant returns the absolute path of events on watched files.
func (w *Watcher) relevant(event fsnotify.Event) (string, bool) {
	if event.Op == fsnotify.Chmod {
		return "", false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return "", false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return abs, w.files[abs]
}

// SetPaths replaces the watched files. It may be called from onChange, for
// instance when a changed problem file references other tables.
func (w *Watcher) SetPaths(paths []string) error {
	if len(paths) == 0 {
		return fmt.Errorf("no paths to watch")
	}
	files, err := absFiles(paths)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.files = files
	if !w.running {
		return nil
	}
	return w.syncDirs()
}

// Paths returns the watched files, sorted.
func (w *Watcher) Paths() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Sorted(maps.Keys(w.files))
}

// syncDirs adds the directories of the watched files to the fsnotify
// watcher and removes the ones no longer needed. w.mu must be held.
func (w *Watcher) syncDirs() error {
	want := make(map[string]bool)
	for f := range w.files {
		want[filepath.Dir(f)] = true
	}
	var errs []error
	for dir := range want {
		if w.dirs[dir] {
			continue
		}
		if err := w.watcher.Add(dir); err != nil {
			errs = append(errs, fmt.Errorf("failed to watch directory %q: %w", dir, err))
			continue
		}
		w.dirs[dir] = true
	}
	for dir := range w.dirs {
		if want[dir] {
			continue
		}
		// Fails when the directory is gone, which fsnotify already handled.
		_ = w.watcher.Remove(dir)
		delete(w.dirs, dir)
	}
	return errors.Join(errs...)
}

func absFiles(paths []string) (map[string]bool, error) {
	files := make(map[string]bool, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %q: %w", p, err)
		}
		files[abs] = true
	}
	return files, nil
}

// Stop stops a running Watch and releases the watcher.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	running := w.running
	w.mu.Unlock()

	if running {
		close(w.stopCh)
		<-w.doneCh
	}
	w.debounce.Stop()
	if err := w.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	return nil
}

// Debouncer collects keys until no new key arrives for the interval, then
// calls the most recent callback with all collected keys.
type Debouncer struct {
	interval time.Duration
	mu       sync.Mutex
	timer    *time.Timer
	pending  map[string]bool
	callback func([]string)
	stopped  bool
}

// NewDebouncer creates a debouncer.
func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{
		interval: interval,
		pending:  make(map[string]bool),
	}
}

// Trigger records key and restarts the quiet period.
func (d *Debouncer) Trigger(key string, callback func([]string)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	d.pending[key] = true
	d.callback = callback
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, d.fire)
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	if d.stopped || len(d.pending) == 0 {
		d.mu.Unlock()
		return
	}
	keys := make([]string, 0, len(d.pending))
	for k := range d.pending {
		keys = append(keys, k)
	}
	clear(d.pending)
	cb := d.callback
	d.mu.Unlock()

	slices.Sort(keys)
	if cb != nil {
		cb(keys)
	}
}

// Stop cancels any pending callback. Later triggers are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	clear(d.pending)
	d.callback = nil
}
