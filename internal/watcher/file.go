package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// FileWatcher reports changes to one file.
type FileWatcher struct {
	path      string
	abs       string
	opts      Options
	fsWatcher *fsnotify.Watcher
	debouncer *Debouncer
	errors    chan error
	stopCh    chan struct{}
	mu        sync.Mutex
	stopped   bool
	logger    *slog.Logger
}

// New creates a watcher for path. The file does not need to exist yet, but
// its directory does when fsnotify is used.
func New(path string, opts Options) (*FileWatcher, error) {
	opts = opts.WithDefaults()

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve absolute path: %w", err)
	}

	w := &FileWatcher{
		path:      path,
		abs:       filepath.Clean(abs),
		opts:      opts,
		debouncer: NewDebouncer(opts.DebounceWindow),
		errors:    make(chan error, 10),
		stopCh:    make(chan struct{}),
		logger:    slog.Default(),
	}

	if !opts.ForcePolling {
		fsw, err := fsnotify.NewWatcher()
		if err == nil {
			if err := fsw.Add(filepath.Dir(w.abs)); err == nil {
				w.fsWatcher = fsw
			} else {
				_ = fsw.Close()
			}
		}
	}
	return w, nil
}

// SetLogger sets the logger for fallback and error reports.
func (w *FileWatcher) SetLogger(logger *slog.Logger) {
	if logger != nil {
		w.logger = logger
	}
}

// Polling reports whether the watcher fell back to polling.
func (w *FileWatcher) Polling() bool {
	return w.fsWatcher == nil
}

// Run watches until ctx is done or Stop is called. It returns nil after Stop
// and ctx.Err() after cancellation.
func (w *FileWatcher) Run(ctx context.Context) error {
	if w.fsWatcher == nil {
		w.logger.Debug("watch_polling",
			slog.String("path", w.path),
			slog.Duration("interval", w.opts.PollInterval))
		return w.poll(ctx)
	}

	w.logger.Debug("watch_started", slog.String("path", w.path))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stopCh:
			return nil
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handle(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.emitError(err)
		}
	}
}

// handle converts an fsnotify event for the watched file. Events for its
// siblings are ignored.
func (w *FileWatcher) handle(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.abs {
		return
	}

	var op Operation
	switch {
	case event.Op&fsnotify.Create != 0:
		op = OpCreate
	case event.Op&fsnotify.Write != 0:
		op = OpModify
	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		op = OpDelete
	default:
		return
	}

	w.debouncer.Add(Event{Path: w.path, Operation: op, Timestamp: time.Now()})
}

// Events returns the channel of debounced events. It is closed by Stop.
func (w *FileWatcher) Events() <-chan Event {
	return w.debouncer.Output()
}

// Errors returns non-fatal watch errors. It is closed by Stop.
func (w *FileWatcher) Errors() <-chan error {
	return w.errors
}

func (w *FileWatcher) emitError(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return
	}
	select {
	case w.errors <- err:
	default:
		w.logger.Warn("watch_error_dropped", slog.String("error", err.Error()))
	}
}

// Stop stops the watcher and releases resources. Safe to call multiple times.
func (w *FileWatcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}
	w.stopped = true
	close(w.stopCh)
	w.debouncer.Stop()
	close(w.errors)

	if w.fsWatcher != nil {
		return w.fsWatcher.Close()
	}
	return nil
}
