package watcher

import (
	"context"
	"os"
	"time"
)

// fileSnapshot is what polling compares between ticks.
type fileSnapshot struct {
	exists  bool
	modTime time.Time
	size    int64
}

func snapshot(path string) (fileSnapshot, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fileSnapshot{}, nil
		}
		return fileSnapshot{}, err
	}
	return fileSnapshot{exists: true, modTime: info.ModTime(), size: info.Size()}, nil
}

// diff returns the change between two snapshots, if any.
func diff(prev, cur fileSnapshot) (Operation, bool) {
	switch {
	case !prev.exists && cur.exists:
		return OpCreate, true
	case prev.exists && !cur.exists:
		return OpDelete, true
	case cur.exists && (!cur.modTime.Equal(prev.modTime) || cur.size != prev.size):
		return OpModify, true
	}
	return 0, false
}

// poll stats the file every interval until ctx is done or stop is closed.
func (w *FileWatcher) poll(ctx context.Context) error {
	prev, err := snapshot(w.path)
	if err != nil {
		return err
	}

	ticker := time.NewTicker(w.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stopCh:
			return nil
		case <-ticker.C:
			cur, err := snapshot(w.path)
			if err != nil {
				w.emitError(err)
				continue
			}
			if op, changed := diff(prev, cur); changed {
				w.debouncer.Add(Event{Path: w.path, Operation: op, Timestamp: time.Now()})
			}
			prev = cur
		}
	}
}
