package logging

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// RotatingWriter appends log records to the file named by --log-file or
// logging.file. Each fzsearch run appends to the same file, so the size limit
// is checked when the file is opened as well as before every write. Rotation
// renames the file to path.1, shifts older copies up by one and drops the copy
// past MaxFiles.
type RotatingWriter struct {
	path  string
	limit int64
	keep  int
	sync  bool

	mu   sync.Mutex
	file *os.File
	size int64
}

// NewRotatingWriter opens cfg.FilePath for appending, creating missing
// directories. A file that is already at its limit is rotated first.
// With cfg.Sync every record is flushed to disk before Write returns.
func NewRotatingWriter(cfg Config) (*RotatingWriter, error) {
	w := &RotatingWriter{
		path:  cfg.FilePath,
		limit: int64(cfg.MaxSizeMB) << 20,
		keep:  cfg.MaxFiles,
		sync:  cfg.Sync,
	}

	if err := os.MkdirAll(filepath.Dir(w.path), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	if err := w.open(); err != nil {
		return nil, err
	}
	if w.size >= w.limit {
		if err := w.rotate(); err != nil {
			_ = w.Close()
			return nil, err
		}
	}
	return w, nil
}

// Write appends p, rotating first when p would push the file past its limit.
// A record larger than the limit still goes into a fresh file of its own.
func (w *RotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return 0, os.ErrClosed
	}
	if w.size > 0 && w.size+int64(len(p)) > w.limit {
		if err := w.rotate(); err != nil {
			if w.file == nil {
				return 0, err
			}
			// Keep logging into the current file.
			_, _ = fmt.Fprintf(os.Stderr, "log rotation failed: %v\n", err)
		}
	}

	n, err := w.file.Write(p)
	w.size += int64(n)
	if err == nil && w.sync {
		err = w.file.Sync()
	}
	return n, err
}

// Close flushes and closes the file. Later writes fail with os.ErrClosed.
func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}
	err := errors.Join(w.file.Sync(), w.file.Close())
	w.file = nil
	return err
}

func (w *RotatingWriter) open() error {
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("stat log file: %w", err)
	}
	w.file = f
	w.size = info.Size()
	return nil
}

// rotate closes the file, shifts the generations and reopens an empty file.
// The file is reopened even when shifting fails.
func (w *RotatingWriter) rotate() error {
	closeErr := w.file.Close()
	w.file = nil
	shiftErr := w.shift()
	if err := w.open(); err != nil {
		return errors.Join(closeErr, shiftErr, err)
	}
	return errors.Join(closeErr, shiftErr)
}

// shift renames path.N-1 to path.N for N down to 2, then path to path.1.
func (w *RotatingWriter) shift() error {
	if err := os.Remove(w.generation(w.keep)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove oldest log: %w", err)
	}
	for n := w.keep - 1; n >= 1; n-- {
		if err := os.Rename(w.generation(n), w.generation(n+1)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("rotate log: %w", err)
		}
	}
	if err := os.Rename(w.path, w.generation(1)); err != nil {
		return fmt.Errorf("rotate log: %w", err)
	}
	return nil
}

func (w *RotatingWriter) generation(n int) string {
	return fmt.Sprintf("%s.%d", w.path, n)
}
