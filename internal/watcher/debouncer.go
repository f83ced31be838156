package watcher

import (
	"sync"
	"time"
)

// Debouncer coalesces a burst of changes into one event, emitted once the
// file has been quiet for the window:
//   - CREATE + MODIFY = CREATE (file is still new)
//   - CREATE + DELETE = nothing (file never really existed)
//   - MODIFY + DELETE = DELETE (file is gone)
//   - DELETE + CREATE = MODIFY (file was replaced)
type Debouncer struct {
	window  time.Duration
	mu      sync.Mutex
	pending *Event
	first   Operation
	timer   *time.Timer
	output  chan Event
	stopped bool
}

// NewDebouncer creates a debouncer with the given quiet window.
func NewDebouncer(window time.Duration) *Debouncer {
	return &Debouncer{
		window: window,
		output: make(chan Event, 1),
	}
}

// Add records a raw change and restarts the quiet window.
func (d *Debouncer) Add(event Event) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	if d.pending == nil {
		d.pending = &event
		d.first = event.Operation
	} else {
		d.pending = coalesce(d.first, *d.pending, event)
		if d.pending == nil {
			// Nothing is left to report; the next change starts fresh.
			if d.timer != nil {
				d.timer.Stop()
			}
			return
		}
	}

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.flush)
}

// coalesce merges next into existing. Returns nil if they cancel out.
func coalesce(first Operation, existing, next Event) *Event {
	switch first {
	case OpCreate:
		switch next.Operation {
		case OpModify:
			existing.Timestamp = next.Timestamp
			return &existing
		case OpDelete:
			return nil
		}
	case OpDelete:
		if next.Operation == OpCreate {
			next.Operation = OpModify
			return &next
		}
	}
	return &next
}

func (d *Debouncer) flush() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped || d.pending == nil {
		return
	}
	event := *d.pending
	d.pending = nil

	// A reader that has not taken the previous event yet gets the newer one.
	select {
	case <-d.output:
	default:
	}
	d.output <- event
}

// Output returns the channel of debounced events.
func (d *Debouncer) Output() <-chan Event {
	return d.output
}

// Stop discards pending changes and closes the output channel. Safe to call
// multiple times.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = nil
	close(d.output)
}
