// Package watcher reports changes to a single file.
//
// fsnotify watches the file's directory, so editors that save by writing a
// temporary file and renaming it over the original are still seen. When
// fsnotify is unavailable the file is polled instead.
//
// Events are debounced so a burst of writes produces one event.
//
//	w, err := watcher.New("books.json", watcher.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	defer w.Stop()
//
//	go func() { _ = w.Run(ctx) }()
//
//	for event := range w.Events() {
//	    if event.Operation == watcher.OpDelete {
//	        continue
//	    }
//	    // reload event.Path
//	}
package watcher
