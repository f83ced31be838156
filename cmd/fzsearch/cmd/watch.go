package cmd

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/momingse/fzsearch/internal/dataset"
	"github.com/momingse/fzsearch/internal/watcher"
	"github.com/momingse/fzsearch/pkg/fzsearch"
)

// watchDataset reloads the engine's records whenever the data file changes
// and calls onReload with the new record count. The returned function stops
// watching and waits for the reload loop to finish.
func watchDataset(ctx context.Context, logger *slog.Logger, opts searchOptions, engine *fzsearch.Engine, onReload func(int)) (func(), error) {
	w, err := watcher.New(opts.data, watcher.DefaultOptions())
	if err != nil {
		return nil, err
	}
	w.SetLogger(logger)

	load := func() ([]any, error) {
		if opts.dataFormat == "" {
			return dataset.Load(opts.data)
		}
		return dataset.LoadAs(opts.data, opts.dataFormat)
	}

	ctx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return w.Run(gctx)
	})
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case err, ok := <-w.Errors():
				if !ok {
					return nil
				}
				logger.Warn("watch_error", slog.String("error", err.Error()))
			case ev, ok := <-w.Events():
				if !ok {
					return nil
				}
				if n, ok := reload(ev, load, engine, logger); ok && onReload != nil {
					onReload(n)
				}
			}
		}
	})

	stop := func() {
		cancel()
		_ = w.Stop()
		_ = g.Wait()
	}
	return stop, nil
}

// reload applies one change of the data file to engine. A removed or
// unreadable file keeps the current records.
func reload(ev watcher.Event, load func() ([]any, error), engine *fzsearch.Engine, logger *slog.Logger) (int, bool) {
	if ev.Operation == watcher.OpDelete {
		logger.Warn("dataset_removed", slog.String("path", ev.Path))
		return 0, false
	}

	records, err := load()
	if err != nil {
		logger.Warn("dataset_reload_failed",
			slog.String("path", ev.Path),
			slog.String("error", err.Error()))
		return 0, false
	}
	if err := engine.SetRecords(records); err != nil {
		logger.Warn("dataset_reload_failed",
			slog.String("path", ev.Path),
			slog.String("error", err.Error()))
		return 0, false
	}

	logger.Info("dataset_reloaded",
		slog.String("path", ev.Path),
		slog.String("operation", ev.Operation.String()),
		slog.Int("records", len(records)))
	return len(records), true
}
