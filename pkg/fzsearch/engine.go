package fzsearch

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/momingse/fzsearch/internal/align"
	"github.com/momingse/fzsearch/internal/flatten"
	"github.com/momingse/fzsearch/internal/rank"
	"github.com/momingse/fzsearch/internal/record"
)

// Engine holds a record collection with its decompositions and answers
// searches against it.
//
// Records are deep-copied and decomposed when added, so later changes to the
// caller's values do not affect ranking. Decompositions are rebuilt only by
// SetRecords.
type Engine struct {
	mu       sync.RWMutex
	opts     Options
	scorer   align.Scorer
	records  []any
	frags    []flatten.Fragments
	logger   *slog.Logger
	observer Observer
}

// New creates an engine over records.
//
// Returns an error matching ErrInvalidOption or ErrInvalidKey if an option is
// out of range, and ErrInvalidRecord if any record is neither text nor an
// object.
func New(records []any, opts ...Option) (*Engine, error) {
	s := newSettings(opts)
	if err := s.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		opts:     s.Options.clone(),
		scorer:   s.scorer(),
		logger:   s.logger,
		observer: s.observer,
	}
	if err := e.SetRecords(records); err != nil {
		return nil, err
	}
	return e, nil
}

// SetRecords replaces every record. On error the engine is unchanged.
func (e *Engine) SetRecords(records []any) error {
	if err := checkRecords(records); err != nil {
		return fmt.Errorf("set records: %w", err)
	}
	copies, frags := e.prepare(records)

	e.mu.Lock()
	defer e.mu.Unlock()

	e.records = copies
	e.frags = frags

	e.logger.Debug("records_replaced",
		slog.Int("records", len(copies)),
		slog.Int("fragments", countFragments(frags)))
	return nil
}

// AddRecords appends records. On error the engine is unchanged.
func (e *Engine) AddRecords(records []any) error {
	if err := checkRecords(records); err != nil {
		return fmt.Errorf("add records: %w", err)
	}
	copies, frags := e.prepare(records)

	e.mu.Lock()
	defer e.mu.Unlock()

	e.records = append(e.records, copies...)
	e.frags = append(e.frags, frags...)

	e.logger.Debug("records_added",
		slog.Int("added", len(copies)),
		slog.Int("records", len(e.records)))
	return nil
}

// prepare copies and decomposes records. Keys never change after New, so no
// lock is needed.
func (e *Engine) prepare(records []any) ([]any, []flatten.Fragments) {
	copies := make([]any, len(records))
	for i, rec := range records {
		copies[i] = record.Clone(rec)
	}
	return copies, decomposeAll(copies, e.opts.Keys)
}

// SetMaxResults changes the result cap for later searches.
func (e *Engine) SetMaxResults(n int) error {
	if n < 0 {
		return invalidOption("max_results", fmt.Sprint(n), "must be non-negative")
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.opts.MaxResults = n
	return nil
}

// Len returns the number of records.
func (e *Engine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.records)
}

// Options returns a copy of the engine's options.
func (e *Engine) Options() Options {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.opts.clone()
}

// Search ranks every record against query and returns the best matches,
// lowest score first. Records that tie keep their insertion order.
// Returned records are the engine's copies and must not be modified.
func (e *Engine) Search(query string) []Result {
	start := time.Now()

	e.mu.RLock()
	hits := rank.Rank(query, e.frags, e.scorer, e.opts.rankConfig())
	results := project(hits, e.records, e.opts.ShowScore)
	total := len(e.records)
	e.mu.RUnlock()

	latency := time.Since(start)
	e.logger.Debug("search_complete",
		slog.String("query", query),
		slog.Int("records", total),
		slog.Int("results", len(results)),
		slog.Duration("latency", latency))

	if e.observer != nil {
		e.observer.ObserveSearch(SearchEvent{
			Query:   query,
			Records: total,
			Results: len(results),
			Latency: latency,
		})
	}
	return results
}

func countFragments(frags []flatten.Fragments) int {
	n := 0
	for _, f := range frags {
		n += f.Count()
	}
	return n
}
