package fzsearch

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/momingse/fzsearch/internal/rank"
)

// Search ranks records against query in one call without keeping any state.
//
// It applies the same options, validation and scoring as an Engine. Returned
// results reference the caller's records.
func Search(query string, records []any, opts ...Option) ([]Result, error) {
	start := time.Now()

	s := newSettings(opts)
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if err := checkRecords(records); err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	frags := decomposeAll(records, s.Keys)
	hits := rank.Rank(query, frags, s.scorer(), s.rankConfig())
	results := project(hits, records, s.ShowScore)

	latency := time.Since(start)
	s.logger.Debug("search_complete",
		slog.String("query", query),
		slog.Int("records", len(records)),
		slog.Int("results", len(results)),
		slog.Duration("latency", latency))

	if s.observer != nil {
		s.observer.ObserveSearch(SearchEvent{
			Query:   query,
			Records: len(records),
			Results: len(results),
			Latency: latency,
		})
	}
	return results, nil
}
