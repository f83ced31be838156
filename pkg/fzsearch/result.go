package fzsearch

import (
	"time"

	"github.com/momingse/fzsearch/internal/rank"
)

// Result is one ranked record.
type Result struct {
	// Record is the matched record.
	Record any

	// Score is the aggregate cost; lower is better.
	// Only set when ShowScore is enabled.
	Score float64

	// Scored reports whether Score is set.
	Scored bool
}

// Records returns the bare records of results, best first.
func Records(results []Result) []any {
	out := make([]any, len(results))
	for i, r := range results {
		out[i] = r.Record
	}
	return out
}

func project(hits []rank.Hit, records []any, showScore bool) []Result {
	results := make([]Result, len(hits))
	for i, h := range hits {
		results[i] = Result{Record: records[h.Index]}
		if showScore {
			results[i].Score = h.Score
			results[i].Scored = true
		}
	}
	return results
}

// SearchEvent describes one completed search.
type SearchEvent struct {
	Query   string
	Records int
	Results int
	Latency time.Duration
}

// Observer receives an event after every search.
// Implementations must be safe for concurrent use.
type Observer interface {
	ObserveSearch(SearchEvent)
}
