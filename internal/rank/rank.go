// Package rank scores decomposed records against a query and selects the
// best matches.
//
// A record's aggregate score is the sum over depths d of levelPenalty^d times
// the summed alignment cost of every fragment at depth d. Costs are negative
// or zero, lower is better. After scoring, records worse than
// DropoutRate x (best score) are dropped, the rest are sorted ascending with
// ties kept in input order and truncated to MaxResults.
package rank

import (
	"math"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/momingse/fzsearch/internal/align"
	"github.com/momingse/fzsearch/internal/flatten"
)

// Defaults applied by DefaultConfig.
const (
	DefaultMaxResults   = 10
	DefaultLevelPenalty = 1.0
	DefaultDropoutRate  = 0.8
)

// minParallelChunk is the smallest number of records handed to one worker.
const minParallelChunk = 64

// Config controls aggregation and selection.
type Config struct {
	// MaxResults caps the number of hits returned.
	MaxResults int

	// LevelPenalty weights depth d by LevelPenalty^d.
	LevelPenalty float64

	// DropoutRate keeps records scoring at or below DropoutRate x best score.
	DropoutRate float64

	// Parallelism is the number of workers scoring records.
	// Values of 0 or 1 score sequentially.
	Parallelism int
}

// DefaultConfig returns the default ranking configuration.
func DefaultConfig() Config {
	return Config{
		MaxResults:   DefaultMaxResults,
		LevelPenalty: DefaultLevelPenalty,
		DropoutRate:  DefaultDropoutRate,
	}
}

// Hit is one ranked record.
type Hit struct {
	// Index is the record's position in the ranked input.
	Index int

	// Score is the aggregate cost. Lower is better.
	Score float64
}

// Aggregate returns the depth-weighted cost of frags against query.
// An empty collection costs 0.
func Aggregate(frags flatten.Fragments, query string, scorer align.Scorer, levelPenalty float64) float64 {
	var total float64
	for depth, level := range frags {
		if len(level) == 0 {
			continue
		}
		var sum float64
		for _, fragment := range level {
			sum += scorer.Score(fragment, query)
		}
		total += sum * math.Pow(levelPenalty, float64(depth))
	}
	return total
}

// Score returns the aggregate cost of every entry, in input order.
func Score(query string, entries []flatten.Fragments, scorer align.Scorer, cfg Config) []float64 {
	scores := make([]float64, len(entries))
	if cfg.Parallelism <= 1 || len(entries) <= minParallelChunk {
		for i, frags := range entries {
			scores[i] = Aggregate(frags, query, scorer, cfg.LevelPenalty)
		}
		return scores
	}

	chunk := (len(entries) + cfg.Parallelism - 1) / cfg.Parallelism
	if chunk < minParallelChunk {
		chunk = minParallelChunk
	}

	var g errgroup.Group
	g.SetLimit(cfg.Parallelism)
	for start := 0; start < len(entries); start += chunk {
		end := min(start+chunk, len(entries))
		g.Go(func() error {
			for i := start; i < end; i++ {
				scores[i] = Aggregate(entries[i], query, scorer, cfg.LevelPenalty)
			}
			return nil
		})
	}
	_ = g.Wait()

	return scores
}

// Select applies the dropout threshold to scores, sorts the survivors
// ascending and truncates them to maxResults.
//
// The threshold is dropoutRate times the lowest score, where the lowest score
// is never above 0. With the cost convention the best score is the most
// negative one, so the threshold sits between it and 0.
func Select(scores []float64, dropoutRate float64, maxResults int) []Hit {
	if len(scores) == 0 || maxResults <= 0 {
		return []Hit{}
	}

	minScore := 0.0
	for _, s := range scores {
		minScore = math.Min(minScore, s)
	}
	threshold := minScore * dropoutRate

	hits := make([]Hit, 0, len(scores))
	for i, s := range scores {
		if s <= threshold {
			hits = append(hits, Hit{Index: i, Score: s})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score < hits[j].Score
	})

	if len(hits) > maxResults {
		hits = hits[:maxResults]
	}
	return hits
}

// Rank scores entries against query and returns the selected hits.
// An empty input yields an empty, non-nil result.
func Rank(query string, entries []flatten.Fragments, scorer align.Scorer, cfg Config) []Hit {
	if len(entries) == 0 {
		return []Hit{}
	}
	scores := Score(query, entries, scorer, cfg)
	return Select(scores, cfg.DropoutRate, cfg.MaxResults)
}
