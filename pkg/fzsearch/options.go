package fzsearch

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/momingse/fzsearch/internal/align"
	ferrors "github.com/momingse/fzsearch/internal/errors"
	"github.com/momingse/fzsearch/internal/flatten"
	"github.com/momingse/fzsearch/internal/rank"
)

// SimilarityFunc scores a pair of runes; higher means more alike.
type SimilarityFunc = align.SimilarityFunc

// PenaltyFunc returns the non-negative cost of a gap of the given length.
type PenaltyFunc = align.PenaltyFunc

// Options configures scoring and the shape of results.
type Options struct {
	// Keys restricts matching to the given dotted field paths.
	// Empty means every text leaf of a record is matched.
	Keys []string `yaml:"keys" json:"keys"`

	// MaxResults caps the number of results (default: 10).
	MaxResults int `yaml:"max_results" json:"max_results"`

	// ShowScore attaches the aggregate score to every result.
	ShowScore bool `yaml:"show_score" json:"show_score"`

	// LevelPenalty weights fragments at depth d by LevelPenalty^d (default: 1).
	LevelPenalty float64 `yaml:"level_penalty" json:"level_penalty"`

	// DropoutRate keeps records scoring at or below DropoutRate times the
	// best score. Must be in (0, 1] (default: 0.8).
	DropoutRate float64 `yaml:"dropout_rate" json:"dropout_rate"`

	// CaseSensitive selects the built-in similarity (default: true).
	// Ignored when Similarity is set.
	CaseSensitive bool `yaml:"case_sensitive" json:"case_sensitive"`

	// Parallelism is the number of workers scoring records.
	// 0 or 1 scores on the calling goroutine.
	Parallelism int `yaml:"parallelism" json:"parallelism"`

	// ScoreCacheSize memoizes this many (fragment, query) costs when positive.
	ScoreCacheSize int `yaml:"score_cache_size" json:"score_cache_size"`

	// Similarity overrides the built-in similarity function.
	Similarity SimilarityFunc `yaml:"-" json:"-"`

	// Penalty overrides the built-in gap penalty function.
	Penalty PenaltyFunc `yaml:"-" json:"-"`
}

// DefaultOptions returns the default options.
func DefaultOptions() Options {
	return Options{
		MaxResults:    rank.DefaultMaxResults,
		LevelPenalty:  rank.DefaultLevelPenalty,
		DropoutRate:   rank.DefaultDropoutRate,
		CaseSensitive: true,
	}
}

// Validate checks that every option is in range.
func (o Options) Validate() error {
	if o.MaxResults < 0 {
		return invalidOption("max_results", fmt.Sprint(o.MaxResults), "must be non-negative")
	}
	if !(o.DropoutRate > 0 && o.DropoutRate <= 1) {
		return invalidOption("dropout_rate", fmt.Sprint(o.DropoutRate), "must be in (0, 1]")
	}
	if !(o.LevelPenalty > 0) || math.IsInf(o.LevelPenalty, 0) {
		return invalidOption("level_penalty", fmt.Sprint(o.LevelPenalty), "must be positive and finite")
	}
	if o.Parallelism < 0 {
		return invalidOption("parallelism", fmt.Sprint(o.Parallelism), "must be non-negative")
	}
	if o.ScoreCacheSize < 0 {
		return invalidOption("score_cache_size", fmt.Sprint(o.ScoreCacheSize), "must be non-negative")
	}
	for _, key := range o.Keys {
		for _, seg := range flatten.SplitKey(key) {
			if strings.TrimSpace(seg) == "" {
				return ferrors.New(ferrors.ErrCodeInvalidKey,
					fmt.Sprintf("key %q has an empty path segment", key), nil).
					WithDetail("key", key).
					WithSuggestion("use dotted field names such as author.name")
			}
		}
	}
	return nil
}

func invalidOption(name, value, reason string) error {
	return ferrors.New(ferrors.ErrCodeInvalidOption,
		fmt.Sprintf("%s %s, got %s", name, reason, value), nil).
		WithDetail("option", name).
		WithDetail("value", value)
}

// clone returns a copy that shares no slices with o.
func (o Options) clone() Options {
	o.Keys = append([]string(nil), o.Keys...)
	return o
}

// scorer builds the alignment scorer described by o.
func (o Options) scorer() align.Scorer {
	sim := o.Similarity
	if sim == nil {
		sim = align.DefaultSimilarity(o.CaseSensitive)
	}
	var s align.Scorer = align.New(sim, o.Penalty)
	if o.ScoreCacheSize > 0 {
		s = align.NewCachedScorer(s, o.ScoreCacheSize)
	}
	return s
}

func (o Options) rankConfig() rank.Config {
	return rank.Config{
		MaxResults:   o.MaxResults,
		LevelPenalty: o.LevelPenalty,
		DropoutRate:  o.DropoutRate,
		Parallelism:  o.Parallelism,
	}
}

// settings is what Option functions configure.
type settings struct {
	Options
	logger   *slog.Logger
	observer Observer
}

func newSettings(opts []Option) settings {
	s := settings{Options: DefaultOptions()}
	for _, opt := range opts {
		opt(&s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	return s
}

// Option configures an Engine or a one-shot Search.
type Option func(*settings)

// WithOptions replaces every scoring option with o.
// Later options still apply on top of it.
func WithOptions(o Options) Option {
	return func(s *settings) {
		s.Options = o.clone()
	}
}

// WithKeys restricts matching to the given dotted field paths.
func WithKeys(keys ...string) Option {
	return func(s *settings) {
		s.Keys = append([]string(nil), keys...)
	}
}

// WithMaxResults caps the number of results.
func WithMaxResults(n int) Option {
	return func(s *settings) {
		s.MaxResults = n
	}
}

// WithShowScore attaches scores to results.
func WithShowScore(show bool) Option {
	return func(s *settings) {
		s.ShowScore = show
	}
}

// WithLevelPenalty sets the per-depth weight.
func WithLevelPenalty(p float64) Option {
	return func(s *settings) {
		s.LevelPenalty = p
	}
}

// WithDropoutRate sets the relative cutoff.
func WithDropoutRate(r float64) Option {
	return func(s *settings) {
		s.DropoutRate = r
	}
}

// WithCaseSensitive selects the built-in similarity for the case mode.
func WithCaseSensitive(caseSensitive bool) Option {
	return func(s *settings) {
		s.CaseSensitive = caseSensitive
	}
}

// WithSimilarity overrides the similarity function.
func WithSimilarity(fn SimilarityFunc) Option {
	return func(s *settings) {
		s.Similarity = fn
	}
}

// WithPenalty overrides the gap penalty function.
func WithPenalty(fn PenaltyFunc) Option {
	return func(s *settings) {
		s.Penalty = fn
	}
}

// WithParallelism scores records on n workers.
func WithParallelism(n int) Option {
	return func(s *settings) {
		s.Parallelism = n
	}
}

// WithScoreCache memoizes up to size alignment costs.
func WithScoreCache(size int) Option {
	return func(s *settings) {
		s.ScoreCacheSize = size
	}
}

// WithLogger sets the logger. Without it the engine logs nothing.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// WithObserver reports every search to obs.
func WithObserver(obs Observer) Option {
	return func(s *settings) {
		s.observer = obs
	}
}
