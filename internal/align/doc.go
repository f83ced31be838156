// Package align scores how well a query locally aligns with a text fragment.
//
// Scoring is a Smith-Waterman style local alignment over runes with a
// pluggable similarity function and a gap penalty that depends on the length
// of the gap run rather than a flat per-step cost. The built-in LinearPenalty
// is scored in O(n·m); custom penalties pay an extra factor of n+m.
//
// # Cost Convention
//
// Every score returned by this package is a cost: smaller is better. The best
// local alignment value (a reward, never negative) is negated before it is
// returned, so a perfect match of "React" against "React Hooks" yields -50 with
// the default functions and an unrelated fragment yields 0. The default is
// case-sensitive: "react" costs -45 there and -50 only with
// CaseInsensitiveSimilarity. Callers rank by sorting ascending.
//
// # Usage
//
//	scorer := align.New(align.DefaultSimilarity(true), align.LinearPenalty)
//	cost := scorer.Score("Common React Mistakes", "co re mis")
//
// Wrap any Scorer with NewCachedScorer to memoize costs for repeated
// (fragment, query) pairs.
package align
