package align

// Scorer computes the alignment cost of a query against a fragment.
//
// Implementations must be deterministic: the same inputs always produce the
// same cost regardless of call order. Lower costs are better matches.
type Scorer interface {
	Score(fragment, query string) float64
}

// Aligner is a Scorer bound to a similarity and a penalty function.
// It holds no mutable state and is safe for concurrent use.
type Aligner struct {
	sim SimilarityFunc
	pen PenaltyFunc
}

// New creates an Aligner. A nil similarity falls back to the case-sensitive
// default and a nil penalty to LinearPenalty.
func New(sim SimilarityFunc, pen PenaltyFunc) *Aligner {
	if sim == nil {
		sim = CaseSensitiveSimilarity
	}
	if pen == nil {
		pen = LinearPenalty
	}
	return &Aligner{sim: sim, pen: pen}
}

// NewDefault creates an Aligner with the built-in functions for the case mode.
func NewDefault(caseSensitive bool) *Aligner {
	return New(DefaultSimilarity(caseSensitive), LinearPenalty)
}

// Score implements Scorer.
func (a *Aligner) Score(fragment, query string) float64 {
	return Score(fragment, query, a.sim, a.pen)
}
