package align

import (
	"math"
	"reflect"
	"unicode"
)

// Default similarity rewards and gap cost used by the built-in functions.
const (
	// ExactMatchReward is awarded when two runes are identical.
	ExactMatchReward = 10

	// CaseMatchReward is awarded when two runes differ only in letter case.
	CaseMatchReward = 5

	// MismatchCost is the (negative) similarity of unrelated runes.
	MismatchCost = -10

	// GapCostPerRune is the per-rune cost of LinearPenalty.
	GapCostPerRune = 2
)

// SimilarityFunc returns the compatibility of two runes.
// Positive values reward aligning them, negative values penalize it.
// Implementations must be total and pure.
type SimilarityFunc func(a, b rune) float64

// PenaltyFunc returns the cost of a gap run of the given length.
// Implementations must be pure and return a non-negative cost for gap >= 0.
type PenaltyFunc func(gap int) float64

// CaseSensitiveSimilarity rewards identical runes most, runes equal up to case
// less, and penalizes everything else.
func CaseSensitiveSimilarity(a, b rune) float64 {
	if a == b {
		return ExactMatchReward
	}
	if unicode.ToLower(a) == unicode.ToLower(b) {
		return CaseMatchReward
	}
	return MismatchCost
}

// CaseInsensitiveSimilarity treats runes equal up to case as exact matches.
func CaseInsensitiveSimilarity(a, b rune) float64 {
	if unicode.ToLower(a) == unicode.ToLower(b) {
		return ExactMatchReward
	}
	return MismatchCost
}

// LinearPenalty charges GapCostPerRune for every rune in the gap.
func LinearPenalty(gap int) float64 {
	return float64(gap * GapCostPerRune)
}

// DefaultSimilarity returns the built-in similarity for the case mode.
func DefaultSimilarity(caseSensitive bool) SimilarityFunc {
	if caseSensitive {
		return CaseSensitiveSimilarity
	}
	return CaseInsensitiveSimilarity
}

// Score returns the local alignment cost of query against fragment.
//
// A nil pen or LinearPenalty is scored by ScoreLinear in O(n·m). Any other
// PenaltyFunc runs the run-length recurrence below, which is O(n·m·(n+m))
// because every cell considers every gap length.
//
// Three grids are filled over runes. diag[i][j] is the best alignment ending
// with fragment[i-1] aligned to query[j-1]; it may start fresh at any cell.
// skipF[i][j] ends in a run of skipped fragment runes and skipQ[i][j] in a run
// of skipped query runes. A run of length k is charged pen(k) once, and a run
// only opens from a cell that does not already end in a run along the same
// sequence, so pen sees the whole run length.
//
// The result is the negated best value, so lower costs are better and a
// fragment that shares nothing with the query costs 0.
func Score(fragment, query string, sim SimilarityFunc, pen PenaltyFunc) float64 {
	if pen == nil || isLinearPenalty(pen) {
		return ScoreLinear(fragment, query, sim, GapCostPerRune)
	}
	return scoreRuns(fragment, query, sim, pen)
}

// ScoreLinear is Score for a gap penalty of step per skipped rune.
//
// A linear penalty charges a run of k runes the same whether it is taken at
// once or one rune at a time, so each cell only extends the neighbouring cell
// by a single step. Rows are reused, keeping memory at O(m). step must be
// non-negative.
func ScoreLinear(fragment, query string, sim SimilarityFunc, step float64) float64 {
	f := []rune(fragment)
	q := []rune(query)
	if len(f) == 0 || len(q) == 0 {
		return 0
	}

	cols := len(q) + 1
	prev := newLinearRow(cols)
	cur := newLinearRow(cols)

	var best float64
	for i := range f {
		cur.reset()
		for j := 1; j < cols; j++ {
			d := max(0, prev.diag[j-1], prev.skipF[j-1], prev.skipQ[j-1]) + sim(f[i], q[j-1])
			sf := max(prev.diag[j], prev.skipF[j], prev.skipQ[j]) - step
			sq := max(cur.diag[j-1], cur.skipF[j-1], cur.skipQ[j-1]) - step

			cur.diag[j], cur.skipF[j], cur.skipQ[j] = d, sf, sq
			best = max(best, d, sf, sq)
		}
		prev, cur = cur, prev
	}

	if best <= 0 {
		return 0
	}
	return -best
}

// scoreRuns fills full grids so pen sees whole run lengths.
func scoreRuns(fragment, query string, sim SimilarityFunc, pen PenaltyFunc) float64 {
	f := []rune(fragment)
	q := []rune(query)
	if len(f) == 0 || len(q) == 0 {
		return 0
	}

	rows, cols := len(f)+1, len(q)+1
	diag := newGrid(rows, cols)
	skipF := newGrid(rows, cols)
	skipQ := newGrid(rows, cols)

	longest := max(len(f), len(q))
	gapCost := make([]float64, longest+1)
	for k := 1; k <= longest; k++ {
		gapCost[k] = pen(k)
	}

	var best float64
	for i := 1; i < rows; i++ {
		for j := 1; j < cols; j++ {
			prev := max(0, diag[i-1][j-1], skipF[i-1][j-1], skipQ[i-1][j-1])
			d := prev + sim(f[i-1], q[j-1])
			diag[i][j] = d

			sf := negInf
			for k := 1; k < i; k++ {
				if c := max(diag[i-k][j], skipQ[i-k][j]) - gapCost[k]; c > sf {
					sf = c
				}
			}
			skipF[i][j] = sf

			sq := negInf
			for l := 1; l < j; l++ {
				if c := max(diag[i][j-l], skipF[i][j-l]) - gapCost[l]; c > sq {
					sq = c
				}
			}
			skipQ[i][j] = sq

			best = max(best, d, sf, sq)
		}
	}

	if best <= 0 {
		return 0
	}
	return -best
}

// linearPenaltyPC identifies LinearPenalty; func values are not comparable.
var linearPenaltyPC = reflect.ValueOf(LinearPenalty).Pointer()

func isLinearPenalty(pen PenaltyFunc) bool {
	return reflect.ValueOf(pen).Pointer() == linearPenaltyPC
}

// linearRow is one row of the three ScoreLinear grids.
type linearRow struct {
	diag, skipF, skipQ []float64
}

func newLinearRow(cols int) *linearRow {
	r := &linearRow{
		diag:  make([]float64, cols),
		skipF: make([]float64, cols),
		skipQ: make([]float64, cols),
	}
	r.reset()
	return r
}

func (r *linearRow) reset() {
	for j := range r.diag {
		r.diag[j], r.skipF[j], r.skipQ[j] = negInf, negInf, negInf
	}
}

var negInf = math.Inf(-1)

// newGrid returns a rows x cols grid with every cell unreachable.
func newGrid(rows, cols int) [][]float64 {
	cells := make([]float64, rows*cols)
	for i := range cells {
		cells[i] = negInf
	}
	grid := make([][]float64, rows)
	for i := range grid {
		grid[i] = cells[i*cols : (i+1)*cols]
	}
	return grid
}
