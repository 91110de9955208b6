package similarity

import (
	"context"
	"math"

	"github.com/yumyai/orthogroup/pkg/model"
)

// pairwiseEstimator aligns every candidate to the query on its own.
type pairwiseEstimator struct {
	gapOpen   float64
	gapExtend float64
}

func (e *pairwiseEstimator) Estimate(ctx context.Context, query model.Sequence, groups []model.OrganismGroup) (model.SimilarityTable, error) {
	if err := checkInput(query, groups); err != nil {
		return nil, err
	}

	var table model.SimilarityTable
	for _, g := range groups {
		for _, s := range g.Members {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			a, b := GlobalAlign(query.Residues, s.Residues, e.gapOpen, e.gapExtend)
			table = append(table, model.SimilarityRow{ID: s.ID, Organism: s.Organism, Score: PercentIdentity(a, b)})
		}
	}
	return table, nil
}

// Traceback states.
const (
	stateMatch = iota
	stateGapB  // a[i] against a gap
	stateGapA  // b[j] against a gap
)

// GlobalAlign aligns a and b end to end with BLOSUM62 and affine gaps
// (Gotoh). A gap of length L costs open + (L-1)*extend; end gaps are not free.
// On equal scores a match is preferred over a gap in b, and that over a gap in a.
func GlobalAlign(a, b string, open, extend float64) (string, string) {
	n, m := len(a), len(b)
	if n == 0 || m == 0 {
		return padGaps(a, m), padGaps(b, n)
	}
	negInf := math.Inf(-1)
	cols := m + 1

	// One byte per cell: bits 0-1 predecessor of the match state, bits 2-3 of
	// the gap-in-b state, bits 4-5 of the gap-in-a state.
	trace := make([]byte, (n+1)*cols)

	prevM := make([]float64, cols)
	prevX := make([]float64, cols)
	prevY := make([]float64, cols)
	curM := make([]float64, cols)
	curX := make([]float64, cols)
	curY := make([]float64, cols)

	prevM[0], prevX[0], prevY[0] = 0, negInf, negInf
	for j := 1; j <= m; j++ {
		prevM[j], prevX[j] = negInf, negInf
		prevY[j] = -open - float64(j-1)*extend
		from := byte(stateGapA)
		if j == 1 {
			from = stateMatch
		}
		trace[j] = from << 4
	}

	for i := 1; i <= n; i++ {
		row := i * cols
		curM[0], curY[0] = negInf, negInf
		curX[0] = -open - float64(i-1)*extend
		from := byte(stateGapB)
		if i == 1 {
			from = stateMatch
		}
		trace[row] = from << 2

		ai := a[i-1]
		for j := 1; j <= m; j++ {
			var cell byte

			best, ptr := best3(prevM[j-1], prevX[j-1], prevY[j-1])
			curM[j] = best + substitution(ai, b[j-1])
			cell |= ptr

			best, ptr = best3(prevM[j]-open, prevX[j]-extend, prevY[j]-open)
			curX[j] = best
			cell |= ptr << 2

			best, ptr = best3(curM[j-1]-open, curX[j-1]-open, curY[j-1]-extend)
			curY[j] = best
			cell |= ptr << 4

			trace[row+j] = cell
		}
		prevM, curM = curM, prevM
		prevX, curX = curX, prevX
		prevY, curY = curY, prevY
	}

	_, state := best3(prevM[m], prevX[m], prevY[m])

	alnA := make([]byte, 0, n+m)
	alnB := make([]byte, 0, n+m)
	i, j := n, m
	for i > 0 || j > 0 {
		cell := trace[i*cols+j]
		switch state {
		case stateMatch:
			i--
			j--
			alnA = append(alnA, a[i])
			alnB = append(alnB, b[j])
			state = cell & 3
		case stateGapB:
			i--
			alnA = append(alnA, a[i])
			alnB = append(alnB, gapChar)
			state = (cell >> 2) & 3
		default:
			j--
			alnA = append(alnA, gapChar)
			alnB = append(alnB, b[j])
			state = (cell >> 4) & 3
		}
	}
	reverse(alnA)
	reverse(alnB)
	return string(alnA), string(alnB)
}

func best3(m, x, y float64) (float64, byte) {
	best, ptr := m, byte(stateMatch)
	if x > best {
		best, ptr = x, stateGapB
	}
	if y > best {
		best, ptr = y, stateGapA
	}
	return best, ptr
}

func padGaps(s string, n int) string {
	out := make([]byte, len(s)+n)
	copy(out, s)
	for i := len(s); i < len(out); i++ {
		out[i] = gapChar
	}
	return string(out)
}

func reverse(s []byte) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
