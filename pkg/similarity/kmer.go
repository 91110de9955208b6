package similarity

import (
	"context"

	"github.com/yumyai/orthogroup/pkg/model"
)

// wordEstimator compares overlapping word frequency profiles with the Google
// distance, no alignment involved.
type wordEstimator struct {
	wordSize int
}

// wordProfile counts the overlapping words of s, each divided by the
// sequence length.
func wordProfile(s string, k int) map[string]float64 {
	profile := make(map[string]float64)
	if len(s) < k {
		return profile
	}
	for i := 0; i+k <= len(s); i++ {
		profile[s[i:i+k]]++
	}
	for w := range profile {
		profile[w] /= float64(len(s))
	}
	return profile
}

// googleSimilarity is 1 minus the Google distance
// (max(s1,s2) - sum(min(f1,f2))) / (s1 + s2 - min(s1,s2)).
func googleSimilarity(p1, p2 map[string]float64) float64 {
	var s1, s2, shared float64
	for w, f := range p1 {
		s1 += f
		if g, ok := p2[w]; ok {
			if g < f {
				shared += g
			} else {
				shared += f
			}
		}
	}
	for _, f := range p2 {
		s2 += f
	}

	denom := s1 + s2 - min(s1, s2)
	if denom == 0 {
		return 0
	}
	return 1 - (max(s1, s2)-shared)/denom
}

func (e *wordEstimator) Estimate(ctx context.Context, query model.Sequence, groups []model.OrganismGroup) (model.SimilarityTable, error) {
	if err := checkInput(query, groups); err != nil {
		return nil, err
	}

	queryProfile := wordProfile(query.Residues, e.wordSize)
	var table model.SimilarityTable
	for _, g := range groups {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, s := range g.Members {
			score := googleSimilarity(queryProfile, wordProfile(s.Residues, e.wordSize))
			table = append(table, model.SimilarityRow{ID: s.ID, Organism: s.Organism, Score: score})
		}
	}
	return table, nil
}
