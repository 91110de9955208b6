package ldo

import (
	"context"
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/yumyai/orthogroup/logger"
	"github.com/yumyai/orthogroup/pkg/model"
	"github.com/yumyai/orthogroup/pkg/similarity"
)

type Selector struct {
	Estimator similarity.Estimator
}

func NewSelector(est similarity.Estimator) *Selector {
	return &Selector{Estimator: est}
}

type Result struct {
	// IDs holds one sequence per organism, most similar first. The query
	// stands for its own organism.
	IDs []string
	// Scores is the similarity row of every candidate, in input order.
	Scores model.SimilarityTable
	// Selected are the rows behind IDs, same order.
	Selected model.SimilarityTable
}

// Select returns the least divergent orthologs of query among candidates.
// The query must be one of the candidates.
func (s *Selector) Select(ctx context.Context, query model.Sequence, candidates *model.CandidateSet) (*Result, error) {
	member, ok := candidates.Get(query.ID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", model.ErrQueryNotInCandidateSet, query.ID)
	}
	query = member

	groups := GroupByOrganism(candidates)
	table, err := s.Estimator.Estimate(ctx, query, groups)
	if err != nil {
		return nil, fmt.Errorf("estimate similarity: %w", err)
	}

	scores := table.Scores()
	rows := make(model.SimilarityTable, 0, candidates.Len())
	for _, c := range candidates.Sequences() {
		score, ok := scores[c.ID]
		if !ok {
			return nil, fmt.Errorf("no similarity score for %s", c.ID)
		}
		if math.IsNaN(score) {
			return nil, fmt.Errorf("similarity score for %s is NaN", c.ID)
		}
		rows = append(rows, model.SimilarityRow{ID: c.ID, Organism: c.Organism, Score: score})
	}

	selected := bestPerOrganism(rows, query)
	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].Score > selected[j].Score
	})

	ids := make([]string, len(selected))
	for i, row := range selected {
		ids[i] = row.ID
	}

	logger.Debug("Selected least divergent orthologs",
		zap.String("query", query.ID),
		zap.Int("candidates", candidates.Len()),
		zap.Int("organisms", len(groups)),
		zap.Int("selected", len(ids)))

	return &Result{IDs: ids, Scores: rows, Selected: selected}, nil
}

// bestPerOrganism keeps the highest scoring row of each organism; the first
// row wins a tie. Paralogs of the query in its own organism are never
// candidates, the query is.
func bestPerOrganism(rows model.SimilarityTable, query model.Sequence) model.SimilarityTable {
	var best model.SimilarityTable
	index := make(map[string]int)
	for _, row := range rows {
		if row.Organism == query.Organism && row.ID != query.ID {
			continue
		}
		i, ok := index[row.Organism]
		if !ok {
			index[row.Organism] = len(best)
			best = append(best, row)
			continue
		}
		if row.Score > best[i].Score {
			best[i] = row
		}
	}
	return best
}
