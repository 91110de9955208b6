package similarity

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/yumyai/orthogroup/logger"
	"github.com/yumyai/orthogroup/pkg/model"
)

// msaEstimator aligns with an external aligner and scores the percent
// identity of each row to the query row. With byOrganism every organism group
// is aligned on its own together with the query, otherwise everything is
// aligned at once.
type msaEstimator struct {
	aligner    Aligner
	byOrganism bool
}

func (e *msaEstimator) Estimate(ctx context.Context, query model.Sequence, groups []model.OrganismGroup) (model.SimilarityTable, error) {
	if err := checkInput(query, groups); err != nil {
		return nil, err
	}

	if !e.byOrganism {
		var all []model.Sequence
		for _, g := range groups {
			all = append(all, g.Members...)
		}
		return e.scoreAlignment(ctx, query, all)
	}

	var table model.SimilarityTable
	for _, g := range groups {
		if len(g.Members) == 0 {
			continue
		}
		rows, err := e.scoreAlignment(ctx, query, g.Members)
		if err != nil {
			return nil, fmt.Errorf("organism %s: %w", g.Organism, err)
		}
		table = append(table, rows...)
	}
	return table, nil
}

// scoreAlignment aligns members plus the query and returns one row per member.
func (e *msaEstimator) scoreAlignment(ctx context.Context, query model.Sequence, members []model.Sequence) (model.SimilarityTable, error) {
	aligned, err := e.aligner.Align(ctx, withQuery(members, query))
	if err != nil {
		return nil, err
	}

	rows := make(map[string]string, len(aligned))
	for _, s := range aligned {
		rows[s.ID] = s.Residues
	}
	queryRow, ok := rows[query.ID]
	if !ok {
		return nil, fmt.Errorf("query %s missing from alignment", query.ID)
	}

	table := make(model.SimilarityTable, 0, len(members))
	for _, s := range members {
		row, ok := rows[s.ID]
		if !ok {
			return nil, fmt.Errorf("sequence %s missing from alignment", s.ID)
		}
		table = append(table, model.SimilarityRow{ID: s.ID, Organism: s.Organism, Score: PercentIdentity(row, queryRow)})
	}
	logger.Debug("Scored alignment", zap.Int("rows", len(table)), zap.Int("columns", len(queryRow)))
	return table, nil
}
