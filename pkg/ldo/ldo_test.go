package ldo

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yumyai/orthogroup/pkg/model"
	"github.com/yumyai/orthogroup/pkg/similarity"
)

// fixedEstimator returns preset scores; ids without one are left out.
type fixedEstimator struct {
	scores map[string]float64
	err    error
	groups []model.OrganismGroup
}

func (f *fixedEstimator) Estimate(_ context.Context, _ model.Sequence, groups []model.OrganismGroup) (model.SimilarityTable, error) {
	f.groups = groups
	if f.err != nil {
		return nil, f.err
	}
	var table model.SimilarityTable
	for _, g := range groups {
		for _, s := range g.Members {
			if score, ok := f.scores[s.ID]; ok {
				table = append(table, model.SimilarityRow{ID: s.ID, Organism: s.Organism, Score: score})
			}
		}
	}
	return table, nil
}

func seq(id, org string) model.Sequence {
	return model.Sequence{ID: id, Organism: org, Residues: "MKLV"}
}

func TestGroupByOrganism(t *testing.T) {
	set := model.NewCandidateSet(seq("a1", "A"), seq("b1", "B"), seq("a2", "A"), seq("c1", "C"))

	groups := GroupByOrganism(set)
	require.Len(t, groups, 3)
	assert.Equal(t, "A", groups[0].Organism)
	assert.Equal(t, []model.Sequence{seq("a1", "A"), seq("a2", "A")}, groups[0].Members)
	assert.Equal(t, "B", groups[1].Organism)
	assert.Equal(t, "C", groups[2].Organism)

	assert.Empty(t, GroupByOrganism(model.NewCandidateSet()))
}

func TestSelectOnePerOrganism(t *testing.T) {
	query := seq("q", "H")
	set := model.NewCandidateSet(
		query,
		seq("h2", "H"), // paralog scoring above the query must not displace it
		seq("m1", "M"),
		seq("m2", "M"),
		seq("z1", "Z"),
		seq("z2", "Z"),
	)
	est := &fixedEstimator{scores: map[string]float64{
		"q": 1.0, "h2": 1.0, "m1": 0.6, "m2": 0.8, "z1": 0.7, "z2": 0.7,
	}}

	res, err := NewSelector(est).Select(context.Background(), query, set)
	require.NoError(t, err)

	assert.Equal(t, []string{"q", "m2", "z1"}, res.IDs)
	assert.Len(t, res.Scores, 6)
	assert.Equal(t, "M", res.Selected[1].Organism)
	assert.InDelta(t, 0.8, res.Selected[1].Score, 1e-9)
}

func TestSelectQueryOrganismExclusive(t *testing.T) {
	query := seq("q", "H")
	set := model.NewCandidateSet(seq("h2", "H"), seq("m1", "M"), query)
	est := &fixedEstimator{scores: map[string]float64{"q": 0.2, "h2": 0.9, "m1": 0.5}}

	res, err := NewSelector(est).Select(context.Background(), query, set)
	require.NoError(t, err)

	// The query keeps its slot even when it scores lower than others.
	assert.Equal(t, []string{"m1", "q"}, res.IDs)
	assert.NotContains(t, res.IDs, "h2")
}

func TestSelectStableOrderAcrossOrganisms(t *testing.T) {
	query := seq("q", "H")
	set := model.NewCandidateSet(query, seq("b", "B"), seq("a", "A"))
	est := &fixedEstimator{scores: map[string]float64{"q": 1.0, "b": 0.5, "a": 0.5}}

	res, err := NewSelector(est).Select(context.Background(), query, set)
	require.NoError(t, err)
	assert.Equal(t, []string{"q", "b", "a"}, res.IDs)
}

func TestSelectQueryMissing(t *testing.T) {
	set := model.NewCandidateSet(seq("m1", "M"))
	_, err := NewSelector(&fixedEstimator{}).Select(context.Background(), seq("q", "H"), set)
	assert.ErrorIs(t, err, model.ErrQueryNotInCandidateSet)
}

func TestSelectMissingScore(t *testing.T) {
	query := seq("q", "H")
	set := model.NewCandidateSet(query, seq("m1", "M"))
	est := &fixedEstimator{scores: map[string]float64{"q": 1.0}}

	_, err := NewSelector(est).Select(context.Background(), query, set)
	assert.ErrorContains(t, err, "m1")
}

func TestSelectPropagatesEstimatorError(t *testing.T) {
	query := seq("q", "H")
	set := model.NewCandidateSet(query, seq("m1", "M"))
	est := &fixedEstimator{err: &model.ToolError{Tool: "mafft", Err: errors.New("killed")}}

	_, err := NewSelector(est).Select(context.Background(), query, set)
	assert.ErrorIs(t, err, model.ErrExternalTool)
}

func TestSelectWithRealEstimator(t *testing.T) {
	query := model.Sequence{ID: "q", Organism: "H", Residues: "MKLVAAGHTEWQ"}
	set := model.NewCandidateSet(
		query,
		model.Sequence{ID: "m_near", Organism: "M", Residues: "MKLVAAGHTEWA"},
		model.Sequence{ID: "m_far", Organism: "M", Residues: "PPPPPPPPPPPP"},
		model.Sequence{ID: "z", Organism: "Z", Residues: "MKLVPPPPPPPP"},
	)

	for _, method := range []similarity.Method{similarity.GoogleDistance, similarity.Pairwise} {
		t.Run(string(method), func(t *testing.T) {
			est, err := similarity.New(method, similarity.DefaultOptions(), nil)
			require.NoError(t, err)

			res, err := NewSelector(est).Select(context.Background(), query, set)
			require.NoError(t, err)
			assert.Equal(t, []string{"q", "m_near", "z"}, res.IDs)
		})
	}
}
