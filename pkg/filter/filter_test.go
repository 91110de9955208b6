package filter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yumyai/orthogroup/pkg/model"
)

func lengthScenario() (model.Sequence, *model.CandidateSet) {
	query := model.Sequence{ID: "Q", Organism: "H", Residues: strings.Repeat("M", 100)}
	return query, model.NewCandidateSet(
		query,
		model.Sequence{ID: "C1", Organism: "A", Residues: strings.Repeat("M", 40)},
		model.Sequence{ID: "C2", Organism: "B", Residues: strings.Repeat("M", 60)},
		model.Sequence{ID: "C3", Organism: "C", Residues: strings.Repeat("M", 49)},
	)
}

func TestMinLength(t *testing.T) {
	query, set := lengthScenario()

	kept, report, err := MinLength(set, query, 0.5)
	require.NoError(t, err)

	assert.Equal(t, []string{"Q", "C2"}, kept.IDs())
	assert.Equal(t, 4, report.Before)
	assert.Equal(t, 2, report.Removed)
	assert.Equal(t, 2, report.After)
	assert.Equal(t, []string{"C1", "C3"}, report.RemovedIDs)
	assert.False(t, report.QueryReadded)
	assert.Equal(t, 50.0, report.Parameters["min_length"])

	// The input set is untouched.
	assert.Equal(t, 4, set.Len())
}

func TestMinLengthBounds(t *testing.T) {
	query, set := lengthScenario()

	for _, f := range []float64{-0.1, 1.1} {
		_, _, err := MinLength(set, query, f)
		assert.ErrorIs(t, err, model.ErrInvalidInput)
	}

	kept, _, err := MinLength(set, query, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, kept.Len())

	kept, _, err = MinLength(set, query, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Q"}, kept.IDs())
}

func TestNonStandardResidues(t *testing.T) {
	query := model.Sequence{ID: "Q", Organism: "H", Residues: "MKLV"}
	set := model.NewCandidateSet(
		model.Sequence{ID: "a", Organism: "A", Residues: "MKXV"},
		query,
		model.Sequence{ID: "b", Organism: "B", Residues: "MKLV"},
		model.Sequence{ID: "c", Organism: "C", Residues: "MKL*"},
		model.Sequence{ID: "d", Organism: "D", Residues: "MuLV"},
	)

	kept, report := NonStandardResidues(set, query, "")
	assert.Equal(t, []string{"Q", "b", "d"}, kept.IDs())
	assert.Equal(t, 2, report.Removed)
	assert.Equal(t, DefaultProhibitedResidues, report.Parameters["prohibited_residues"])

	kept, _ = NonStandardResidues(set, query, "u")
	assert.Equal(t, []string{"a", "Q", "b", "c"}, kept.IDs())
}

func TestQueryAlwaysSurvives(t *testing.T) {
	query := model.Sequence{ID: "Q", Organism: "H", Residues: "MXLV"}
	set := model.NewCandidateSet(
		query,
		model.Sequence{ID: "a", Organism: "A", Residues: "MKLV"},
	)

	kept, report := NonStandardResidues(set, query, "")
	assert.Equal(t, []string{"Q", "a"}, kept.IDs())
	assert.True(t, report.QueryReadded)
	assert.Equal(t, 0, report.Removed)
}

func TestQueryReinsertedWhenAbsent(t *testing.T) {
	query := model.Sequence{ID: "Q", Organism: "H", Residues: "MKLV"}
	set := model.NewCandidateSet(model.Sequence{ID: "a", Organism: "A", Residues: "MK"})

	kept, report, err := MinLength(set, query, 0.9)
	require.NoError(t, err)
	assert.Equal(t, []string{"Q"}, kept.IDs())
	assert.True(t, report.QueryReadded)
	assert.Equal(t, 1, report.Before)
	assert.Equal(t, 1, report.Removed)
	assert.Equal(t, 1, report.After)
}
