package similarity

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yumyai/orthogroup/pkg/model"
)

func TestPercentIdentity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"self", "MKLV", "MKLV", 1.0},
		{"one mismatch", "MKLV", "MKLA", 0.75},
		{"gap against residue counts", "MK-V", "MKLV", 0.75},
		{"gap-gap columns skipped", "MK--V", "MK--V", 1.0},
		{"mixed", "M-K-", "MA--", 0.5},
		{"nothing comparable", "---", "---", 0},
		{"empty", "", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, PercentIdentity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestPercentIdentityOneSubstitutionInHundred(t *testing.T) {
	a := strings.Repeat("ACDEFGHIKL", 10)
	b := []byte(a)
	b[50] = 'W'
	assert.InDelta(t, 0.99, PercentIdentity(a, string(b)), 1e-9)
}

func TestParseMethod(t *testing.T) {
	for _, m := range Methods {
		got, err := ParseMethod(string(m))
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	_, err := ParseMethod("blast")
	assert.ErrorIs(t, err, model.ErrUnsupportedMethod)
}

func TestNewRejects(t *testing.T) {
	_, err := New("blast", DefaultOptions(), nil)
	assert.ErrorIs(t, err, model.ErrUnsupportedMethod)

	_, err = New(MSA, DefaultOptions(), nil)
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	_, err = New(GoogleDistance, Options{WordSize: 0}, nil)
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestEstimatePreconditions(t *testing.T) {
	est, err := New(GoogleDistance, DefaultOptions(), nil)
	require.NoError(t, err)

	_, err = est.Estimate(context.Background(), model.Sequence{ID: "q"}, []model.OrganismGroup{
		{Organism: "1", Members: []model.Sequence{{ID: "a", Residues: "MK"}}},
	})
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	_, err = est.Estimate(context.Background(), model.Sequence{ID: "q", Residues: "MK"}, nil)
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestGoogleSimilarity(t *testing.T) {
	query := model.Sequence{ID: "q", Organism: "9606", Residues: "MKLVMKLVMKLV"}
	groups := []model.OrganismGroup{
		{Organism: "9606", Members: []model.Sequence{query}},
		{Organism: "10090", Members: []model.Sequence{
			{ID: "close", Organism: "10090", Residues: "MKLVMKLVMKLA"},
			{ID: "far", Organism: "10090", Residues: "WWWWWWWWWWWW"},
			{ID: "short", Organism: "10090", Residues: "M"},
		}},
	}

	est, err := New(GoogleDistance, DefaultOptions(), nil)
	require.NoError(t, err)
	table, err := est.Estimate(context.Background(), query, groups)
	require.NoError(t, err)

	require.Len(t, table, 4)
	scores := table.Scores()
	assert.InDelta(t, 1.0, scores["q"], 1e-9)
	assert.Greater(t, scores["close"], scores["far"])
	assert.InDelta(t, 0, scores["far"], 1e-9)
	assert.InDelta(t, 0, scores["short"], 1e-9)
	for _, row := range table {
		assert.GreaterOrEqual(t, row.Score, 0.0)
		assert.LessOrEqual(t, row.Score, 1.0)
	}
	assert.Equal(t, "10090", table[1].Organism)
}

func TestGoogleSimilarityKnownValue(t *testing.T) {
	// "ABAB" has words AB, BA, AB -> {AB: 2/4, BA: 1/4}
	// "ABBB" has words AB, BB, BB -> {AB: 1/4, BB: 2/4}
	p1 := wordProfile("ABAB", 2)
	p2 := wordProfile("ABBB", 2)
	assert.InDelta(t, 0.5, p1["AB"], 1e-9)
	// shared = 1/4, s1 = s2 = 3/4, d = (3/4 - 1/4) / (3/4) = 2/3
	assert.InDelta(t, 1.0/3.0, googleSimilarity(p1, p2), 1e-9)
}

func TestGlobalAlign(t *testing.T) {
	a, b := GlobalAlign("HEAGAWGHEE", "HEAGAWGHEE", 10, 0.5)
	assert.Equal(t, "HEAGAWGHEE", a)
	assert.Equal(t, "HEAGAWGHEE", b)

	a, b = GlobalAlign("MKLVWWWWAC", "MKLVAC", 10, 0.5)
	assert.Equal(t, len(a), len(b))
	assert.Equal(t, "MKLVWWWWAC", strings.ReplaceAll(a, "-", ""))
	assert.Equal(t, "MKLVAC", strings.ReplaceAll(b, "-", ""))
	// One affine gap of four is cheaper than scattered gaps.
	assert.Equal(t, "MKLV----AC", b)

	a, b = GlobalAlign("", "MK", 10, 0.5)
	assert.Equal(t, "--", a)
	assert.Equal(t, "MK", b)
}

func TestPairwiseEstimator(t *testing.T) {
	query := model.Sequence{ID: "q", Organism: "9606", Residues: strings.Repeat("ACDEFGHIKL", 10)}
	mutated := []byte(query.Residues)
	mutated[50] = 'W'
	groups := []model.OrganismGroup{
		{Organism: "9606", Members: []model.Sequence{query}},
		{Organism: "10090", Members: []model.Sequence{{ID: "m", Organism: "10090", Residues: string(mutated)}}},
	}

	est, err := New(Pairwise, DefaultOptions(), nil)
	require.NoError(t, err)
	table, err := est.Estimate(context.Background(), query, groups)
	require.NoError(t, err)

	scores := table.Scores()
	assert.InDelta(t, 1.0, scores["q"], 1e-9)
	assert.InDelta(t, 0.99, scores["m"], 1e-9)
}

// stubAligner pads every sequence with trailing gaps to the longest length
// and records the batches it was given.
type stubAligner struct {
	calls [][]string
	err   error
}

func (s *stubAligner) Align(_ context.Context, seqs []model.Sequence) ([]model.Sequence, error) {
	if s.err != nil {
		return nil, s.err
	}
	var ids []string
	width := 0
	for _, q := range seqs {
		ids = append(ids, q.ID)
		width = max(width, len(q.Residues))
	}
	s.calls = append(s.calls, ids)
	out := make([]model.Sequence, len(seqs))
	for i, q := range seqs {
		out[i] = q
		out[i].Residues = q.Residues + strings.Repeat("-", width-len(q.Residues))
	}
	return out, nil
}

func msaGroups() (model.Sequence, []model.OrganismGroup) {
	query := model.Sequence{ID: "q", Organism: "9606", Residues: "MKLV"}
	return query, []model.OrganismGroup{
		{Organism: "9606", Members: []model.Sequence{query, {ID: "para", Organism: "9606", Residues: "MKLA"}}},
		{Organism: "10090", Members: []model.Sequence{{ID: "m1", Organism: "10090", Residues: "MK"}}},
	}
}

func TestMSAByOrganism(t *testing.T) {
	query, groups := msaGroups()
	aligner := &stubAligner{}

	est, err := New(MSAByOrganism, DefaultOptions(), aligner)
	require.NoError(t, err)
	table, err := est.Estimate(context.Background(), query, groups)
	require.NoError(t, err)

	assert.Equal(t, [][]string{{"q", "para"}, {"m1", "q"}}, aligner.calls)
	scores := table.Scores()
	assert.InDelta(t, 1.0, scores["q"], 1e-9)
	assert.InDelta(t, 0.75, scores["para"], 1e-9)
	assert.InDelta(t, 0.5, scores["m1"], 1e-9)
	assert.Len(t, table, 3)
}

func TestMSAGlobal(t *testing.T) {
	query, groups := msaGroups()
	aligner := &stubAligner{}

	est, err := New(MSA, DefaultOptions(), aligner)
	require.NoError(t, err)
	table, err := est.Estimate(context.Background(), query, groups)
	require.NoError(t, err)

	assert.Equal(t, [][]string{{"q", "para", "m1"}}, aligner.calls)
	assert.Len(t, table, 3)
}

func TestMSAPropagatesToolError(t *testing.T) {
	query, groups := msaGroups()
	toolErr := &model.ToolError{Tool: "mafft", Err: errors.New("exit status 1")}

	est, err := New(MSAByOrganism, DefaultOptions(), &stubAligner{err: toolErr})
	require.NoError(t, err)
	_, err = est.Estimate(context.Background(), query, groups)
	assert.ErrorIs(t, err, model.ErrExternalTool)
}

func TestBlosumLookup(t *testing.T) {
	assert.Equal(t, 4.0, substitution('A', 'A'))
	assert.Equal(t, 4.0, substitution('a', 'A'))
	assert.Equal(t, 11.0, substitution('W', 'W'))
	assert.Equal(t, substitution('X', 'A'), substitution('O', 'A'))
	for i := range blosum62 {
		for j := range blosum62 {
			assert.Equal(t, blosum62[i][j], blosum62[j][i])
		}
	}
}
