package ogselect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yumyai/orthogroup/pkg/model"
)

var groups = []model.GroupInfo{
	{OGID: "1at2759", LevelTaxID: 2759, LevelName: "Eukaryota", SpeciesCount: 1952},
	{OGID: "2at33208", LevelTaxID: 33208, LevelName: "Metazoa", SpeciesCount: 817},
	{OGID: "3at7742", LevelTaxID: 7742, LevelName: "Vertebrata", SpeciesCount: 470},
	{OGID: "4at40674", LevelTaxID: 40674, LevelName: "Mammalia", SpeciesCount: 470},
}

func TestSelect(t *testing.T) {
	tests := []struct {
		name     string
		criteria Criteria
		want     string
	}{
		{"level name", Criteria{Method: ByLevelName, LevelName: "Metazoa"}, "2at33208"},
		{"most species", Criteria{Method: ByMostSpecies}, "1at2759"},
		{"closest to target", Criteria{Method: ByTargetSpecies, TargetNumberOfSpecies: 700}, "2at33208"},
		{"target tie keeps first", Criteria{Method: ByTargetSpecies, TargetNumberOfSpecies: 470}, "3at7742"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Select(groups, tt.criteria)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.OGID)
		})
	}
}

func TestSelectErrors(t *testing.T) {
	_, err := Select(groups, Criteria{Method: ByLevelName, LevelName: "Fungi"})
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.ErrorContains(t, err, "Vertebrata")

	dup := append([]model.GroupInfo{}, groups...)
	dup = append(dup, model.GroupInfo{OGID: "5at2759", LevelName: "Eukaryota"})
	_, err = Select(dup, Criteria{Method: ByLevelName, LevelName: "Eukaryota"})
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.ErrorContains(t, err, "ambiguous")

	_, err = Select(nil, Criteria{Method: ByMostSpecies})
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = Select(groups, Criteria{Method: "random"})
	assert.ErrorIs(t, err, model.ErrUnsupportedMethod)

	_, err = Select(groups, Criteria{Method: ByTargetSpecies})
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}
