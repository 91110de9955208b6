// Package ogselect chooses one ortholog group among those a gene belongs to.
package ogselect

import (
	"fmt"
	"strings"

	"github.com/yumyai/orthogroup/pkg/model"
)

type Method string

const (
	ByLevelName     Method = "level_name"
	ByMostSpecies   Method = "most_species"
	ByTargetSpecies Method = "target_number_of_species"
)

var Methods = []Method{ByLevelName, ByMostSpecies, ByTargetSpecies}

type Criteria struct {
	Method                Method
	LevelName             string
	TargetNumberOfSpecies int
}

// Select applies the criteria to the groups of one gene.
func Select(groups []model.GroupInfo, c Criteria) (model.GroupInfo, error) {
	if len(groups) == 0 {
		return model.GroupInfo{}, fmt.Errorf("%w: gene has no ortholog groups", model.ErrNotFound)
	}

	switch c.Method {
	case ByLevelName:
		return byLevelName(groups, c.LevelName)
	case ByMostSpecies:
		best := groups[0]
		for _, g := range groups[1:] {
			if g.SpeciesCount > best.SpeciesCount {
				best = g
			}
		}
		return best, nil
	case ByTargetSpecies:
		if c.TargetNumberOfSpecies <= 0 {
			return model.GroupInfo{}, fmt.Errorf("%w: target number of species must be positive", model.ErrInvalidInput)
		}
		best := groups[0]
		for _, g := range groups[1:] {
			if abs(g.SpeciesCount-c.TargetNumberOfSpecies) < abs(best.SpeciesCount-c.TargetNumberOfSpecies) {
				best = g
			}
		}
		return best, nil
	}
	return model.GroupInfo{}, fmt.Errorf("%w: og selection %q, must be one of %v", model.ErrUnsupportedMethod, c.Method, Methods)
}

func byLevelName(groups []model.GroupInfo, level string) (model.GroupInfo, error) {
	var matches []model.GroupInfo
	for _, g := range groups {
		if g.LevelName == level {
			matches = append(matches, g)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		levels := make([]string, len(groups))
		for i, g := range groups {
			levels[i] = g.LevelName
		}
		return model.GroupInfo{}, fmt.Errorf("%w: no group at level %q, available: %s",
			model.ErrNotFound, level, strings.Join(levels, ", "))
	}
	ids := make([]string, len(matches))
	for i, g := range matches {
		ids[i] = g.OGID
	}
	return model.GroupInfo{}, fmt.Errorf("%w: level %q is ambiguous, groups %s",
		model.ErrNotFound, level, strings.Join(ids, ", "))
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
