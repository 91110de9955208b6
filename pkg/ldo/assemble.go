// Package ldo picks the least divergent ortholog (LDO) of every organism in an
// ortholog group: the member of that organism most similar to the query.
package ldo

import "github.com/yumyai/orthogroup/pkg/model"

// GroupByOrganism partitions the candidates by organism. Groups come in order
// of first appearance and members keep their input order.
func GroupByOrganism(candidates *model.CandidateSet) []model.OrganismGroup {
	var groups []model.OrganismGroup
	index := make(map[string]int)
	for _, s := range candidates.Sequences() {
		i, ok := index[s.Organism]
		if !ok {
			i = len(groups)
			index[s.Organism] = i
			groups = append(groups, model.OrganismGroup{Organism: s.Organism})
		}
		groups[i].Members = append(groups[i].Members, s)
	}
	return groups
}
