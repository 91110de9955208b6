package model

// Sequence is one protein record of an ortholog group.
type Sequence struct {
	ID       string `json:"id"`
	Organism string `json:"organism"`
	Residues string `json:"-"`
}

func (s Sequence) Len() int {
	return len(s.Residues)
}

// WithID returns a copy of the sequence under a new identifier.
func (s Sequence) WithID(id string) Sequence {
	s.ID = id
	return s
}

// Ortholog group available for a gene, joined with its level information.
type GroupInfo struct {
	OGID         string `json:"og_id"`
	LevelTaxID   int    `json:"level_taxid"`
	LevelName    string `json:"level_name"`
	SpeciesCount int    `json:"species_count"`
	Name         string `json:"og_name"`
}

// One row per candidate: its organism and its similarity to the query.
type SimilarityRow struct {
	ID       string  `json:"id"`
	Organism string  `json:"organism"`
	Score    float64 `json:"score"`
}

type SimilarityTable []SimilarityRow

// Scores returns the table as an id -> score map.
func (t SimilarityTable) Scores() map[string]float64 {
	out := make(map[string]float64, len(t))
	for _, row := range t {
		out[row.ID] = row.Score
	}
	return out
}

type Cluster struct {
	Members        []string `json:"members"`
	Representative string   `json:"representative"`
}

// ClusterAssignment maps a cluster id to its members and representative.
type ClusterAssignment map[string]*Cluster

// OrganismGroup is the set of candidates contributed by one organism.
type OrganismGroup struct {
	Organism string
	Members  []Sequence
}
