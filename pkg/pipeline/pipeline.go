// Package pipeline runs one query gene from database lookup to the final
// alignment of its least divergent orthologs.
package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yumyai/orthogroup/logger"
	"github.com/yumyai/orthogroup/pkg/config"
	"github.com/yumyai/orthogroup/pkg/db"
	"github.com/yumyai/orthogroup/pkg/dedup"
	"github.com/yumyai/orthogroup/pkg/filter"
	"github.com/yumyai/orthogroup/pkg/ldo"
	"github.com/yumyai/orthogroup/pkg/model"
	"github.com/yumyai/orthogroup/pkg/ogselect"
	"github.com/yumyai/orthogroup/pkg/similarity"
)

// Store is the ortholog database as the pipeline uses it.
type Store interface {
	ResolveQueryID(ctx context.Context, uniprotID string, action db.DuplicateAction) (string, error)
	UniProtID(ctx context.Context, geneID string) (string, error)
	SpeciesNames(ctx context.Context, speciesIDs []string) (map[string]string, error)
	ListGroups(ctx context.Context, geneID string) ([]model.GroupInfo, error)
	ListGroupMembers(ctx context.Context, ogID string) ([]string, error)
	FetchSequences(ctx context.Context, geneIDs []string) ([]model.Sequence, error)
	GenesInSpecies(ctx context.Context, speciesID string) ([]string, error)
}

type Pipeline struct {
	Store     Store
	Aligner   similarity.Aligner
	Clusterer dedup.Clusterer
	Params    config.Params
	// RunID tags every record; a fresh one is made per Run when empty.
	RunID string
}

// Query names the gene to process. GeneID wins over UniProtID; LevelName, when
// set, selects the group at that level whatever the configured OG selection.
type Query struct {
	GeneID    string `json:"gene_id,omitempty"`
	UniProtID string `json:"uniprot_id,omitempty"`
	LevelName string `json:"level,omitempty"`
}

// Record is the JSON summary of one run.
type Record struct {
	RunID            string                  `json:"run_id"`
	QueryUniProtID   string                  `json:"query_uniprot_id,omitempty"`
	QueryGeneID      string                  `json:"query_odb_gene_id"`
	QuerySpeciesID   string                  `json:"query_species_id"`
	QuerySpeciesName string                  `json:"query_species_name,omitempty"`
	OG               model.GroupInfo         `json:"og"`
	FullIDs          []string                `json:"og_ids_full"`
	FilteredIDs      []string                `json:"og_ids_filtered"`
	LDOIDs           []string                `json:"ldo_ids"`
	DedupIDs         []string                `json:"ldo_ids_cdhit"`
	Similarity       model.SimilarityTable   `json:"ldo_similarity"`
	FilterReports    []filter.Report         `json:"filter_reports"`
	Clusters         model.ClusterAssignment `json:"clusters,omitempty"`
	Files            map[string]string       `json:"files,omitempty"`
	Params           config.Params           `json:"params"`

	Alignment []model.Sequence `json:"-"`
}

// Run processes one query. Nothing is retried; the first failing stage ends
// the run with its error.
func (p *Pipeline) Run(ctx context.Context, q Query) (*Record, error) {
	runID := p.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	rec := &Record{RunID: runID, QueryUniProtID: db.NormalizeUniProtID(q.UniProtID), QueryGeneID: q.GeneID, Params: p.Params}

	if p.Clusterer == nil {
		return nil, fmt.Errorf("%w: no clusterer configured", model.ErrInvalidInput)
	}
	if err := p.resolve(ctx, rec); err != nil {
		return nil, err
	}
	log := logger.With(zap.String("run_id", runID), zap.String("gene_id", rec.QueryGeneID))

	groups, err := p.Store.ListGroups(ctx, rec.QueryGeneID)
	if err != nil {
		return nil, err
	}
	criteria := p.Params.Criteria()
	if q.LevelName != "" {
		criteria = ogselect.Criteria{Method: ogselect.ByLevelName, LevelName: q.LevelName}
	}
	og, err := ogselect.Select(groups, criteria)
	if err != nil {
		return nil, fmt.Errorf("select ortholog group for %s: %w", rec.QueryGeneID, err)
	}
	rec.OG = og
	log = log.With(zap.String("og_id", og.OGID), zap.String("level", og.LevelName))
	log.Debug("Selected ortholog group", zap.Int("species_count", og.SpeciesCount))

	memberIDs, err := p.Store.ListGroupMembers(ctx, og.OGID)
	if err != nil {
		return nil, err
	}
	members, err := p.Store.FetchSequences(ctx, memberIDs)
	if err != nil {
		return nil, fmt.Errorf("fetch members of %s: %w", og.OGID, err)
	}
	full := model.NewCandidateSet(members...)
	query, ok := full.Get(rec.QueryGeneID)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a member of %s", model.ErrQueryNotInCandidateSet, rec.QueryGeneID, og.OGID)
	}
	rec.QuerySpeciesID = query.Organism
	rec.FullIDs = full.IDs()

	filtered, residueReport := filter.NonStandardResidues(full, query, p.Params.Filter.ProhibitedResidues)
	filtered, lengthReport, err := filter.MinLength(filtered, query, p.Params.MinFraction())
	if err != nil {
		return nil, err
	}
	rec.FilterReports = []filter.Report{residueReport, lengthReport}
	rec.FilteredIDs = filtered.IDs()

	est, err := similarity.New(p.Params.Method(), p.Params.Options(), p.Aligner)
	if err != nil {
		return nil, err
	}
	selection, err := ldo.NewSelector(est).Select(ctx, query, filtered)
	if err != nil {
		return nil, fmt.Errorf("select least divergent orthologs: %w", err)
	}
	rec.LDOIDs = selection.IDs
	rec.Similarity = selection.Selected
	ldos := filtered.Subset(selection.IDs).Sequences()

	reducer := &dedup.Reducer{Clusterer: p.Clusterer, PriorityIDs: p.Params.Cluster.PriorityIDs}
	reduced, err := reducer.Reduce(ctx, query, ldos)
	if err != nil {
		return nil, err
	}
	rec.DedupIDs = reduced.IDs()
	rec.Clusters = reduced.Clusters

	if p.Params.AlignEnabled() {
		if p.Aligner == nil {
			return nil, fmt.Errorf("%w: alignment requested without an aligner", model.ErrInvalidInput)
		}
		aligned, err := p.Aligner.Align(ctx, reduced.Sequences)
		if err != nil {
			return nil, fmt.Errorf("align least divergent orthologs: %w", err)
		}
		rec.Alignment = aligned
	}

	names, err := p.Store.SpeciesNames(ctx, speciesOf(full.Sequences()))
	if err != nil {
		return nil, err
	}
	rec.QuerySpeciesName = names[rec.QuerySpeciesID]

	if p.Params.WriteEnabled() {
		out := outputSet{
			full:    full.Sequences(),
			ldos:    ldos,
			reduced: reduced.Sequences,
			aligned: rec.Alignment,
			species: names,
		}
		if err := writeOutputs(p.Params.MainOutputDir, rec, out); err != nil {
			return nil, fmt.Errorf("write outputs: %w", err)
		}
	}

	log.Info("Finished query",
		zap.Int("members", len(rec.FullIDs)),
		zap.Int("filtered", len(rec.FilteredIDs)),
		zap.Int("ldos", len(rec.LDOIDs)),
		zap.Int("after_cdhit", len(rec.DedupIDs)))
	return rec, nil
}

// resolve fills in whichever of the gene id and UniProt id is missing.
func (p *Pipeline) resolve(ctx context.Context, rec *Record) error {
	switch {
	case rec.QueryGeneID != "":
		if rec.QueryUniProtID == "" {
			id, err := p.Store.UniProtID(ctx, rec.QueryGeneID)
			if err != nil {
				return err
			}
			rec.QueryUniProtID = id
		}
	case rec.QueryUniProtID != "":
		id, err := p.Store.ResolveQueryID(ctx, rec.QueryUniProtID, db.DuplicateAction(p.Params.DuplicateAction))
		if err != nil {
			return err
		}
		rec.QueryGeneID = id
	default:
		return fmt.Errorf("%w: a gene id or UniProt id is required", model.ErrInvalidInput)
	}
	return nil
}

func speciesOf(seqs []model.Sequence) []string {
	out := make([]string, 0, len(seqs))
	for _, s := range seqs {
		out = append(out, s.Organism)
	}
	return out
}
