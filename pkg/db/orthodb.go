package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"go.uber.org/zap"

	_ "modernc.org/sqlite"

	"github.com/yumyai/orthogroup/logger"
	"github.com/yumyai/orthogroup/pkg/model"
)

// Ids per IN (...) query, well under SQLite's variable limit.
const chunkSize = 500

type DuplicateAction string

const (
	DuplicateFirst   DuplicateAction = "first"
	DuplicateLongest DuplicateAction = "longest"
)

// OrthoDB answers ortholog group questions from a local OrthoDB SQLite
// export. Sequences come from a separate source.
type OrthoDB struct {
	orthoSQL  *sql.DB
	Sequences SequenceSource
}

// Open opens the database at path read only.
func Open(path string) (*sql.DB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: database %s: %v", model.ErrNotFound, path, err)
	}
	db, err := sql.Open("sqlite", path+"?_pragma=query_only(1)")
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return db, nil
}

func NewOrthoDB(db *sql.DB, seqs SequenceSource) *OrthoDB {
	return &OrthoDB{orthoSQL: db, Sequences: seqs}
}

func (o *OrthoDB) Close() error {
	return o.orthoSQL.Close()
}

var isoformSuffix = regexp.MustCompile(`-\d+$`)

// NormalizeUniProtID trims whitespace and drops an isoform suffix,
// " P12345-2 " -> "P12345".
func NormalizeUniProtID(id string) string {
	return isoformSuffix.ReplaceAllString(strings.TrimSpace(id), "")
}

// ResolveQueryID maps a UniProt accession to an OrthoDB gene id, first through
// gene_refs and then through the UniProt cross references. When several genes
// match, action picks the first one or the one with the longest sequence.
func (o *OrthoDB) ResolveQueryID(ctx context.Context, uniprotID string, action DuplicateAction) (string, error) {
	uniprotID = NormalizeUniProtID(uniprotID)
	ids, err := o.queryStrings(ctx, `SELECT odb_gene_id FROM gene_refs WHERE uniprot_id = ? ORDER BY rowid`, uniprotID)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", uniprotID, err)
	}
	if len(ids) == 0 {
		ids, err = o.queryStrings(ctx, `SELECT odb_gene_id FROM gene_xrefs WHERE xref_id = ? AND db_name = 'UniProt' ORDER BY rowid`, uniprotID)
		if err != nil {
			return "", fmt.Errorf("resolve %s: %w", uniprotID, err)
		}
	}
	ids = unique(ids)

	switch {
	case len(ids) == 0:
		return "", fmt.Errorf("%w: uniprot id %s", model.ErrNotFound, uniprotID)
	case len(ids) == 1:
		return ids[0], nil
	}

	logger.Warn("UniProt id maps to several genes",
		zap.String("uniprot_id", uniprotID),
		zap.Strings("gene_ids", ids),
		zap.String("duplicate_action", string(action)))

	switch action {
	case DuplicateFirst:
		return ids[0], nil
	case DuplicateLongest:
		residues, err := o.Sequences.Fetch(ctx, ids)
		if err != nil {
			return "", err
		}
		best := ""
		for _, id := range ids {
			if r, ok := residues[id]; ok && (best == "" || len(r) > len(residues[best])) {
				best = id
			}
		}
		if best == "" {
			return "", fmt.Errorf("%w: no sequence for any gene of %s", model.ErrNotFound, uniprotID)
		}
		return best, nil
	}
	return "", fmt.Errorf("%w: duplicate action %q", model.ErrInvalidInput, action)
}

// UniProtID is the accession recorded for a gene, empty when it has none.
func (o *OrthoDB) UniProtID(ctx context.Context, geneID string) (string, error) {
	var id sql.NullString
	err := o.orthoSQL.QueryRowContext(ctx, `SELECT uniprot_id FROM gene_refs WHERE odb_gene_id = ?`, geneID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: gene %s", model.ErrNotFound, geneID)
	}
	if err != nil {
		return "", err
	}
	return id.String, nil
}

func (o *OrthoDB) GeneSpecies(ctx context.Context, geneID string) (string, error) {
	var species string
	err := o.orthoSQL.QueryRowContext(ctx, `SELECT species_id FROM gene_refs WHERE odb_gene_id = ?`, geneID).Scan(&species)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: gene %s", model.ErrNotFound, geneID)
	}
	return species, err
}

func (o *OrthoDB) SpeciesName(ctx context.Context, speciesID string) (string, error) {
	var name string
	err := o.orthoSQL.QueryRowContext(ctx, `SELECT species_name FROM species WHERE species_id = ?`, speciesID).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: species %s", model.ErrNotFound, speciesID)
	}
	return name, err
}

// SpeciesNames looks up several species at once; unknown ids are left out.
func (o *OrthoDB) SpeciesNames(ctx context.Context, speciesIDs []string) (map[string]string, error) {
	names := make(map[string]string, len(speciesIDs))
	err := queryChunks(ctx, o.orthoSQL, unique(speciesIDs),
		`SELECT species_id, species_name FROM species WHERE species_id IN (%s)`,
		func(rows *sql.Rows) error {
			var id, name string
			if err := rows.Scan(&id, &name); err != nil {
				return err
			}
			names[id] = name
			return nil
		})
	return names, err
}

// ListGroups returns every ortholog group holding the gene, largest level first.
func (o *OrthoDB) ListGroups(ctx context.Context, geneID string) ([]model.GroupInfo, error) {
	const query = `
		SELECT o.og_id, o.level_taxid, l.level_name, l.species_count, o.og_name
		FROM og2genes g
		JOIN ogs o ON o.og_id = g.og_id
		JOIN levels l ON l.level_taxid = o.level_taxid
		WHERE g.odb_gene_id = ?
		ORDER BY l.species_count DESC, o.og_id
	`
	rows, err := o.orthoSQL.QueryContext(ctx, query, geneID)
	if err != nil {
		return nil, fmt.Errorf("list groups of %s: %w", geneID, err)
	}
	defer rows.Close()

	var groups []model.GroupInfo
	for rows.Next() {
		var g model.GroupInfo
		var name sql.NullString
		if err := rows.Scan(&g.OGID, &g.LevelTaxID, &g.LevelName, &g.SpeciesCount, &name); err != nil {
			return nil, err
		}
		g.Name = name.String
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return nil, fmt.Errorf("%w: no ortholog groups for gene %s", model.ErrNotFound, geneID)
	}
	return groups, nil
}

func (o *OrthoDB) ListGroupMembers(ctx context.Context, ogID string) ([]string, error) {
	ids, err := o.queryStrings(ctx, `SELECT odb_gene_id FROM og2genes WHERE og_id = ? ORDER BY odb_gene_id`, ogID)
	if err != nil {
		return nil, fmt.Errorf("list members of %s: %w", ogID, err)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: ortholog group %s", model.ErrNotFound, ogID)
	}
	return ids, nil
}

func (o *OrthoDB) GenesInSpecies(ctx context.Context, speciesID string) ([]string, error) {
	ids, err := o.queryStrings(ctx, `SELECT odb_gene_id FROM gene_refs WHERE species_id = ? ORDER BY odb_gene_id`, speciesID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no genes for species %s", model.ErrNotFound, speciesID)
	}
	return ids, nil
}

// FetchSequences returns the genes in the order given, organism set to the
// species id. Every gene must be known and have a sequence.
func (o *OrthoDB) FetchSequences(ctx context.Context, geneIDs []string) ([]model.Sequence, error) {
	species := make(map[string]string, len(geneIDs))
	err := queryChunks(ctx, o.orthoSQL, unique(geneIDs),
		`SELECT odb_gene_id, species_id FROM gene_refs WHERE odb_gene_id IN (%s)`,
		func(rows *sql.Rows) error {
			var id, sp string
			if err := rows.Scan(&id, &sp); err != nil {
				return err
			}
			species[id] = sp
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("species of genes: %w", err)
	}

	residues, err := o.Sequences.Fetch(ctx, geneIDs)
	if err != nil {
		return nil, err
	}

	out := make([]model.Sequence, 0, len(geneIDs))
	var missing []string
	for _, id := range geneIDs {
		sp, okSpecies := species[id]
		r, okSeq := residues[id]
		if !okSpecies || !okSeq {
			missing = append(missing, id)
			continue
		}
		out = append(out, model.Sequence{ID: id, Organism: sp, Residues: r})
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %d genes without species or sequence, e.g. %s",
			model.ErrNotFound, len(missing), missing[0])
	}
	return out, nil
}

func (o *OrthoDB) queryStrings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := o.orthoSQL.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// queryChunks runs a query template with one %s placeholder for the IN list
// over ids in chunks, calling scan for every row.
func queryChunks(ctx context.Context, db *sql.DB, ids []string, template string, scan func(*sql.Rows) error) error {
	for start := 0; start < len(ids); start += chunkSize {
		end := min(start+chunkSize, len(ids))
		chunk := ids[start:end]

		args := make([]any, len(chunk))
		for i, id := range chunk {
			args[i] = id
		}
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(chunk)), ",")

		if err := func() error {
			rows, err := db.QueryContext(ctx, fmt.Sprintf(template, placeholders), args...)
			if err != nil {
				return err
			}
			defer rows.Close()
			for rows.Next() {
				if err := scan(rows); err != nil {
					return err
				}
			}
			return rows.Err()
		}(); err != nil {
			return err
		}
	}
	return nil
}

func unique(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
