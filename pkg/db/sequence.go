package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/yumyai/orthogroup/pkg/tools"
)

var ErrSequenceFileMissing = errors.New("sequence file does not exist")

// SequenceSource returns residues by gene id. Unknown ids are left out of the
// result rather than failing the call.
type SequenceSource interface {
	Fetch(ctx context.Context, ids []string) (map[string]string, error)
}

// TableSource reads the sequences table of the ortholog database.
type TableSource struct {
	DB *sql.DB
}

func (s *TableSource) Fetch(ctx context.Context, ids []string) (map[string]string, error) {
	out := make(map[string]string, len(ids))
	err := queryChunks(ctx, s.DB, unique(ids),
		`SELECT odb_gene_id, sequence FROM sequences WHERE odb_gene_id IN (%s)`,
		func(rows *sql.Rows) error {
			var id, residues string
			if err := rows.Scan(&id, &residues); err != nil {
				return err
			}
			out[id] = residues
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("fetch sequences: %w", err)
	}
	return out, nil
}

// FaidxSource reads a protein FASTA indexed with samtools faidx.
type FaidxSource struct {
	Fasta    string
	Samtools tools.Samtools
}

// NewFaidxSource checks that the FASTA and its .fai index exist.
func NewFaidxSource(fasta string, samtools tools.Samtools) (*FaidxSource, error) {
	for _, f := range []string{fasta, fasta + ".fai"} {
		if _, err := os.Stat(f); os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrSequenceFileMissing, f)
		}
	}
	return &FaidxSource{Fasta: fasta, Samtools: samtools}, nil
}

func (s *FaidxSource) Fetch(ctx context.Context, ids []string) (map[string]string, error) {
	records, err := s.Samtools.Faidx(ctx, s.Fasta, unique(ids))
	if err != nil {
		return nil, fmt.Errorf("fetch sequences from %s: %w", s.Fasta, err)
	}
	out := make(map[string]string, len(records))
	for _, r := range records {
		out[r.ID] = r.Residues
	}
	return out, nil
}
