// Package idmap adds OrthoDB gene ids to a CSV table of UniProt accessions.
package idmap

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/yumyai/orthogroup/logger"
	"github.com/yumyai/orthogroup/pkg/db"
	"github.com/yumyai/orthogroup/pkg/model"
)

// GeneIDColumn is the column written with the mapped ids.
const GeneIDColumn = "gene_id"

type Resolver interface {
	ResolveQueryID(ctx context.Context, uniprotID string, action db.DuplicateAction) (string, error)
}

type Stats struct {
	Rows    int
	Unique  int
	Mapped  int
	Missing []string
}

// DefaultOutputPath is input with "_mapped_odbgeneid" before the extension.
func DefaultOutputPath(input string) string {
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + "_mapped_odbgeneid" + ext
}

// MapCSV copies the table from r to w with a gene_id column holding the gene
// id of each row's accession in column. Accessions are normalised with
// db.NormalizeUniProtID and resolved once each. Accessions the database does
// not know are logged and left with an empty gene_id; any other lookup error
// stops the mapping. An existing gene_id column is overwritten.
func MapCSV(ctx context.Context, r io.Reader, w io.Writer, column string, res Resolver, action db.DuplicateAction) (Stats, error) {
	var stats Stats

	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return stats, fmt.Errorf("%w: read table: %v", model.ErrInvalidInput, err)
	}
	if len(records) == 0 {
		return stats, fmt.Errorf("%w: table has no header", model.ErrInvalidInput)
	}

	header := records[0]
	col := indexOf(header, column)
	if col < 0 {
		return stats, fmt.Errorf("%w: column %q not found in table, columns: %s",
			model.ErrInvalidInput, column, strings.Join(header, ", "))
	}
	out := indexOf(header, GeneIDColumn)
	if out < 0 {
		out = len(header)
		header = append(header, GeneIDColumn)
	}

	geneIDs := make(map[string]string)
	resolved := make(map[string]bool)
	for _, row := range records[1:] {
		stats.Rows++
		id := db.NormalizeUniProtID(row[col])
		if id == "" || resolved[id] {
			continue
		}
		resolved[id] = true
		stats.Unique++

		gene, err := res.ResolveQueryID(ctx, id, action)
		switch {
		case errors.Is(err, model.ErrNotFound):
			logger.Warn("UniProt id not found in OrthoDB, skipping", zap.String("uniprot_id", id))
			stats.Missing = append(stats.Missing, id)
		case err != nil:
			return stats, fmt.Errorf("map %s: %w", id, err)
		default:
			geneIDs[id] = gene
			stats.Mapped++
		}
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return stats, err
	}
	for _, row := range records[1:] {
		gene := geneIDs[db.NormalizeUniProtID(row[col])]
		if out < len(row) {
			row[out] = gene
		} else {
			row = append(row, gene)
		}
		if err := cw.Write(row); err != nil {
			return stats, err
		}
	}
	cw.Flush()
	return stats, cw.Error()
}

func indexOf(fields []string, name string) int {
	for i, f := range fields {
		if strings.TrimSpace(f) == name {
			return i
		}
	}
	return -1
}
