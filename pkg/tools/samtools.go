package tools

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/yumyai/orthogroup/pkg/model"
)

// Samtools fetches records from a faidx indexed (optionally bgzipped) FASTA.
type Samtools struct {
	Executable string
}

// Faidx returns the requested records. Ids are passed as literal names so
// ones holding a colon are not read as ranges.
func (s Samtools) Faidx(ctx context.Context, fasta string, ids []string) ([]model.Sequence, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	// samtools faidx all.faa.gz -r - < regions
	var regions bytes.Buffer
	for _, id := range ids {
		regions.WriteString("{" + id + "}\n")
	}

	var records []model.Sequence
	err := withWorkDir("faidx", func(dir string) error {
		regionFile := filepath.Join(dir, "regions.txt")
		if err := os.WriteFile(regionFile, regions.Bytes(), 0o644); err != nil {
			return err
		}
		output := filepath.Join(dir, "records.fasta")

		executable := s.Executable
		if executable == "" {
			executable = "samtools"
		}
		args := []string{"faidx", fasta, "-r", regionFile, "-o", output}
		if err := runTool(ctx, "samtools", executable, args, io.Discard); err != nil {
			return err
		}

		var err error
		records, err = ReadFasta(output)
		return err
	})
	if err != nil {
		return nil, err
	}

	for i := range records {
		records[i].ID = strings.TrimSuffix(strings.TrimPrefix(records[i].ID, "{"), "}")
	}
	return records, nil
}
