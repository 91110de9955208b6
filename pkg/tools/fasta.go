// FASTA files exchanged with the external tools

package tools

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/shenwei356/bio/seq"
	"github.com/shenwei356/bio/seqio/fastx"

	"github.com/yumyai/orthogroup/pkg/model"
)

const fastaLineWidth = 60

func init() {
	// Alignments carry gaps and ambiguous residues; keep them as they are.
	seq.ValidateSeq = false
}

// WriteFasta writes the sequences to path, one record per sequence, header = id.
func WriteFasta(path string, seqs []model.Sequence) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := EncodeFasta(w, seqs); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return f.Close()
}

// EncodeFasta writes the records to w.
func EncodeFasta(w io.Writer, seqs []model.Sequence) error {
	for _, s := range seqs {
		record := &fastx.Record{
			ID:   []byte(s.ID),
			Name: []byte(s.ID),
			Seq:  &seq.Seq{Alphabet: seq.Unlimit, Seq: []byte(s.Residues)},
		}
		if _, err := w.Write(record.Format(fastaLineWidth)); err != nil {
			return fmt.Errorf("write %s: %w", s.ID, err)
		}
	}
	return nil
}

// ReadFasta loads every record of a FASTA file in file order. Organism is left empty.
func ReadFasta(path string) ([]model.Sequence, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() == 0 {
		return []model.Sequence{}, nil
	}

	reader, err := fastx.NewReader(seq.Unlimit, path, "")
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer reader.Close()

	var out []model.Sequence
	for {
		record, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		// The reader reuses its buffers, string() copies.
		out = append(out, model.Sequence{
			ID:       string(record.ID),
			Residues: string(record.Seq.Seq),
		})
	}
	return out, nil
}
