package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/yumyai/orthogroup/logger"
	"github.com/yumyai/orthogroup/pkg/model"
)

// Mafft runs the MAFFT multiple sequence aligner.
type Mafft struct {
	Executable string
	Threads    int
	// Fast trades accuracy for speed with --retree 1.
	Fast      bool
	ExtraArgs []string
}

func (m Mafft) args(input string) []string {
	threads := m.Threads
	if threads < 1 {
		threads = 1
	}
	args := []string{"--thread", strconv.Itoa(threads), "--quiet", "--anysymbol"}
	if m.Fast {
		args = append(args, "--retree", "1")
	}
	args = append(args, m.ExtraArgs...)
	return append(args, input)
}

// Align returns the aligned sequences in input order with organisms kept.
// Fewer than two sequences are returned unchanged.
func (m Mafft) Align(ctx context.Context, seqs []model.Sequence) ([]model.Sequence, error) {
	if len(seqs) < 2 {
		return append([]model.Sequence(nil), seqs...), nil
	}

	var aligned []model.Sequence
	err := withWorkDir("mafft", func(dir string) error {
		input := filepath.Join(dir, "input.fasta")
		if err := WriteFasta(input, seqs); err != nil {
			return err
		}

		output := filepath.Join(dir, "aligned.fasta")
		out, err := os.Create(output)
		if err != nil {
			return err
		}
		defer out.Close()

		executable := m.Executable
		if executable == "" {
			executable = "mafft"
		}
		if err := runTool(ctx, "mafft", executable, m.args(input), out); err != nil {
			return err
		}
		if err := out.Close(); err != nil {
			return err
		}

		aligned, err = ReadFasta(output)
		return err
	})
	if err != nil {
		return nil, err
	}

	result, err := matchAlignment(seqs, aligned)
	if err != nil {
		return nil, &model.ToolError{Tool: "mafft", Err: err}
	}
	logger.Debug("Aligned sequences", zap.Int("count", len(result)), zap.Int("columns", utf8.RuneCountInString(result[0].Residues)))
	return result, nil
}

// matchAlignment puts the aligned rows back into input order and checks that
// nothing was lost and every row has the same width.
func matchAlignment(input, aligned []model.Sequence) ([]model.Sequence, error) {
	rows := make(map[string]string, len(aligned))
	for _, s := range aligned {
		rows[s.ID] = s.Residues
	}

	out := make([]model.Sequence, 0, len(input))
	width := -1
	for _, s := range input {
		row, ok := rows[s.ID]
		if !ok {
			return nil, fmt.Errorf("sequence %s missing from alignment", s.ID)
		}
		if width < 0 {
			width = len(row)
		} else if len(row) != width {
			return nil, fmt.Errorf("sequence %s has %d columns, expected %d", s.ID, len(row), width)
		}
		out = append(out, model.Sequence{ID: s.ID, Organism: s.Organism, Residues: row})
	}
	return out, nil
}
