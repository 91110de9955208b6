package tools

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/yumyai/orthogroup/logger"
	"github.com/yumyai/orthogroup/pkg/model"
)

// CDHit clusters protein sequences with cd-hit.
type CDHit struct {
	Executable string
	ExtraArgs  []string
}

func (c CDHit) args(input, output string) []string {
	// -d 0 keeps full ids in the .clstr report
	args := []string{"-i", input, "-o", output, "-M", "0", "-d", "0"}
	return append(args, c.ExtraArgs...)
}

// Cluster runs cd-hit and returns the clusters it reports, keyed by cluster number.
func (c CDHit) Cluster(ctx context.Context, seqs []model.Sequence) (model.ClusterAssignment, error) {
	switch len(seqs) {
	case 0:
		return model.ClusterAssignment{}, nil
	case 1:
		return model.ClusterAssignment{
			"0": {Members: []string{seqs[0].ID}, Representative: seqs[0].ID},
		}, nil
	}

	var clusters model.ClusterAssignment
	err := withWorkDir("cdhit", func(dir string) error {
		input := filepath.Join(dir, "input.fasta")
		if err := WriteFasta(input, seqs); err != nil {
			return err
		}
		output := filepath.Join(dir, "reduced.fasta")

		executable := c.Executable
		if executable == "" {
			executable = "cd-hit"
		}
		if err := runTool(ctx, "cd-hit", executable, c.args(input, output), io.Discard); err != nil {
			return err
		}

		f, err := os.Open(output + ".clstr")
		if err != nil {
			return &model.ToolError{Tool: "cd-hit", Err: fmt.Errorf("no cluster report: %w", err)}
		}
		defer f.Close()

		clusters, err = ParseClstr(f)
		if err != nil {
			return &model.ToolError{Tool: "cd-hit", Err: err}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Debug("Clustered sequences", zap.Int("sequences", len(seqs)), zap.Int("clusters", len(clusters)))
	return clusters, nil
}

// ParseClstr reads a cd-hit .clstr report:
//
//	>Cluster 0
//	0	2799aa, >9606_0:001c7b... *
//	1	2780aa, >10090_0:00200f... at 97.21%
//
// The member line ending in '*' is the representative.
func ParseClstr(r io.Reader) (model.ClusterAssignment, error) {
	clusters := model.ClusterAssignment{}
	var current *model.Cluster
	var currentName string

	closeCluster := func() error {
		if current == nil {
			return nil
		}
		if current.Representative == "" {
			return fmt.Errorf("cluster %s has no representative", currentName)
		}
		clusters[currentName] = current
		return nil
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ">Cluster") {
			if err := closeCluster(); err != nil {
				return nil, err
			}
			currentName = strings.TrimSpace(strings.TrimPrefix(line, ">Cluster"))
			if _, dup := clusters[currentName]; dup {
				return nil, fmt.Errorf("line %d: duplicate cluster %q", lineNo, currentName)
			}
			current = &model.Cluster{}
			continue
		}

		if current == nil {
			return nil, fmt.Errorf("line %d: member before first cluster header", lineNo)
		}
		id, err := clstrMemberID(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		current.Members = append(current.Members, id)
		if strings.HasSuffix(line, "*") {
			current.Representative = id
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if err := closeCluster(); err != nil {
		return nil, err
	}
	return clusters, nil
}

func clstrMemberID(line string) (string, error) {
	start := strings.Index(line, ">")
	if start < 0 {
		return "", fmt.Errorf("malformed member line %q", line)
	}
	rest := line[start+1:]
	end := strings.Index(rest, "...")
	if end <= 0 {
		return "", fmt.Errorf("malformed member line %q", line)
	}
	return rest[:end], nil
}
