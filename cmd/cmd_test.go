package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/yumyai/orthogroup/pkg/db/dbtest"
	"github.com/yumyai/orthogroup/pkg/pipeline"
)

// fakeCDHit copies its input and puts every record in a cluster of its own.
const fakeCDHit = `#!/bin/sh
while [ $# -gt 0 ]; do
  case "$1" in
    -i) in=$2; shift ;;
    -o) out=$2; shift ;;
  esac
  shift
done
cp "$in" "$out"
n=0
grep '^>' "$in" | while read -r h; do
  id=${h#>}
  id=${id%% *}
  printf '>Cluster %d\n0\t10aa, >%s... *\n' "$n" "$id"
  n=$((n+1))
done > "$out.clstr"
`

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cdhit := filepath.Join(dir, "cd-hit")
	require.NoError(t, os.WriteFile(cdhit, []byte(fakeCDHit), 0o755))

	t.Setenv("ORTHOGROUP_DB", dbtest.Build(t))
	t.Setenv("ORTHOGROUP_FASTA", "")
	t.Setenv("CD_HIT_EXECUTABLE", cdhit)
	t.Setenv("ORTHOGROUP_LOG_LEVEL", "error")

	params := filepath.Join(dir, "params.json")
	require.NoError(t, os.WriteFile(params, []byte(`{"align_params": {"align": false}, "write_files": false}`), 0o644))
	return params
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetArgs(args)
	t.Cleanup(func() {
		RootCmd.SetOut(nil)
		RootCmd.SetArgs(nil)
		resetFlags()
	})
	err := RootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

// resetFlags undoes flag values left by an earlier command run.
func resetFlags() {
	reset := func(f *pflag.Flag) {
		if _, ok := f.Value.(pflag.SliceValue); ok {
			return
		}
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	RootCmd.PersistentFlags().VisitAll(reset)
	for _, c := range RootCmd.Commands() {
		c.Flags().VisitAll(reset)
	}
}

func TestGroupsCommand(t *testing.T) {
	params := setupEnv(t)

	out, err := execute(t, "groups", "--config", params, dbtest.QueryGene)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "og_id\t"))
	assert.True(t, strings.HasPrefix(lines[1], "100at2759\t2759\tEukaryota\t"))
}

func TestRunCommand(t *testing.T) {
	params := setupEnv(t)

	out, err := execute(t, "run", "--config", params, "--uniprot-id", dbtest.QueryUniProt, "--level", "Mammalia")
	require.NoError(t, err)

	var rec pipeline.Record
	require.NoError(t, json.Unmarshal([]byte(out), &rec))
	assert.Equal(t, dbtest.QueryGene, rec.QueryGeneID)
	assert.Equal(t, "300at40674", rec.OG.OGID)
	assert.Equal(t, []string{dbtest.QueryGene, "10090_0:000001"}, rec.DedupIDs)
}

func TestRunCommandNeedsQuery(t *testing.T) {
	params := setupEnv(t)

	_, err := execute(t, "run", "--config", params)
	assert.ErrorContains(t, err, "--gene-id or --uniprot-id")
}

func TestMapCommand(t *testing.T) {
	params := setupEnv(t)
	input := filepath.Join(t.TempDir(), "ids.csv")
	require.NoError(t, os.WriteFile(input, []byte("uniprot_id,note\n"+dbtest.QueryUniProt+"-2,iso\nNOPE,x\nQ11111,xref\n"), 0o644))

	_, err := execute(t, "map", "--config", params, "-i", input)
	require.NoError(t, err)

	out, err := os.ReadFile(filepath.Join(filepath.Dir(input), "ids_mapped_odbgeneid.csv"))
	require.NoError(t, err)
	assert.Equal(t, "uniprot_id,note,gene_id\n"+
		dbtest.QueryUniProt+"-2,iso,"+dbtest.QueryGene+"\n"+
		"NOPE,x,\n"+
		"Q11111,xref,10090_0:000001\n", string(out))
}

func TestSpeciesDefaultLevels(t *testing.T) {
	levels, err := speciesCmd.Flags().GetStringSlice("levels")
	require.NoError(t, err)
	assert.Equal(t, []string{"Eukaryota", "Mammalia", "Metazoa", "Tetrapoda", "Vertebrata"}, levels)
}
