package idmap

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yumyai/orthogroup/pkg/db"
	"github.com/yumyai/orthogroup/pkg/model"
)

type mapResolver struct {
	ids   map[string]string
	err   error
	calls []string
}

func (m *mapResolver) ResolveQueryID(_ context.Context, id string, _ db.DuplicateAction) (string, error) {
	m.calls = append(m.calls, id)
	if m.err != nil {
		return "", m.err
	}
	gene, ok := m.ids[id]
	if !ok {
		return "", model.ErrNotFound
	}
	return gene, nil
}

func TestMapCSV(t *testing.T) {
	in := "name,uniprot_id\n" +
		"a, P12345-2\n" +
		"b,P12345\n" +
		"c,Q99999\n" +
		"d,\n" +
		"e,Q11111\n"
	res := &mapResolver{ids: map[string]string{"P12345": "9606_0:000001", "Q11111": "10090_0:000001"}}

	var out bytes.Buffer
	stats, err := MapCSV(context.Background(), strings.NewReader(in), &out, "uniprot_id", res, db.DuplicateLongest)
	require.NoError(t, err)

	assert.Equal(t, "name,uniprot_id,gene_id\n"+
		"a,\" P12345-2\",9606_0:000001\n"+
		"b,P12345,9606_0:000001\n"+
		"c,Q99999,\n"+
		"d,,\n"+
		"e,Q11111,10090_0:000001\n", out.String())
	assert.Equal(t, []string{"P12345", "Q99999", "Q11111"}, res.calls)
	assert.Equal(t, 5, stats.Rows)
	assert.Equal(t, 3, stats.Unique)
	assert.Equal(t, 2, stats.Mapped)
	assert.Equal(t, []string{"Q99999"}, stats.Missing)
}

func TestMapCSVOverwritesGeneID(t *testing.T) {
	res := &mapResolver{ids: map[string]string{"P1": "g1"}}
	var out bytes.Buffer
	_, err := MapCSV(context.Background(), strings.NewReader("acc,gene_id\nP1,old\n"), &out, "acc", res, db.DuplicateFirst)
	require.NoError(t, err)
	assert.Equal(t, "acc,gene_id\nP1,g1\n", out.String())
}

func TestMapCSVErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		res   *mapResolver
		is    error
	}{
		{"missing column", "name,acc\na,P1\n", &mapResolver{}, model.ErrInvalidInput},
		{"empty table", "", &mapResolver{}, model.ErrInvalidInput},
		{"ragged row", "uniprot_id,x\nP1\n", &mapResolver{}, model.ErrInvalidInput},
		{"lookup failure", "uniprot_id\nP1\n", &mapResolver{err: errors.New("disk I/O error")}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := MapCSV(context.Background(), strings.NewReader(tt.input), &bytes.Buffer{}, "uniprot_id", tt.res, db.DuplicateLongest)
			require.Error(t, err)
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
		})
	}
}

func TestDefaultOutputPath(t *testing.T) {
	assert.Equal(t, filepath.Join("data", "ids_mapped_odbgeneid.csv"), DefaultOutputPath(filepath.Join("data", "ids.csv")))
	assert.Equal(t, "ids_mapped_odbgeneid", DefaultOutputPath("ids"))
}
