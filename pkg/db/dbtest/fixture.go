// Package dbtest builds small ortholog databases for tests.
package dbtest

import (
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

const Schema = `
CREATE TABLE species (species_id TEXT PRIMARY KEY, species_name TEXT);
CREATE TABLE gene_refs (odb_gene_id TEXT PRIMARY KEY, species_id TEXT, uniprot_id TEXT);
CREATE TABLE gene_xrefs (odb_gene_id TEXT, xref_id TEXT, db_name TEXT);
CREATE TABLE levels (level_taxid INTEGER PRIMARY KEY, level_name TEXT, species_count INTEGER);
CREATE TABLE ogs (og_id TEXT PRIMARY KEY, level_taxid INTEGER, og_name TEXT);
CREATE TABLE og2genes (og_id TEXT, odb_gene_id TEXT);
CREATE TABLE sequences (odb_gene_id TEXT PRIMARY KEY, sequence TEXT);
`

// Query is the human gene every fixture group is built around.
const (
	QueryGene    = "9606_0:000001"
	QueryUniProt = "P12345"
	QueryResidue = "MSTNPKLVAAGHTEWQRDFYCIKLMAGHWE"
)

// Gene is one fixture row.
type Gene struct {
	ID       string
	Species  string
	UniProt  string
	Residues string
}

func mutate(s string, at map[int]byte) string {
	b := []byte(s)
	for i, c := range at {
		b[i] = c
	}
	return string(b)
}

// Genes of the default fixture. Human holds the query and a paralog, mouse a
// close and a distant ortholog, fish one ortholog plus one with an X and one
// too short to keep.
var Genes = []Gene{
	{QueryGene, "9606_0", QueryUniProt, QueryResidue},
	{"9606_0:000002", "9606_0", "P99999", mutate(QueryResidue, map[int]byte{2: 'A', 5: 'A', 9: 'W', 14: 'A', 20: 'A'})},
	{"10090_0:000001", "10090_0", "", mutate(QueryResidue, map[int]byte{7: 'I'})},
	{"10090_0:000002", "10090_0", "Q22222", mutate(QueryResidue, map[int]byte{1: 'A', 3: 'A', 6: 'A', 11: 'A', 17: 'A', 25: 'A'})},
	{"7955_0:000001", "7955_0", "", mutate(QueryResidue, map[int]byte{4: 'X'})},
	{"7955_0:000002", "7955_0", "", QueryResidue[:8]},
	{"7955_0:000003", "7955_0", "", mutate(QueryResidue, map[int]byte{10: 'S', 16: 'S', 22: 'S'})},
}

// Build writes the default fixture to a file under t.TempDir and returns its path.
func Build(t testing.TB) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "orthodb.sqlite")

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	for _, stmt := range strings.Split(Schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}

	exec := func(query string, args ...any) {
		t.Helper()
		_, err := db.Exec(query, args...)
		require.NoError(t, err)
	}

	exec(`INSERT INTO species VALUES ('9606_0', 'Homo sapiens'), ('10090_0', 'Mus musculus'), ('7955_0', 'Danio rerio')`)
	for _, g := range Genes {
		var uniprot any
		if g.UniProt != "" {
			uniprot = g.UniProt
		}
		exec(`INSERT INTO gene_refs VALUES (?, ?, ?)`, g.ID, g.Species, uniprot)
		exec(`INSERT INTO sequences VALUES (?, ?)`, g.ID, g.Residues)
	}
	// The mouse ortholog is only reachable through its cross reference.
	exec(`INSERT INTO gene_xrefs VALUES ('10090_0:000001', 'Q11111', 'UniProt'), ('10090_0:000001', 'ENSMUSG1', 'Ensembl')`)

	exec(`INSERT INTO levels VALUES (2759, 'Eukaryota', 1952), (7742, 'Vertebrata', 470), (40674, 'Mammalia', 300)`)
	exec(`INSERT INTO ogs VALUES ('100at2759', 2759, 'kinase'), ('200at7742', 7742, 'kinase'), ('300at40674', 40674, 'kinase')`)
	for _, g := range Genes {
		exec(`INSERT INTO og2genes VALUES ('100at2759', ?), ('200at7742', ?)`, g.ID, g.ID)
		if !strings.HasPrefix(g.ID, "7955") {
			exec(`INSERT INTO og2genes VALUES ('300at40674', ?)`, g.ID)
		}
	}
	return path
}
