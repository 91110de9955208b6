package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/yumyai/orthogroup/internal/util"
	"github.com/yumyai/orthogroup/pkg/model"
	"github.com/yumyai/orthogroup/pkg/tools"
)

// Keys of Record.Files.
const (
	FileFullOG    = "full_og"
	FileLDOs      = "ldos"
	FileLDOsCDHit = "ldos_cdhit"
	FileAlignment = "alignment"
	FileInfo      = "info"
	FileParams    = "params"
)

type outputSet struct {
	full    []model.Sequence
	ldos    []model.Sequence
	reduced []model.Sequence
	aligned []model.Sequence
	species map[string]string
}

// UnitDir is <root>/<ldo method>/<uniprot>-<gene>/<level>, the UniProt part
// dropped when the gene has no accession.
func UnitDir(root, method, uniprotID, geneID, level string) string {
	name := util.SafeName(geneID)
	if uniprotID != "" {
		name = util.SafeName(uniprotID) + "-" + name
	}
	return filepath.Join(root, method, name, util.SafeName(level))
}

// writeOutputs writes the FASTA files, params.json and the record itself, and
// records the paths in rec.Files.
func writeOutputs(root string, rec *Record, out outputSet) error {
	dir := UnitDir(root, rec.Params.LDOSelect.Method, rec.QueryUniProtID, rec.QueryGeneID, rec.OG.LevelName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	prefix := util.SafeName(rec.QueryGeneID) + "_" + util.SafeName(rec.OG.LevelName)

	rec.Files = map[string]string{}
	fastas := []struct {
		key, suffix string
		seqs        []model.Sequence
	}{
		{FileFullOG, "_full_OG.fasta", out.full},
		{FileLDOs, "_OG_LDOs.fasta", out.ldos},
		{FileLDOsCDHit, "_OG_LDOs_cdhit.fasta", out.reduced},
		{FileAlignment, "_OG_LDOs_cdhit_mafftaln.fasta", out.aligned},
	}
	for _, f := range fastas {
		if f.key == FileAlignment && out.aligned == nil {
			continue
		}
		path := filepath.Join(dir, prefix+f.suffix)
		if err := tools.WriteFasta(path, labelled(f.seqs, out.species)); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		rec.Files[f.key] = path
	}

	paramsPath := filepath.Join(dir, "params.json")
	if err := rec.Params.Save(paramsPath); err != nil {
		return err
	}
	rec.Files[FileParams] = paramsPath

	infoPath := filepath.Join(dir, prefix+"_info.json")
	rec.Files[FileInfo] = infoPath
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(infoPath, append(data, '\n'), 0o644)
}

// labelled prefixes each id with its species name, Homo_sapiens|9606_0:000001.
func labelled(seqs []model.Sequence, species map[string]string) []model.Sequence {
	out := make([]model.Sequence, len(seqs))
	for i, s := range seqs {
		name, ok := species[s.Organism]
		if !ok {
			name = s.Organism
		}
		out[i] = s.WithID(util.SafeName(name) + "|" + s.ID)
	}
	return out
}
