package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yumyai/orthogroup/internal/util"
	"github.com/yumyai/orthogroup/logger"
)

type UnitStatus string

const (
	UnitDone    UnitStatus = "done"
	UnitFailed  UnitStatus = "failed"
	UnitSkipped UnitStatus = "skipped"
)

// UnitResult is the outcome of one gene at one level.
type UnitResult struct {
	GeneID string     `json:"gene_id"`
	Level  string     `json:"level"`
	Status UnitStatus `json:"status"`
	Dir    string     `json:"dir,omitempty"`
	Error  string     `json:"error,omitempty"`
}

// Batch runs the pipeline for many genes on a fixed number of workers.
type Batch struct {
	Pipeline *Pipeline
	Workers  int
	// Overwrite reruns units whose output directory already exists.
	Overwrite bool
	Progress  bool
}

// RunSpecies processes every gene of a species at each level. A failing unit
// is logged and recorded, the others carry on. Cancelling ctx stops new units
// from starting.
func (b *Batch) RunSpecies(ctx context.Context, speciesID string, levels []string) ([]UnitResult, error) {
	genes, err := b.Pipeline.Store.GenesInSpecies(ctx, speciesID)
	if err != nil {
		return nil, err
	}
	if len(levels) == 0 {
		return nil, fmt.Errorf("no levels given for species %s", speciesID)
	}

	var queries []Query
	for _, g := range genes {
		for _, l := range levels {
			queries = append(queries, Query{GeneID: g, LevelName: l})
		}
	}
	return b.Run(ctx, queries)
}

// Run processes the queries; results are in query order.
func (b *Batch) Run(ctx context.Context, queries []Query) ([]UnitResult, error) {
	workers := b.Workers
	if workers < 1 {
		workers = 1
	}

	// Units share the run id, each gets its own directory.
	pipe := *b.Pipeline
	if pipe.RunID == "" {
		pipe.RunID = uuid.NewString()
	}
	log := logger.With(zap.String("run_id", pipe.RunID))
	log.Info("Starting batch",
		zap.String("units", humanize.Comma(int64(len(queries)))),
		zap.Int("workers", workers))

	var bar *pb.ProgressBar
	if b.Progress {
		bar = pb.StartNew(len(queries))
		defer bar.Finish()
	}

	start := time.Now()
	results := make([]UnitResult, len(queries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, q := range queries {
		results[i] = UnitResult{GeneID: q.GeneID, Level: q.LevelName, Status: UnitSkipped, Error: "not started"}
	}
	for i, q := range queries {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			results[i] = b.runUnit(gctx, &pipe, q)
			if bar != nil {
				bar.Increment()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}

	counts := map[UnitStatus]int{}
	for _, r := range results {
		counts[r.Status]++
	}
	log.Info("Finished batch",
		zap.String("done", humanize.Comma(int64(counts[UnitDone]))),
		zap.String("failed", humanize.Comma(int64(counts[UnitFailed]))),
		zap.String("skipped", humanize.Comma(int64(counts[UnitSkipped]))),
		zap.Duration("elapsed", time.Since(start)))

	return results, ctx.Err()
}

func (b *Batch) runUnit(ctx context.Context, pipe *Pipeline, q Query) UnitResult {
	res := UnitResult{GeneID: q.GeneID, Level: q.LevelName}
	log := logger.With(zap.String("run_id", pipe.RunID), zap.String("gene_id", q.GeneID), zap.String("level", q.LevelName))

	if pipe.Params.WriteEnabled() && q.GeneID != "" && q.LevelName != "" {
		uniprot, err := pipe.Store.UniProtID(ctx, q.GeneID)
		if err == nil {
			q.UniProtID = uniprot
			dir := UnitDir(pipe.Params.MainOutputDir, pipe.Params.LDOSelect.Method, uniprot, q.GeneID, q.LevelName)
			if util.DirExists(dir) && !b.Overwrite {
				log.Info("Output exists, skipping", zap.String("dir", dir))
				res.Status, res.Dir = UnitSkipped, dir
				return res
			}
		}
	}

	rec, err := pipe.Run(ctx, q)
	if err != nil {
		log.Error("Unit failed", zap.Error(err))
		res.Status, res.Error = UnitFailed, err.Error()
		return res
	}
	res.Status = UnitDone
	if info, ok := rec.Files[FileInfo]; ok {
		res.Dir = filepath.Dir(info)
	}
	return res
}
