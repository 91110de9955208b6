package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/yumyai/orthogroup/logger"
	"github.com/yumyai/orthogroup/pkg/db"
	"github.com/yumyai/orthogroup/pkg/model"
	"github.com/yumyai/orthogroup/pkg/pipeline"
)

type SubmitResponse struct {
	JobID     string    `json:"job_id"`
	Status    JobStatus `json:"status"`
	StatusURL string    `json:"status_url"`
}

// SubmitJobHandler queues one pipeline run and answers 202 with the job id.
// A gene and level that already has a queued or running job gets 409 with
// that job's id instead.
func (app *AppContext) SubmitJobHandler(w http.ResponseWriter, r *http.Request) {
	var q pipeline.Query

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&q); err != nil {
		writeError(w, fmt.Errorf("%w: invalid request body: %v", model.ErrInvalidInput, err))
		return
	}
	q.GeneID = strings.TrimSpace(q.GeneID)
	q.UniProtID = strings.TrimSpace(q.UniProtID)
	q.LevelName = strings.TrimSpace(q.LevelName)
	if q.GeneID == "" && q.UniProtID == "" {
		writeError(w, fmt.Errorf("%w: gene_id or uniprot_id is required", model.ErrInvalidInput))
		return
	}

	// Jobs are keyed by gene id, so a UniProt query is resolved up front.
	if q.GeneID == "" {
		gene, err := app.Store.ResolveQueryID(r.Context(), q.UniProtID, db.DuplicateAction(app.Pipeline.Params.DuplicateAction))
		if err != nil {
			writeError(w, err)
			return
		}
		q.GeneID = gene
	}

	job, created := app.Jobs.NewJob(q)
	status := http.StatusAccepted
	if created {
		logger.Info("Job queued", zap.String("job_id", job.ID), zap.String("gene_id", q.GeneID), zap.String("uniprot_id", q.UniProtID))
		go app.runJob(job.ID, q)
	} else {
		logger.Info("Job for this gene and level already active", zap.String("job_id", job.ID), zap.String("gene_id", q.GeneID))
		status = http.StatusConflict
	}

	writeJSON(w, status, SubmitResponse{
		JobID:     job.ID,
		Status:    job.Status,
		StatusURL: "/api/v1/jobs/" + job.ID,
	})
}

// JobStatusHandler reports a job, with its record once completed.
func (app *AppContext) JobStatusHandler(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("job_id")
	job, ok := app.Jobs.GetJob(jobID)
	if !ok {
		writeError(w, fmt.Errorf("%w: job %q", model.ErrNotFound, jobID))
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (app *AppContext) runJob(jobID string, q pipeline.Query) {
	ctx := app.Base
	if ctx == nil {
		ctx = context.Background()
	}

	if app.slots != nil {
		select {
		case app.slots <- struct{}{}:
			defer func() { <-app.slots }()
		case <-ctx.Done():
			app.Jobs.FailJob(jobID, ctx.Err())
			return
		}
	}

	app.Jobs.SetRunning(jobID)
	rec, err := app.Pipeline.Run(ctx, q)
	if err != nil {
		logger.Error("Job failed", zap.String("job_id", jobID), zap.Error(err))
		app.Jobs.FailJob(jobID, err)
		return
	}
	logger.Info("Job completed", zap.String("job_id", jobID), zap.String("og_id", rec.OG.OGID))
	app.Jobs.CompleteJob(jobID, rec)
}
