package handler

// DI for all handlers.

import (
	"context"

	"github.com/yumyai/orthogroup/pkg/pipeline"
)

type AppContext struct {
	Store    pipeline.Store
	Pipeline *pipeline.Pipeline
	Jobs     *JobManager
	// Base outlives requests; cancelling it stops running jobs.
	Base context.Context

	slots chan struct{}
}

// NewAppContext wires the handlers to a pipeline. At most workers jobs run
// at once, the rest wait queued.
func NewAppContext(base context.Context, pipe *pipeline.Pipeline, workers int) *AppContext {
	if workers < 1 {
		workers = 1
	}
	return &AppContext{
		Store:    pipe.Store,
		Pipeline: pipe,
		Jobs:     NewJobManager(),
		Base:     base,
		slots:    make(chan struct{}, workers),
	}
}
