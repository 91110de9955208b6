package handler

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yumyai/orthogroup/pkg/pipeline"
)

// JobStatus represents the lifecycle of a submitted query.
type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// Job keeps track of one pipeline run requested over HTTP.
type Job struct {
	ID        string           `json:"job_id"`
	Query     pipeline.Query   `json:"query"`
	Status    JobStatus        `json:"status"`
	Record    *pipeline.Record `json:"record,omitempty"`
	Error     string           `json:"error,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// JobManager stores job states indexed by job ID. At most one queued or
// running job exists per gene and level, since both would write the same
// output folder.
type JobManager struct {
	mu     sync.RWMutex
	jobs   map[string]*Job
	active map[string]string
}

func NewJobManager() *JobManager {
	return &JobManager{
		jobs:   make(map[string]*Job),
		active: make(map[string]string),
	}
}

func unitKey(q pipeline.Query) string {
	return q.GeneID + "@" + q.LevelName
}

// NewJob registers a queued job for the query. When a job for the same gene
// and level is still queued or running, that job is returned with false.
func (m *JobManager) NewJob(q pipeline.Query) (Job, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id, ok := m.active[unitKey(q)]; ok {
		return *m.jobs[id], false
	}

	now := time.Now()
	job := &Job{
		ID:        uuid.NewString(),
		Query:     q,
		Status:    JobQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}

	m.jobs[job.ID] = job
	m.active[unitKey(q)] = job.ID
	return *job, true
}

func (m *JobManager) SetRunning(jobID string) {
	m.updateJob(jobID, func(job *Job) {
		job.Status = JobRunning
	})
}

// CompleteJob stores the run record and marks the job complete.
func (m *JobManager) CompleteJob(jobID string, rec *pipeline.Record) {
	m.updateJob(jobID, func(job *Job) {
		job.Status = JobCompleted
		job.Record = rec
		delete(m.active, unitKey(job.Query))
	})
}

func (m *JobManager) FailJob(jobID string, err error) {
	m.updateJob(jobID, func(job *Job) {
		job.Status = JobFailed
		job.Error = err.Error()
		delete(m.active, unitKey(job.Query))
	})
}

// GetJob returns a snapshot of the job.
func (m *JobManager) GetJob(jobID string) (Job, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.jobs[jobID]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

func (m *JobManager) updateJob(jobID string, update func(job *Job)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[jobID]
	if !ok {
		return
	}

	update(job)
	job.UpdatedAt = time.Now()
}
