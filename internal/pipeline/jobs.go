package pipeline

import (
	"sync"
	"time"
)

// JobStatus represents the state of a run job.
type JobStatus string

const (
	StatusQueued      JobStatus = "queued"
	StatusDiscovering JobStatus = "discovering"
	StatusChunking    JobStatus = "chunking"
	StatusWriting     JobStatus = "writing"
	StatusCompleted   JobStatus = "completed"
	StatusPartial     JobStatus = "partial"
	StatusFailed      JobStatus = "failed"
)

// Job tracks the state of a single chunking run.
type Job struct {
	mu sync.Mutex

	ID         string `json:"job_id"`
	RunID      string `json:"run_id"`
	WriteIndex bool   `json:"write_index"`

	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`

	Progress Progress `json:"progress"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	report *Report
	errors []string
}

// Progress tracks processing progress.
type Progress struct {
	TotalDocuments     int      `json:"total_documents"`
	DocumentsProcessed int      `json:"documents_processed"`
	DocumentsWritten   int      `json:"documents_written"`
	ChunksWritten      int      `json:"chunks_written"`
	Errors             []string `json:"errors"`
}

// NewJob returns a queued job for runID.
func NewJob(id, runID string, writeIndex bool) *Job {
	now := time.Now()
	return &Job{
		ID:         id,
		RunID:      runID,
		WriteIndex: writeIndex,
		Status:     StatusQueued,
		Phase:      "queued",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.updatedAt()) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

func (j *Job) updatedAt() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.UpdatedAt
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetTotalDocuments records how many documents were discovered.
func (j *Job) SetTotalDocuments(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.TotalDocuments = n
	j.UpdatedAt = time.Now()
}

// RecordOutcome counts one finished document.
func (j *Job) RecordOutcome(o Outcome) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.DocumentsProcessed++
	if o.Err == nil && o.Chunks > 0 {
		j.Progress.DocumentsWritten++
		j.Progress.ChunksWritten += o.Chunks
	}
	j.UpdatedAt = time.Now()
}

// SetReport stores the final run report.
func (j *Job) SetReport(r *Report) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.report = r
}

// Report returns the final run report, nil until the run finished.
func (j *Job) Report() *Report {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.report
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID       string    `json:"job_id"`
	RunID    string    `json:"run_id"`
	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Progress Progress  `json:"progress"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := make([]string, len(j.errors))
	copy(errs, j.errors)
	p := j.Progress
	p.Errors = errs
	return JobSnapshot{
		ID:       j.ID,
		RunID:    j.RunID,
		Status:   j.Status,
		Phase:    j.Phase,
		Progress: p,
	}
}
