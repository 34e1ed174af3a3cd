package web

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"oembed/internal/lookup"
	"oembed/pkg/oembed"
)

// JobStatus represents the current status of a batch job
type JobStatus string

const (
	StatusPending   JobStatus = "pending"
	StatusRunning   JobStatus = "running"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
	StatusCancelled JobStatus = "cancelled"
)

var (
	ErrJobNotFound = errors.New("job not found")
	ErrJobFinished = errors.New("job already finished")
)

// Finished reports whether the status is terminal.
func (s JobStatus) Finished() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// JobResult is the outcome of one URL in a batch.
type JobResult struct {
	URL      string          `json:"url"`
	Status   lookup.Status   `json:"status"`
	Provider string          `json:"provider,omitempty"`
	Error    string          `json:"error,omitempty"`
	Response oembed.Response `json:"response,omitempty"`
}

// Job represents a batch lookup
type Job struct {
	ID          string
	URLs        []string
	Options     oembed.Options
	Status      JobStatus
	Results     []JobResult
	Error       string
	CreatedAt   time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
	Cancel      context.CancelFunc
}

// Progress is the number of URLs looked up so far.
func (j *Job) Progress() int { return len(j.Results) }

// Total is the number of URLs in the batch.
func (j *Job) Total() int { return len(j.URLs) }

// addResult records r unless the job has stopped running. A lookup that
// returns after the job was cancelled is dropped.
func (j *Job) addResult(r JobResult) bool {
	if j.Status != StatusRunning {
		return false
	}
	j.Results = append(j.Results, r)
	return true
}

func (j *Job) snapshot() *Job {
	cp := *j
	cp.URLs = slices.Clone(j.URLs)
	cp.Results = slices.Clone(j.Results)
	return &cp
}

// JobManager manages batch jobs. Jobs handed out by GetJob, ListJobs and
// Subscribe are snapshots and safe to read without locking.
type JobManager struct {
	jobs      map[string]*Job
	mu        sync.RWMutex
	listeners map[string][]chan *Job
}

const jobRetention = 1 * time.Hour

// NewJobManager creates a new job manager
func NewJobManager() *JobManager {
	return &JobManager{
		jobs:      make(map[string]*Job),
		listeners: make(map[string][]chan *Job),
	}
}

// StartCleanup starts a background goroutine that removes old finished jobs.
// Stops when ctx is cancelled.
func (jm *JobManager) StartCleanup(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				jm.cleanup()
			}
		}
	}()
}

func (jm *JobManager) cleanup() {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	cutoff := time.Now().Add(-jobRetention)
	for id, job := range jm.jobs {
		if job.CompletedAt != nil && job.CompletedAt.Before(cutoff) {
			delete(jm.jobs, id)
			delete(jm.listeners, id)
		}
	}
}

// CreateJob creates a new pending job
func (jm *JobManager) CreateJob(urls []string, opts oembed.Options) *Job {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	job := &Job{
		ID:        generateJobID(),
		URLs:      slices.Clone(urls),
		Options:   opts,
		Status:    StatusPending,
		Results:   make([]JobResult, 0, len(urls)),
		CreatedAt: time.Now(),
	}

	jm.jobs[job.ID] = job
	return job.snapshot()
}

// GetJob retrieves a job by ID
func (jm *JobManager) GetJob(id string) (*Job, error) {
	jm.mu.RLock()
	defer jm.mu.RUnlock()

	job, ok := jm.jobs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	return job.snapshot(), nil
}

// ListJobs returns all jobs, newest first
func (jm *JobManager) ListJobs() []*Job {
	jm.mu.RLock()
	defer jm.mu.RUnlock()

	jobs := make([]*Job, 0, len(jm.jobs))
	for _, job := range jm.jobs {
		jobs = append(jobs, job.snapshot())
	}
	slices.SortFunc(jobs, func(a, b *Job) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return jobs
}

// UpdateJob applies fn to the job and notifies subscribers
func (jm *JobManager) UpdateJob(id string, fn func(*Job)) error {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	job, ok := jm.jobs[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}

	oldStatus := job.Status
	fn(job)
	jm.touch(job, oldStatus)

	jm.notifyListeners(id, job)
	return nil
}

// CancelJob cancels a job that has not finished yet.
func (jm *JobManager) CancelJob(id string) error {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	job, ok := jm.jobs[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	if job.Status.Finished() {
		return fmt.Errorf("%w: %s", ErrJobFinished, id)
	}

	if job.Cancel != nil {
		job.Cancel()
	}
	oldStatus := job.Status
	job.Status = StatusCancelled
	jm.touch(job, oldStatus)

	jm.notifyListeners(id, job)
	return nil
}

// touch updates timestamps on status changes. Caller holds jm.mu.
func (jm *JobManager) touch(job *Job, oldStatus JobStatus) {
	if oldStatus == job.Status {
		return
	}
	now := time.Now()
	switch {
	case job.Status == StatusRunning:
		if job.StartedAt == nil {
			job.StartedAt = &now
		}
	case job.Status.Finished():
		if job.CompletedAt == nil {
			job.CompletedAt = &now
		}
	}
}

// Subscribe subscribes to job updates
func (jm *JobManager) Subscribe(jobID string) <-chan *Job {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	ch := make(chan *Job, 10)
	jm.listeners[jobID] = append(jm.listeners[jobID], ch)
	return ch
}

// Unsubscribe removes a listener
func (jm *JobManager) Unsubscribe(jobID string, ch <-chan *Job) {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	listeners := jm.listeners[jobID]
	for i, listener := range listeners {
		if listener == ch {
			jm.listeners[jobID] = append(listeners[:i], listeners[i+1:]...)
			close(listener)
			break
		}
	}
}

// notifyListeners sends snapshots to all listeners. Slow listeners miss
// intermediate updates.
func (jm *JobManager) notifyListeners(jobID string, job *Job) {
	for _, ch := range jm.listeners[jobID] {
		select {
		case ch <- job.snapshot():
		default:
		}
	}
}

func generateJobID() string {
	return "job_" + uuid.NewString()
}
