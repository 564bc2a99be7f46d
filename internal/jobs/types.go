package jobs

import (
	"context"
	"errors"
	"time"
)

// Kind represents the type of work a job performs.
type Kind string

const (
	// KindUpload sends a statement to the analytics backend and refreshes the dashboard.
	KindUpload Kind = "upload"
)

// Status represents the current status of a job.
type Status string

const (
	// StatusPending indicates the job is waiting to be processed.
	StatusPending Status = "pending"
	// StatusRunning indicates the job is currently being processed.
	StatusRunning Status = "running"
	// StatusCompleted indicates the job completed successfully.
	StatusCompleted Status = "completed"
	// StatusFailed indicates the job failed.
	StatusFailed Status = "failed"
)

// ErrNotFound is returned by a Store when no job has the requested ID.
var ErrNotFound = errors.New("job not found")

// ErrQueueClosed is returned when publishing to or starting a stopped queue.
var ErrQueueClosed = errors.New("queue is closed")

// Job is one unit of background dashboard work.
type Job struct {
	// ID is the unique identifier for this job.
	ID string `json:"job_id"`

	Kind Kind `json:"kind"`

	// Filename is the uploaded statement's name.
	Filename string `json:"filename,omitempty"`

	// Status is the current status of the job.
	Status Status `json:"status"`

	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Error contains the user-facing failure message.
	Error string `json:"error,omitempty"`

	// Payload is the raw statement. It is released once the job finishes.
	Payload []byte `json:"-"`
}

// Finished reports whether the job reached a terminal status.
func (j *Job) Finished() bool {
	return j.Status == StatusCompleted || j.Status == StatusFailed
}

// Publisher defines the interface for publishing jobs to a queue.
type Publisher interface {
	// Publish enqueues a job, assigning its ID and initial status.
	Publish(ctx context.Context, job *Job) error

	// Close closes the publisher and releases resources.
	Close() error
}

// Consumer defines the interface for consuming jobs from a queue.
type Consumer interface {
	// Start begins consuming jobs from the queue.
	// The handler function is called for each job received.
	Start(ctx context.Context, handler Handler) error

	// Stop stops consuming jobs and waits for in-flight jobs to complete.
	Stop(ctx context.Context) error
}

// Handler processes a job. A returned error marks the job failed with err's message.
type Handler func(ctx context.Context, job *Job) error

// Store defines the interface for storing and retrieving job status.
type Store interface {
	// Save saves or updates a job's state.
	Save(ctx context.Context, job *Job) error

	// Get retrieves a job by ID.
	Get(ctx context.Context, id string) (*Job, error)

	// List retrieves jobs with optional filtering, newest first.
	List(ctx context.Context, filter Filter) ([]*Job, error)
}

// Filter defines filtering criteria for listing jobs.
type Filter struct {
	Kind   Kind
	Status Status

	// Limit limits the number of results.
	Limit int

	// Offset for pagination.
	Offset int
}
