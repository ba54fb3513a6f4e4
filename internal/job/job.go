// Package job provides the background job infrastructure: a persisted job
// record, an in-memory queue drained by a worker pool, and the assignment
// notification job. Enqueueing is synchronous and non-blocking; execution
// happens on the worker pool, decoupled from the request/response cycle.
package job

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Status represents the current state of a background job.
type Status string

// Possible job status values
const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Job type identifiers
const (
	// TypeAssignmentNotification is the job type for assignment emails.
	TypeAssignmentNotification = "assignment_notification"
)

// Job represents a unit of background work to be processed.
type Job interface {
	// ID returns the job's unique identifier.
	ID() uuid.UUID

	// Type returns the job type identifier.
	Type() string

	// Payload returns the job data as a byte slice.
	Payload() []byte

	// Status returns the current job status.
	Status() Status

	// Execute runs the job logic.
	Execute(ctx context.Context) error
}

// Submitter is the narrow interface services use to enqueue jobs.
type Submitter interface {
	// Submit persists the job and hands it to the worker pool. It never
	// blocks; a full queue is an error.
	Submit(ctx context.Context, j Job) error
}

// Record is a job row as persisted, without execution logic. Recovered
// records are turned back into executable jobs by a Hydrator.
type Record struct {
	ID           uuid.UUID
	Type         string
	Payload      []byte
	Status       Status
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Hydrator rebuilds an executable Job from a persisted Record.
type Hydrator interface {
	// Hydrate returns a runnable job for the record, or an error when the
	// record's type is unknown or its payload is malformed.
	Hydrate(rec Record) (Job, error)
}

// Store defines the interface for persisting jobs.
type Store interface {
	// SaveJob persists a new job with status pending.
	SaveJob(ctx context.Context, j Job) error

	// UpdateJobStatus updates the status of a job, recording errMsg for
	// failures. Updating a missing job is a no-op.
	UpdateJobStatus(ctx context.Context, jobID uuid.UUID, status Status, errMsg string) error

	// GetPendingJobs retrieves all jobs with pending status, oldest first.
	GetPendingJobs(ctx context.Context) ([]Record, error)

	// GetProcessingJobs retrieves jobs with processing status. A non-zero
	// olderThan restricts the result to jobs that have been processing
	// longer than that duration.
	GetProcessingJobs(ctx context.Context, olderThan time.Duration) ([]Record, error)

	// WithTx returns a Store that runs all operations on the given
	// transaction.
	WithTx(tx *sql.Tx) Store
}
