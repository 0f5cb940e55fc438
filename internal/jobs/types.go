// Package jobs defines the asynchronous work model for submissions that are
// too slow to answer inline. Today that is one job type: analyzing a receipt
// image and recording the extracted entry.
package jobs

import (
	"context"
	"time"
)

// JobType identifies what a job does.
type JobType string

const (
	JobTypeAnalyzeReceipt JobType = "analyze_receipt"
)

// JobStatus is the lifecycle state of a job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusRetrying  JobStatus = "retrying"
)

// AnalyzeReceiptJob carries one receipt image through extraction and into the
// ledger. The image travels with the job; the in-memory queue never leaves
// the process, so there is no serialization boundary to worry about.
type AnalyzeReceiptJob struct {
	JobID string `json:"job_id"`

	UserID    string `json:"user_id"`
	UserLabel string `json:"user_label,omitempty"`
	MessageID string `json:"message_id,omitempty"`

	Image    []byte `json:"-"`
	MimeType string `json:"mime_type"`
	Filename string `json:"filename,omitempty"`

	// Result fields, populated by the worker.
	Recorded     bool   `json:"recorded"`
	Partition    string `json:"partition,omitempty"`
	AnalysisText string `json:"analysis_text,omitempty"`

	Status      JobStatus  `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`
	RetryCount  int        `json:"retry_count"`
	MaxRetries  int        `json:"max_retries"`
}

// Job is the generic view the queue machinery works with.
type Job interface {
	GetID() string
	GetType() JobType
	GetStatus() JobStatus
}

func (j *AnalyzeReceiptJob) GetID() string        { return j.JobID }
func (j *AnalyzeReceiptJob) GetType() JobType     { return JobTypeAnalyzeReceipt }
func (j *AnalyzeReceiptJob) GetStatus() JobStatus { return j.Status }

// Publisher enqueues jobs. Separate from Consumer so a handler can publish
// without being able to drain.
type Publisher interface {
	PublishAnalyzeReceipt(ctx context.Context, job *AnalyzeReceiptJob) error
	Close() error
}

// Consumer drains the queue through a handler.
type Consumer interface {
	Start(ctx context.Context, handler JobHandler) error
	Stop(ctx context.Context) error
}

// JobHandler processes one job. A returned error marks the job for retry.
type JobHandler func(ctx context.Context, job Job) error

// JobStore tracks job state for status queries.
type JobStore interface {
	SaveJob(ctx context.Context, job *AnalyzeReceiptJob) error
	GetJob(ctx context.Context, jobID string) (*AnalyzeReceiptJob, error)
	ListJobs(ctx context.Context, filter JobFilter) ([]*AnalyzeReceiptJob, error)
}

// JobFilter narrows ListJobs results.
type JobFilter struct {
	UserID string
	Status JobStatus
	Limit  int
	Offset int
}
