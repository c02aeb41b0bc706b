// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/okian/heataoi/internal/domain/aoi"
	"github.com/okian/heataoi/internal/domain/raster"
	"github.com/okian/heataoi/internal/domain/scoring"
)

// Status is the lifecycle state of an asynchronous run.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusDone    Status = "done"
	StatusPartial Status = "partial" // fewer AOIs than requested
	StatusFailed  Status = "failed"
)

// Terminal reports whether no further transition will happen.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusPartial || s == StatusFailed
}

// Job is an identification request waiting for a worker.
type Job struct {
	ID          string
	RequestID   string // client idempotency key, optional
	Layers      scoring.Layers
	Transform   raster.Transform
	Params      aoi.Params
	SubmittedAt time.Time
}

// Run records what happened to a Job.
type Run struct {
	JobID       string      `json:"job_id"`
	RequestID   string      `json:"request_id,omitempty"`
	Status      Status      `json:"status"`
	Report      *aoi.Report `json:"report,omitempty"`
	Error       string      `json:"error,omitempty"`
	SubmittedAt time.Time   `json:"submitted_at"`
	CompletedAt time.Time   `json:"completed_at,omitempty"`
}

// NewRun returns the queued run for j.
func NewRun(j Job) Run {
	return Run{
		JobID:       j.ID,
		RequestID:   j.RequestID,
		Status:      StatusQueued,
		SubmittedAt: j.SubmittedAt,
	}
}
