package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Job statuses. Completed and failed are terminal; a job never leaves a
// terminal status.
const (
	JobStatusPending    = "pending"
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)

// Job kinds — the generation pipelines a job can run.
const (
	JobKindTasks     = "tasks"
	JobKindItinerary = "itinerary"
)

// Job tracks one unit of background generation work. The API returns a
// job id on POST /api/v1/jobs; the client polls GET /api/v1/jobs/{job_id}
// until the status is completed or failed.
type Job struct {
	ID        uuid.UUID       `db:"id"         json:"job_id"`
	TripID    uuid.UUID       `db:"trip_id"    json:"trip_id"`
	Kind      string          `db:"kind"       json:"kind"`
	Status    string          `db:"status"     json:"status"`
	Progress  int             `db:"progress"   json:"progress"`
	Message   *string         `db:"message"    json:"message,omitempty"`
	Result    json.RawMessage `db:"result"     json:"result,omitempty"`
	Error     *string         `db:"error"      json:"error,omitempty"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// Terminal reports whether the job has reached a final status.
func (j *Job) Terminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}

// ValidJobKind reports whether kind names a known generation pipeline.
func ValidJobKind(kind string) bool {
	return kind == JobKindTasks || kind == JobKindItinerary
}
