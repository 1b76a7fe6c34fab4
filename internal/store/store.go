package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/KohkiHatori/Backpacking-Assistant-Agent/pkg/models"
)

var ErrNotFound = errors.New("resource not found")
var ErrDuplicateKey = errors.New("duplicate key violation")

// Store is the data access interface. All database operations go through here.
type Store interface {
	Ping(ctx context.Context) error

	GetDefaultUser(ctx context.Context) (*models.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)

	GetAPIKeyByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error)
	UpdateAPIKeyLastUsed(ctx context.Context, id uuid.UUID) error
	CreateAPIKey(ctx context.Context, key *models.APIKey) error
	ListAPIKeys(ctx context.Context, userID uuid.UUID) ([]*models.APIKey, error)
	RevokeAPIKey(ctx context.Context, id uuid.UUID, userID uuid.UUID) error

	CreateTrip(ctx context.Context, trip *models.Trip) error
	GetTrip(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*models.Trip, error)
	ListTrips(ctx context.Context, userID uuid.UUID) ([]*models.Trip, error)

	// ReplaceTasks atomically swaps a trip's task list for the given one.
	ReplaceTasks(ctx context.Context, tripID uuid.UUID, tasks []models.Task) error
	ListTasks(ctx context.Context, tripID uuid.UUID) ([]*models.Task, error)

	DeleteItinerary(ctx context.Context, tripID uuid.UUID) error
	CreateItineraryItems(ctx context.Context, items []models.ItineraryItem) error
	ListItineraryItems(ctx context.Context, tripID uuid.UUID) ([]*models.ItineraryItem, error)

	CreateJob(ctx context.Context, job *models.Job) error
	GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error)
	// GetActiveJob returns the pending or processing job for a trip and
	// kind, or ErrNotFound when none is in flight.
	GetActiveJob(ctx context.Context, tripID uuid.UUID, kind string) (*models.Job, error)
	// UpdateJob applies the given changes to a non-terminal job and
	// returns the updated row. Updates against completed or failed jobs
	// are silent no-ops returning the stored row unchanged.
	UpdateJob(ctx context.Context, id uuid.UUID, opts ...JobUpdateOption) (*models.Job, error)
	// FailStaleJobs force-fails every non-terminal job not updated since
	// the cutoff and returns the failed jobs.
	FailStaleJobs(ctx context.Context, cutoff time.Time, reason string) ([]*models.Job, error)
}

// JobUpdate collects the fields a job update may change. Exported so test
// fakes can apply the same options the Postgres implementation does.
type JobUpdate struct {
	Status   *string
	Progress *int
	Message  *string
	Result   json.RawMessage
	Error    *string
}

type JobUpdateOption func(*JobUpdate)

func WithStatus(status string) JobUpdateOption {
	return func(p *JobUpdate) {
		p.Status = &status
	}
}

func WithProgress(progress int) JobUpdateOption {
	return func(p *JobUpdate) {
		p.Progress = &progress
	}
}

func WithMessage(msg string) JobUpdateOption {
	return func(p *JobUpdate) {
		p.Message = &msg
	}
}

func WithResult(result json.RawMessage) JobUpdateOption {
	return func(p *JobUpdate) {
		p.Result = result
	}
}

func WithErrorMessage(msg string) JobUpdateOption {
	return func(p *JobUpdate) {
		p.Error = &msg
	}
}
