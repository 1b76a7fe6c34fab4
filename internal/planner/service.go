// Package planner turns trips into preparation tasks and day-by-day
// itineraries. It owns the agent fan-out, the merge rules, and the
// generation jobs that run them in the background.
package planner

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/KohkiHatori/Backpacking-Assistant-Agent/internal/jobs"
	"github.com/KohkiHatori/Backpacking-Assistant-Agent/internal/store"
	"github.com/KohkiHatori/Backpacking-Assistant-Agent/pkg/models"
)

// Service starts and runs generation pipelines for trips.
type Service struct {
	store      store.Store
	aggregator *Aggregator
	provider   models.GenerativeProvider
	jobs       *jobs.Manager
}

func NewService(st store.Store, aggregator *Aggregator, provider models.GenerativeProvider, manager *jobs.Manager) *Service {
	return &Service{
		store:      st,
		aggregator: aggregator,
		provider:   provider,
		jobs:       manager,
	}
}

// StartTaskGeneration starts (or returns the already-running) task
// generation job for a trip. The started bool mirrors jobs.Manager.Start:
// false means an active job was reused.
func (s *Service) StartTaskGeneration(ctx context.Context, trip *models.Trip, citizenship string) (*models.Job, bool, error) {
	return s.jobs.Start(ctx, trip.ID, models.JobKindTasks, func(jctx context.Context, report jobs.ReportFunc) (json.RawMessage, error) {
		report(5, "analyzing trip destinations")

		tasks := s.aggregator.Aggregate(jctx, trip, citizenship)

		report(90, "saving generated tasks")
		if err := s.store.ReplaceTasks(jctx, trip.ID, tasks); err != nil {
			return nil, fmt.Errorf("save tasks: %w", err)
		}

		return json.Marshal(map[string]int{"num_tasks": len(tasks)})
	})
}

// StartItineraryGeneration starts (or returns the already-running)
// itinerary generation job for a trip.
func (s *Service) StartItineraryGeneration(ctx context.Context, trip *models.Trip) (*models.Job, bool, error) {
	return s.jobs.Start(ctx, trip.ID, models.JobKindItinerary, func(jctx context.Context, report jobs.ReportFunc) (json.RawMessage, error) {
		return s.generateItinerary(jctx, trip, report)
	})
}

// PreviewProfile synchronously generates a suggested trip name and
// description. Unlike the pipelines above this is a direct passthrough;
// the caller handles provider errors.
func (s *Service) PreviewProfile(ctx context.Context, trip *models.Trip) (models.TripProfile, error) {
	return s.provider.GenerateTripProfile(ctx, trip)
}

// GetJob looks a job up by ID, preferring the cache mirror.
func (s *Service) GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	return s.jobs.Get(ctx, id)
}
