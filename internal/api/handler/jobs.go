package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	mw "github.com/KohkiHatori/Backpacking-Assistant-Agent/internal/api/middleware"
	"github.com/KohkiHatori/Backpacking-Assistant-Agent/internal/api/response"
	"github.com/KohkiHatori/Backpacking-Assistant-Agent/internal/store"
	"github.com/KohkiHatori/Backpacking-Assistant-Agent/pkg/models"
)

// JobService is the slice of the planner the job handlers depend on.
type JobService interface {
	StartTaskGeneration(ctx context.Context, trip *models.Trip, citizenship string) (*models.Job, bool, error)
	StartItineraryGeneration(ctx context.Context, trip *models.Trip) (*models.Job, bool, error)
	GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error)
}

// NewStartJobHandler returns the handler for POST /api/v1/jobs. Starting
// a kind that is already running for the trip returns the active job
// instead of a second one; either way the response is a 202.
func NewStartJobHandler(svc JobService, st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.GetUserID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing user", nil)
			return
		}

		var req struct {
			TripID string `json:"trip_id"`
			Kind   string `json:"kind"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}
		if !models.ValidJobKind(req.Kind) {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				`kind must be "tasks" or "itinerary"`, nil)
			return
		}
		tripID, err := uuid.Parse(req.TripID)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "trip_id must be a valid UUID", nil)
			return
		}

		trip, err := st.GetTrip(r.Context(), tripID, userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				response.Error(w, http.StatusNotFound, "TRIP_NOT_FOUND", "Trip not found", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load trip", nil)
			return
		}

		var job *models.Job
		switch req.Kind {
		case models.JobKindTasks:
			user, err := st.GetUser(r.Context(), userID)
			if err != nil {
				response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load user", nil)
				return
			}
			job, _, err = svc.StartTaskGeneration(r.Context(), trip, user.Citizenship)
			if err != nil {
				response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to start job", nil)
				return
			}
		case models.JobKindItinerary:
			job, _, err = svc.StartItineraryGeneration(r.Context(), trip)
			if err != nil {
				response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to start job", nil)
				return
			}
		}

		response.Accepted(w, job)
	}
}

// NewGetJobHandler returns the handler for GET /api/v1/jobs/{jobID}.
func NewGetJobHandler(svc JobService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "jobID"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "jobID must be a valid UUID", nil)
			return
		}

		job, err := svc.GetJob(r.Context(), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				response.Error(w, http.StatusNotFound, "JOB_NOT_FOUND", "Job not found", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load job", nil)
			return
		}

		response.JSON(w, job)
	}
}
