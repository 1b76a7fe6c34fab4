package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/KohkiHatori/Backpacking-Assistant-Agent/internal/ai"
	mw "github.com/KohkiHatori/Backpacking-Assistant-Agent/internal/api/middleware"
	"github.com/KohkiHatori/Backpacking-Assistant-Agent/internal/api/response"
	"github.com/KohkiHatori/Backpacking-Assistant-Agent/internal/store"
	"github.com/KohkiHatori/Backpacking-Assistant-Agent/pkg/models"
)

const dateLayout = "2006-01-02"

// ProfileService generates a trip name and description synchronously.
type ProfileService interface {
	PreviewProfile(ctx context.Context, trip *models.Trip) (models.TripProfile, error)
}

// tripRequest is the shared request body for creating and previewing
// trips. Dates arrive as "YYYY-MM-DD".
type tripRequest struct {
	Name           string   `json:"name"`
	Description    *string  `json:"description"`
	Destinations   []string `json:"destinations"`
	StartPoint     *string  `json:"start_point"`
	EndPoint       *string  `json:"end_point"`
	StartDate      string   `json:"start_date"`
	EndDate        string   `json:"end_date"`
	FlexibleDates  bool     `json:"flexible_dates"`
	AdultsCount    int      `json:"adults_count"`
	ChildrenCount  int      `json:"children_count"`
	Preferences    []string `json:"preferences"`
	Transportation []string `json:"transportation"`
	Budget         int      `json:"budget"`
	Currency       string   `json:"currency"`
}

// toTrip validates the request and builds the trip. requireName is false
// for previews, where the profile generator supplies the name.
func (req *tripRequest) toTrip(userID uuid.UUID, requireName bool) (*models.Trip, string) {
	if requireName && req.Name == "" {
		return nil, "name is required"
	}
	if len(req.Destinations) == 0 {
		return nil, "destinations must not be empty"
	}
	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return nil, "start_date must be YYYY-MM-DD"
	}
	end, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		return nil, "end_date must be YYYY-MM-DD"
	}
	if end.Before(start) {
		return nil, "end_date must not be before start_date"
	}

	adults := req.AdultsCount
	if adults <= 0 {
		adults = 1
	}
	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	now := time.Now().UTC()
	return &models.Trip{
		ID:             uuid.New(),
		UserID:         userID,
		Name:           req.Name,
		Description:    req.Description,
		Destinations:   req.Destinations,
		StartPoint:     req.StartPoint,
		EndPoint:       req.EndPoint,
		StartDate:      start,
		EndDate:        end,
		FlexibleDates:  req.FlexibleDates,
		AdultsCount:    adults,
		ChildrenCount:  req.ChildrenCount,
		Preferences:    req.Preferences,
		Transportation: req.Transportation,
		Budget:         req.Budget,
		Currency:       currency,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, ""
}

// NewCreateTripHandler returns the handler for POST /api/v1/trips.
func NewCreateTripHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.GetUserID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing user", nil)
			return
		}

		var req tripRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}
		trip, problem := req.toTrip(userID, true)
		if problem != "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", problem, nil)
			return
		}

		if err := st.CreateTrip(r.Context(), trip); err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create trip", nil)
			return
		}
		response.Created(w, trip)
	}
}

// NewListTripsHandler returns the handler for GET /api/v1/trips.
func NewListTripsHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.GetUserID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing user", nil)
			return
		}

		trips, err := st.ListTrips(r.Context(), userID)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list trips", nil)
			return
		}
		if trips == nil {
			trips = []*models.Trip{}
		}
		response.JSON(w, trips)
	}
}

// NewListTasksHandler returns the handler for
// GET /api/v1/trips/{tripID}/tasks.
func NewListTasksHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		trip, ok := ownedTrip(w, r, st)
		if !ok {
			return
		}

		tasks, err := st.ListTasks(r.Context(), trip.ID)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list tasks", nil)
			return
		}
		if tasks == nil {
			tasks = []*models.Task{}
		}
		response.JSON(w, tasks)
	}
}

// NewGetItineraryHandler returns the handler for
// GET /api/v1/trips/{tripID}/itinerary.
func NewGetItineraryHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		trip, ok := ownedTrip(w, r, st)
		if !ok {
			return
		}

		items, err := st.ListItineraryItems(r.Context(), trip.ID)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load itinerary", nil)
			return
		}
		if items == nil {
			items = []*models.ItineraryItem{}
		}
		response.JSON(w, items)
	}
}

// NewPreviewTripHandler returns the handler for POST /api/v1/trips/preview:
// a synchronous name and description suggestion for a trip that has not
// been saved yet.
func NewPreviewTripHandler(svc ProfileService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.GetUserID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing user", nil)
			return
		}

		var req tripRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}
		trip, problem := req.toTrip(userID, false)
		if problem != "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", problem, nil)
			return
		}

		profile, err := svc.PreviewProfile(r.Context(), trip)
		if err != nil {
			switch {
			case errors.Is(err, ai.ErrGenerationTimeout):
				response.Error(w, http.StatusGatewayTimeout, "GENERATION_TIMEOUT",
					"Profile generation timed out", nil)
			case errors.Is(err, ai.ErrProviderUnavailable), errors.Is(err, ai.ErrInvalidResponse):
				response.Error(w, http.StatusBadGateway, "AI_PROVIDER_UNAVAILABLE",
					"The AI provider is not available", nil)
			default:
				response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
					"Failed to generate trip profile", nil)
			}
			return
		}
		response.JSON(w, profile)
	}
}

// ownedTrip parses {tripID} and checks that the trip belongs to the
// authenticated user. It writes the error response itself on failure.
func ownedTrip(w http.ResponseWriter, r *http.Request, st store.Store) (*models.Trip, bool) {
	userID, ok := mw.GetUserID(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing user", nil)
		return nil, false
	}
	tripID, err := uuid.Parse(chi.URLParam(r, "tripID"))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "tripID must be a valid UUID", nil)
		return nil, false
	}

	trip, err := st.GetTrip(r.Context(), tripID, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			response.Error(w, http.StatusNotFound, "TRIP_NOT_FOUND", "Trip not found", nil)
			return nil, false
		}
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load trip", nil)
		return nil, false
	}
	return trip, true
}
