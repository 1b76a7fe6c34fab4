package mock

import (
	"context"

	"github.com/google/uuid"

	"github.com/KohkiHatori/Backpacking-Assistant-Agent/pkg/models"
)

// MockProvider satisfies models.GenerativeProvider for testing and for
// running the server without a real provider.
type MockProvider struct {
	Name_            string
	SuggestTasksFunc func(ctx context.Context, trip *models.Trip) ([]models.Task, error)
	ProfileFunc      func(ctx context.Context, trip *models.Trip) (models.TripProfile, error)
	DayFunc          func(ctx context.Context, trip *models.Trip, day int, prevSummary string) ([]models.ItineraryItem, error)
}

func (m *MockProvider) Name() string { return m.Name_ }

func (m *MockProvider) SuggestTasks(ctx context.Context, trip *models.Trip) ([]models.Task, error) {
	if m.SuggestTasksFunc != nil {
		return m.SuggestTasksFunc(ctx, trip)
	}
	return nil, nil
}

func (m *MockProvider) GenerateTripProfile(ctx context.Context, trip *models.Trip) (models.TripProfile, error) {
	if m.ProfileFunc != nil {
		return m.ProfileFunc(ctx, trip)
	}
	return models.TripProfile{}, nil
}

func (m *MockProvider) GenerateItineraryDay(ctx context.Context, trip *models.Trip, day int, prevSummary string) ([]models.ItineraryItem, error) {
	if m.DayFunc != nil {
		return m.DayFunc(ctx, trip, day, prevSummary)
	}
	return nil, nil
}

// NewMockProvider returns a MockProvider with sensible default responses.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Name_: "mock",
		SuggestTasksFunc: func(_ context.Context, trip *models.Trip) ([]models.Task, error) {
			desc := "Compare annual and single-trip policies before booking"
			return []models.Task{
				{
					ID:          uuid.New(),
					TripID:      trip.ID,
					Title:       "Arrange travel insurance",
					Description: &desc,
					Category:    models.CategoryGeneral,
					Priority:    models.PriorityMedium,
					Source:      models.SourceGenerative,
				},
				{
					ID:       uuid.New(),
					TripID:   trip.ID,
					Title:    "Book accommodation for the first night",
					Category: models.CategoryAccommodation,
					Priority: models.PriorityHigh,
					Source:   models.SourceGenerative,
				},
			}, nil
		},
		ProfileFunc: func(_ context.Context, trip *models.Trip) (models.TripProfile, error) {
			return models.TripProfile{
				Name:        "Simulated Adventure",
				Description: "A placeholder trip profile from the mock provider.",
			}, nil
		},
		DayFunc: func(_ context.Context, trip *models.Trip, day int, _ string) ([]models.ItineraryItem, error) {
			start := "09:00:00"
			end := "12:00:00"
			return []models.ItineraryItem{
				{
					ID:         uuid.New(),
					TripID:     trip.ID,
					DayNumber:  day,
					Date:       trip.StartDate.AddDate(0, 0, day-1),
					StartTime:  &start,
					EndTime:    &end,
					Title:      "Explore the old town",
					Type:       "activity",
					OrderIndex: 0,
				},
			}, nil
		},
	}
}

// NewFailingProvider returns a MockProvider that always returns the given error.
func NewFailingProvider(err error) *MockProvider {
	return &MockProvider{
		Name_: "mock-failing",
		SuggestTasksFunc: func(_ context.Context, _ *models.Trip) ([]models.Task, error) {
			return nil, err
		},
		ProfileFunc: func(_ context.Context, _ *models.Trip) (models.TripProfile, error) {
			return models.TripProfile{}, err
		},
		DayFunc: func(_ context.Context, _ *models.Trip, _ int, _ string) ([]models.ItineraryItem, error) {
			return nil, err
		},
	}
}

// NewTimeoutProvider returns a MockProvider that blocks until context is cancelled.
func NewTimeoutProvider() *MockProvider {
	return &MockProvider{
		Name_: "mock-timeout",
		SuggestTasksFunc: func(ctx context.Context, _ *models.Trip) ([]models.Task, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
		ProfileFunc: func(ctx context.Context, _ *models.Trip) (models.TripProfile, error) {
			<-ctx.Done()
			return models.TripProfile{}, ctx.Err()
		},
		DayFunc: func(ctx context.Context, _ *models.Trip, _ int, _ string) ([]models.ItineraryItem, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
}

// Compile-time check that MockProvider implements GenerativeProvider.
var _ models.GenerativeProvider = (*MockProvider)(nil)
