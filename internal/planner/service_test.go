package planner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KohkiHatori/Backpacking-Assistant-Agent/internal/ai/mock"
	"github.com/KohkiHatori/Backpacking-Assistant-Agent/internal/config"
	"github.com/KohkiHatori/Backpacking-Assistant-Agent/internal/jobs"
	"github.com/KohkiHatori/Backpacking-Assistant-Agent/internal/store"
	"github.com/KohkiHatori/Backpacking-Assistant-Agent/pkg/models"
)

// plannerStore is an in-memory store.Store covering the job, task and
// itinerary methods the pipelines touch.
type plannerStore struct {
	mu        sync.Mutex
	jobs      map[uuid.UUID]*models.Job
	tasks     map[uuid.UUID][]models.Task
	itinerary map[uuid.UUID][]models.ItineraryItem
}

func newPlannerStore() *plannerStore {
	return &plannerStore{
		jobs:      make(map[uuid.UUID]*models.Job),
		tasks:     make(map[uuid.UUID][]models.Task),
		itinerary: make(map[uuid.UUID][]models.ItineraryItem),
	}
}

func (s *plannerStore) CreateJob(_ context.Context, job *models.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, j := range s.jobs {
		if j.TripID == job.TripID && j.Kind == job.Kind && !j.Terminal() {
			return store.ErrDuplicateKey
		}
	}
	cp := *job
	s.jobs[job.ID] = &cp
	return nil
}

func (s *plannerStore) GetJob(_ context.Context, id uuid.UUID) (*models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *j
	return &cp, nil
}

func (s *plannerStore) GetActiveJob(_ context.Context, tripID uuid.UUID, kind string) (*models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, j := range s.jobs {
		if j.TripID == tripID && j.Kind == kind && !j.Terminal() {
			cp := *j
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *plannerStore) UpdateJob(_ context.Context, id uuid.UUID, opts ...store.JobUpdateOption) (*models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if !j.Terminal() {
		u := store.JobUpdate{}
		for _, opt := range opts {
			opt(&u)
		}
		if u.Status != nil {
			j.Status = *u.Status
		}
		if u.Progress != nil && *u.Progress > j.Progress {
			j.Progress = *u.Progress
		}
		if u.Message != nil {
			j.Message = u.Message
		}
		if u.Result != nil {
			j.Result = u.Result
		}
		if u.Error != nil {
			j.Error = u.Error
		}
		j.UpdatedAt = time.Now().UTC()
	}
	cp := *j
	return &cp, nil
}

func (s *plannerStore) FailStaleJobs(context.Context, time.Time, string) ([]*models.Job, error) {
	return nil, nil
}

func (s *plannerStore) ReplaceTasks(_ context.Context, tripID uuid.UUID, tasks []models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[tripID] = append([]models.Task(nil), tasks...)
	return nil
}

func (s *plannerStore) DeleteItinerary(_ context.Context, tripID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.itinerary[tripID] = nil
	return nil
}

func (s *plannerStore) CreateItineraryItems(_ context.Context, items []models.ItineraryItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range items {
		s.itinerary[item.TripID] = append(s.itinerary[item.TripID], item)
	}
	return nil
}

func (s *plannerStore) storedTasks(tripID uuid.UUID) []models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Task(nil), s.tasks[tripID]...)
}

func (s *plannerStore) storedItinerary(tripID uuid.UUID) []models.ItineraryItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ItineraryItem(nil), s.itinerary[tripID]...)
}

// Remaining store.Store methods are unused by the planner.
func (s *plannerStore) Ping(context.Context) error { return nil }
func (s *plannerStore) GetDefaultUser(context.Context) (*models.User, error) {
	return nil, store.ErrNotFound
}
func (s *plannerStore) GetUser(context.Context, uuid.UUID) (*models.User, error) {
	return nil, store.ErrNotFound
}
func (s *plannerStore) GetAPIKeyByPrefix(context.Context, string) ([]*models.APIKey, error) {
	return nil, nil
}
func (s *plannerStore) UpdateAPIKeyLastUsed(context.Context, uuid.UUID) error { return nil }
func (s *plannerStore) CreateAPIKey(context.Context, *models.APIKey) error    { return nil }
func (s *plannerStore) ListAPIKeys(context.Context, uuid.UUID) ([]*models.APIKey, error) {
	return nil, nil
}
func (s *plannerStore) RevokeAPIKey(context.Context, uuid.UUID, uuid.UUID) error { return nil }
func (s *plannerStore) CreateTrip(context.Context, *models.Trip) error           { return nil }
func (s *plannerStore) GetTrip(context.Context, uuid.UUID, uuid.UUID) (*models.Trip, error) {
	return nil, store.ErrNotFound
}
func (s *plannerStore) ListTrips(context.Context, uuid.UUID) ([]*models.Trip, error) { return nil, nil }
func (s *plannerStore) ListTasks(context.Context, uuid.UUID) ([]*models.Task, error) {
	return nil, nil
}
func (s *plannerStore) ListItineraryItems(context.Context, uuid.UUID) ([]*models.ItineraryItem, error) {
	return nil, nil
}

var _ store.Store = (*plannerStore)(nil)

func newTestService(st *plannerStore, provider *mock.MockProvider) *Service {
	cfg := config.JobsConfig{
		Timeout:       5 * time.Second,
		StaleAfter:    time.Minute,
		SweepInterval: time.Minute,
		StatusTTL:     time.Minute,
	}
	manager := jobs.NewManager(st, nil, cfg)
	agg := newTestAggregator(
		&fakeVisaClient{rules: map[string]*models.VisaRule{}},
		&fakeAdvisory{},
		provider,
	)
	return NewService(st, agg, provider, manager)
}

func waitForJob(t *testing.T, svc *Service, id uuid.UUID, status string) *models.Job {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		job, err := svc.GetJob(context.Background(), id)
		require.NoError(t, err)
		if job.Status == status {
			return job
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s never reached status %s", id, status)
	return nil
}

func TestStartTaskGeneration_PersistsMergedTasks(t *testing.T) {
	st := newPlannerStore()
	svc := newTestService(st, mock.NewMockProvider())
	trip := testTrip("Tokyo, Japan")

	job, started, err := svc.StartTaskGeneration(context.Background(), trip, "United States")
	require.NoError(t, err)
	assert.True(t, started)
	assert.Equal(t, models.JobKindTasks, job.Kind)

	done := waitForJob(t, svc, job.ID, models.JobStatusCompleted)
	assert.Equal(t, 100, done.Progress)

	tasks := st.storedTasks(trip.ID)
	require.NotEmpty(t, tasks)
	assert.JSONEq(t, fmt.Sprintf(`{"num_tasks": %d}`, len(tasks)), string(done.Result))
	for _, task := range tasks {
		assert.Equal(t, trip.ID, task.TripID)
	}
}

func TestStartTaskGeneration_ReusesActiveJob(t *testing.T) {
	st := newPlannerStore()
	provider := mock.NewMockProvider()
	release := make(chan struct{})
	provider.SuggestTasksFunc = func(ctx context.Context, _ *models.Trip) ([]models.Task, error) {
		select {
		case <-release:
		case <-ctx.Done():
		}
		return nil, nil
	}
	svc := newTestService(st, provider)
	trip := testTrip("Tokyo, Japan")

	first, started, err := svc.StartTaskGeneration(context.Background(), trip, "United States")
	require.NoError(t, err)
	require.True(t, started)

	second, started, err := svc.StartTaskGeneration(context.Background(), trip, "United States")
	require.NoError(t, err)
	assert.False(t, started)
	assert.Equal(t, first.ID, second.ID)

	close(release)
	waitForJob(t, svc, first.ID, models.JobStatusCompleted)
}

func TestStartItineraryGeneration_PersistsPerDay(t *testing.T) {
	st := newPlannerStore()
	provider := mock.NewMockProvider()

	var summaries []string
	var mu sync.Mutex
	provider.DayFunc = func(_ context.Context, trip *models.Trip, day int, prevSummary string) ([]models.ItineraryItem, error) {
		mu.Lock()
		summaries = append(summaries, prevSummary)
		mu.Unlock()
		return []models.ItineraryItem{
			{ID: uuid.New(), Title: fmt.Sprintf("Morning walk day %d", day), Type: "activity", OrderIndex: 0},
			{ID: uuid.New(), Title: fmt.Sprintf("Dinner day %d", day), Type: "meal", OrderIndex: 1},
		}, nil
	}
	svc := newTestService(st, provider)

	trip := testTrip("Tokyo, Japan")
	trip.EndDate = trip.StartDate.AddDate(0, 0, 2) // 3 days

	// A leftover from a previous run must be cleared first.
	require.NoError(t, st.CreateItineraryItems(context.Background(), []models.ItineraryItem{
		{ID: uuid.New(), TripID: trip.ID, DayNumber: 1, Title: "Stale entry", Type: "activity"},
	}))

	job, started, err := svc.StartItineraryGeneration(context.Background(), trip)
	require.NoError(t, err)
	assert.True(t, started)
	assert.Equal(t, models.JobKindItinerary, job.Kind)

	done := waitForJob(t, svc, job.ID, models.JobStatusCompleted)
	assert.JSONEq(t, `{"num_days": 3}`, string(done.Result))

	items := st.storedItinerary(trip.ID)
	require.Len(t, items, 6)
	for _, item := range items {
		assert.Equal(t, trip.ID, item.TripID)
		assert.NotContains(t, item.Title, "Stale")
		wantDate := trip.StartDate.AddDate(0, 0, item.DayNumber-1)
		assert.Equal(t, wantDate, item.Date)
	}

	// Each day's prompt sees the previous day's summary.
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, summaries, 3)
	assert.Empty(t, summaries[0])
	assert.Equal(t, "Day 1: Morning walk day 1; Dinner day 1", summaries[1])
	assert.Equal(t, "Day 2: Morning walk day 2; Dinner day 2", summaries[2])
}

func TestStartItineraryGeneration_DayFailureFailsJob(t *testing.T) {
	st := newPlannerStore()
	provider := mock.NewMockProvider()
	provider.DayFunc = func(_ context.Context, _ *models.Trip, day int, _ string) ([]models.ItineraryItem, error) {
		if day == 2 {
			return nil, errors.New("model offline")
		}
		return []models.ItineraryItem{{ID: uuid.New(), Title: "Only day one", Type: "activity"}}, nil
	}
	svc := newTestService(st, provider)

	trip := testTrip("Tokyo, Japan")
	trip.EndDate = trip.StartDate.AddDate(0, 0, 2)

	job, _, err := svc.StartItineraryGeneration(context.Background(), trip)
	require.NoError(t, err)

	failed := waitForJob(t, svc, job.ID, models.JobStatusFailed)
	require.NotNil(t, failed.Error)
	assert.Contains(t, *failed.Error, "generate day 2")
	assert.Contains(t, *failed.Error, "model offline")

	// The day that succeeded stays queryable.
	items := st.storedItinerary(trip.ID)
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].DayNumber)
}

func TestPreviewProfile(t *testing.T) {
	provider := mock.NewMockProvider()
	provider.ProfileFunc = func(_ context.Context, _ *models.Trip) (models.TripProfile, error) {
		return models.TripProfile{Name: "Tokyo Autumn Escape", Description: "A week of temples and food."}, nil
	}
	svc := newTestService(newPlannerStore(), provider)

	profile, err := svc.PreviewProfile(context.Background(), testTrip("Tokyo, Japan"))
	require.NoError(t, err)
	assert.Equal(t, "Tokyo Autumn Escape", profile.Name)
}

func TestPreviewProfile_ProviderError(t *testing.T) {
	svc := newTestService(newPlannerStore(), mock.NewFailingProvider(errors.New("model offline")))
	_, err := svc.PreviewProfile(context.Background(), testTrip("Tokyo, Japan"))
	require.Error(t, err)
}

func TestDayProgress(t *testing.T) {
	assert.Equal(t, 5, dayProgress(0, 3))
	assert.Equal(t, 35, dayProgress(1, 3))
	assert.Equal(t, 95, dayProgress(3, 3))
	assert.Equal(t, 95, dayProgress(0, 0))
}

func TestSummarizeDay(t *testing.T) {
	items := []models.ItineraryItem{{Title: "Museum"}, {Title: "Ramen"}}
	assert.Equal(t, "Day 2: Museum; Ramen", summarizeDay(2, items))
	assert.Equal(t, "Day 3: free day", summarizeDay(3, nil))
}
