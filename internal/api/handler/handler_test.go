package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	mw "github.com/KohkiHatori/Backpacking-Assistant-Agent/internal/api/middleware"
	"github.com/KohkiHatori/Backpacking-Assistant-Agent/internal/store"
	"github.com/KohkiHatori/Backpacking-Assistant-Agent/pkg/models"
)

// mockStore backs handler tests with in-memory data. Unset collections
// behave as empty; err forces every method to fail.
type mockStore struct {
	err   error
	users map[uuid.UUID]*models.User
	trips map[uuid.UUID]*models.Trip
	tasks map[uuid.UUID][]*models.Task
	items map[uuid.UUID][]*models.ItineraryItem

	createdKeys  []*models.APIKey
	keys         []*models.APIKey
	revokedKeyID uuid.UUID
	revokeErr    error
}

func newMockStore() *mockStore {
	return &mockStore{
		users: make(map[uuid.UUID]*models.User),
		trips: make(map[uuid.UUID]*models.Trip),
		tasks: make(map[uuid.UUID][]*models.Task),
		items: make(map[uuid.UUID][]*models.ItineraryItem),
	}
}

func (m *mockStore) Ping(context.Context) error { return m.err }

func (m *mockStore) GetDefaultUser(context.Context) (*models.User, error) {
	return nil, store.ErrNotFound
}

func (m *mockStore) GetUser(_ context.Context, id uuid.UUID) (*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return u, nil
}

func (m *mockStore) GetAPIKeyByPrefix(context.Context, string) ([]*models.APIKey, error) {
	return nil, nil
}
func (m *mockStore) UpdateAPIKeyLastUsed(context.Context, uuid.UUID) error { return nil }

func (m *mockStore) CreateAPIKey(_ context.Context, key *models.APIKey) error {
	if m.err != nil {
		return m.err
	}
	m.createdKeys = append(m.createdKeys, key)
	return nil
}

func (m *mockStore) ListAPIKeys(context.Context, uuid.UUID) ([]*models.APIKey, error) {
	return m.keys, m.err
}

func (m *mockStore) RevokeAPIKey(_ context.Context, id uuid.UUID, _ uuid.UUID) error {
	if m.revokeErr != nil {
		return m.revokeErr
	}
	m.revokedKeyID = id
	return nil
}

func (m *mockStore) CreateTrip(_ context.Context, trip *models.Trip) error {
	if m.err != nil {
		return m.err
	}
	m.trips[trip.ID] = trip
	return nil
}

func (m *mockStore) GetTrip(_ context.Context, id uuid.UUID, userID uuid.UUID) (*models.Trip, error) {
	if m.err != nil {
		return nil, m.err
	}
	trip, ok := m.trips[id]
	if !ok || trip.UserID != userID {
		return nil, store.ErrNotFound
	}
	return trip, nil
}

func (m *mockStore) ListTrips(context.Context, uuid.UUID) ([]*models.Trip, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []*models.Trip
	for _, trip := range m.trips {
		out = append(out, trip)
	}
	return out, nil
}

func (m *mockStore) ReplaceTasks(context.Context, uuid.UUID, []models.Task) error { return m.err }

func (m *mockStore) ListTasks(_ context.Context, tripID uuid.UUID) ([]*models.Task, error) {
	return m.tasks[tripID], m.err
}

func (m *mockStore) DeleteItinerary(context.Context, uuid.UUID) error { return m.err }
func (m *mockStore) CreateItineraryItems(context.Context, []models.ItineraryItem) error {
	return m.err
}

func (m *mockStore) ListItineraryItems(_ context.Context, tripID uuid.UUID) ([]*models.ItineraryItem, error) {
	return m.items[tripID], m.err
}

func (m *mockStore) CreateJob(context.Context, *models.Job) error { return m.err }
func (m *mockStore) GetJob(context.Context, uuid.UUID) (*models.Job, error) {
	return nil, store.ErrNotFound
}
func (m *mockStore) GetActiveJob(context.Context, uuid.UUID, string) (*models.Job, error) {
	return nil, store.ErrNotFound
}
func (m *mockStore) UpdateJob(context.Context, uuid.UUID, ...store.JobUpdateOption) (*models.Job, error) {
	return nil, store.ErrNotFound
}
func (m *mockStore) FailStaleJobs(context.Context, time.Time, string) ([]*models.Job, error) {
	return nil, nil
}

var _ store.Store = (*mockStore)(nil)

// --- request helpers ---

func authedRequest(t *testing.T, method, target string, body any, userID uuid.UUID) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	r := httptest.NewRequest(method, target, &buf)
	r.Header.Set("Content-Type", "application/json")
	return r.WithContext(mw.SetUserID(r.Context(), userID))
}

// withURLParam attaches a chi route parameter to the request context.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var env struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return env.Data
}

func decodeErrCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return env.Error.Code
}

func seededTrip(m *mockStore, userID uuid.UUID) *models.Trip {
	trip := &models.Trip{
		ID:           uuid.New(),
		UserID:       userID,
		Name:         "Test trip",
		Destinations: []string{"Tokyo, Japan"},
		StartDate:    time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2026, 10, 5, 0, 0, 0, 0, time.UTC),
	}
	m.trips[trip.ID] = trip
	return trip
}
