package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KohkiHatori/Backpacking-Assistant-Agent/internal/api"
	mw "github.com/KohkiHatori/Backpacking-Assistant-Agent/internal/api/middleware"
	"github.com/KohkiHatori/Backpacking-Assistant-Agent/internal/cache"
	"github.com/KohkiHatori/Backpacking-Assistant-Agent/internal/store"
	"github.com/KohkiHatori/Backpacking-Assistant-Agent/pkg/models"
)

// stubStore knows no API keys, so every authenticated route rejects.
type stubStore struct{}

func (s *stubStore) Ping(context.Context) error { return nil }
func (s *stubStore) GetDefaultUser(context.Context) (*models.User, error) {
	return nil, store.ErrNotFound
}
func (s *stubStore) GetUser(context.Context, uuid.UUID) (*models.User, error) {
	return nil, store.ErrNotFound
}
func (s *stubStore) GetAPIKeyByPrefix(context.Context, string) ([]*models.APIKey, error) {
	return nil, nil
}
func (s *stubStore) UpdateAPIKeyLastUsed(context.Context, uuid.UUID) error { return nil }
func (s *stubStore) CreateAPIKey(context.Context, *models.APIKey) error    { return nil }
func (s *stubStore) ListAPIKeys(context.Context, uuid.UUID) ([]*models.APIKey, error) {
	return nil, nil
}
func (s *stubStore) RevokeAPIKey(context.Context, uuid.UUID, uuid.UUID) error { return nil }
func (s *stubStore) CreateTrip(context.Context, *models.Trip) error           { return nil }
func (s *stubStore) GetTrip(context.Context, uuid.UUID, uuid.UUID) (*models.Trip, error) {
	return nil, store.ErrNotFound
}
func (s *stubStore) ListTrips(context.Context, uuid.UUID) ([]*models.Trip, error) { return nil, nil }
func (s *stubStore) ReplaceTasks(context.Context, uuid.UUID, []models.Task) error { return nil }
func (s *stubStore) ListTasks(context.Context, uuid.UUID) ([]*models.Task, error) { return nil, nil }
func (s *stubStore) DeleteItinerary(context.Context, uuid.UUID) error             { return nil }
func (s *stubStore) CreateItineraryItems(context.Context, []models.ItineraryItem) error {
	return nil
}
func (s *stubStore) ListItineraryItems(context.Context, uuid.UUID) ([]*models.ItineraryItem, error) {
	return nil, nil
}
func (s *stubStore) CreateJob(context.Context, *models.Job) error { return nil }
func (s *stubStore) GetJob(context.Context, uuid.UUID) (*models.Job, error) {
	return nil, store.ErrNotFound
}
func (s *stubStore) GetActiveJob(context.Context, uuid.UUID, string) (*models.Job, error) {
	return nil, store.ErrNotFound
}
func (s *stubStore) UpdateJob(context.Context, uuid.UUID, ...store.JobUpdateOption) (*models.Job, error) {
	return nil, store.ErrNotFound
}
func (s *stubStore) FailStaleJobs(context.Context, time.Time, string) ([]*models.Job, error) {
	return nil, nil
}

type stubCache struct{}

func (c *stubCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (c *stubCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (c *stubCache) Delete(context.Context, string) error                     { return nil }
func (c *stubCache) Ping(context.Context) error                               { return nil }
func (c *stubCache) SetJobStatus(context.Context, uuid.UUID, string, time.Duration) error {
	return nil
}
func (c *stubCache) GetJobStatus(context.Context, uuid.UUID) (string, bool, error) {
	return "", false, nil
}
func (c *stubCache) SetCountryCode(context.Context, string, string) error { return nil }
func (c *stubCache) GetCountryCode(context.Context, string) (string, bool, error) {
	return "", false, nil
}
func (c *stubCache) IncrWithExpiry(context.Context, string, time.Duration) (int64, error) {
	return 1, nil
}

var (
	_ store.Store = (*stubStore)(nil)
	_ cache.Cache = (*stubCache)(nil)
)

func newTestRouter() http.Handler {
	return api.NewRouter(api.Dependencies{
		Auth:      mw.NewAuth(&stubStore{}),
		RateLimit: mw.NewRateLimit(&stubCache{}, 60),
		HealthHandler: func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"status":"ok"}`))
		},
	})
}

func TestRouter_HealthEndpoint_Public(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest("GET", "/api/v1/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_ProtectedEndpoints_RequireAuth(t *testing.T) {
	router := newTestRouter()

	endpoints := []struct {
		method string
		path   string
	}{
		{"POST", "/api/v1/jobs"},
		{"GET", "/api/v1/jobs/" + uuid.NewString()},
		{"POST", "/api/v1/trips"},
		{"GET", "/api/v1/trips"},
		{"POST", "/api/v1/trips/preview"},
		{"GET", "/api/v1/trips/" + uuid.NewString() + "/tasks"},
		{"GET", "/api/v1/trips/" + uuid.NewString() + "/itinerary"},
		{"POST", "/api/v1/admin/keys"},
		{"GET", "/api/v1/admin/keys"},
	}

	for _, ep := range endpoints {
		t.Run(ep.method+" "+ep.path, func(t *testing.T) {
			req := httptest.NewRequest(ep.method, ep.path, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			errObj := body["error"].(map[string]any)
			assert.Equal(t, "INVALID_TOKEN", errObj["code"])
		})
	}
}

func TestRouter_NotFound(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest("GET", "/api/v1/nonexistent", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
