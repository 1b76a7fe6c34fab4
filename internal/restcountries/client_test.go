package restcountries_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/KohkiHatori/Backpacking-Assistant-Agent/internal/restcountries"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupExact_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/name/Japan", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("fullText"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"cca2":"JP","name":{"common":"Japan"}}]`))
	}))
	defer srv.Close()

	client := restcountries.NewHTTPClient(srv.URL, 5*time.Second)
	code, err := client.LookupExact(context.Background(), "Japan")
	require.NoError(t, err)
	assert.Equal(t, "JP", code)
}

func TestLookupFuzzy_OmitsFullText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.Query().Get("fullText"))
		w.Write([]byte(`[{"cca2":"SI"}]`))
	}))
	defer srv.Close()

	client := restcountries.NewHTTPClient(srv.URL, 5*time.Second)
	code, err := client.LookupFuzzy(context.Background(), "Sloven")
	require.NoError(t, err)
	assert.Equal(t, "SI", code)
}

func TestLookup_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"status":404,"message":"Not Found"}`))
	}))
	defer srv.Close()

	client := restcountries.NewHTTPClient(srv.URL, 5*time.Second)
	_, err := client.LookupExact(context.Background(), "Atlantis")
	require.Error(t, err)
	assert.ErrorIs(t, err, restcountries.ErrNotFound)
}

func TestLookup_EmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := restcountries.NewHTTPClient(srv.URL, 5*time.Second)
	_, err := client.LookupExact(context.Background(), "Nowhere")
	assert.ErrorIs(t, err, restcountries.ErrNotFound)
}

func TestLookup_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := restcountries.NewHTTPClient(srv.URL, 5*time.Second)
	_, err := client.LookupExact(context.Background(), "Japan")
	assert.ErrorIs(t, err, restcountries.ErrUnreachable)
}

func TestLookup_Unreachable(t *testing.T) {
	// Point at a server that is already closed.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := restcountries.NewHTTPClient(srv.URL, time.Second)
	_, err := client.LookupExact(context.Background(), "Japan")
	assert.ErrorIs(t, err, restcountries.ErrUnreachable)
}

func TestLookup_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client := restcountries.NewHTTPClient(srv.URL, 5*time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.LookupExact(ctx, "Japan")
	assert.ErrorIs(t, err, restcountries.ErrTimeout)
}

func TestLookup_EscapesName(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.Write([]byte(`[{"cca2":"CI"}]`))
	}))
	defer srv.Close()

	client := restcountries.NewHTTPClient(srv.URL, 5*time.Second)
	_, err := client.LookupExact(context.Background(), "Côte d'Ivoire")
	require.NoError(t, err)
	assert.Contains(t, gotPath, "/name/C%C3%B4te%20d%27Ivoire")
}
