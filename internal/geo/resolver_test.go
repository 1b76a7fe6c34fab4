package geo_test

import (
	"context"
	"sync"
	"testing"

	"github.com/KohkiHatori/Backpacking-Assistant-Agent/internal/geo"
	"github.com/KohkiHatori/Backpacking-Assistant-Agent/internal/restcountries"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClient is a scriptable restcountries.Client that counts calls.
type fakeClient struct {
	mu          sync.Mutex
	exact       map[string]string
	fuzzy       map[string]string
	err         error
	exactCalls  int
	fuzzyCalls  int
}

func (c *fakeClient) LookupExact(_ context.Context, name string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.exactCalls++
	if c.err != nil {
		return "", c.err
	}
	if code, ok := c.exact[name]; ok {
		return code, nil
	}
	return "", restcountries.ErrNotFound
}

func (c *fakeClient) LookupFuzzy(_ context.Context, name string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fuzzyCalls++
	if c.err != nil {
		return "", c.err
	}
	if code, ok := c.fuzzy[name]; ok {
		return code, nil
	}
	return "", restcountries.ErrNotFound
}

func TestResolve_ExtractionUsesLastSegment(t *testing.T) {
	client := &fakeClient{exact: map[string]string{"France": "FR"}}
	r := geo.NewResolver(client, nil)

	code, via, err := r.Resolve(context.Background(), "Paris, Île-de-France, France")
	require.NoError(t, err)
	assert.Equal(t, "FR", code)
	assert.Equal(t, geo.ViaExternal, via)
}

func TestResolve_BareStringUsedDirectly(t *testing.T) {
	client := &fakeClient{exact: map[string]string{"Singapore": "SG"}}
	r := geo.NewResolver(client, nil)

	code, _, err := r.Resolve(context.Background(), "Singapore")
	require.NoError(t, err)
	assert.Equal(t, "SG", code)
}

func TestResolve_TrailingEmptySegmentSkipped(t *testing.T) {
	client := &fakeClient{exact: map[string]string{"Japan": "JP"}}
	r := geo.NewResolver(client, nil)

	code, _, err := r.Resolve(context.Background(), "Tokyo, Japan, ")
	require.NoError(t, err)
	assert.Equal(t, "JP", code)
}

func TestResolve_Alpha2Passthrough(t *testing.T) {
	client := &fakeClient{}
	r := geo.NewResolver(client, nil)

	code, via, err := r.Resolve(context.Background(), "jp")
	require.NoError(t, err)
	assert.Equal(t, "JP", code)
	assert.Equal(t, geo.ViaDirect, via)
	assert.Zero(t, client.exactCalls)
}

func TestResolve_TwoLetterAliasBeatsPassthrough(t *testing.T) {
	client := &fakeClient{}
	r := geo.NewResolver(client, nil)

	// "UK" is not an ISO code; the alias table must win over the
	// passthrough.
	code, via, err := r.Resolve(context.Background(), "UK")
	require.NoError(t, err)
	assert.Equal(t, "GB", code)
	assert.Equal(t, geo.ViaStaticTable, via)
	assert.Zero(t, client.exactCalls)
}

func TestResolve_CacheHitSkipsExternal(t *testing.T) {
	client := &fakeClient{exact: map[string]string{"Japan": "JP"}}
	r := geo.NewResolver(client, nil)
	ctx := context.Background()

	_, via, err := r.Resolve(ctx, "Tokyo, Japan")
	require.NoError(t, err)
	assert.Equal(t, geo.ViaExternal, via)

	// Second resolution of the same country hits the cache.
	code, via, err := r.Resolve(ctx, "Osaka, Japan")
	require.NoError(t, err)
	assert.Equal(t, "JP", code)
	assert.Equal(t, geo.ViaCache, via)
	assert.Equal(t, 1, client.exactCalls)
}

func TestResolve_CacheIsCaseInsensitive(t *testing.T) {
	client := &fakeClient{exact: map[string]string{"Japan": "JP"}}
	r := geo.NewResolver(client, nil)
	ctx := context.Background()

	_, _, err := r.Resolve(ctx, "Japan")
	require.NoError(t, err)

	_, via, err := r.Resolve(ctx, "  JAPAN  ")
	require.NoError(t, err)
	assert.Equal(t, geo.ViaCache, via)
	assert.Equal(t, 1, client.exactCalls)
}

func TestResolve_FuzzyFallback(t *testing.T) {
	client := &fakeClient{fuzzy: map[string]string{"Czech": "CZ"}}
	r := geo.NewResolver(client, nil)

	code, via, err := r.Resolve(context.Background(), "Czech")
	require.NoError(t, err)
	assert.Equal(t, "CZ", code)
	assert.Equal(t, geo.ViaExternal, via)
	assert.Equal(t, 1, client.exactCalls)
	assert.Equal(t, 1, client.fuzzyCalls)
}

func TestResolve_StaticTableWhenDatasetUnreachable(t *testing.T) {
	client := &fakeClient{err: restcountries.ErrUnreachable}
	r := geo.NewResolver(client, nil)

	code, via, err := r.Resolve(context.Background(), "Ljubljana, Slovenia")
	require.NoError(t, err)
	assert.Equal(t, "SI", code)
	assert.Equal(t, geo.ViaStaticTable, via)
}

func TestResolve_StaticTableKnowsMajorCities(t *testing.T) {
	client := &fakeClient{err: restcountries.ErrUnreachable}
	r := geo.NewResolver(client, nil)

	code, _, err := r.Resolve(context.Background(), "Bangkok")
	require.NoError(t, err)
	assert.Equal(t, "TH", code)
}

func TestResolve_Unresolvable(t *testing.T) {
	client := &fakeClient{}
	r := geo.NewResolver(client, nil)

	_, _, err := r.Resolve(context.Background(), "Atlantis, Lost Continent")
	require.Error(t, err)
	assert.ErrorIs(t, err, geo.ErrUnresolvable)
	// The original input is carried for diagnostics.
	assert.Contains(t, err.Error(), "Atlantis, Lost Continent")
}

func TestResolve_EmptyInput(t *testing.T) {
	r := geo.NewResolver(&fakeClient{}, nil)

	_, _, err := r.Resolve(context.Background(), "   ")
	assert.ErrorIs(t, err, geo.ErrUnresolvable)
}

func TestResolve_ConcurrentAccess(t *testing.T) {
	client := &fakeClient{exact: map[string]string{"Japan": "JP", "Thailand": "TH"}}
	r := geo.NewResolver(client, nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			place := "Tokyo, Japan"
			want := "JP"
			if i%2 == 0 {
				place = "Bangkok, Thailand"
				want = "TH"
			}
			code, _, err := r.Resolve(context.Background(), place)
			assert.NoError(t, err)
			assert.Equal(t, want, code)
		}(i)
	}
	wg.Wait()
}

func TestExtractCountry(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Paris, Île-de-France, France", "France"},
		{"Tokyo, Japan", "Japan"},
		{"Singapore", "Singapore"},
		{"  Bangkok , Thailand ", "Thailand"},
		{"Lisbon,,", "Lisbon"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, geo.ExtractCountry(tt.input), "input %q", tt.input)
	}
}

func TestResolve_DatasetErrorDoesNotPoison(t *testing.T) {
	client := &fakeClient{err: restcountries.ErrTimeout}
	r := geo.NewResolver(client, nil)
	ctx := context.Background()

	// Unknown place fails while the dataset is down.
	_, _, err := r.Resolve(ctx, "Gondor")
	require.ErrorIs(t, err, geo.ErrUnresolvable)

	// Once the dataset recovers the same input resolves.
	client.mu.Lock()
	client.err = nil
	client.exact = map[string]string{"Gondor": "GD"}
	client.mu.Unlock()

	code, _, err := r.Resolve(ctx, "Gondor")
	require.NoError(t, err)
	assert.Equal(t, "GD", code)
}
