// Package restcountries wraps the reference country-name dataset used by
// the location resolver for its exact and fuzzy lookup tiers.
package restcountries

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"
)

// Sentinel errors for dataset client failures.
var (
	ErrUnreachable = errors.New("restcountries unreachable")
	ErrTimeout     = errors.New("restcountries lookup timeout")
	ErrNotFound    = errors.New("country name not found")
)

// Client is the interface for country-name lookups.
type Client interface {
	// LookupExact resolves a country name with an exact full-text match.
	LookupExact(ctx context.Context, name string) (string, error)
	// LookupFuzzy resolves a country name with a partial match.
	LookupFuzzy(ctx context.Context, name string) (string, error)
}

// HTTPClient implements Client using the restcountries.com HTTP API.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient creates a new restcountries HTTP client.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) LookupExact(ctx context.Context, name string) (string, error) {
	return c.lookup(ctx, name, true)
}

func (c *HTTPClient) LookupFuzzy(ctx context.Context, name string) (string, error) {
	return c.lookup(ctx, name, false)
}

func (c *HTTPClient) lookup(ctx context.Context, name string, fullText bool) (string, error) {
	u := fmt.Sprintf("%s/name/%s", c.baseURL, url.PathEscape(name))
	if fullText {
		u += "?fullText=true"
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", classifyError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrUnreachable, resp.StatusCode)
	}

	var countries []countryEntry
	if err := json.NewDecoder(resp.Body).Decode(&countries); err != nil {
		return "", fmt.Errorf("decoding restcountries response: %w", err)
	}
	if len(countries) == 0 || countries[0].CCA2 == "" {
		return "", fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	return countries[0].CCA2, nil
}

// classifyError maps transport-level errors to sentinel errors.
func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return fmt.Errorf("%w: %v", ErrTimeout, err)
		}
	}

	return fmt.Errorf("%w: %v", ErrUnreachable, err)
}

type countryEntry struct {
	CCA2 string `json:"cca2"`
}

// Compile-time check that HTTPClient implements Client.
var _ Client = (*HTTPClient)(nil)
