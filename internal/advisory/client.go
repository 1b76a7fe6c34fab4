// Package advisory wraps the travel-health research provider. One batched
// research call covers the full destination set; parsing of the returned
// prose into tasks happens in the planner, not here.
package advisory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"
)

// ErrUnavailable is returned for any provider failure. Callers treat the
// health branch as absent rather than failing the whole generation.
var ErrUnavailable = errors.New("advisory provider unavailable")

// Client is the interface for health-advisory research.
type Client interface {
	// Research returns free-text vaccine and health guidance covering
	// every destination in one call. travelDate may be empty.
	Research(ctx context.Context, destinations []string, travelDate string) (string, error)
}

// HTTPClient implements Client against an OpenAI-compatible
// chat-completions research API.
type HTTPClient struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// NewHTTPClient creates a new advisory research client.
func NewHTTPClient(baseURL, apiKey, model string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) Research(ctx context.Context, destinations []string, travelDate string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("%w: no API key configured", ErrUnavailable)
	}
	if len(destinations) == 0 {
		return "", fmt.Errorf("%w: no destinations to research", ErrUnavailable)
	}

	payload, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "user", Content: buildQuery(destinations, travelDate)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshaling research request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", classifyError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("%w: decoding response: %v", ErrUnavailable, err)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%w: empty completion", ErrUnavailable)
	}

	return parsed.Choices[0].Message.Content, nil
}

// buildQuery asks for per-vaccine name, required-vs-recommended status and
// destination attribution so the downstream parser has structure to latch
// onto.
func buildQuery(destinations []string, travelDate string) string {
	departing := travelDate
	if departing == "" {
		departing = "soon"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "What vaccines and immunizations are required or recommended for travelers visiting %s?\n\n", strings.Join(destinations, ", "))
	b.WriteString("Please check reliable sources like:\n")
	b.WriteString("- CDC Travelers' Health (USA)\n")
	b.WriteString("- WHO International Travel and Health\n")
	b.WriteString("- Official government travel health advisories\n\n")
	b.WriteString("For each vaccine, specify:\n")
	b.WriteString("1. Vaccine name\n")
	b.WriteString("2. Whether it's REQUIRED or RECOMMENDED\n")
	b.WriteString("3. Which destination(s) it applies to\n")
	b.WriteString("4. Any important timing or dosage notes\n\n")
	fmt.Fprintf(&b, "Focus on practical, actionable advice for a traveler departing around %s.", departing)
	return b.String()
}

func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: timeout: %v", ErrUnavailable, err)
	}

	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Compile-time check that HTTPClient implements Client.
var _ Client = (*HTTPClient)(nil)
