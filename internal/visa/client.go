// Package visa wraps the visa-requirement provider API. Raw rule-name
// strings are classified into models.VisaRuleKind here so nothing
// downstream ever pattern-matches on provider text.
package visa

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

	"github.com/KohkiHatori/Backpacking-Assistant-Agent/pkg/models"
)

// ErrUnavailable is returned for any provider failure: transport errors,
// timeouts, non-2xx statuses, or unparseable bodies. Callers degrade to
// fallback tasks rather than inspect the cause.
var ErrUnavailable = errors.New("visa provider unavailable")

// Client is the interface for visa requirement checks.
type Client interface {
	// Check returns the classified visa rule for a passport/destination
	// pair of ISO 3166-1 alpha-2 codes.
	Check(ctx context.Context, passportCode, destinationCode string) (*models.VisaRule, error)
}

// HTTPClient implements Client against a RapidAPI-style visa endpoint.
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPClient creates a new visa provider client.
func NewHTTPClient(baseURL, apiKey string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) Check(ctx context.Context, passportCode, destinationCode string) (*models.VisaRule, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: no API key configured", ErrUnavailable)
	}

	payload, err := json.Marshal(checkRequest{
		Passport:    passportCode,
		Destination: destinationCode,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling visa request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/visa/check", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-RapidAPI-Key", c.apiKey)
	httpReq.Header.Set("X-RapidAPI-Host", rapidAPIHost(c.baseURL))

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, classifyError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var envelope checkResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", ErrUnavailable, err)
	}
	if envelope.Data == nil {
		return nil, fmt.Errorf("%w: empty response body", ErrUnavailable)
	}

	return envelope.Data.toRule(passportCode, destinationCode), nil
}

// ClassifyRuleName maps a raw provider rule-name string to the closed enum.
// Matching is case-insensitive and tolerant of spelling variants seen in
// provider payloads ("visa-free", "Visa free", "eVisa", "e-Visa").
func ClassifyRuleName(name string) models.VisaRuleKind {
	n := strings.ToLower(strings.TrimSpace(name))
	switch {
	case strings.Contains(n, "visa-free"), strings.Contains(n, "visa free"), strings.Contains(n, "visa not required"):
		return models.VisaRuleFree
	case strings.Contains(n, "on arrival"), strings.Contains(n, "on-arrival"):
		return models.VisaRuleOnArrival
	case strings.Contains(n, "e-visa"), strings.Contains(n, "evisa"), strings.Contains(n, "electronic visa"):
		return models.VisaRuleEVisa
	case strings.Contains(n, "visa required"), strings.Contains(n, "visa-required"):
		return models.VisaRuleRequired
	default:
		return models.VisaRuleUnknown
	}
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

func rapidAPIHost(baseURL string) string {
	host := strings.TrimPrefix(baseURL, "https://")
	host = strings.TrimPrefix(host, "http://")
	if i := strings.IndexByte(host, '/'); i >= 0 {
		host = host[:i]
	}
	return host
}

type checkRequest struct {
	Passport    string `json:"passport"`
	Destination string `json:"destination"`
}

type checkResponse struct {
	Data *checkData `json:"data"`
}

type checkData struct {
	Destination struct {
		PassportValidity string `json:"passport_validity"`
		EmbassyURL       string `json:"embassy_url"`
	} `json:"destination"`
	VisaRules struct {
		Primary   *wireRule `json:"primary_rule"`
		Secondary *wireRule `json:"secondary_rule"`
	} `json:"visa_rules"`
	MandatoryRegistration *struct {
		Name string `json:"name"`
		Link string `json:"link"`
	} `json:"mandatory_registration"`
}

type wireRule struct {
	Name     string `json:"name"`
	Duration string `json:"duration"`
	Link     string `json:"link"`
}

func (r *wireRule) toRoute() models.VisaRoute {
	return models.VisaRoute{
		Kind:     ClassifyRuleName(r.Name),
		Name:     r.Name,
		Duration: r.Duration,
		Link:     r.Link,
	}
}

func (d *checkData) toRule(passportCode, destinationCode string) *models.VisaRule {
	rule := &models.VisaRule{
		PassportCode:     passportCode,
		DestinationCode:  destinationCode,
		PassportValidity: d.Destination.PassportValidity,
		EmbassyURL:       d.Destination.EmbassyURL,
	}
	if d.VisaRules.Primary != nil {
		rule.Primary = d.VisaRules.Primary.toRoute()
	}
	if d.VisaRules.Secondary != nil && d.VisaRules.Secondary.Name != "" {
		route := d.VisaRules.Secondary.toRoute()
		rule.Secondary = &route
	}
	if d.MandatoryRegistration != nil && d.MandatoryRegistration.Name != "" {
		rule.Registration = &models.MandatoryRegistration{
			Name: d.MandatoryRegistration.Name,
			Link: d.MandatoryRegistration.Link,
		}
	}
	return rule
}

// Compile-time check that HTTPClient implements Client.
var _ Client = (*HTTPClient)(nil)
