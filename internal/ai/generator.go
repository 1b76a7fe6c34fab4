// Package ai selects and wraps the generative text provider. Vendor
// subpackages speak raw text completion; this package owns the prompts,
// the JSON contracts, and error classification, so every vendor produces
// identical task and itinerary shapes.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/KohkiHatori/Backpacking-Assistant-Agent/pkg/models"
)

// Generator is the minimal surface a vendor client must provide. jsonMode
// asks the vendor for a JSON-only response where the API supports it.
type Generator interface {
	Generate(ctx context.Context, prompt string, jsonMode bool) (string, error)
	Name() string
}

// provider adapts a Generator to models.GenerativeProvider.
type provider struct {
	gen Generator
}

// Wrap turns a vendor Generator into a full GenerativeProvider.
func Wrap(gen Generator) models.GenerativeProvider {
	return &provider{gen: gen}
}

func (p *provider) Name() string { return p.gen.Name() }

func (p *provider) SuggestTasks(ctx context.Context, trip *models.Trip) ([]models.Task, error) {
	raw, err := p.gen.Generate(ctx, buildTaskPrompt(trip), true)
	if err != nil {
		return nil, classifyError(p.gen.Name(), err)
	}

	var wire []wireTask
	if err := decodeJSONArray(raw, &wire); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	tasks := make([]models.Task, 0, len(wire))
	for _, t := range wire {
		if t.Title == "" {
			continue
		}
		task := models.Task{
			ID:       uuid.New(),
			TripID:   trip.ID,
			Title:    t.Title,
			Category: normalizeCategory(t.Category),
			Priority: normalizePriority(t.Priority),
			Source:   models.SourceGenerative,
		}
		if t.Description != "" {
			desc := t.Description
			task.Description = &desc
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func (p *provider) GenerateTripProfile(ctx context.Context, trip *models.Trip) (models.TripProfile, error) {
	raw, err := p.gen.Generate(ctx, buildProfilePrompt(trip), true)
	if err != nil {
		return models.TripProfile{}, classifyError(p.gen.Name(), err)
	}

	var profile models.TripProfile
	if err := decodeJSONObject(raw, &profile); err != nil {
		return models.TripProfile{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if profile.Name == "" {
		return models.TripProfile{}, fmt.Errorf("%w: missing trip name", ErrInvalidResponse)
	}
	return profile, nil
}

func (p *provider) GenerateItineraryDay(ctx context.Context, trip *models.Trip, day int, prevSummary string) ([]models.ItineraryItem, error) {
	raw, err := p.gen.Generate(ctx, buildDayPrompt(trip, day, prevSummary), true)
	if err != nil {
		return nil, classifyError(p.gen.Name(), err)
	}

	var wire []wireItineraryItem
	if err := decodeJSONArray(raw, &wire); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	date := trip.StartDate.AddDate(0, 0, day-1)
	items := make([]models.ItineraryItem, 0, len(wire))
	for idx, w := range wire {
		if w.Title == "" {
			continue
		}
		item := models.ItineraryItem{
			ID:         uuid.New(),
			TripID:     trip.ID,
			DayNumber:  day,
			Date:       date,
			Title:      w.Title,
			Type:       normalizeItemType(w.Type),
			Cost:       w.Cost,
			OrderIndex: idx,
		}
		if w.StartTime != "" {
			st := w.StartTime
			item.StartTime = &st
		}
		if w.EndTime != "" {
			et := w.EndTime
			item.EndTime = &et
		}
		if w.Description != "" {
			d := w.Description
			item.Description = &d
		}
		if w.Location != "" {
			l := w.Location
			item.Location = &l
		}
		items = append(items, item)
	}
	return items, nil
}

// classifyError maps vendor errors to package sentinels.
func classifyError(name string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %s: %v", ErrGenerationTimeout, name, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %s: %v", ErrGenerationTimeout, name, err)
	}

	return fmt.Errorf("%w: %s: %v", ErrProviderUnavailable, name, err)
}

// decodeJSONArray extracts and decodes the first JSON array in a
// completion, tolerating markdown fences and surrounding prose.
func decodeJSONArray(raw string, out any) error {
	return json.Unmarshal([]byte(extractJSON(raw, '[', ']')), out)
}

// decodeJSONObject is decodeJSONArray for a single JSON object.
func decodeJSONObject(raw string, out any) error {
	return json.Unmarshal([]byte(extractJSON(raw, '{', '}')), out)
}

func extractJSON(raw string, opening, closing byte) string {
	s := raw
	if i := strings.Index(s, "```json"); i >= 0 {
		s = s[i+len("```json"):]
		if j := strings.Index(s, "```"); j >= 0 {
			s = s[:j]
		}
	}
	start := strings.IndexByte(s, opening)
	end := strings.LastIndexByte(s, closing)
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}

func normalizeCategory(c string) string {
	switch strings.ToLower(strings.TrimSpace(c)) {
	case models.CategoryVisa:
		return models.CategoryVisa
	case models.CategoryHealth:
		return models.CategoryHealth
	case models.CategoryDocumentation:
		return models.CategoryDocumentation
	case models.CategoryAccommodation:
		return models.CategoryAccommodation
	case models.CategoryTransportation:
		return models.CategoryTransportation
	case models.CategoryFinance:
		return models.CategoryFinance
	case models.CategoryPacking:
		return models.CategoryPacking
	case models.CategoryActivities:
		return models.CategoryActivities
	default:
		return models.CategoryGeneral
	}
}

func normalizePriority(p string) string {
	switch strings.ToLower(strings.TrimSpace(p)) {
	case models.PriorityHigh:
		return models.PriorityHigh
	case models.PriorityLow:
		return models.PriorityLow
	default:
		return models.PriorityMedium
	}
}

func normalizeItemType(t string) string {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case "transport", "accommodation", "meal":
		return strings.ToLower(strings.TrimSpace(t))
	default:
		return "activity"
	}
}

type wireTask struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Priority    string `json:"priority"`
}

type wireItineraryItem struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Type        string `json:"type"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Cost        int    `json:"cost"`
}

func formatDate(t time.Time) string { return t.Format("2006-01-02") }
