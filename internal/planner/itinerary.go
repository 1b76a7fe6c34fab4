package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/KohkiHatori/Backpacking-Assistant-Agent/internal/jobs"
	"github.com/KohkiHatori/Backpacking-Assistant-Agent/pkg/models"
)

// generateItinerary builds the trip's itinerary one day at a time. Each
// day is persisted as soon as it is generated, so a failure partway
// through leaves the completed days queryable. A rolling summary of the
// previous day feeds the next generation call for continuity.
func (s *Service) generateItinerary(ctx context.Context, trip *models.Trip, report jobs.ReportFunc) (json.RawMessage, error) {
	report(2, "clearing previous itinerary")
	if err := s.store.DeleteItinerary(ctx, trip.ID); err != nil {
		return nil, fmt.Errorf("clear itinerary: %w", err)
	}

	days := trip.Days()
	prevSummary := ""
	for day := 1; day <= days; day++ {
		report(dayProgress(day-1, days), fmt.Sprintf("generating day %d of %d", day, days))

		items, err := s.provider.GenerateItineraryDay(ctx, trip, day, prevSummary)
		if err != nil {
			return nil, fmt.Errorf("generate day %d: %w", day, err)
		}
		stampItineraryItems(items, trip, day)

		if err := s.store.CreateItineraryItems(ctx, items); err != nil {
			return nil, fmt.Errorf("save day %d: %w", day, err)
		}

		prevSummary = summarizeDay(day, items)
		report(dayProgress(day, days), fmt.Sprintf("completed day %d of %d", day, days))
	}

	return json.Marshal(map[string]int{"num_days": days})
}

// dayProgress maps completed days onto the 5-95 band, leaving room for
// the setup and finalization steps at the edges.
func dayProgress(completed, total int) int {
	if total <= 0 {
		return 95
	}
	return 5 + completed*90/total
}

// stampItineraryItems enforces the persistence-owned fields regardless of
// what the provider returned: trip linkage, the calendar date for the day,
// and creation time.
func stampItineraryItems(items []models.ItineraryItem, trip *models.Trip, day int) {
	date := trip.StartDate.AddDate(0, 0, day-1)
	now := time.Now().UTC()
	for i := range items {
		items[i].TripID = trip.ID
		items[i].DayNumber = day
		items[i].Date = date
		items[i].CreatedAt = now
	}
}

// summarizeDay condenses a generated day into a short line for the next
// day's prompt.
func summarizeDay(day int, items []models.ItineraryItem) string {
	if len(items) == 0 {
		return fmt.Sprintf("Day %d: free day", day)
	}
	titles := make([]string, 0, len(items))
	for _, item := range items {
		titles = append(titles, item.Title)
	}
	return fmt.Sprintf("Day %d: %s", day, strings.Join(titles, "; "))
}
