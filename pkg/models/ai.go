package models

import "context"

// GenerativeProvider is the core interface all LLM integrations must
// implement. Never call specific providers directly — always inject this
// interface.
type GenerativeProvider interface {
	// SuggestTasks proposes open-ended preparation tasks for a trip.
	SuggestTasks(ctx context.Context, trip *Trip) ([]Task, error)
	// GenerateTripProfile produces a trip name and one-sentence description.
	GenerateTripProfile(ctx context.Context, trip *Trip) (TripProfile, error)
	// GenerateItineraryDay produces the scheduled items for a single day.
	// prevSummary carries a short recap of the days already generated.
	GenerateItineraryDay(ctx context.Context, trip *Trip, day int, prevSummary string) ([]ItineraryItem, error)
	// Name returns the provider identifier (e.g. "gemini", "openai").
	Name() string
}

// TripProfile is a generated trip name and description.
type TripProfile struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}
