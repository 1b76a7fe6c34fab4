package models

import (
	"time"

	"github.com/google/uuid"
)

// Task categories. The visa and vaccine agents only ever emit the first
// three; the generative agent may emit any of them.
const (
	CategoryVisa           = "visa"
	CategoryHealth         = "health"
	CategoryDocumentation  = "documentation"
	CategoryGeneral        = "general"
	CategoryAccommodation  = "accommodation"
	CategoryTransportation = "transportation"
	CategoryFinance        = "finance"
	CategoryPacking        = "packing"
	CategoryActivities     = "activities"
)

// Task priorities, highest first.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Task sources identify which agent proposed a candidate. Specialized
// sources take precedence over the generative one when merging.
const (
	SourceVisaAgent    = "visa-agent"
	SourceVaccineAgent = "vaccine-agent"
	SourceGenerative   = "generative"
)

// Task is one actionable line item for a trip. Before the aggregator merge
// it is a candidate from a single source; after the merge it is persisted.
type Task struct {
	ID           uuid.UUID `db:"id"           json:"id"`
	TripID       uuid.UUID `db:"trip_id"      json:"trip_id"`
	Title        string    `db:"title"        json:"title"`
	Description  *string   `db:"description"  json:"description,omitempty"`
	Category     string    `db:"category"     json:"category"`
	Priority     string    `db:"priority"     json:"priority"`
	Destinations []string  `db:"destinations" json:"destinations,omitempty"`
	Source       string    `db:"source"       json:"source"`
	Completed    bool      `db:"completed"    json:"completed"`
	CreatedAt    time.Time `db:"created_at"   json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"   json:"updated_at"`
}

// PriorityRank maps a priority to a sortable rank, highest priority first.
// Unknown priorities sort last.
func PriorityRank(priority string) int {
	switch priority {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	default:
		return 3
	}
}

// SourceRank maps a source to merge precedence: specialized agents before
// the generative one.
func SourceRank(source string) int {
	switch source {
	case SourceVisaAgent:
		return 0
	case SourceVaccineAgent:
		return 1
	case SourceGenerative:
		return 2
	default:
		return 3
	}
}
