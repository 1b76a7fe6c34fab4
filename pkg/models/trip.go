// Package models contains shared data models used across the codebase.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Trip is a planned multi-destination trip. Generation jobs (tasks,
// itinerary) always refer to a trip by ID.
type Trip struct {
	ID             uuid.UUID  `db:"id"              json:"id"`
	UserID         uuid.UUID  `db:"user_id"         json:"user_id"`
	Name           string     `db:"name"            json:"name"`
	Description    *string    `db:"description"     json:"description,omitempty"`
	Destinations   []string   `db:"destinations"    json:"destinations"`
	StartPoint     *string    `db:"start_point"     json:"start_point,omitempty"`
	EndPoint       *string    `db:"end_point"       json:"end_point,omitempty"`
	StartDate      time.Time  `db:"start_date"      json:"start_date"`
	EndDate        time.Time  `db:"end_date"        json:"end_date"`
	FlexibleDates  bool       `db:"flexible_dates"  json:"flexible_dates"`
	AdultsCount    int        `db:"adults_count"    json:"adults_count"`
	ChildrenCount  int        `db:"children_count"  json:"children_count"`
	Preferences    []string   `db:"preferences"     json:"preferences"`
	Transportation []string   `db:"transportation"  json:"transportation"`
	Budget         int        `db:"budget"          json:"budget"`
	Currency       string     `db:"currency"        json:"currency"`
	CreatedAt      time.Time  `db:"created_at"      json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"      json:"updated_at"`
}

// Days returns the trip length in calendar days, inclusive of both ends.
func (t *Trip) Days() int {
	days := int(t.EndDate.Sub(t.StartDate).Hours()/24) + 1
	if days < 1 {
		return 1
	}
	return days
}
