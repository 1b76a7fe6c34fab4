package models

import (
	"time"

	"github.com/google/uuid"
)

// ItineraryItem is one scheduled activity within a generated itinerary day.
type ItineraryItem struct {
	ID          uuid.UUID `db:"id"          json:"id"`
	TripID      uuid.UUID `db:"trip_id"     json:"trip_id"`
	DayNumber   int       `db:"day_number"  json:"day_number"`
	Date        time.Time `db:"date"        json:"date"`
	StartTime   *string   `db:"start_time"  json:"start_time,omitempty"`
	EndTime     *string   `db:"end_time"    json:"end_time,omitempty"`
	Title       string    `db:"title"       json:"title"`
	Description *string   `db:"description" json:"description,omitempty"`
	Location    *string   `db:"location"    json:"location,omitempty"`
	Type        string    `db:"type"        json:"type"`
	Cost        int       `db:"cost"        json:"cost"`
	OrderIndex  int       `db:"order_index" json:"order_index"`
	CreatedAt   time.Time `db:"created_at"  json:"created_at"`
}
