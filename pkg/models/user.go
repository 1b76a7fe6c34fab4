package models

import (
	"time"

	"github.com/google/uuid"
)

// User owns trips and API keys. Citizenship is the passport country used
// for visa checks, stored as entered ("United States", "Japan", ...).
type User struct {
	ID          uuid.UUID `db:"id"          json:"id"`
	Email       string    `db:"email"       json:"email"`
	Citizenship string    `db:"citizenship" json:"citizenship"`
	CreatedAt   time.Time `db:"created_at"  json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"  json:"updated_at"`
}
