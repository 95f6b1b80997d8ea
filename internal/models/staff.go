package models

import (
	"time"

	"github.com/google/uuid"
)

// WorkingHours maps weekday names ("monday"..."sunday") to open/close
// pairs in "HH:MM" 24h format. Stored as JSONB.
type WorkingHours map[string]DayHours

type DayHours struct {
	Open  string `json:"open"`
	Close string `json:"close"`
}

type Staff struct {
	ID           uuid.UUID    `json:"id" db:"id"`
	TenantID     uuid.UUID    `json:"tenant_id" db:"tenant_id"`
	Name         string       `json:"name" db:"name"`
	WorkingHours WorkingHours `json:"working_hours" db:"working_hours"`
	Active       bool         `json:"active" db:"active"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at" db:"updated_at"`
}
