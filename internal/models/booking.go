package models

import (
	"time"

	"github.com/google/uuid"
)

// Booking status values. Bookings are never hard-deleted; cancellation
// is a status transition.
const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
	BookingCompleted = "completed"
	BookingNoShow    = "no_show"
)

type Booking struct {
	ID         uuid.UUID `json:"id" db:"id"`
	TenantID   uuid.UUID `json:"tenant_id" db:"tenant_id"`
	StaffID    uuid.UUID `json:"staff_id" db:"staff_id"`
	ServiceID  uuid.UUID `json:"service_id" db:"service_id"`
	CustomerID uuid.UUID `json:"customer_id" db:"customer_id"`
	StartTime  time.Time `json:"start_time" db:"start_time"`
	EndTime    time.Time `json:"end_time" db:"end_time"`
	Status     string    `json:"status" db:"status"`
	TotalPrice float64   `json:"total_price" db:"total_price"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// BlocksSlot reports whether the booking's status still occupies its
// time slot for conflict purposes.
func (b *Booking) BlocksSlot() bool {
	return b.Status != BookingCancelled && b.Status != BookingNoShow
}

// ValidStatusTransition enforces the booking status lifecycle.
func ValidStatusTransition(from, to string) bool {
	switch from {
	case BookingPending:
		return to == BookingConfirmed || to == BookingCancelled
	case BookingConfirmed:
		return to == BookingCancelled || to == BookingCompleted || to == BookingNoShow
	default:
		return false
	}
}
