package services

import (
	"context"
	"sort"
	"time"

	"github.com/hudsonargollo/agend4i-sub002/internal/models"
	"github.com/hudsonargollo/agend4i-sub002/internal/repositories"

	"github.com/google/uuid"
)

// TimeSlot is a half-open interval [Start, End).
type TimeSlot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Overlaps reports whether [aStart,aEnd) and [bStart,bEnd) intersect.
// Touching endpoints do not overlap, so back-to-back bookings are fine.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// AvailabilityService is the read-side oracle: it answers whether a
// proposed interval is free for a staff member and suggests nearby free
// slots when it is not.
type AvailabilityService interface {
	IsAvailable(ctx context.Context, tenantID, staffID uuid.UUID, start, end time.Time) (bool, error)
	BusySlots(ctx context.Context, tenantID, staffID uuid.UUID, from, to time.Time) ([]TimeSlot, error)
	SuggestAlternatives(ctx context.Context, tenantID, staffID uuid.UUID, start, end time.Time) ([]TimeSlot, error)
}

type availabilityService struct {
	bookings repositories.BookingRepository
}

func NewAvailabilityService(bookings repositories.BookingRepository) AvailabilityService {
	return &availabilityService{bookings: bookings}
}

func (s *availabilityService) IsAvailable(ctx context.Context, tenantID, staffID uuid.UUID, start, end time.Time) (bool, error) {
	if !start.Before(end) {
		return false, ErrValidation
	}

	count, err := s.bookings.CountOverlapping(ctx, tenantID, staffID, start, end)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

func (s *availabilityService) BusySlots(ctx context.Context, tenantID, staffID uuid.UUID, from, to time.Time) ([]TimeSlot, error) {
	if !from.Before(to) {
		return nil, ErrValidation
	}

	bookings, err := s.bookings.ListForStaffBetween(ctx, tenantID, staffID, from, to)
	if err != nil {
		return nil, err
	}

	slots := make([]TimeSlot, 0, len(bookings))
	for _, b := range bookings {
		slots = append(slots, TimeSlot{Start: b.StartTime, End: b.EndTime})
	}
	return slots, nil
}

// maxSuggestions caps the alternatives returned on a conflict.
const maxSuggestions = 3

// suggestionSpan controls how far (in slot durations) around the
// requested interval candidates are generated.
const suggestionSpan = 8

func (s *availabilityService) SuggestAlternatives(ctx context.Context, tenantID, staffID uuid.UUID, start, end time.Time) ([]TimeSlot, error) {
	duration := end.Sub(start)
	if duration <= 0 {
		return nil, ErrValidation
	}

	windowFrom := start.Add(-time.Duration(suggestionSpan) * duration)
	windowTo := end.Add(time.Duration(suggestionSpan) * duration)
	busy, err := s.bookings.ListForStaffBetween(ctx, tenantID, staffID, windowFrom, windowTo)
	if err != nil {
		return nil, err
	}

	return rankAlternatives(start, duration, busy, time.Now()), nil
}

// rankAlternatives generates candidate slots at whole-duration offsets
// around the requested start, drops past or conflicting candidates and
// returns the nearest maxSuggestions ordered by distance to the request.
func rankAlternatives(requested time.Time, duration time.Duration, busy []*models.Booking, now time.Time) []TimeSlot {
	var candidates []TimeSlot
	for offset := 1; offset <= suggestionSpan; offset++ {
		delta := time.Duration(offset) * duration
		for _, candStart := range []time.Time{requested.Add(delta), requested.Add(-delta)} {
			if candStart.Before(now) {
				continue
			}
			candEnd := candStart.Add(duration)
			if slotConflicts(candStart, candEnd, busy) {
				continue
			}
			candidates = append(candidates, TimeSlot{Start: candStart, End: candEnd})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		di := absDuration(candidates[i].Start.Sub(requested))
		dj := absDuration(candidates[j].Start.Sub(requested))
		if di == dj {
			return candidates[i].Start.Before(candidates[j].Start)
		}
		return di < dj
	})

	if len(candidates) > maxSuggestions {
		candidates = candidates[:maxSuggestions]
	}
	return candidates
}

func slotConflicts(start, end time.Time, busy []*models.Booking) bool {
	for _, b := range busy {
		if !b.BlocksSlot() {
			continue
		}
		if Overlaps(start, end, b.StartTime, b.EndTime) {
			return true
		}
	}
	return false
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
