package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hudsonargollo/agend4i-sub002/internal/models"
	"github.com/hudsonargollo/agend4i-sub002/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// SlotLocker is the admission right for a (tenant, staff, interval)
// key: cross-process mutual exclusion with a TTL so a crashed holder
// cannot wedge a slot. caching.CacheService implements it on Redis.
type SlotLocker interface {
	AcquireSlotLock(ctx context.Context, tenantID, staffID uuid.UUID, start, end time.Time, ttl time.Duration) (token string, ok bool, err error)
	ReleaseSlotLock(ctx context.Context, tenantID, staffID uuid.UUID, start, end time.Time, token string) error
}

// SlotConflictError reports the window that blocked an admission
// attempt together with ranked alternative slots. errors.Is matches it
// against ErrSlotUnavailable.
type SlotConflictError struct {
	Conflict    TimeSlot
	Suggestions []TimeSlot
}

func (e *SlotConflictError) Error() string {
	return fmt.Sprintf("slot %s-%s unavailable (%d alternatives)",
		e.Conflict.Start.Format(time.RFC3339), e.Conflict.End.Format(time.RFC3339), len(e.Suggestions))
}

func (e *SlotConflictError) Unwrap() error { return ErrSlotUnavailable }

// BookingRequest is one admission attempt on the public booking path.
type BookingRequest struct {
	Tenant        *models.Tenant
	StaffID       uuid.UUID
	ServiceID     uuid.UUID
	CustomerName  string
	CustomerPhone string
	StartTime     time.Time
}

type BookingService interface {
	// AttemptBooking admits at most one booking per overlapping
	// (staff, interval): it validates the request, takes the slot
	// admission right, re-checks availability against live state and
	// persists the booking as one atomic unit. Conflicts come back as
	// *SlotConflictError (ErrSlotUnavailable), contention as
	// ErrResourceLocked.
	AttemptBooking(ctx context.Context, req BookingRequest) (*models.Booking, error)
	Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Booking, error)
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Booking, error)
	ChangeStatus(ctx context.Context, tenantID, id uuid.UUID, status string) error
}

type bookingService struct {
	bookings     repositories.BookingRepository
	staff        repositories.StaffRepository
	services     repositories.ServiceRepository
	customers    repositories.CustomerRepository
	availability AvailabilityService
	locker       SlotLocker
	notifier     NotificationService
	phoneRegion  string
	logger       *zap.Logger
}

// Admission lock tuning. The lock only needs to outlive one
// transaction; acquisition waits briefly, never queues.
const (
	slotLockTTL        = 10 * time.Second
	slotLockRetries    = 2
	slotLockRetryDelay = 100 * time.Millisecond
)

func NewBookingService(
	bookings repositories.BookingRepository,
	staff repositories.StaffRepository,
	services repositories.ServiceRepository,
	customers repositories.CustomerRepository,
	availability AvailabilityService,
	locker SlotLocker,
	notifier NotificationService,
	phoneRegion string,
	logger *zap.Logger,
) BookingService {
	return &bookingService{
		bookings:     bookings,
		staff:        staff,
		services:     services,
		customers:    customers,
		availability: availability,
		locker:       locker,
		notifier:     notifier,
		phoneRegion:  phoneRegion,
		logger:       logger,
	}
}

func (s *bookingService) AttemptBooking(ctx context.Context, req BookingRequest) (*models.Booking, error) {
	if req.Tenant == nil {
		return nil, ErrValidation
	}
	if req.StartTime.IsZero() || req.StartTime.Before(time.Now()) {
		return nil, fmt.Errorf("%w: start time must be in the future", ErrValidation)
	}

	// Staff and service lookups are tenant-scoped, so a cross-tenant
	// reference surfaces as no rows.
	staff, err := s.staff.GetByID(ctx, req.Tenant.ID, req.StaffID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: unknown staff", ErrValidation)
		}
		return nil, err
	}
	if !staff.Active {
		return nil, fmt.Errorf("%w: staff inactive", ErrValidation)
	}

	service, err := s.services.GetByID(ctx, req.Tenant.ID, req.ServiceID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: unknown service", ErrValidation)
		}
		return nil, err
	}
	if !service.Active || service.DurationMinutes <= 0 {
		return nil, fmt.Errorf("%w: service unavailable", ErrValidation)
	}

	phone, err := NormalizePhone(req.CustomerPhone, s.phoneRegion)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	start := req.StartTime.UTC()
	end := start.Add(time.Duration(service.DurationMinutes) * time.Minute)

	customer, err := s.customers.GetOrCreate(ctx, req.Tenant.ID, req.CustomerName, phone)
	if err != nil {
		return nil, err
	}

	token, err := s.acquireAdmission(ctx, req.Tenant.ID, req.StaffID, start, end)
	if err != nil {
		return nil, err
	}
	defer func() {
		if relErr := s.locker.ReleaseSlotLock(context.WithoutCancel(ctx), req.Tenant.ID, req.StaffID, start, end, token); relErr != nil {
			s.logger.Warn("slot lock release failed", zap.Error(relErr))
		}
	}()

	booking := &models.Booking{
		ID:         uuid.New(),
		TenantID:   req.Tenant.ID,
		StaffID:    req.StaffID,
		ServiceID:  service.ID,
		CustomerID: customer.ID,
		StartTime:  start,
		EndTime:    end,
		Status:     models.BookingPending,
		TotalPrice: service.Price,
	}

	// Availability is re-checked inside the insert transaction: the
	// oracle answer a UI saw earlier may be stale by now.
	if err := s.bookings.CreateIfAvailable(ctx, booking); err != nil {
		if errors.Is(err, repositories.ErrBookingOverlap) {
			return nil, s.conflictError(ctx, req.Tenant.ID, req.StaffID, start, end)
		}
		return nil, err
	}

	s.logger.Info("booking admitted",
		zap.String("tenant_id", req.Tenant.ID.String()),
		zap.String("booking_id", booking.ID.String()),
		zap.Time("start", start),
		zap.Time("end", end),
	)

	// Best-effort confirmation message; a failed send never fails the
	// booking that triggered it.
	if s.notifier != nil {
		if _, err := s.notifier.Dispatch(ctx, req.Tenant, booking, customer); err != nil {
			s.logger.Warn("booking notification failed",
				zap.String("booking_id", booking.ID.String()), zap.Error(err))
		}
	}

	return booking, nil
}

func (s *bookingService) acquireAdmission(ctx context.Context, tenantID, staffID uuid.UUID, start, end time.Time) (string, error) {
	for attempt := 0; ; attempt++ {
		token, ok, err := s.locker.AcquireSlotLock(ctx, tenantID, staffID, start, end, slotLockTTL)
		if err != nil {
			return "", err
		}
		if ok {
			return token, nil
		}
		if attempt >= slotLockRetries {
			return "", ErrResourceLocked
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(slotLockRetryDelay):
		}
	}
}

func (s *bookingService) conflictError(ctx context.Context, tenantID, staffID uuid.UUID, start, end time.Time) error {
	conflict := &SlotConflictError{Conflict: TimeSlot{Start: start, End: end}}
	suggestions, err := s.availability.SuggestAlternatives(ctx, tenantID, staffID, start, end)
	if err != nil {
		// Suggestions are advisory; the conflict still stands.
		s.logger.Warn("alternative slot lookup failed", zap.Error(err))
		return conflict
	}
	conflict.Suggestions = suggestions
	return conflict
}

func (s *bookingService) Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return booking, nil
}

func (s *bookingService) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Booking, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.bookings.List(ctx, tenantID, limit, offset)
}

func (s *bookingService) ChangeStatus(ctx context.Context, tenantID, id uuid.UUID, status string) error {
	booking, err := s.bookings.GetByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	if !models.ValidStatusTransition(booking.Status, status) {
		return fmt.Errorf("%w: cannot move booking from %s to %s", ErrValidation, booking.Status, status)
	}
	return s.bookings.UpdateStatus(ctx, tenantID, id, status)
}
