package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/hudsonargollo/agend4i-sub002/internal/models"
	"github.com/hudsonargollo/agend4i-sub002/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type BookingServiceTestSuite struct {
	suite.Suite
	bookings     *MockBookingRepository
	staff        *MockStaffRepository
	services     *MockServiceRepository
	customers    *MockCustomerRepository
	availability *MockAvailabilityService
	locker       *MockSlotLocker
	notifier     *MockNotificationService
	svc          BookingService

	tenant   *models.Tenant
	staffRow *models.Staff
	svcRow   *models.Service
	start    time.Time
}

func (suite *BookingServiceTestSuite) SetupTest() {
	suite.bookings = &MockBookingRepository{}
	suite.staff = &MockStaffRepository{}
	suite.services = &MockServiceRepository{}
	suite.customers = &MockCustomerRepository{}
	suite.availability = &MockAvailabilityService{}
	suite.locker = &MockSlotLocker{}
	suite.notifier = &MockNotificationService{}

	suite.svc = NewBookingService(
		suite.bookings, suite.staff, suite.services, suite.customers,
		suite.availability, suite.locker, suite.notifier, "BR", zap.NewNop(),
	)

	suite.tenant = &models.Tenant{ID: uuid.New(), Slug: "barber-joe", Name: "Barber Joe", Plan: models.PlanFree, Active: true}
	suite.staffRow = &models.Staff{ID: uuid.New(), TenantID: suite.tenant.ID, Name: "Joe", Active: true}
	suite.svcRow = &models.Service{ID: uuid.New(), TenantID: suite.tenant.ID, Name: "Haircut", DurationMinutes: 30, Price: 50, Active: true}
	suite.start = time.Now().UTC().Add(24 * time.Hour).Truncate(time.Minute)
}

func TestBookingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(BookingServiceTestSuite))
}

func (suite *BookingServiceTestSuite) request() BookingRequest {
	return BookingRequest{
		Tenant:        suite.tenant,
		StaffID:       suite.staffRow.ID,
		ServiceID:     suite.svcRow.ID,
		CustomerName:  "Maria",
		CustomerPhone: "+5511912345678",
		StartTime:     suite.start,
	}
}

func (suite *BookingServiceTestSuite) expectLookups() {
	customer := &models.Customer{ID: uuid.New(), TenantID: suite.tenant.ID, Name: "Maria", Phone: "5511912345678"}
	suite.staff.On("GetByID", mock.Anything, suite.tenant.ID, suite.staffRow.ID).Return(suite.staffRow, nil)
	suite.services.On("GetByID", mock.Anything, suite.tenant.ID, suite.svcRow.ID).Return(suite.svcRow, nil)
	suite.customers.On("GetOrCreate", mock.Anything, suite.tenant.ID, "Maria", "5511912345678").Return(customer, nil)
}

func (suite *BookingServiceTestSuite) TestAttemptBooking_Success() {
	end := suite.start.Add(30 * time.Minute)
	suite.expectLookups()
	suite.locker.On("AcquireSlotLock", mock.Anything, suite.tenant.ID, suite.staffRow.ID, suite.start, end, slotLockTTL).
		Return("token-1", true, nil).Once()
	suite.locker.On("ReleaseSlotLock", mock.Anything, suite.tenant.ID, suite.staffRow.ID, suite.start, end, "token-1").
		Return(nil).Once()
	suite.bookings.On("CreateIfAvailable", mock.Anything, mock.AnythingOfType("*models.Booking")).Return(nil).Once()
	suite.notifier.On("Dispatch", mock.Anything, suite.tenant, mock.AnythingOfType("*models.Booking"), mock.AnythingOfType("*models.Customer")).
		Return("", nil).Once()

	booking, err := suite.svc.AttemptBooking(context.Background(), suite.request())

	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), booking)
	assert.Equal(suite.T(), models.BookingPending, booking.Status)
	assert.Equal(suite.T(), suite.start, booking.StartTime)
	assert.Equal(suite.T(), end, booking.EndTime)
	assert.Equal(suite.T(), suite.svcRow.Price, booking.TotalPrice)
	suite.locker.AssertExpectations(suite.T())
	suite.bookings.AssertExpectations(suite.T())
}

func (suite *BookingServiceTestSuite) TestAttemptBooking_PastStartRejected() {
	req := suite.request()
	req.StartTime = time.Now().Add(-time.Hour)

	_, err := suite.svc.AttemptBooking(context.Background(), req)

	assert.ErrorIs(suite.T(), err, ErrValidation)
	suite.locker.AssertNotCalled(suite.T(), "AcquireSlotLock")
}

func (suite *BookingServiceTestSuite) TestAttemptBooking_UnknownStaff() {
	suite.staff.On("GetByID", mock.Anything, suite.tenant.ID, suite.staffRow.ID).Return(nil, pgx.ErrNoRows)

	_, err := suite.svc.AttemptBooking(context.Background(), suite.request())

	assert.ErrorIs(suite.T(), err, ErrValidation)
}

func (suite *BookingServiceTestSuite) TestAttemptBooking_InactiveStaff() {
	suite.staffRow.Active = false
	suite.staff.On("GetByID", mock.Anything, suite.tenant.ID, suite.staffRow.ID).Return(suite.staffRow, nil)

	_, err := suite.svc.AttemptBooking(context.Background(), suite.request())

	assert.ErrorIs(suite.T(), err, ErrValidation)
}

func (suite *BookingServiceTestSuite) TestAttemptBooking_InvalidPhone() {
	suite.staff.On("GetByID", mock.Anything, suite.tenant.ID, suite.staffRow.ID).Return(suite.staffRow, nil)
	suite.services.On("GetByID", mock.Anything, suite.tenant.ID, suite.svcRow.ID).Return(suite.svcRow, nil)

	req := suite.request()
	req.CustomerPhone = "not-a-phone"

	_, err := suite.svc.AttemptBooking(context.Background(), req)

	assert.ErrorIs(suite.T(), err, ErrValidation)
	suite.customers.AssertNotCalled(suite.T(), "GetOrCreate")
}

func (suite *BookingServiceTestSuite) TestAttemptBooking_LockContention() {
	suite.expectLookups()
	// The lock never frees within the bounded retries.
	suite.locker.On("AcquireSlotLock", mock.Anything, suite.tenant.ID, suite.staffRow.ID, mock.Anything, mock.Anything, slotLockTTL).
		Return("", false, nil).Times(slotLockRetries + 1)

	_, err := suite.svc.AttemptBooking(context.Background(), suite.request())

	assert.ErrorIs(suite.T(), err, ErrResourceLocked)
	suite.bookings.AssertNotCalled(suite.T(), "CreateIfAvailable")
	suite.locker.AssertExpectations(suite.T())
}

func (suite *BookingServiceTestSuite) TestAttemptBooking_ConflictReturnsSuggestions() {
	end := suite.start.Add(30 * time.Minute)
	alternatives := []TimeSlot{{Start: end, End: end.Add(30 * time.Minute)}}

	suite.expectLookups()
	suite.locker.On("AcquireSlotLock", mock.Anything, suite.tenant.ID, suite.staffRow.ID, suite.start, end, slotLockTTL).
		Return("token-1", true, nil).Once()
	suite.locker.On("ReleaseSlotLock", mock.Anything, suite.tenant.ID, suite.staffRow.ID, suite.start, end, "token-1").
		Return(nil).Once()
	suite.bookings.On("CreateIfAvailable", mock.Anything, mock.AnythingOfType("*models.Booking")).
		Return(repositories.ErrBookingOverlap).Once()
	suite.availability.On("SuggestAlternatives", mock.Anything, suite.tenant.ID, suite.staffRow.ID, suite.start, end).
		Return(alternatives, nil).Once()

	_, err := suite.svc.AttemptBooking(context.Background(), suite.request())

	assert.ErrorIs(suite.T(), err, ErrSlotUnavailable)
	var conflict *SlotConflictError
	assert.ErrorAs(suite.T(), err, &conflict)
	assert.Equal(suite.T(), suite.start, conflict.Conflict.Start)
	assert.Equal(suite.T(), alternatives, conflict.Suggestions)
	suite.notifier.AssertNotCalled(suite.T(), "Dispatch")
}

func (suite *BookingServiceTestSuite) TestAttemptBooking_NotificationFailureDoesNotFailBooking() {
	end := suite.start.Add(30 * time.Minute)
	suite.expectLookups()
	suite.locker.On("AcquireSlotLock", mock.Anything, suite.tenant.ID, suite.staffRow.ID, suite.start, end, slotLockTTL).
		Return("token-1", true, nil).Once()
	suite.locker.On("ReleaseSlotLock", mock.Anything, suite.tenant.ID, suite.staffRow.ID, suite.start, end, "token-1").
		Return(nil).Once()
	suite.bookings.On("CreateIfAvailable", mock.Anything, mock.AnythingOfType("*models.Booking")).Return(nil).Once()
	suite.notifier.On("Dispatch", mock.Anything, suite.tenant, mock.Anything, mock.Anything).
		Return("", fmt.Errorf("%w: channel down", ErrExternalService)).Once()

	booking, err := suite.svc.AttemptBooking(context.Background(), suite.request())

	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), booking)
}

func (suite *BookingServiceTestSuite) TestChangeStatus_ValidTransition() {
	bookingID := uuid.New()
	existing := &models.Booking{ID: bookingID, TenantID: suite.tenant.ID, Status: models.BookingPending}
	suite.bookings.On("GetByID", mock.Anything, suite.tenant.ID, bookingID).Return(existing, nil).Once()
	suite.bookings.On("UpdateStatus", mock.Anything, suite.tenant.ID, bookingID, models.BookingConfirmed).Return(nil).Once()

	err := suite.svc.ChangeStatus(context.Background(), suite.tenant.ID, bookingID, models.BookingConfirmed)

	assert.NoError(suite.T(), err)
	suite.bookings.AssertExpectations(suite.T())
}

func (suite *BookingServiceTestSuite) TestChangeStatus_InvalidTransition() {
	bookingID := uuid.New()
	existing := &models.Booking{ID: bookingID, TenantID: suite.tenant.ID, Status: models.BookingCompleted}
	suite.bookings.On("GetByID", mock.Anything, suite.tenant.ID, bookingID).Return(existing, nil).Once()

	err := suite.svc.ChangeStatus(context.Background(), suite.tenant.ID, bookingID, models.BookingConfirmed)

	assert.ErrorIs(suite.T(), err, ErrValidation)
	suite.bookings.AssertNotCalled(suite.T(), "UpdateStatus")
}

func (suite *BookingServiceTestSuite) TestChangeStatus_NotFound() {
	bookingID := uuid.New()
	suite.bookings.On("GetByID", mock.Anything, suite.tenant.ID, bookingID).Return(nil, pgx.ErrNoRows).Once()

	err := suite.svc.ChangeStatus(context.Background(), suite.tenant.ID, bookingID, models.BookingConfirmed)

	assert.ErrorIs(suite.T(), err, ErrNotFound)
}

// In-memory booking store and locker with real mutual exclusion, used
// to race concurrent admission attempts.

type memoryBookingStore struct {
	mu       sync.Mutex
	bookings []*models.Booking
}

func (s *memoryBookingStore) CreateIfAvailable(_ context.Context, booking *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.bookings {
		if b.TenantID == booking.TenantID && b.StaffID == booking.StaffID && b.BlocksSlot() &&
			Overlaps(booking.StartTime, booking.EndTime, b.StartTime, b.EndTime) {
			return repositories.ErrBookingOverlap
		}
	}
	s.bookings = append(s.bookings, booking)
	return nil
}

func (s *memoryBookingStore) CountOverlapping(_ context.Context, tenantID, staffID uuid.UUID, start, end time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, b := range s.bookings {
		if b.TenantID == tenantID && b.StaffID == staffID && b.BlocksSlot() && Overlaps(start, end, b.StartTime, b.EndTime) {
			count++
		}
	}
	return count, nil
}

func (s *memoryBookingStore) ListForStaffBetween(_ context.Context, tenantID, staffID uuid.UUID, from, to time.Time) ([]*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Booking
	for _, b := range s.bookings {
		if b.TenantID == tenantID && b.StaffID == staffID && Overlaps(from, to, b.StartTime, b.EndTime) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *memoryBookingStore) GetByID(_ context.Context, _, _ uuid.UUID) (*models.Booking, error) {
	return nil, pgx.ErrNoRows
}

func (s *memoryBookingStore) List(_ context.Context, _ uuid.UUID, _, _ int) ([]*models.Booking, error) {
	return nil, nil
}

func (s *memoryBookingStore) UpdateStatus(_ context.Context, _, _ uuid.UUID, _ string) error {
	return nil
}

func (s *memoryBookingStore) ExpireStalePending(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

func (s *memoryBookingStore) CompletePastConfirmed(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

type memoryLocker struct {
	mu    sync.Mutex
	locks map[string]string
}

func newMemoryLocker() *memoryLocker {
	return &memoryLocker{locks: make(map[string]string)}
}

func (l *memoryLocker) key(tenantID, staffID uuid.UUID, start, end time.Time) string {
	return fmt.Sprintf("%s:%s:%d-%d", tenantID, staffID, start.Unix(), end.Unix())
}

func (l *memoryLocker) AcquireSlotLock(_ context.Context, tenantID, staffID uuid.UUID, start, end time.Time, _ time.Duration) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := l.key(tenantID, staffID, start, end)
	if _, held := l.locks[key]; held {
		return "", false, nil
	}
	token := uuid.NewString()
	l.locks[key] = token
	return token, true, nil
}

func (l *memoryLocker) ReleaseSlotLock(_ context.Context, tenantID, staffID uuid.UUID, start, end time.Time, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := l.key(tenantID, staffID, start, end)
	if l.locks[key] == token {
		delete(l.locks, key)
	}
	return nil
}

func concurrentFixture(t *testing.T) (BookingService, *memoryBookingStore, *models.Tenant, *MockStaffRepository, *MockServiceRepository, *MockCustomerRepository) {
	t.Helper()
	store := &memoryBookingStore{}
	staff := &MockStaffRepository{}
	servicesRepo := &MockServiceRepository{}
	customers := &MockCustomerRepository{}
	tenant := &models.Tenant{ID: uuid.New(), Slug: "studio", Name: "Studio", Active: true}

	svc := NewBookingService(
		store, staff, servicesRepo, customers,
		NewAvailabilityService(store), newMemoryLocker(), nil, "BR", zap.NewNop(),
	)
	return svc, store, tenant, staff, servicesRepo, customers
}

func TestAttemptBooking_ConcurrentSingleWinner(t *testing.T) {
	svc, store, tenant, staff, servicesRepo, customers := concurrentFixture(t)

	staffRow := &models.Staff{ID: uuid.New(), TenantID: tenant.ID, Name: "Ana", Active: true}
	svcRow := &models.Service{ID: uuid.New(), TenantID: tenant.ID, Name: "Cut", DurationMinutes: 60, Price: 80, Active: true}
	staff.On("GetByID", mock.Anything, tenant.ID, staffRow.ID).Return(staffRow, nil)
	servicesRepo.On("GetByID", mock.Anything, tenant.ID, svcRow.ID).Return(svcRow, nil)
	customers.On("GetOrCreate", mock.Anything, tenant.ID, mock.Anything, mock.Anything).
		Return(&models.Customer{ID: uuid.New(), TenantID: tenant.ID}, nil)

	start := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Hour)
	const attempts = 8

	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.AttemptBooking(context.Background(), BookingRequest{
				Tenant:        tenant,
				StaffID:       staffRow.ID,
				ServiceID:     svcRow.ID,
				CustomerName:  fmt.Sprintf("Customer %d", i),
				CustomerPhone: "+5511912345678",
				StartTime:     start,
			})
			errs[i] = err
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
			continue
		}
		if !errors.Is(err, ErrSlotUnavailable) && !errors.Is(err, ErrResourceLocked) {
			t.Fatalf("unexpected admission error: %v", err)
		}
	}
	assert.Equal(t, 1, winners, "exactly one concurrent attempt must win the slot")
	assert.Len(t, store.bookings, 1)
}

func TestAttemptBooking_IndependentStaffDoNotConflict(t *testing.T) {
	svc, store, tenant, staff, servicesRepo, customers := concurrentFixture(t)

	svcRow := &models.Service{ID: uuid.New(), TenantID: tenant.ID, Name: "Cut", DurationMinutes: 60, Price: 80, Active: true}
	servicesRepo.On("GetByID", mock.Anything, tenant.ID, svcRow.ID).Return(svcRow, nil)
	customers.On("GetOrCreate", mock.Anything, tenant.ID, mock.Anything, mock.Anything).
		Return(&models.Customer{ID: uuid.New(), TenantID: tenant.ID}, nil)

	staffA := &models.Staff{ID: uuid.New(), TenantID: tenant.ID, Name: "Ana", Active: true}
	staffB := &models.Staff{ID: uuid.New(), TenantID: tenant.ID, Name: "Bia", Active: true}
	staff.On("GetByID", mock.Anything, tenant.ID, staffA.ID).Return(staffA, nil)
	staff.On("GetByID", mock.Anything, tenant.ID, staffB.ID).Return(staffB, nil)

	start := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Hour)
	for _, member := range []*models.Staff{staffA, staffB} {
		_, err := svc.AttemptBooking(context.Background(), BookingRequest{
			Tenant:        tenant,
			StaffID:       member.ID,
			ServiceID:     svcRow.ID,
			CustomerName:  "Maria",
			CustomerPhone: "+5511912345678",
			StartTime:     start,
		})
		assert.NoError(t, err, "same interval on different staff must both succeed")
	}
	assert.Len(t, store.bookings, 2)
}

func TestAttemptBooking_BackToBackSlotsBothAdmitted(t *testing.T) {
	svc, store, tenant, staff, servicesRepo, customers := concurrentFixture(t)

	staffRow := &models.Staff{ID: uuid.New(), TenantID: tenant.ID, Name: "Ana", Active: true}
	svcRow := &models.Service{ID: uuid.New(), TenantID: tenant.ID, Name: "Cut", DurationMinutes: 60, Price: 80, Active: true}
	staff.On("GetByID", mock.Anything, tenant.ID, staffRow.ID).Return(staffRow, nil)
	servicesRepo.On("GetByID", mock.Anything, tenant.ID, svcRow.ID).Return(svcRow, nil)
	customers.On("GetOrCreate", mock.Anything, tenant.ID, mock.Anything, mock.Anything).
		Return(&models.Customer{ID: uuid.New(), TenantID: tenant.ID}, nil)

	start := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Hour)
	for _, slotStart := range []time.Time{start, start.Add(time.Hour)} {
		_, err := svc.AttemptBooking(context.Background(), BookingRequest{
			Tenant:        tenant,
			StaffID:       staffRow.ID,
			ServiceID:     svcRow.ID,
			CustomerName:  "Maria",
			CustomerPhone: "+5511912345678",
			StartTime:     slotStart,
		})
		assert.NoError(t, err, "touching intervals must not conflict")
	}
	assert.Len(t, store.bookings, 2)
}
