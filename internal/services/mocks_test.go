package services

import (
	"context"
	"time"

	"github.com/hudsonargollo/agend4i-sub002/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockTenantRepository struct {
	mock.Mock
}

func (m *MockTenantRepository) Create(ctx context.Context, tenant *models.Tenant) error {
	args := m.Called(ctx, tenant)
	return args.Error(0)
}

func (m *MockTenantRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tenant), args.Error(1)
}

func (m *MockTenantRepository) GetBySlug(ctx context.Context, slug string) (*models.Tenant, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tenant), args.Error(1)
}

func (m *MockTenantRepository) Update(ctx context.Context, tenant *models.Tenant) error {
	args := m.Called(ctx, tenant)
	return args.Error(0)
}

func (m *MockTenantRepository) UpdateSubscription(ctx context.Context, id uuid.UUID, plan, status string, payerID, subscriptionID *string) error {
	args := m.Called(ctx, id, plan, status, payerID, subscriptionID)
	return args.Error(0)
}

func (m *MockTenantRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTenantRepository) List(ctx context.Context, limit, offset int) ([]*models.Tenant, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*models.Tenant), args.Error(1)
}

type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) CreateIfAvailable(ctx context.Context, booking *models.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *MockBookingRepository) CountOverlapping(ctx context.Context, tenantID, staffID uuid.UUID, start, end time.Time) (int64, error) {
	args := m.Called(ctx, tenantID, staffID, start, end)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBookingRepository) ListForStaffBetween(ctx context.Context, tenantID, staffID uuid.UUID, from, to time.Time) ([]*models.Booking, error) {
	args := m.Called(ctx, tenantID, staffID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}

func (m *MockBookingRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Booking, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockBookingRepository) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Booking, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	return args.Get(0).([]*models.Booking), args.Error(1)
}

func (m *MockBookingRepository) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status string) error {
	args := m.Called(ctx, tenantID, id, status)
	return args.Error(0)
}

func (m *MockBookingRepository) ExpireStalePending(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBookingRepository) CompletePastConfirmed(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

type MockStaffRepository struct {
	mock.Mock
}

func (m *MockStaffRepository) Create(ctx context.Context, staff *models.Staff) error {
	args := m.Called(ctx, staff)
	return args.Error(0)
}

func (m *MockStaffRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Staff, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Staff), args.Error(1)
}

func (m *MockStaffRepository) Update(ctx context.Context, staff *models.Staff) error {
	args := m.Called(ctx, staff)
	return args.Error(0)
}

func (m *MockStaffRepository) Deactivate(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockStaffRepository) List(ctx context.Context, tenantID uuid.UUID) ([]*models.Staff, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).([]*models.Staff), args.Error(1)
}

type MockServiceRepository struct {
	mock.Mock
}

func (m *MockServiceRepository) Create(ctx context.Context, service *models.Service) error {
	args := m.Called(ctx, service)
	return args.Error(0)
}

func (m *MockServiceRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Service, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Service), args.Error(1)
}

func (m *MockServiceRepository) Update(ctx context.Context, service *models.Service) error {
	args := m.Called(ctx, service)
	return args.Error(0)
}

func (m *MockServiceRepository) Deactivate(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockServiceRepository) List(ctx context.Context, tenantID uuid.UUID) ([]*models.Service, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).([]*models.Service), args.Error(1)
}

type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) GetOrCreate(ctx context.Context, tenantID uuid.UUID, name, phone string) (*models.Customer, error) {
	args := m.Called(ctx, tenantID, name, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Customer), args.Error(1)
}

func (m *MockCustomerRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Customer, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Customer), args.Error(1)
}

func (m *MockCustomerRepository) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Customer, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	return args.Get(0).([]*models.Customer), args.Error(1)
}

type MockMercadoPagoService struct {
	mock.Mock
}

func (m *MockMercadoPagoService) GetPayment(ctx context.Context, paymentID string) (*PaymentDetails, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*PaymentDetails), args.Error(1)
}

type MockEventArchiver struct {
	mock.Mock
}

func (m *MockEventArchiver) Archive(ctx context.Context, eventID string, payload []byte) error {
	args := m.Called(ctx, eventID, payload)
	return args.Error(0)
}

type MockAvailabilityService struct {
	mock.Mock
}

func (m *MockAvailabilityService) IsAvailable(ctx context.Context, tenantID, staffID uuid.UUID, start, end time.Time) (bool, error) {
	args := m.Called(ctx, tenantID, staffID, start, end)
	return args.Bool(0), args.Error(1)
}

func (m *MockAvailabilityService) BusySlots(ctx context.Context, tenantID, staffID uuid.UUID, from, to time.Time) ([]TimeSlot, error) {
	args := m.Called(ctx, tenantID, staffID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]TimeSlot), args.Error(1)
}

func (m *MockAvailabilityService) SuggestAlternatives(ctx context.Context, tenantID, staffID uuid.UUID, start, end time.Time) ([]TimeSlot, error) {
	args := m.Called(ctx, tenantID, staffID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]TimeSlot), args.Error(1)
}

type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) ShouldNotify(tenant *models.Tenant) bool {
	args := m.Called(tenant)
	return args.Bool(0)
}

func (m *MockNotificationService) Dispatch(ctx context.Context, tenant *models.Tenant, booking *models.Booking, customer *models.Customer) (string, error) {
	args := m.Called(ctx, tenant, booking, customer)
	return args.String(0), args.Error(1)
}

type MockSlotLocker struct {
	mock.Mock
}

func (m *MockSlotLocker) AcquireSlotLock(ctx context.Context, tenantID, staffID uuid.UUID, start, end time.Time, ttl time.Duration) (string, bool, error) {
	args := m.Called(ctx, tenantID, staffID, start, end, ttl)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockSlotLocker) ReleaseSlotLock(ctx context.Context, tenantID, staffID uuid.UUID, start, end time.Time, token string) error {
	args := m.Called(ctx, tenantID, staffID, start, end, token)
	return args.Error(0)
}
