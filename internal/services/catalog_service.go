package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/hudsonargollo/agend4i-sub002/internal/models"
	"github.com/hudsonargollo/agend4i-sub002/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var hhmmPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// CatalogService manages the per-tenant staff roster and service menu
// shown on the public booking page.
type CatalogService interface {
	CreateStaff(ctx context.Context, staff *models.Staff) error
	GetStaff(ctx context.Context, tenantID, id uuid.UUID) (*models.Staff, error)
	UpdateStaff(ctx context.Context, staff *models.Staff) error
	DeactivateStaff(ctx context.Context, tenantID, id uuid.UUID) error
	ListStaff(ctx context.Context, tenantID uuid.UUID) ([]*models.Staff, error)

	CreateService(ctx context.Context, service *models.Service) error
	GetService(ctx context.Context, tenantID, id uuid.UUID) (*models.Service, error)
	UpdateService(ctx context.Context, service *models.Service) error
	DeactivateService(ctx context.Context, tenantID, id uuid.UUID) error
	ListServices(ctx context.Context, tenantID uuid.UUID) ([]*models.Service, error)
}

type catalogService struct {
	staff    repositories.StaffRepository
	services repositories.ServiceRepository
}

func NewCatalogService(staff repositories.StaffRepository, services repositories.ServiceRepository) CatalogService {
	return &catalogService{staff: staff, services: services}
}

func (s *catalogService) CreateStaff(ctx context.Context, staff *models.Staff) error {
	if staff.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if err := validateWorkingHours(staff.WorkingHours); err != nil {
		return err
	}
	if staff.ID == uuid.Nil {
		staff.ID = uuid.New()
	}
	staff.Active = true
	return s.staff.Create(ctx, staff)
}

func (s *catalogService) GetStaff(ctx context.Context, tenantID, id uuid.UUID) (*models.Staff, error) {
	staff, err := s.staff.GetByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return staff, nil
}

func (s *catalogService) UpdateStaff(ctx context.Context, staff *models.Staff) error {
	if staff.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if err := validateWorkingHours(staff.WorkingHours); err != nil {
		return err
	}
	if _, err := s.GetStaff(ctx, staff.TenantID, staff.ID); err != nil {
		return err
	}
	return s.staff.Update(ctx, staff)
}

func (s *catalogService) DeactivateStaff(ctx context.Context, tenantID, id uuid.UUID) error {
	if _, err := s.GetStaff(ctx, tenantID, id); err != nil {
		return err
	}
	return s.staff.Deactivate(ctx, tenantID, id)
}

func (s *catalogService) ListStaff(ctx context.Context, tenantID uuid.UUID) ([]*models.Staff, error) {
	return s.staff.List(ctx, tenantID)
}

func (s *catalogService) CreateService(ctx context.Context, service *models.Service) error {
	if err := validateService(service); err != nil {
		return err
	}
	if service.ID == uuid.Nil {
		service.ID = uuid.New()
	}
	service.Active = true
	return s.services.Create(ctx, service)
}

func (s *catalogService) GetService(ctx context.Context, tenantID, id uuid.UUID) (*models.Service, error) {
	service, err := s.services.GetByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return service, nil
}

func (s *catalogService) UpdateService(ctx context.Context, service *models.Service) error {
	if err := validateService(service); err != nil {
		return err
	}
	if _, err := s.GetService(ctx, service.TenantID, service.ID); err != nil {
		return err
	}
	return s.services.Update(ctx, service)
}

func (s *catalogService) DeactivateService(ctx context.Context, tenantID, id uuid.UUID) error {
	if _, err := s.GetService(ctx, tenantID, id); err != nil {
		return err
	}
	return s.services.Deactivate(ctx, tenantID, id)
}

func (s *catalogService) ListServices(ctx context.Context, tenantID uuid.UUID) ([]*models.Service, error) {
	return s.services.List(ctx, tenantID)
}

func validateService(service *models.Service) error {
	if service.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if service.DurationMinutes <= 0 {
		return fmt.Errorf("%w: duration must be positive", ErrValidation)
	}
	if service.Price < 0 {
		return fmt.Errorf("%w: price cannot be negative", ErrValidation)
	}
	return nil
}

var weekdays = map[string]bool{
	"monday": true, "tuesday": true, "wednesday": true, "thursday": true,
	"friday": true, "saturday": true, "sunday": true,
}

func validateWorkingHours(hours models.WorkingHours) error {
	for day, window := range hours {
		if !weekdays[day] {
			return fmt.Errorf("%w: unknown weekday %q", ErrValidation, day)
		}
		if !hhmmPattern.MatchString(window.Open) || !hhmmPattern.MatchString(window.Close) {
			return fmt.Errorf("%w: hours for %s must be HH:MM", ErrValidation, day)
		}
		if window.Open >= window.Close {
			return fmt.Errorf("%w: %s opens after it closes", ErrValidation, day)
		}
	}
	return nil
}
