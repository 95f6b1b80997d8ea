package repositories

import (
	"context"

	"github.com/hudsonargollo/agend4i-sub002/internal/models"

	"github.com/google/uuid"
)

type ServiceRepository interface {
	Create(ctx context.Context, service *models.Service) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Service, error)
	Update(ctx context.Context, service *models.Service) error
	Deactivate(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID) ([]*models.Service, error)
}

type serviceRepo struct {
	db DB
}

func NewServiceRepo(db DB) ServiceRepository {
	return &serviceRepo{db: db}
}

func (r *serviceRepo) Create(ctx context.Context, service *models.Service) error {
	query := `
		INSERT INTO services (id, tenant_id, name, duration_minutes, price, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, service.ID, service.TenantID, service.Name,
		service.DurationMinutes, service.Price, service.Active)
	return err
}

func (r *serviceRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Service, error) {
	service := &models.Service{}
	query := `
		SELECT id, tenant_id, name, duration_minutes, price, active, created_at, updated_at
		FROM services
		WHERE tenant_id = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, tenantID, id).Scan(&service.ID, &service.TenantID, &service.Name,
		&service.DurationMinutes, &service.Price, &service.Active, &service.CreatedAt, &service.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return service, nil
}

func (r *serviceRepo) Update(ctx context.Context, service *models.Service) error {
	query := `
		UPDATE services
		SET name = $1, duration_minutes = $2, price = $3, active = $4, updated_at = NOW()
		WHERE tenant_id = $5 AND id = $6
	`
	_, err := r.db.Exec(ctx, query, service.Name, service.DurationMinutes, service.Price,
		service.Active, service.TenantID, service.ID)
	return err
}

func (r *serviceRepo) Deactivate(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `UPDATE services SET active = FALSE, updated_at = NOW() WHERE tenant_id = $1 AND id = $2`
	_, err := r.db.Exec(ctx, query, tenantID, id)
	return err
}

func (r *serviceRepo) List(ctx context.Context, tenantID uuid.UUID) ([]*models.Service, error) {
	query := `
		SELECT id, tenant_id, name, duration_minutes, price, active, created_at, updated_at
		FROM services
		WHERE tenant_id = $1 AND active = TRUE
		ORDER BY name
	`
	rows, err := r.db.Query(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var services []*models.Service
	for rows.Next() {
		service := &models.Service{}
		if err := rows.Scan(&service.ID, &service.TenantID, &service.Name, &service.DurationMinutes,
			&service.Price, &service.Active, &service.CreatedAt, &service.UpdatedAt); err != nil {
			return nil, err
		}
		services = append(services, service)
	}
	return services, rows.Err()
}
