package repositories

import (
	"context"

	"github.com/hudsonargollo/agend4i-sub002/internal/models"

	"github.com/google/uuid"
)

type StaffRepository interface {
	Create(ctx context.Context, staff *models.Staff) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Staff, error)
	Update(ctx context.Context, staff *models.Staff) error
	Deactivate(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID) ([]*models.Staff, error)
}

type staffRepo struct {
	db DB
}

func NewStaffRepo(db DB) StaffRepository {
	return &staffRepo{db: db}
}

func (r *staffRepo) Create(ctx context.Context, staff *models.Staff) error {
	query := `
		INSERT INTO staff (id, tenant_id, name, working_hours, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, staff.ID, staff.TenantID, staff.Name, staff.WorkingHours, staff.Active)
	return err
}

func (r *staffRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Staff, error) {
	staff := &models.Staff{}
	query := `
		SELECT id, tenant_id, name, working_hours, active, created_at, updated_at
		FROM staff
		WHERE tenant_id = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, tenantID, id).Scan(&staff.ID, &staff.TenantID, &staff.Name,
		&staff.WorkingHours, &staff.Active, &staff.CreatedAt, &staff.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return staff, nil
}

func (r *staffRepo) Update(ctx context.Context, staff *models.Staff) error {
	query := `
		UPDATE staff
		SET name = $1, working_hours = $2, active = $3, updated_at = NOW()
		WHERE tenant_id = $4 AND id = $5
	`
	_, err := r.db.Exec(ctx, query, staff.Name, staff.WorkingHours, staff.Active, staff.TenantID, staff.ID)
	return err
}

func (r *staffRepo) Deactivate(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `UPDATE staff SET active = FALSE, updated_at = NOW() WHERE tenant_id = $1 AND id = $2`
	_, err := r.db.Exec(ctx, query, tenantID, id)
	return err
}

func (r *staffRepo) List(ctx context.Context, tenantID uuid.UUID) ([]*models.Staff, error) {
	query := `
		SELECT id, tenant_id, name, working_hours, active, created_at, updated_at
		FROM staff
		WHERE tenant_id = $1 AND active = TRUE
		ORDER BY name
	`
	rows, err := r.db.Query(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []*models.Staff
	for rows.Next() {
		staff := &models.Staff{}
		if err := rows.Scan(&staff.ID, &staff.TenantID, &staff.Name, &staff.WorkingHours,
			&staff.Active, &staff.CreatedAt, &staff.UpdatedAt); err != nil {
			return nil, err
		}
		members = append(members, staff)
	}
	return members, rows.Err()
}
