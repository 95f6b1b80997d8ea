package repositories

import (
	"context"

	"github.com/hudsonargollo/agend4i-sub002/internal/models"

	"github.com/google/uuid"
)

type CustomerRepository interface {
	// GetOrCreate returns the customer identified by (tenantID, phone),
	// inserting a new row when no match exists.
	GetOrCreate(ctx context.Context, tenantID uuid.UUID, name, phone string) (*models.Customer, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Customer, error)
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Customer, error)
}

type customerRepo struct {
	db DB
}

func NewCustomerRepo(db DB) CustomerRepository {
	return &customerRepo{db: db}
}

func (r *customerRepo) GetOrCreate(ctx context.Context, tenantID uuid.UUID, name, phone string) (*models.Customer, error) {
	customer := &models.Customer{}
	// ON CONFLICT keeps the original name; the phone is the identity.
	query := `
		INSERT INTO customers (id, tenant_id, name, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (tenant_id, phone) DO UPDATE SET updated_at = NOW()
		RETURNING id, tenant_id, name, phone, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, uuid.New(), tenantID, name, phone).Scan(&customer.ID, &customer.TenantID,
		&customer.Name, &customer.Phone, &customer.CreatedAt, &customer.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return customer, nil
}

func (r *customerRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Customer, error) {
	customer := &models.Customer{}
	query := `
		SELECT id, tenant_id, name, phone, created_at, updated_at
		FROM customers
		WHERE tenant_id = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, tenantID, id).Scan(&customer.ID, &customer.TenantID,
		&customer.Name, &customer.Phone, &customer.CreatedAt, &customer.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return customer, nil
}

func (r *customerRepo) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Customer, error) {
	query := `
		SELECT id, tenant_id, name, phone, created_at, updated_at
		FROM customers
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []*models.Customer
	for rows.Next() {
		customer := &models.Customer{}
		if err := rows.Scan(&customer.ID, &customer.TenantID, &customer.Name, &customer.Phone,
			&customer.CreatedAt, &customer.UpdatedAt); err != nil {
			return nil, err
		}
		customers = append(customers, customer)
	}
	return customers, rows.Err()
}
