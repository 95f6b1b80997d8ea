package repositories

import (
	"context"

	"github.com/hudsonargollo/agend4i-sub002/internal/models"

	"github.com/google/uuid"
)

type TenantRepository interface {
	Create(ctx context.Context, tenant *models.Tenant) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	GetBySlug(ctx context.Context, slug string) (*models.Tenant, error)
	Update(ctx context.Context, tenant *models.Tenant) error
	// UpdateSubscription writes plan, status and the external payment
	// identifiers as a single row update.
	UpdateSubscription(ctx context.Context, id uuid.UUID, plan, status string, payerID, subscriptionID *string) error
	Deactivate(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*models.Tenant, error)
}

type tenantRepo struct {
	db DB
}

func NewTenantRepo(db DB) TenantRepository {
	return &tenantRepo{db: db}
}

const tenantColumns = `id, slug, name, plan, subscription_status, mp_payer_id, mp_subscription_id,
		whatsapp_enabled, whatsapp_endpoint, whatsapp_api_key, whatsapp_instance, active, created_at, updated_at`

func scanTenant(row interface{ Scan(dest ...any) error }) (*models.Tenant, error) {
	tenant := &models.Tenant{}
	err := row.Scan(&tenant.ID, &tenant.Slug, &tenant.Name, &tenant.Plan, &tenant.SubscriptionStatus,
		&tenant.MPPayerID, &tenant.MPSubscriptionID, &tenant.WhatsAppEnabled, &tenant.WhatsAppEndpoint,
		&tenant.WhatsAppAPIKey, &tenant.WhatsAppInstance, &tenant.Active, &tenant.CreatedAt, &tenant.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return tenant, nil
}

func (r *tenantRepo) Create(ctx context.Context, tenant *models.Tenant) error {
	query := `
		INSERT INTO tenants (id, slug, name, plan, subscription_status, whatsapp_enabled, whatsapp_endpoint, whatsapp_api_key, whatsapp_instance, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, tenant.ID, tenant.Slug, tenant.Name, tenant.Plan, tenant.SubscriptionStatus,
		tenant.WhatsAppEnabled, tenant.WhatsAppEndpoint, tenant.WhatsAppAPIKey, tenant.WhatsAppInstance, tenant.Active)
	return err
}

func (r *tenantRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	query := `
		SELECT ` + tenantColumns + `
		FROM tenants
		WHERE id = $1
	`
	return scanTenant(r.db.QueryRow(ctx, query, id))
}

func (r *tenantRepo) GetBySlug(ctx context.Context, slug string) (*models.Tenant, error) {
	query := `
		SELECT ` + tenantColumns + `
		FROM tenants
		WHERE slug = $1 AND active = TRUE
	`
	return scanTenant(r.db.QueryRow(ctx, query, slug))
}

func (r *tenantRepo) Update(ctx context.Context, tenant *models.Tenant) error {
	query := `
		UPDATE tenants
		SET name = $1, whatsapp_enabled = $2, whatsapp_endpoint = $3, whatsapp_api_key = $4, whatsapp_instance = $5, updated_at = NOW()
		WHERE id = $6
	`
	_, err := r.db.Exec(ctx, query, tenant.Name, tenant.WhatsAppEnabled, tenant.WhatsAppEndpoint,
		tenant.WhatsAppAPIKey, tenant.WhatsAppInstance, tenant.ID)
	return err
}

func (r *tenantRepo) UpdateSubscription(ctx context.Context, id uuid.UUID, plan, status string, payerID, subscriptionID *string) error {
	query := `
		UPDATE tenants
		SET plan = $1, subscription_status = $2, mp_payer_id = $3, mp_subscription_id = $4, updated_at = NOW()
		WHERE id = $5
	`
	_, err := r.db.Exec(ctx, query, plan, status, payerID, subscriptionID, id)
	return err
}

func (r *tenantRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE tenants SET active = FALSE, updated_at = NOW() WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *tenantRepo) List(ctx context.Context, limit, offset int) ([]*models.Tenant, error) {
	query := `
		SELECT ` + tenantColumns + `
		FROM tenants
		WHERE active = TRUE
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tenants []*models.Tenant
	for rows.Next() {
		tenant, err := scanTenant(rows)
		if err != nil {
			return nil, err
		}
		tenants = append(tenants, tenant)
	}
	return tenants, rows.Err()
}
