package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/hudsonargollo/agend4i-sub002/internal/caching"
	"github.com/hudsonargollo/agend4i-sub002/internal/models"
	"github.com/hudsonargollo/agend4i-sub002/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// reservedSlugs are system path names a tenant can never claim.
var reservedSlugs = map[string]bool{
	"www": true, "api": true, "app": true, "admin": true,
	"login": true, "signup": true, "dashboard": true, "onboarding": true,
	"pricing": true, "webhooks": true, "health": true, "static": true,
}

var slugPattern = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?$`)

const tenantCacheTTL = 5 * time.Minute

type TenantService interface {
	Create(ctx context.Context, req *CreateTenantRequest) (*models.Tenant, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	// ResolveSlug returns the active tenant behind a public booking
	// page slug, served from cache when possible.
	ResolveSlug(ctx context.Context, slug string) (*models.Tenant, error)
	UpdateProfile(ctx context.Context, tenant *models.Tenant) error
	Deactivate(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*models.Tenant, error)
}

type tenantService struct {
	tenantRepo repositories.TenantRepository
	cache      caching.CacheService
	logger     *zap.Logger
}

func NewTenantService(tenantRepo repositories.TenantRepository, cache caching.CacheService, logger *zap.Logger) TenantService {
	return &tenantService{tenantRepo: tenantRepo, cache: cache, logger: logger}
}

type CreateTenantRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// ValidateSlug enforces the slug shape and the reserved-name set.
func ValidateSlug(slug string) error {
	if !slugPattern.MatchString(slug) {
		return fmt.Errorf("%w: slug must be lowercase letters, digits and hyphens", ErrValidation)
	}
	if reservedSlugs[slug] {
		return fmt.Errorf("%w: slug %q is reserved", ErrValidation, slug)
	}
	return nil
}

func (s *tenantService) Create(ctx context.Context, req *CreateTenantRequest) (*models.Tenant, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if err := ValidateSlug(req.Slug); err != nil {
		return nil, err
	}

	tenant := &models.Tenant{
		ID:                 uuid.New(),
		Slug:               req.Slug,
		Name:               req.Name,
		Plan:               models.PlanFree,
		SubscriptionStatus: models.SubscriptionInactive,
		Active:             true,
	}

	if err := s.tenantRepo.Create(ctx, tenant); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, fmt.Errorf("%w: slug %q already taken", ErrValidation, req.Slug)
		}
		return nil, err
	}
	return tenant, nil
}

func (s *tenantService) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	tenant, err := s.tenantRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return tenant, nil
}

func (s *tenantService) ResolveSlug(ctx context.Context, slug string) (*models.Tenant, error) {
	if s.cache != nil {
		cached, err := s.cache.GetTenantBySlug(ctx, slug)
		if err != nil {
			s.logger.Warn("tenant cache read failed", zap.String("slug", slug), zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	tenant, err := s.tenantRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetTenantBySlug(ctx, tenant, tenantCacheTTL); err != nil {
			s.logger.Warn("tenant cache write failed", zap.String("slug", slug), zap.Error(err))
		}
	}
	return tenant, nil
}

func (s *tenantService) UpdateProfile(ctx context.Context, tenant *models.Tenant) error {
	if err := s.tenantRepo.Update(ctx, tenant); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.InvalidateTenant(ctx, tenant.Slug); err != nil {
			s.logger.Warn("tenant cache invalidation failed", zap.String("slug", tenant.Slug), zap.Error(err))
		}
	}
	return nil
}

func (s *tenantService) Deactivate(ctx context.Context, id uuid.UUID) error {
	tenant, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.tenantRepo.Deactivate(ctx, id); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.InvalidateTenant(ctx, tenant.Slug); err != nil {
			s.logger.Warn("tenant cache invalidation failed", zap.String("slug", tenant.Slug), zap.Error(err))
		}
	}
	return nil
}

func (s *tenantService) List(ctx context.Context, limit, offset int) ([]*models.Tenant, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.tenantRepo.List(ctx, limit, offset)
}
