package handlers

import (
	"errors"
	"net/http"

	"github.com/hudsonargollo/agend4i-sub002/internal/common"
	"github.com/hudsonargollo/agend4i-sub002/internal/models"
	"github.com/hudsonargollo/agend4i-sub002/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// CatalogHandlers manages staff and services for the admin dashboard
// and exposes the read-only lists the public booking page needs.
type CatalogHandlers struct {
	catalog services.CatalogService
	tenants services.TenantService
	logger  *zap.Logger
}

func NewCatalogHandlers(catalog services.CatalogService, tenants services.TenantService, logger *zap.Logger) *CatalogHandlers {
	return &CatalogHandlers{catalog: catalog, tenants: tenants, logger: logger}
}

type staffRequest struct {
	Name         string              `json:"name"`
	WorkingHours models.WorkingHours `json:"working_hours"`
}

// CreateStaff handles POST /v1/staff (admin).
func (h *CatalogHandlers) CreateStaff(c echo.Context) error {
	tenantID, ok := common.GetTenantIDFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing tenant context")
	}

	var req staffRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "Invalid request body")
	}

	staff := &models.Staff{
		TenantID:     tenantID,
		Name:         req.Name,
		WorkingHours: req.WorkingHours,
	}
	if err := h.catalog.CreateStaff(c.Request().Context(), staff); err != nil {
		return h.catalogError(c, err, "staff")
	}
	return c.JSON(http.StatusCreated, staff)
}

// UpdateStaff handles PUT /v1/staff/:id (admin).
func (h *CatalogHandlers) UpdateStaff(c echo.Context) error {
	tenantID, ok := common.GetTenantIDFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing tenant context")
	}

	staffID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, err.Error())
	}

	var req staffRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "Invalid request body")
	}

	staff := &models.Staff{
		ID:           staffID,
		TenantID:     tenantID,
		Name:         req.Name,
		WorkingHours: req.WorkingHours,
		Active:       true,
	}
	if err := h.catalog.UpdateStaff(c.Request().Context(), staff); err != nil {
		return h.catalogError(c, err, "staff")
	}
	return c.JSON(http.StatusOK, staff)
}

// DeactivateStaff handles DELETE /v1/staff/:id (admin).
func (h *CatalogHandlers) DeactivateStaff(c echo.Context) error {
	tenantID, ok := common.GetTenantIDFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing tenant context")
	}

	staffID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, err.Error())
	}

	if err := h.catalog.DeactivateStaff(c.Request().Context(), tenantID, staffID); err != nil {
		return h.catalogError(c, err, "staff")
	}
	return c.NoContent(http.StatusNoContent)
}

// ListStaff handles GET /v1/staff (admin).
func (h *CatalogHandlers) ListStaff(c echo.Context) error {
	tenantID, ok := common.GetTenantIDFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing tenant context")
	}
	return h.listStaffFor(c, tenantID)
}

// PublicListStaff handles GET /v1/public/:slug/staff.
func (h *CatalogHandlers) PublicListStaff(c echo.Context) error {
	tenant, err := h.tenants.ResolveSlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return common.SendNotFoundError(c, "tenant")
		}
		return common.SendServerError(c, "Failed to resolve tenant")
	}
	return h.listStaffFor(c, tenant.ID)
}

func (h *CatalogHandlers) listStaffFor(c echo.Context, tenantID uuid.UUID) error {
	staff, err := h.catalog.ListStaff(c.Request().Context(), tenantID)
	if err != nil {
		h.logger.Error("staff list failed", zap.Error(err))
		return common.SendServerError(c, "Failed to list staff")
	}
	return c.JSON(http.StatusOK, staff)
}

type serviceRequest struct {
	Name            string  `json:"name"`
	DurationMinutes int     `json:"duration_minutes"`
	Price           float64 `json:"price"`
}

// CreateService handles POST /v1/services (admin).
func (h *CatalogHandlers) CreateService(c echo.Context) error {
	tenantID, ok := common.GetTenantIDFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing tenant context")
	}

	var req serviceRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "Invalid request body")
	}

	service := &models.Service{
		TenantID:        tenantID,
		Name:            req.Name,
		DurationMinutes: req.DurationMinutes,
		Price:           req.Price,
	}
	if err := h.catalog.CreateService(c.Request().Context(), service); err != nil {
		return h.catalogError(c, err, "service")
	}
	return c.JSON(http.StatusCreated, service)
}

// UpdateService handles PUT /v1/services/:id (admin).
func (h *CatalogHandlers) UpdateService(c echo.Context) error {
	tenantID, ok := common.GetTenantIDFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing tenant context")
	}

	serviceID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, err.Error())
	}

	var req serviceRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "Invalid request body")
	}

	service := &models.Service{
		ID:              serviceID,
		TenantID:        tenantID,
		Name:            req.Name,
		DurationMinutes: req.DurationMinutes,
		Price:           req.Price,
		Active:          true,
	}
	if err := h.catalog.UpdateService(c.Request().Context(), service); err != nil {
		return h.catalogError(c, err, "service")
	}
	return c.JSON(http.StatusOK, service)
}

// DeactivateService handles DELETE /v1/services/:id (admin).
func (h *CatalogHandlers) DeactivateService(c echo.Context) error {
	tenantID, ok := common.GetTenantIDFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing tenant context")
	}

	serviceID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, err.Error())
	}

	if err := h.catalog.DeactivateService(c.Request().Context(), tenantID, serviceID); err != nil {
		return h.catalogError(c, err, "service")
	}
	return c.NoContent(http.StatusNoContent)
}

// ListServices handles GET /v1/services (admin).
func (h *CatalogHandlers) ListServices(c echo.Context) error {
	tenantID, ok := common.GetTenantIDFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing tenant context")
	}
	return h.listServicesFor(c, tenantID)
}

// PublicListServices handles GET /v1/public/:slug/services.
func (h *CatalogHandlers) PublicListServices(c echo.Context) error {
	tenant, err := h.tenants.ResolveSlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return common.SendNotFoundError(c, "tenant")
		}
		return common.SendServerError(c, "Failed to resolve tenant")
	}
	return h.listServicesFor(c, tenant.ID)
}

func (h *CatalogHandlers) listServicesFor(c echo.Context, tenantID uuid.UUID) error {
	list, err := h.catalog.ListServices(c.Request().Context(), tenantID)
	if err != nil {
		h.logger.Error("service list failed", zap.Error(err))
		return common.SendServerError(c, "Failed to list services")
	}
	return c.JSON(http.StatusOK, list)
}

func (h *CatalogHandlers) catalogError(c echo.Context, err error, resource string) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return common.SendNotFoundError(c, resource)
	case errors.Is(err, services.ErrValidation):
		return common.SendValidationError(c, err.Error())
	default:
		h.logger.Error("catalog operation failed", zap.String("resource", resource), zap.Error(err))
		return common.SendServerError(c, "Operation failed")
	}
}
