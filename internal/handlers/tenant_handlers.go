package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/hudsonargollo/agend4i-sub002/internal/common"
	"github.com/hudsonargollo/agend4i-sub002/internal/services"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type TenantHandlers struct {
	tenants services.TenantService
	logger  *zap.Logger
}

func NewTenantHandlers(tenants services.TenantService, logger *zap.Logger) *TenantHandlers {
	return &TenantHandlers{tenants: tenants, logger: logger}
}

// CreateTenant handles POST /v1/tenants (onboarding).
func (h *TenantHandlers) CreateTenant(c echo.Context) error {
	var req services.CreateTenantRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "Invalid request body")
	}

	tenant, err := h.tenants.Create(c.Request().Context(), &req)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			return common.SendValidationError(c, err.Error())
		}
		h.logger.Error("tenant creation failed", zap.Error(err))
		return common.SendServerError(c, "Failed to create tenant")
	}
	return c.JSON(http.StatusCreated, tenant)
}

// GetProfile handles GET /v1/tenant (admin).
func (h *TenantHandlers) GetProfile(c echo.Context) error {
	tenantID, ok := common.GetTenantIDFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing tenant context")
	}

	tenant, err := h.tenants.GetByID(c.Request().Context(), tenantID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return common.SendNotFoundError(c, "tenant")
		}
		h.logger.Error("tenant lookup failed", zap.Error(err))
		return common.SendServerError(c, "Failed to load tenant")
	}
	return c.JSON(http.StatusOK, tenant)
}

type updateTenantProfileRequest struct {
	Name             *string `json:"name"`
	WhatsAppEnabled  *bool   `json:"whatsapp_enabled"`
	WhatsAppEndpoint *string `json:"whatsapp_endpoint"`
	WhatsAppAPIKey   *string `json:"whatsapp_api_key"`
	WhatsAppInstance *string `json:"whatsapp_instance"`
}

// UpdateProfile handles PUT /v1/tenant (admin). Plan and subscription
// fields are not writable here; only webhook reconciliation moves them.
func (h *TenantHandlers) UpdateProfile(c echo.Context) error {
	tenantID, ok := common.GetTenantIDFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing tenant context")
	}

	var req updateTenantProfileRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "Invalid request body")
	}

	tenant, err := h.tenants.GetByID(c.Request().Context(), tenantID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return common.SendNotFoundError(c, "tenant")
		}
		return common.SendServerError(c, "Failed to load tenant")
	}

	if req.Name != nil {
		if *req.Name == "" {
			return common.SendValidationError(c, "name cannot be empty")
		}
		tenant.Name = *req.Name
	}
	if req.WhatsAppEnabled != nil {
		tenant.WhatsAppEnabled = *req.WhatsAppEnabled
	}
	if req.WhatsAppEndpoint != nil {
		tenant.WhatsAppEndpoint = *req.WhatsAppEndpoint
	}
	if req.WhatsAppAPIKey != nil {
		tenant.WhatsAppAPIKey = *req.WhatsAppAPIKey
	}
	if req.WhatsAppInstance != nil {
		tenant.WhatsAppInstance = *req.WhatsAppInstance
	}

	if err := h.tenants.UpdateProfile(c.Request().Context(), tenant); err != nil {
		h.logger.Error("tenant update failed", zap.Error(err))
		return common.SendServerError(c, "Failed to update tenant")
	}
	return c.JSON(http.StatusOK, tenant)
}

// DeactivateTenant handles DELETE /v1/tenant (admin).
func (h *TenantHandlers) DeactivateTenant(c echo.Context) error {
	tenantID, ok := common.GetTenantIDFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing tenant context")
	}

	if err := h.tenants.Deactivate(c.Request().Context(), tenantID); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return common.SendNotFoundError(c, "tenant")
		}
		h.logger.Error("tenant deactivation failed", zap.Error(err))
		return common.SendServerError(c, "Failed to deactivate tenant")
	}
	return c.NoContent(http.StatusNoContent)
}

func parsePositive(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, strconv.ErrRange
	}
	return n, nil
}
