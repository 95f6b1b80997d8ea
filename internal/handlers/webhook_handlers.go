package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/hudsonargollo/agend4i-sub002/internal/common"
	"github.com/hudsonargollo/agend4i-sub002/internal/config"
	"github.com/hudsonargollo/agend4i-sub002/internal/services"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// WebhookHandlers receives payment-provider callbacks and hands them to
// the reconciliation engine.
type WebhookHandlers struct {
	reconciliation services.ReconciliationService
	plans          map[string]config.PlanConfig
	logger         *zap.Logger
}

func NewWebhookHandlers(reconciliation services.ReconciliationService, plans map[string]config.PlanConfig, logger *zap.Logger) *WebhookHandlers {
	return &WebhookHandlers{reconciliation: reconciliation, plans: plans, logger: logger}
}

// MercadoPagoWebhook handles POST /webhooks/mercadopago.
func (h *WebhookHandlers) MercadoPagoWebhook(c echo.Context) error {
	req := c.Request()
	if req.ContentLength > services.MaxWebhookBodyBytes {
		return common.SendError(c, http.StatusRequestEntityTooLarge, "payload_too_large", "Payload exceeds size limit")
	}

	body, err := io.ReadAll(http.MaxBytesReader(c.Response(), req.Body, services.MaxWebhookBodyBytes))
	if err != nil {
		return common.SendError(c, http.StatusRequestEntityTooLarge, "payload_too_large", "Payload exceeds size limit")
	}

	signature := req.Header.Get("x-signature")

	if err := h.reconciliation.Reconcile(req.Context(), body, signature); err != nil {
		switch {
		case errors.Is(err, services.ErrUnauthorized):
			h.logger.Warn("webhook signature rejected", zap.String("remote_ip", c.RealIP()))
			return common.SendError(c, http.StatusUnauthorized, "unauthorized", "Invalid webhook signature")
		case errors.Is(err, services.ErrPayloadTooLarge):
			return common.SendError(c, http.StatusRequestEntityTooLarge, "payload_too_large", "Payload exceeds size limit")
		case errors.Is(err, services.ErrValidation):
			return common.SendValidationError(c, err.Error())
		case errors.Is(err, services.ErrNotFound):
			return common.SendNotFoundError(c, "tenant")
		default:
			h.logger.Error("webhook processing failed", zap.Error(err))
			return common.SendServerError(c, "Webhook processing failed")
		}
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// MercadoPagoWebhookInfo handles GET /webhooks/mercadopago: a static
// health payload with the plan catalog.
func (h *WebhookHandlers) MercadoPagoWebhookInfo(c echo.Context) error {
	plans := make([]config.PlanConfig, 0, len(h.plans))
	for _, plan := range h.plans {
		plans = append(plans, plan)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status": "ok",
		"plans":  plans,
	})
}
