package services

import (
	"context"
	"fmt"
	"time"

	"github.com/hudsonargollo/agend4i-sub002/internal/models"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// NotificationService gates and sends WhatsApp booking confirmations
// through a tenant-configured Evolution API endpoint. Dispatch is
// best-effort and at-most-once: a failed send is reported, never
// retried here and never allowed to fail the booking.
type NotificationService interface {
	// ShouldNotify is the gate: paid plan, active subscription and a
	// fully configured channel. A false answer is a normal business
	// outcome, not an error.
	ShouldNotify(tenant *models.Tenant) bool
	// Dispatch sends the confirmation when the gate allows it and
	// returns the provider message id. A suppressed dispatch returns
	// ("", nil).
	Dispatch(ctx context.Context, tenant *models.Tenant, booking *models.Booking, customer *models.Customer) (string, error)
}

type notificationService struct {
	client *resty.Client
	logger *zap.Logger
}

func NewNotificationService(logger *zap.Logger) NotificationService {
	client := resty.New().
		SetTimeout(15 * time.Second).
		SetHeader("Content-Type", "application/json")

	return &notificationService{client: client, logger: logger}
}

func (s *notificationService) ShouldNotify(tenant *models.Tenant) bool {
	if tenant == nil {
		return false
	}
	if !tenant.IsPaidPlan() {
		return false
	}
	if tenant.SubscriptionStatus != models.SubscriptionActive {
		return false
	}
	return tenant.WhatsAppEnabled &&
		tenant.WhatsAppEndpoint != "" &&
		tenant.WhatsAppAPIKey != "" &&
		tenant.WhatsAppInstance != ""
}

type sendTextRequest struct {
	Number string `json:"number"`
	Text   string `json:"text"`
}

type sendTextResponse struct {
	Key struct {
		ID string `json:"id"`
	} `json:"key"`
}

func (s *notificationService) Dispatch(ctx context.Context, tenant *models.Tenant, booking *models.Booking, customer *models.Customer) (string, error) {
	if !s.ShouldNotify(tenant) {
		return "", nil
	}

	body := sendTextRequest{
		Number: customer.Phone,
		Text:   formatBookingMessage(tenant, booking, customer),
	}

	var result sendTextResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("apikey", tenant.WhatsAppAPIKey).
		SetBody(body).
		SetResult(&result).
		Post(fmt.Sprintf("%s/message/sendText/%s", tenant.WhatsAppEndpoint, tenant.WhatsAppInstance))
	if err != nil {
		s.logger.Warn("whatsapp send failed",
			zap.String("tenant_id", tenant.ID.String()),
			zap.String("booking_id", booking.ID.String()),
			zap.Error(err),
		)
		return "", fmt.Errorf("%w: %v", ErrExternalService, err)
	}
	if resp.IsError() {
		s.logger.Warn("whatsapp send rejected",
			zap.String("tenant_id", tenant.ID.String()),
			zap.Int("status_code", resp.StatusCode()),
		)
		return "", fmt.Errorf("%w: whatsapp channel status %d", ErrExternalService, resp.StatusCode())
	}

	return result.Key.ID, nil
}

func formatBookingMessage(tenant *models.Tenant, booking *models.Booking, customer *models.Customer) string {
	when := booking.StartTime.Format("02/01/2006 15:04")
	return fmt.Sprintf("Olá %s! Seu agendamento em %s foi recebido para %s. Até lá!",
		customer.Name, tenant.Name, when)
}
