package services

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// PaymentDetails is the authoritative view of a payment fetched from
// Mercado Pago. Webhook payloads are only trusted to locate the
// payment; everything that drives a state transition comes from here.
type PaymentDetails struct {
	ID                string
	Status            string
	ExternalReference string
	PayerID           string
	SubscriptionID    string
}

type MercadoPagoService interface {
	GetPayment(ctx context.Context, paymentID string) (*PaymentDetails, error)
}

type mercadoPagoService struct {
	client *resty.Client
	logger *zap.Logger
}

// NewMercadoPagoService builds the payment API client. Retries are
// bounded with exponential backoff and only fire for transport errors
// and 5xx/429/408 responses; 4xx answers are returned immediately.
func NewMercadoPagoService(baseURL, accessToken string, logger *zap.Logger) MercadoPagoService {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(4 * time.Second).
		SetAuthToken(accessToken).
		SetHeader("Accept", "application/json").
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			code := r.StatusCode()
			return code >= 500 || code == http.StatusTooManyRequests || code == http.StatusRequestTimeout
		})

	return &mercadoPagoService{client: client, logger: logger}
}

type paymentResponse struct {
	ID                int64  `json:"id"`
	Status            string `json:"status"`
	ExternalReference string `json:"external_reference"`
	Payer             struct {
		ID string `json:"id"`
	} `json:"payer"`
	Metadata struct {
		PreapprovalID string `json:"preapproval_id"`
	} `json:"metadata"`
}

func (s *mercadoPagoService) GetPayment(ctx context.Context, paymentID string) (*PaymentDetails, error) {
	var payment paymentResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetResult(&payment).
		SetPathParam("id", paymentID).
		Get("/v1/payments/{id}")
	if err != nil {
		s.logger.Error("payment fetch failed", zap.String("payment_id", paymentID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrExternalService, err)
	}

	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return nil, fmt.Errorf("%w: payment %s", ErrNotFound, paymentID)
	case resp.IsError():
		s.logger.Error("payment fetch returned error status",
			zap.String("payment_id", paymentID),
			zap.Int("status_code", resp.StatusCode()),
		)
		return nil, fmt.Errorf("%w: payment API status %d", ErrExternalService, resp.StatusCode())
	}

	return &PaymentDetails{
		ID:                strconv.FormatInt(payment.ID, 10),
		Status:            payment.Status,
		ExternalReference: payment.ExternalReference,
		PayerID:           payment.Payer.ID,
		SubscriptionID:    payment.Metadata.PreapprovalID,
	}, nil
}
