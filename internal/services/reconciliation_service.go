package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/hudsonargollo/agend4i-sub002/internal/models"
	"github.com/hudsonargollo/agend4i-sub002/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// MaxWebhookBodyBytes bounds accepted webhook payloads. Oversized
// bodies are rejected before parsing.
const MaxWebhookBodyBytes = 64 * 1024

// externalRefPattern is the only accepted shape for the external
// reference attached at checkout: tenant_{uuid}_{plan}. Anything else
// is rejected, never guessed at.
var externalRefPattern = regexp.MustCompile(
	`^tenant_([0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12})_(pro|enterprise)$`)

// externalIDPattern sanitizes payer/subscription identifiers supplied
// by the payment provider before they are stored.
var externalIDPattern = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

// EventArchiver stores verified raw webhook payloads for audit/replay.
// Archival is best effort.
type EventArchiver interface {
	Archive(ctx context.Context, eventID string, payload []byte) error
}

// webhookEnvelope is the provider event wrapper. Only the event type
// and the payment id are read from it; payment state is re-fetched.
type webhookEnvelope struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

// ReconciliationService consumes payment webhook events and drives the
// tenant subscription state machine. Reconcile is idempotent: it keys
// on the external reference and always writes the latest authoritative
// payment status, so replays and out-of-order deliveries converge.
type ReconciliationService interface {
	Reconcile(ctx context.Context, rawBody []byte, signature string) error
}

type reconciliationService struct {
	secret   []byte
	tenants  repositories.TenantRepository
	payments MercadoPagoService
	archiver EventArchiver
	logger   *zap.Logger
}

// NewReconciliationService wires the engine. An empty webhook secret is
// a configuration error: there is no unverified path.
func NewReconciliationService(
	secret string,
	tenants repositories.TenantRepository,
	payments MercadoPagoService,
	archiver EventArchiver,
	logger *zap.Logger,
) (ReconciliationService, error) {
	if secret == "" {
		return nil, fmt.Errorf("webhook secret is required")
	}
	return &reconciliationService{
		secret:   []byte(secret),
		tenants:  tenants,
		payments: payments,
		archiver: archiver,
		logger:   logger,
	}, nil
}

func (s *reconciliationService) Reconcile(ctx context.Context, rawBody []byte, signature string) error {
	if !s.verifySignature(rawBody, signature) {
		return ErrUnauthorized
	}

	if len(rawBody) > MaxWebhookBodyBytes {
		return ErrPayloadTooLarge
	}

	var event webhookEnvelope
	if err := json.Unmarshal(rawBody, &event); err != nil {
		return fmt.Errorf("%w: malformed event body", ErrValidation)
	}

	switch event.Type {
	case "payment":
		return s.reconcilePayment(ctx, event, rawBody)
	default:
		// Unhandled event types are acknowledged and dropped.
		s.logger.Debug("ignoring webhook event", zap.String("type", event.Type), zap.String("event_id", event.ID))
		return nil
	}
}

// verifySignature checks the hex HMAC-SHA256 of the raw body in
// constant time.
func (s *reconciliationService) verifySignature(body []byte, signature string) bool {
	if signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, s.secret)
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(signature), []byte(expected))
}

func (s *reconciliationService) reconcilePayment(ctx context.Context, event webhookEnvelope, rawBody []byte) error {
	if event.Data.ID == "" {
		return fmt.Errorf("%w: event carries no payment id", ErrValidation)
	}

	// The event only locates the payment; status comes from the
	// authoritative fetch.
	payment, err := s.payments.GetPayment(ctx, event.Data.ID)
	if err != nil {
		return err
	}

	tenantID, plan, err := parseExternalReference(payment.ExternalReference)
	if err != nil {
		return err
	}

	tenant, err := s.tenants.GetByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: tenant %s", ErrNotFound, tenantID)
		}
		return err
	}

	payerID, err := sanitizeExternalID(payment.PayerID)
	if err != nil {
		return err
	}
	subscriptionID, err := sanitizeExternalID(payment.SubscriptionID)
	if err != nil {
		return err
	}

	status := subscriptionStatusFor(payment.Status)
	if err := s.tenants.UpdateSubscription(ctx, tenant.ID, plan, status, payerID, subscriptionID); err != nil {
		return err
	}

	s.logger.Info("subscription reconciled",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("plan", plan),
		zap.String("payment_status", payment.Status),
		zap.String("subscription_status", status),
	)

	if s.archiver != nil {
		if err := s.archiver.Archive(ctx, event.ID, rawBody); err != nil {
			s.logger.Warn("webhook archive failed", zap.String("event_id", event.ID), zap.Error(err))
		}
	}
	return nil
}

func parseExternalReference(ref string) (uuid.UUID, string, error) {
	match := externalRefPattern.FindStringSubmatch(ref)
	if match == nil {
		return uuid.Nil, "", fmt.Errorf("%w: external reference %q", ErrValidation, ref)
	}
	tenantID, err := uuid.Parse(match[1])
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("%w: external reference %q", ErrValidation, ref)
	}
	return tenantID, match[2], nil
}

// sanitizeExternalID validates a provider-supplied identifier before it
// is stored. Empty values are stored as NULL rather than rejected.
func sanitizeExternalID(id string) (*string, error) {
	if id == "" {
		return nil, nil
	}
	if !externalIDPattern.MatchString(id) {
		return nil, fmt.Errorf("%w: external identifier %q", ErrValidation, id)
	}
	return &id, nil
}

// subscriptionStatusFor maps an authoritative payment status onto the
// tenant subscription state machine. Unknown statuses deactivate.
func subscriptionStatusFor(paymentStatus string) string {
	switch paymentStatus {
	case "approved":
		return models.SubscriptionActive
	case "pending", "in_process":
		return models.SubscriptionPastDue
	case "cancelled", "rejected":
		return models.SubscriptionCancelled
	default:
		return models.SubscriptionInactive
	}
}
