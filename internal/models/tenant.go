package models

import (
	"time"

	"github.com/google/uuid"
)

// Plan identifiers for tenant subscriptions
const (
	PlanFree       = "free"
	PlanPro        = "pro"
	PlanEnterprise = "enterprise"
)

// Subscription status values, mutated only by webhook reconciliation
const (
	SubscriptionActive    = "active"
	SubscriptionPastDue   = "past_due"
	SubscriptionCancelled = "cancelled"
	SubscriptionInactive  = "inactive"
)

type Tenant struct {
	ID                 uuid.UUID `json:"id" db:"id"`
	Slug               string    `json:"slug" db:"slug"`
	Name               string    `json:"name" db:"name"`
	Plan               string    `json:"plan" db:"plan"`
	SubscriptionStatus string    `json:"subscription_status" db:"subscription_status"`
	MPPayerID          *string   `json:"mp_payer_id" db:"mp_payer_id"`
	MPSubscriptionID   *string   `json:"mp_subscription_id" db:"mp_subscription_id"`
	WhatsAppEnabled    bool      `json:"whatsapp_enabled" db:"whatsapp_enabled"`
	WhatsAppEndpoint   string    `json:"whatsapp_endpoint" db:"whatsapp_endpoint"`
	WhatsAppAPIKey     string    `json:"-" db:"whatsapp_api_key"`
	WhatsAppInstance   string    `json:"whatsapp_instance" db:"whatsapp_instance"`
	Active             bool      `json:"active" db:"active"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time `json:"updated_at" db:"updated_at"`
}

// IsPaidPlan reports whether the tenant is on a plan that unlocks
// outbound notifications.
func (t *Tenant) IsPaidPlan() bool {
	return t.Plan == PlanPro || t.Plan == PlanEnterprise
}
