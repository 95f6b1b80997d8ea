package services

import "errors"

// Error taxonomy shared by the booking and reconciliation paths.
// Handlers map these onto HTTP statuses; callers test with errors.Is.
var (
	// ErrValidation covers malformed input, unknown staff/service/tenant
	// and cross-tenant references. Never retried.
	ErrValidation = errors.New("validation_error")

	// ErrSlotUnavailable is the legitimate business conflict: the
	// requested interval overlaps an active booking.
	ErrSlotUnavailable = errors.New("slot_unavailable")

	// ErrResourceLocked signals transient admission contention; callers
	// may retry with backoff.
	ErrResourceLocked = errors.New("resource_locked")

	// ErrUnauthorized is a webhook signature failure. Rejected outright.
	ErrUnauthorized = errors.New("unauthorized")

	ErrNotFound = errors.New("not_found")

	// ErrPayloadTooLarge rejects oversized webhook bodies before any
	// parsing happens.
	ErrPayloadTooLarge = errors.New("payload_too_large")

	// ErrExternalService is a downstream provider failure (payment or
	// notification channel).
	ErrExternalService = errors.New("external_service_error")
)
