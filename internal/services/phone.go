package services

import (
	"fmt"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// NormalizePhone parses a customer-supplied phone number and returns it
// as E.164 digits without the leading plus, the format the WhatsApp
// channel expects. defaultRegion is the ISO 3166-1 alpha-2 country used
// for numbers entered without a country code; it is an explicit
// parameter, never inferred from the number itself.
func NormalizePhone(raw, defaultRegion string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("phone is required")
	}

	num, err := phonenumbers.Parse(trimmed, defaultRegion)
	if err != nil {
		return "", fmt.Errorf("invalid phone %q: %w", raw, err)
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", fmt.Errorf("invalid phone %q for region %s", raw, defaultRegion)
	}

	return strings.TrimPrefix(phonenumbers.Format(num, phonenumbers.E164), "+"), nil
}
