package utils

import (
	"fmt"
	"regexp"
)

var caseNumberRegex = regexp.MustCompile(`^[A-Z]{2,4}-\d{4}-\d{3,6}$`)

// ValidateCaseNumber validates a case file number (e.g. "SA-2026-00123")
func ValidateCaseNumber(number string) error {
	if !caseNumberRegex.MatchString(number) {
		return fmt.Errorf("invalid case number format: %s", number)
	}
	return nil
}

// ValidateAmountCents validates a benefit amount in cents
func ValidateAmountCents(amountCents int64) error {
	if amountCents <= 0 {
		return fmt.Errorf("amount must be positive: %d", amountCents)
	}

	// Hard ceiling; amounts above this need a manual grant outside the system
	if amountCents > 10_000_000 {
		return fmt.Errorf("amount exceeds maximum limit: %d", amountCents)
	}

	return nil
}

// SanitizeString removes potentially harmful characters
func SanitizeString(s string) string {
	// Remove control characters
	sanitized := regexp.MustCompile(`[\x00-\x1f\x7f]`).ReplaceAllString(s, "")
	return sanitized
}
