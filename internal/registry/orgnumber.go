package registry

import (
	"fmt"
	"strings"
)

// OrgNumberLength is the length of a Norwegian organization number.
const OrgNumberLength = 9

// CleanOrgNumber removes formatting characters from an org number.
func CleanOrgNumber(orgNumber string) string {
	cleaned := strings.ReplaceAll(orgNumber, " ", "")
	cleaned = strings.ReplaceAll(cleaned, "-", "")
	cleaned = strings.ReplaceAll(cleaned, ".", "")
	return strings.TrimSpace(cleaned)
}

// FormatOrgNumber formats an org number as "123 456 789".
// Input that is not 9 digits after cleaning is returned unchanged.
func FormatOrgNumber(orgNumber string) string {
	cleaned := CleanOrgNumber(orgNumber)
	if len(cleaned) != OrgNumberLength || !isAllDigits(cleaned) {
		return orgNumber
	}
	return cleaned[:3] + " " + cleaned[3:6] + " " + cleaned[6:]
}

// ValidateOrgNumber checks that a cleaned organization number is 9 digits.
// The check digit is not enforced: the registry is the authority on which
// numbers exist, and a bad check digit simply yields a not-found upstream.
func ValidateOrgNumber(orgNumber string) error {
	cleaned := CleanOrgNumber(orgNumber)
	if cleaned == "" {
		return fmt.Errorf("organization number is required")
	}
	if len(cleaned) != OrgNumberLength || !isAllDigits(cleaned) {
		return fmt.Errorf("invalid organization number %q: must be exactly 9 digits", orgNumber)
	}
	return nil
}

// CheckDigitValid reports whether the org number carries a valid MOD11 check digit.
func CheckDigitValid(orgNumber string) bool {
	cleaned := CleanOrgNumber(orgNumber)
	if len(cleaned) != OrgNumberLength || !isAllDigits(cleaned) {
		return false
	}

	// MOD11 weights for positions 1-8
	weights := []int{3, 2, 7, 6, 5, 4, 3, 2}
	sum := 0
	for i, w := range weights {
		sum += int(cleaned[i]-'0') * w
	}

	remainder := sum % 11
	expected := 0
	if remainder != 0 {
		expected = 11 - remainder
	}

	// A computed check digit of 10 means no valid number exists for this prefix
	if expected == 10 {
		return false
	}

	return expected == int(cleaned[8]-'0')
}

// isAllDigits checks if a string contains only digits.
func isAllDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}
