// utils/validation.go
package utils

import (
	"errors"
	"html"
	"regexp"
	"strings"
	"unicode"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	// Local 10-digit mobile numbers, first digit 6-9.
	phoneRegex    = regexp.MustCompile(`^[6-9][0-9]{9}$`)
	nonDigitRegex = regexp.MustCompile(`[^\d]`)
	scriptRegex   = regexp.MustCompile(`<script[^>]*>.*?</script>`)
)

// SanitizeInput sanitizes user input to prevent XSS and injection attacks
func SanitizeInput(input string) string {
	// Trim spaces
	input = strings.TrimSpace(input)

	// HTML escape
	input = html.EscapeString(input)

	// Remove control characters
	input = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, input)

	// Remove any potential script tags
	input = scriptRegex.ReplaceAllString(input, "")

	return input
}

// SanitizeEmail sanitizes and validates an email address
func SanitizeEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	email = strings.ToLower(email)

	if !emailRegex.MatchString(email) {
		return "", errors.New("invalid email format")
	}

	return email, nil
}

// SanitizePhone normalizes a phone number to the local 10-digit mobile
// format and validates it. Country-code prefixes ("+91", "91") and
// separators are stripped before validation.
func SanitizePhone(phone string) (string, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return "", errors.New("phone number is required")
	}

	phone = nonDigitRegex.ReplaceAllString(phone, "")
	if len(phone) == 12 && strings.HasPrefix(phone, "91") {
		phone = phone[2:]
	}

	if !phoneRegex.MatchString(phone) {
		return "", errors.New("invalid phone number format")
	}

	return phone, nil
}

// IsValidPhone reports whether phone is already in the local 10-digit
// mobile format.
func IsValidPhone(phone string) bool {
	return phoneRegex.MatchString(phone)
}
