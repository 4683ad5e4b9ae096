package utils

import (
	"fmt"
	"regexp"
	"strings"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidateEmail validates an email address
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format: %s", email)
	}
	return nil
}

// ValidatePassword enforces the minimum password length for account
// registration and invite completion
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	return nil
}

// SanitizeString removes control characters from user supplied text
func SanitizeString(s string) string {
	sanitized := regexp.MustCompile(`[\x00-\x1f\x7f]`).ReplaceAllString(s, "")
	return strings.TrimSpace(sanitized)
}
