package services

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"
)

const MaxProfileNameLength = 80

var ErrWeakPassword = errors.New("weak password")

// ValidatePasswordStrength requires 8+ characters with upper, lower and digit.
func ValidatePasswordStrength(password string) error {
	if utf8.RuneCountInString(password) < 8 {
		return ErrWeakPassword
	}
	var hasUpper, hasLower, hasDigit bool
	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsDigit(char):
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return ErrWeakPassword
	}
	return nil
}

func TrimProfileName(raw string) string {
	name := strings.Join(strings.Fields(raw), " ")
	if utf8.RuneCountInString(name) <= MaxProfileNameLength {
		return name
	}
	return string([]rune(name)[:MaxProfileNameLength])
}
