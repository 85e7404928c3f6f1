package services

import (
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// phoneFormatting are the characters allowed around the digits of a typed
// phone number.
const phoneFormatting = " -().+"

// ValidEmail reports whether s has the shape of an email address.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// NormalizePhone turns a 10-digit number, with optional formatting, into
// E.164 with the +1 country code.
func NormalizePhone(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}

	var digits strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits.WriteRune(r)
		case strings.ContainsRune(phoneFormatting, r):
		default:
			return "", false
		}
	}

	if digits.Len() != 10 {
		return "", false
	}
	return "+1" + digits.String(), true
}
