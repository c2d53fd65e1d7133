package models

import "regexp"

var (
	phonePattern = regexp.MustCompile(`^\+?[0-9\s\-()]{7,20}$`)
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// ValidPhone reports whether s looks like a phone number: optional
// leading +, then 7-20 digits, spaces, dashes or parentheses.
func ValidPhone(s string) bool {
	return phonePattern.MatchString(s)
}

// ValidEmail reports whether s has the shape local@domain.tld.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}
