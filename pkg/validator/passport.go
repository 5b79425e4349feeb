package validator

import (
	"errors"
	"regexp"
	"strings"
)

var (
	// ErrEmptyPassport indicates the passport number is empty
	ErrEmptyPassport = errors.New("passport number cannot be empty")

	// ErrInvalidLength indicates the passport number length is out of range
	ErrInvalidLength = errors.New("passport number must be between 6 and 12 characters")

	// ErrInvalidFormat indicates the passport number contains invalid characters
	ErrInvalidFormat = errors.New("passport number can only contain letters and digits")

	// ErrNoDigits indicates the passport number contains no numeric part
	ErrNoDigits = errors.New("passport number must contain at least one digit")
)

// passportRegex matches uppercase letters and digits only
var passportRegex = regexp.MustCompile(`^[A-Z0-9]+$`)

// digitRegex matches at least one digit anywhere
var digitRegex = regexp.MustCompile(`\d`)

// PassportValidator handles machine-readable-zone style passport numbers
type PassportValidator struct{}

// NewPassportValidator creates a new passport validator instance
func NewPassportValidator() *PassportValidator {
	return &PassportValidator{}
}

// Validate validates a passport number.
// Accepts formats like "N1234567", "AB 123456" or "ab-123456".
// Returns the sanitized (uppercase, separator-free) number and error if invalid.
func (v *PassportValidator) Validate(passport string) (string, error) {
	if passport == "" {
		return "", ErrEmptyPassport
	}

	sanitized := v.Sanitize(passport)

	if !passportRegex.MatchString(sanitized) {
		return "", ErrInvalidFormat
	}

	if len(sanitized) < 6 || len(sanitized) > 12 {
		return "", ErrInvalidLength
	}

	if !digitRegex.MatchString(sanitized) {
		return "", ErrNoDigits
	}

	return sanitized, nil
}

// Sanitize uppercases and strips common separators from a passport number
func (v *PassportValidator) Sanitize(passport string) string {
	passport = strings.ToUpper(strings.TrimSpace(passport))
	passport = strings.ReplaceAll(passport, " ", "")
	passport = strings.ReplaceAll(passport, "-", "")
	passport = strings.ReplaceAll(passport, ".", "")
	return passport
}
