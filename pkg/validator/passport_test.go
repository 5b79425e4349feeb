package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPassportValidator(t *testing.T) {
	validator := NewPassportValidator()
	assert.NotNil(t, validator)
}

func TestValidate_ValidPassports(t *testing.T) {
	validator := NewPassportValidator()

	validPassports := []struct {
		input    string
		expected string
		name     string
	}{
		{"N1234567", "N1234567", "Standard format"},
		{"n1234567", "N1234567", "Lowercase"},
		{"AB 123456", "AB123456", "With space"},
		{"ab-123456", "AB123456", "With dash"},
		{"  P9876543  ", "P9876543", "With surrounding whitespace"},
		{"123456", "123456", "Digits only"},
		{"A1B2C3D4E5F6", "A1B2C3D4E5F6", "Maximum length"},
	}

	for _, tc := range validPassports {
		t.Run(tc.name, func(t *testing.T) {
			sanitized, err := validator.Validate(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, sanitized)
		})
	}
}

func TestValidate_InvalidPassports(t *testing.T) {
	validator := NewPassportValidator()

	invalidPassports := []struct {
		input       string
		expectedErr error
		name        string
	}{
		{"", ErrEmptyPassport, "Empty string"},
		{"A1234", ErrInvalidLength, "Too short"},
		{"A123456789012", ErrInvalidLength, "Too long"},
		{"N12345#7", ErrInvalidFormat, "Special character"},
		{"ABCDEFG", ErrNoDigits, "Letters only"},
	}

	for _, tc := range invalidPassports {
		t.Run(tc.name, func(t *testing.T) {
			_, err := validator.Validate(tc.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.expectedErr)
		})
	}
}
