package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Validation errors
var (
	ErrInvalidPhone     = errors.New("invalid phone number")
	ErrInvalidTerritory = errors.New("invalid territory code")
	ErrInvalidName      = errors.New("invalid account name")
	ErrAmountTooLarge   = errors.New("amount exceeds maximum allowed")
)

// Validation constants
const (
	MaxNameLength = 255
	MinNameLength = 1
	// MaxOperationAmount caps any single money movement.
	MaxOperationAmount int64 = 1_000_000_000_000
)

var (
	phoneRegex     = regexp.MustCompile(`^\+?[0-9]{8,15}$`)
	territoryRegex = regexp.MustCompile(`^[A-Z]{2}$`)
)

// ValidatePhone validates a destination phone number.
func ValidatePhone(phone string) error {
	phone = strings.TrimSpace(phone)

	if !phoneRegex.MatchString(phone) {
		return fmt.Errorf("%w: %q", ErrInvalidPhone, phone)
	}

	return nil
}

// ValidateTerritory validates a two-letter territory code.
func ValidateTerritory(t Territory) error {
	if !territoryRegex.MatchString(string(t)) {
		return fmt.Errorf("%w: %q", ErrInvalidTerritory, t)
	}

	return nil
}

// ValidateName validates an account display name.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)

	if len(name) < MinNameLength {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidName)
	}

	if len(name) > MaxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidName, MaxNameLength)
	}

	return nil
}

// ValidateAmount validates a monetary amount for any operation.
func ValidateAmount(amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	if amount > MaxOperationAmount {
		return fmt.Errorf("%w: maximum amount is %d", ErrAmountTooLarge, MaxOperationAmount)
	}

	return nil
}
