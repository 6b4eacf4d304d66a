package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MinPassphraseLength is the shortest passphrase accepted for a bill.
const MinPassphraseLength = 6

var (
	ErrWrongPassphrase = errors.New("wrong passphrase")
	ErrWeakPassphrase  = fmt.Errorf("passphrase must be at least %d characters", MinPassphraseLength)
	ErrNoPassphrase    = errors.New("bill has no passphrase")
)

// ValidatePassphrase checks if the passphrase meets minimum requirements.
func ValidatePassphrase(passphrase string) error {
	if len(passphrase) < MinPassphraseLength {
		return ErrWeakPassphrase
	}
	return nil
}

// HashPassphrase validates and hashes a bill passphrase with bcrypt.
func HashPassphrase(passphrase string) (string, error) {
	if err := ValidatePassphrase(passphrase); err != nil {
		return "", err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(passphrase), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash passphrase: %w", err)
	}
	return string(hashed), nil
}

// CheckPassphrase compares a passphrase against the stored hash.
// A bill created without a passphrase can never be unlocked.
func CheckPassphrase(hash, passphrase string) error {
	if hash == "" {
		return ErrNoPassphrase
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(passphrase)); err != nil {
		return ErrWrongPassphrase
	}
	return nil
}
