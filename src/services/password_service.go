package services

import (
	"errors"
	"fmt"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// PasswordService hashes and verifies admin credentials with bcrypt. The
// cost is a deployment constant chosen to keep verification in the tens of
// milliseconds; it is never user-controlled.
type PasswordService struct {
	cost int
}

// NewPasswordService creates a password service with the given bcrypt cost.
// Cost 0 falls back to 12, matching the console's previous deployments.
func NewPasswordService(cost int) *PasswordService {
	if cost == 0 {
		cost = 12
	}
	return &PasswordService{cost: cost}
}

// Hash returns the bcrypt hash of password. It fails only on internal
// randomness or length errors, never based on password content policy.
func (ps *PasswordService) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), ps.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether password matches the stored hash. A mismatch is
// (false, nil); an error is returned only when the stored hash itself is
// malformed.
func (ps *PasswordService) Verify(password, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("malformed password hash: %w", err)
}

// ValidatePasswordStrength enforces the admin password policy: at least 12
// characters with mixed case and a digit. Mirrors the end-user policy with a
// longer minimum.
func (ps *PasswordService) ValidatePasswordStrength(password string) error {
	if len(password) < 12 {
		return fmt.Errorf("%w: minimum length is 12 characters", ErrWeakPassword)
	}
	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasUpper {
		return fmt.Errorf("%w: at least one uppercase letter required", ErrWeakPassword)
	}
	if !hasLower {
		return fmt.Errorf("%w: at least one lowercase letter required", ErrWeakPassword)
	}
	if !hasDigit {
		return fmt.Errorf("%w: at least one digit required", ErrWeakPassword)
	}
	return nil
}
