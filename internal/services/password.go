package services

import (
	"fmt"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/swapnilsubhashpatil/Secrets/internal/models"
)

// bcryptCost is the work factor for password hashing. 10 keeps hashing in the
// tens of milliseconds on current hardware.
const bcryptCost = 10

// minPasswordLength is the minimum accepted registration password length.
const minPasswordLength = 8

// HashPassword hashes a plaintext password with bcrypt.
// The resulting hash embeds its own salt and cost, so no extra bookkeeping
// is needed to verify it later.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether the plaintext password matches the stored
// hash. OAuth sentinel values are rejected outright: they are not bcrypt
// hashes, so an OAuth-only account can never pass local verification, even
// if an attacker submits the sentinel string itself as the password.
//
// This function never returns an error; any comparison failure is a
// non-match.
func VerifyPassword(storedHash, password string) bool {
	if storedHash == models.SentinelGoogle || storedHash == models.SentinelGoogleLegacy {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(password)) == nil
}

// ValidateRegistration checks registration input before any database work.
// Email must parse as an address; password must meet the minimum length.
// No other complexity rules are enforced.
func ValidateRegistration(email, password string) error {
	if strings.TrimSpace(email) == "" {
		return ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return ErrInvalidEmail
	}
	if len(password) < minPasswordLength {
		return ErrWeakPassword
	}
	return nil
}
