package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swapnilsubhashpatil/Secrets/internal/models"
)

func TestHashPassword(t *testing.T) {
	t.Run("hashes and verifies round trip", func(t *testing.T) {
		hash, err := HashPassword("my secure password")
		require.NoError(t, err)
		assert.NotEmpty(t, hash)
		assert.NotEqual(t, "my secure password", hash)

		assert.True(t, VerifyPassword(hash, "my secure password"))
	})

	t.Run("same password produces different hashes", func(t *testing.T) {
		hash1, err := HashPassword("same password")
		require.NoError(t, err)
		hash2, err := HashPassword("same password")
		require.NoError(t, err)

		// Each hash carries its own random salt
		assert.NotEqual(t, hash1, hash2)
		assert.True(t, VerifyPassword(hash1, "same password"))
		assert.True(t, VerifyPassword(hash2, "same password"))
	})
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("the right password")
	require.NoError(t, err)

	t.Run("rejects wrong password", func(t *testing.T) {
		assert.False(t, VerifyPassword(hash, "the wrong password"))
	})

	t.Run("rejects empty password", func(t *testing.T) {
		assert.False(t, VerifyPassword(hash, ""))
	})

	t.Run("rejects oauth sentinel as stored hash", func(t *testing.T) {
		// OAuth-only accounts must never pass local verification
		assert.False(t, VerifyPassword(models.SentinelGoogle, "anything"))
		assert.False(t, VerifyPassword(models.SentinelGoogleLegacy, "anything"))
	})

	t.Run("rejects sentinel submitted as the password", func(t *testing.T) {
		assert.False(t, VerifyPassword(models.SentinelGoogle, models.SentinelGoogle))
		assert.False(t, VerifyPassword(models.SentinelGoogleLegacy, models.SentinelGoogleLegacy))
	})

	t.Run("never panics on garbage hash", func(t *testing.T) {
		assert.False(t, VerifyPassword("not-a-bcrypt-hash", "password"))
		assert.False(t, VerifyPassword("", "password"))
	})
}

func TestValidateRegistration(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"valid input", "user@example.com", "longenough", nil},
		{"valid with plus tag", "user+tag@example.com", "longenough", nil},
		{"empty email", "", "longenough", ErrInvalidEmail},
		{"whitespace email", "   ", "longenough", ErrInvalidEmail},
		{"missing at sign", "userexample.com", "longenough", ErrInvalidEmail},
		{"missing domain", "user@", "longenough", ErrInvalidEmail},
		{"display name form", "User <user@example.com>", "longenough", ErrInvalidEmail},
		{"password too short", "user@example.com", "short", ErrWeakPassword},
		{"password exactly seven", "user@example.com", "1234567", ErrWeakPassword},
		{"password exactly eight", "user@example.com", "12345678", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRegistration(tt.email, tt.password)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
