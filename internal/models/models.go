// Package models defines the core domain models for the application:
// users, their secrets, and server-side sessions.
//
// All models include appropriate JSON and database struct tags for
// serialization. Sensitive fields are marked with `json:"-"` to prevent
// accidental exposure in API responses.
package models

import (
	"time"

	"github.com/google/uuid"
)

// OAuth sentinel values stored in place of a password hash for accounts
// created through Google OAuth. A sentinel can never verify as a real
// bcrypt hash, so OAuth-only accounts cannot authenticate with the local
// strategy.
const (
	SentinelGoogle       = "google"
	SentinelGoogleLegacy = "google-oauth"
)

// User represents a user account. Accounts are created by local registration
// or by the first Google OAuth login for an email; they are never deleted and
// have no profile-edit path.
//
// The PasswordHash field is intentionally excluded from JSON serialization
// (via `json:"-"`) to prevent exposure in API responses or logs.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`                 // Unique user identifier
	Email        string    `json:"email" db:"email"`           // Unique, stored case-sensitively
	PasswordHash string    `json:"-" db:"password_hash"`       // bcrypt hash or OAuth sentinel (NEVER exposed)
	CreatedAt    time.Time `json:"created_at" db:"created_at"` // Account creation timestamp
}

// IsOAuthOnly reports whether the account was created through OAuth and has
// no local credentials.
func (u *User) IsOAuthOnly() bool {
	return u.PasswordHash == SentinelGoogle || u.PasswordHash == SentinelGoogleLegacy
}

// PublicUser is the sanitized identity shape returned by the API after login
// and by /api/check-auth.
type PublicUser struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

// Public returns the sanitized API representation of the user.
func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Email: u.Email}
}

// Secret represents a user-owned text record, the primary content entity.
// Every read, update, and delete of a Secret is filtered by owner; a caller
// can never observe or mutate another user's record even with a valid ID.
//
// JSON example:
//
//	{
//	  "secret_id": "7c9e6679-7425-40de-944b-e07fc1f90ae7",
//	  "secret": "hello",
//	  "created_at": "2024-01-15T10:30:00Z"
//	}
type Secret struct {
	ID        uuid.UUID `json:"secret_id" db:"secret_id"`   // Unique secret identifier
	UserID    uuid.UUID `json:"-" db:"user_id"`             // Owner; implicit from the session, never serialized
	Content   string    `json:"secret" db:"secret"`         // The secret text
	CreatedAt time.Time `json:"created_at" db:"created_at"` // Creation timestamp; listing sorts on this, descending
}

// Session represents an authenticated browsing context, persisted in Postgres
// so that restarts do not log users out and logout is an actual revocation.
// The window is fixed: ExpiresAt is set once at creation and never extended.
//
// The Token field is the opaque value delivered via the session cookie and is
// excluded from JSON serialization.
type Session struct {
	Token     string    `json:"-" db:"token"`               // Opaque cookie token (NEVER exposed)
	UserID    uuid.UUID `json:"user_id" db:"user_id"`       // Authenticated identity
	Email     string    `json:"email" db:"email"`           // Identity snapshot for cheap check-auth responses
	UserAgent string    `json:"user_agent" db:"user_agent"` // Parsed device info from authentication
	IPAddress string    `json:"ip_address" db:"ip_address"` // Client IP at authentication
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
}

// Expired reports whether the session's fixed window has passed at the given
// instant.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
