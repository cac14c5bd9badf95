// Package testutil provides common testing utilities, fixtures, and helpers
// for use across all test files in the project.
package testutil

import (
	"time"

	"github.com/google/uuid"

	"github.com/swapnilsubhashpatil/Secrets/internal/models"
)

// TestPassword is the plaintext behind TestPasswordHash.
const TestPassword = "password"

// TestPasswordHash is a bcrypt hash of TestPassword (cost 10), precomputed
// so tests don't pay the hashing cost per fixture.
const TestPasswordHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// TestUser creates a test user with local credentials and default values.
func TestUser() *models.User {
	return &models.User{
		ID:           uuid.New(),
		Email:        "test@example.com",
		PasswordHash: TestPasswordHash,
		CreatedAt:    time.Now(),
	}
}

// TestUserWithEmail creates a test user with a specific email.
func TestUserWithEmail(email string) *models.User {
	user := TestUser()
	user.Email = email
	return user
}

// TestOAuthUser creates a test user whose account was created through
// Google OAuth (sentinel in place of a password hash).
func TestOAuthUser() *models.User {
	user := TestUser()
	user.PasswordHash = models.SentinelGoogle
	return user
}

// TestSecret creates a test secret owned by the given user.
func TestSecret(userID uuid.UUID) *models.Secret {
	return &models.Secret{
		ID:        uuid.New(),
		UserID:    userID,
		Content:   "my test secret",
		CreatedAt: time.Now(),
	}
}

// TestSession creates an unexpired test session for the given user.
func TestSession(user *models.User) *models.Session {
	now := time.Now().UTC()
	return &models.Session{
		Token:     uuid.New().String(),
		UserID:    user.ID,
		Email:     user.Email,
		UserAgent: "Chrome 120 / Windows 11 / Desktop",
		IPAddress: "203.0.113.42",
		CreatedAt: now,
		ExpiresAt: now.Add(24 * time.Hour),
	}
}

// TestExpiredSession creates a session whose window has already passed.
func TestExpiredSession(user *models.User) *models.Session {
	session := TestSession(user)
	session.CreatedAt = time.Now().UTC().Add(-25 * time.Hour)
	session.ExpiresAt = time.Now().UTC().Add(-1 * time.Hour)
	return session
}

// UserAgents provides common user agent strings for testing
var UserAgents = struct {
	Chrome       string
	Safari       string
	Firefox      string
	MobileChrome string
	Unknown      string
}{
	Chrome:       "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	Safari:       "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Safari/605.1.15",
	Firefox:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
	MobileChrome: "Mozilla/5.0 (Linux; Android 13) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.6099.144 Mobile Safari/537.36",
	Unknown:      "",
}

// IPAddresses provides test IP addresses
var IPAddresses = struct {
	Public    string
	Private   string
	Localhost string
}{
	Public:    "203.0.113.42",
	Private:   "192.168.1.100",
	Localhost: "127.0.0.1",
}
