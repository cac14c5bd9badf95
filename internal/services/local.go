// Package services provides business logic and application services.
// Services coordinate between handlers and the database layer, implementing
// local and Google OAuth authentication, server-side session management,
// and owner-scoped secret operations.
//
// The services layer is responsible for:
//   - Email/password registration and login
//   - Google OAuth 2.0 authentication with email-based account linking
//   - Opaque session creation, resolution, and revocation
//   - Secret CRUD with ownership enforcement
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/swapnilsubhashpatil/Secrets/internal/database"
	"github.com/swapnilsubhashpatil/Secrets/internal/models"
)

// UserStore defines the interface for user persistence operations.
// This interface abstracts the database layer for testing and dependency injection.
type UserStore interface {
	CreateUser(ctx context.Context, email, passwordHash string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// LocalAuthService handles email/password authentication.
// It owns registration validation, bcrypt hashing, and the credential check
// at login. All login failures collapse into ErrInvalidCredentials so that
// responses never reveal whether an email is registered.
type LocalAuthService struct {
	db UserStore // User persistence
}

// NewLocalAuthService creates a new local authentication service.
//
// Example:
//
//	localSvc := services.NewLocalAuthService(postgresDB)
func NewLocalAuthService(db UserStore) *LocalAuthService {
	return &LocalAuthService{db: db}
}

// Register creates a new local account from an email and plaintext password.
// The password is bcrypt-hashed before storage; the plaintext is never
// persisted or logged.
//
// Returns the created user, or:
//   - ErrInvalidEmail / ErrWeakPassword when input validation fails
//   - ErrEmailTaken when the email is already registered (local or OAuth)
//
// Registration does not create a session; callers log the new user in
// immediately via the session service.
func (s *LocalAuthService) Register(ctx context.Context, email, password string) (*models.User, error) {
	if err := ValidateRegistration(email, password); err != nil {
		return nil, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		log.Error().Err(err).Msg("Failed to hash password")
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	user, err := s.db.CreateUser(ctx, email, hash)
	if err != nil {
		if errors.Is(err, database.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		log.Error().Err(err).Str("email", email).Msg("Failed to create user")
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	log.Info().
		Str("user_id", user.ID.String()).
		Str("email", user.Email).
		Msg("User registered")

	return user, nil
}

// Login authenticates an email/password pair against stored credentials.
//
// Returns the authenticated user, or ErrInvalidCredentials for every
// failure mode: unknown email, OAuth-only account (sentinel hash), or
// password mismatch. Callers cannot distinguish the cases.
func (s *LocalAuthService) Login(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.db.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		log.Error().Err(err).Str("email", email).Msg("Failed to look up user")
		return nil, fmt.Errorf("failed to authenticate: %w", err)
	}

	if !VerifyPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	log.Info().
		Str("user_id", user.ID.String()).
		Str("email", user.Email).
		Msg("User authenticated")

	return user, nil
}
