package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/swapnilsubhashpatil/Secrets/internal/database"
	"github.com/swapnilsubhashpatil/Secrets/internal/models"
	"github.com/swapnilsubhashpatil/Secrets/pkg/utils"
)

// SecretStore defines the interface for secret persistence operations.
// Every query is owner-scoped at the SQL level: the user ID is part of each
// WHERE clause, so a mismatched owner and a missing row are the same outcome.
type SecretStore interface {
	CreateSecret(ctx context.Context, userID uuid.UUID, content string) (*models.Secret, error)
	ListSecrets(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Secret, error)
	UpdateSecret(ctx context.Context, userID, secretID uuid.UUID, content string) (*models.Secret, error)
	DeleteSecret(ctx context.Context, userID, secretID uuid.UUID) error
}

// SecretService implements owner-scoped secret operations.
// The owner is always taken from the resolved session, never from request
// payloads; a caller can hold a valid ID for another user's secret and
// still only ever see ErrSecretNotFound.
type SecretService struct {
	db SecretStore // Secret persistence
}

// NewSecretService creates a new secret service.
func NewSecretService(db SecretStore) *SecretService {
	return &SecretService{db: db}
}

// List returns the caller's secrets, newest first. An account with no
// secrets gets an empty slice, not nil and not an error.
func (s *SecretService) List(ctx context.Context, userID uuid.UUID, page utils.Page) ([]models.Secret, error) {
	secrets, err := s.db.ListSecrets(ctx, userID, page.Limit, page.Offset)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to list secrets")
		return nil, fmt.Errorf("failed to list secrets: %w", err)
	}
	return secrets, nil
}

// Submit creates a new secret or replaces an existing one's content,
// depending on whether secretID is set. This mirrors the single submission
// form in the front end, which posts both new entries and edits to the same
// endpoint.
//
// Content is validated after trimming: empty or whitespace-only submissions
// are rejected with ErrEmptySecret before touching storage. The stored
// content keeps the caller's original whitespace.
//
// Returns ErrSecretNotFound when updating a secret that does not exist or
// belongs to another user.
func (s *SecretService) Submit(ctx context.Context, userID uuid.UUID, secretID *uuid.UUID, content string) (*models.Secret, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptySecret
	}

	if secretID == nil {
		secret, err := s.db.CreateSecret(ctx, userID, content)
		if err != nil {
			log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to create secret")
			return nil, fmt.Errorf("failed to create secret: %w", err)
		}

		log.Info().
			Str("user_id", userID.String()).
			Str("secret_id", secret.ID.String()).
			Msg("Secret created")

		return secret, nil
	}

	secret, err := s.db.UpdateSecret(ctx, userID, *secretID, content)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrSecretNotFound
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to update secret")
		return nil, fmt.Errorf("failed to update secret: %w", err)
	}

	log.Info().
		Str("user_id", userID.String()).
		Str("secret_id", secret.ID.String()).
		Msg("Secret updated")

	return secret, nil
}

// Delete removes one of the caller's secrets.
//
// Returns ErrSecretNotFound when the secret does not exist or belongs to
// another user; the caller cannot tell which.
func (s *SecretService) Delete(ctx context.Context, userID, secretID uuid.UUID) error {
	err := s.db.DeleteSecret(ctx, userID, secretID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return ErrSecretNotFound
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to delete secret")
		return fmt.Errorf("failed to delete secret: %w", err)
	}

	log.Info().
		Str("user_id", userID.String()).
		Str("secret_id", secretID.String()).
		Msg("Secret deleted")

	return nil
}
