package services

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// stateTTL bounds how long an OAuth authorization round-trip may take.
// Google's consent screen is interactive, so this needs to cover a human
// reading a dialog, not just network latency.
const stateTTL = 10 * time.Minute

// StateService issues and verifies the OAuth CSRF state parameter.
//
// The state is a short-lived HMAC-signed JWT rather than a random string
// stored server-side: the signature makes it unforgeable, the exp claim
// bounds replay, and the jti ties the callback's query parameter to the
// cookie set when the flow started. No storage is involved, so state
// verification works across server restarts mid-flow.
type StateService struct {
	secret []byte // HMAC signing key, shared with nothing else
}

// NewStateService creates a state service signing with the given secret.
// The secret must be at least 32 bytes; config validation enforces this.
func NewStateService(secret []byte) *StateService {
	return &StateService{secret: secret}
}

// Issue creates a new signed state token. The same token value is sent to
// Google as the state parameter and set as a short-lived cookie, so the
// callback can require both to be present and identical.
func (s *StateService) Issue() (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		ID:        uuid.New().String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(stateTTL)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		log.Error().Err(err).Msg("Failed to sign state token")
		return "", fmt.Errorf("failed to sign state: %w", err)
	}

	return signed, nil
}

// Verify checks an OAuth callback's state. Both the query parameter and the
// cookie must be present, identical, validly signed, and unexpired.
//
// Returns ErrInvalidState on any failure; the caller does not learn which
// check failed.
func (s *StateService) Verify(queryState, cookieState string) error {
	if queryState == "" || cookieState == "" || queryState != cookieState {
		return ErrInvalidState
	}

	token, err := jwt.ParseWithClaims(queryState, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return ErrInvalidState
	}

	return nil
}
