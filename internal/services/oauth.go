package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/swapnilsubhashpatil/Secrets/internal/database"
	"github.com/swapnilsubhashpatil/Secrets/internal/models"
	"github.com/swapnilsubhashpatil/Secrets/pkg/config"
)

// OAuthService handles Google OAuth 2.0 authentication flows.
// It manages the complete flow: authorization URL generation, code exchange,
// user profile retrieval, and mapping the Google identity onto a local
// account.
//
// Identity linking is by email: a Google login for an email that already has
// a local account signs into that account without any confirmation step.
type OAuthService struct {
	config      *oauth2.Config // OAuth configuration with client credentials
	db          UserStore      // Database for user persistence
	userInfoURL string         // Google user info endpoint
}

// GoogleUserInfo represents user profile data returned from Google's UserInfo API.
// This structure matches the response from https://www.googleapis.com/oauth2/v2/userinfo
//
// JSON response example:
//
//	{
//	  "id": "1234567890",
//	  "email": "user@example.com",
//	  "name": "John Doe",
//	  "picture": "https://lh3.googleusercontent.com/..."
//	}
type GoogleUserInfo struct {
	ID      string `json:"id"`      // Google account unique identifier
	Email   string `json:"email"`   // User's email address
	Name    string `json:"name"`    // Display name from Google profile
	Picture string `json:"picture"` // Profile picture URL
}

// NewOAuthService creates a new OAuth service configured for Google
// authentication. It initializes the OAuth2 configuration with profile and
// email scopes.
//
// Parameters:
//   - cfg: OAuth configuration including client ID, secret, and redirect URL
//   - db: User store for account lookup and creation
//
// Example:
//
//	oauthSvc := services.NewOAuthService(&cfg.OAuth, postgresDB)
func NewOAuthService(cfg *config.OAuthConfig, db UserStore) *OAuthService {
	oauthConfig := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.profile",
			"https://www.googleapis.com/auth/userinfo.email",
		},
		Endpoint: google.Endpoint,
	}

	return &OAuthService{
		config:      oauthConfig,
		db:          db,
		userInfoURL: cfg.UserInfoURL,
	}
}

// GetAuthURL generates the Google OAuth 2.0 authorization URL.
// This URL redirects users to Google's consent screen where they authorize
// the application to read their profile and email.
//
// Parameters:
//   - state: A signed state token for CSRF protection. Must be verified in
//     the callback against the companion cookie.
//
// Returns the full authorization URL including all OAuth parameters.
func (s *OAuthService) GetAuthURL(state string) string {
	return s.config.AuthCodeURL(state)
}

// ExchangeCode exchanges an OAuth authorization code for an access token.
// This is called in the OAuth callback after the user has authorized the
// application.
//
// Returns the OAuth token or an error if the exchange fails.
// Common failure reasons: invalid code, expired code, network errors.
func (s *OAuthService) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := s.config.Exchange(ctx, code)
	if err != nil {
		log.Error().Err(err).Msg("Failed to exchange authorization code")
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}
	return token, nil
}

// GetUserInfo fetches user profile information from Google's UserInfo API
// using the access token in the provided OAuth token.
//
// Returns the user's Google profile or an error if the request fails.
// Common failure reasons: invalid token, expired token, network errors.
func (s *OAuthService) GetUserInfo(ctx context.Context, token *oauth2.Token) (*GoogleUserInfo, error) {
	client := s.config.Client(ctx, token)

	resp, err := client.Get(s.userInfoURL)
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch user info from Google")
		return nil, fmt.Errorf("failed to get user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to get user info: status %d", resp.StatusCode)
	}

	var userInfo GoogleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		log.Error().Err(err).Msg("Failed to decode user info")
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}

	return &userInfo, nil
}

// AuthenticateUser handles the complete OAuth authentication flow.
// This is the high-level method that coordinates:
//  1. Exchanging the authorization code for tokens
//  2. Fetching the user profile from Google
//  3. Linking the Google identity to a local account by email
//
// If an account already exists for the Google email — whether it was created
// locally or by a previous OAuth login — that account is signed into as-is.
// Otherwise a new account is created with the OAuth sentinel in place of a
// password hash, which permanently blocks local login for it.
//
// Returns the authenticated user, ErrProfileIncomplete if Google returned no
// email, or an error if any step fails.
func (s *OAuthService) AuthenticateUser(ctx context.Context, code string) (*models.User, error) {
	token, err := s.ExchangeCode(ctx, code)
	if err != nil {
		return nil, err
	}

	googleUser, err := s.GetUserInfo(ctx, token)
	if err != nil {
		return nil, err
	}

	if googleUser.Email == "" {
		return nil, ErrProfileIncomplete
	}

	user, err := s.db.GetUserByEmail(ctx, googleUser.Email)
	if err == nil {
		log.Info().
			Str("user_id", user.ID.String()).
			Str("email", user.Email).
			Bool("oauth_only", user.IsOAuthOnly()).
			Msg("OAuth login linked to existing account")
		return user, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		log.Error().Err(err).Str("email", googleUser.Email).Msg("Failed to look up user")
		return nil, fmt.Errorf("failed to authenticate: %w", err)
	}

	user, err = s.db.CreateUser(ctx, googleUser.Email, models.SentinelGoogle)
	if err != nil {
		// A concurrent first login for the same email can win the insert;
		// fall back to the row it created.
		if errors.Is(err, database.ErrDuplicateEmail) {
			return s.db.GetUserByEmail(ctx, googleUser.Email)
		}
		log.Error().Err(err).Str("email", googleUser.Email).Msg("Failed to create OAuth user")
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Info().
		Str("user_id", user.ID.String()).
		Str("email", user.Email).
		Msg("OAuth account created")

	return user, nil
}
