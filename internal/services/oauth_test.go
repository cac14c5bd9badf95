package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/swapnilsubhashpatil/Secrets/internal/database"
	"github.com/swapnilsubhashpatil/Secrets/internal/models"
	"github.com/swapnilsubhashpatil/Secrets/internal/testutil"
	"github.com/swapnilsubhashpatil/Secrets/pkg/config"
)

func setupOAuthService(t *testing.T) (*OAuthService, *MockUserStore) {
	t.Helper()

	mockDB := new(MockUserStore)

	cfg := &config.OAuthConfig{
		ClientID:     "test-client-id",
		ClientSecret: "test-client-secret",
		RedirectURL:  "http://localhost:3000/auth/google/secrets",
		UserInfoURL:  "https://www.googleapis.com/oauth2/v2/userinfo",
	}

	return NewOAuthService(cfg, mockDB), mockDB
}

// serveToken returns a test server that answers the token exchange with a
// fixed bearer token.
func serveToken(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "mock-access-token",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	}))
	t.Cleanup(server.Close)
	return server
}

// serveUserInfo returns a test server that answers the userinfo request with
// the given profile, asserting the bearer token along the way.
func serveUserInfo(t *testing.T, info GoogleUserInfo) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("Authorization"), "Bearer")
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(info)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestGetAuthURL(t *testing.T) {
	oauthService, _ := setupOAuthService(t)

	t.Run("generates valid OAuth URL", func(t *testing.T) {
		state := "signed-state-token"
		authURL := oauthService.GetAuthURL(state)

		assert.NotEmpty(t, authURL)
		assert.Contains(t, authURL, "accounts.google.com")
		assert.Contains(t, authURL, "client_id=test-client-id")
		assert.Contains(t, authURL, "state="+state)
		assert.Contains(t, authURL, "redirect_uri=")
		assert.Contains(t, authURL, "response_type=code")
		assert.Contains(t, authURL, "userinfo.profile")
		assert.Contains(t, authURL, "userinfo.email")
	})

	t.Run("different states generate different URLs", func(t *testing.T) {
		url1 := oauthService.GetAuthURL("state-1")
		url2 := oauthService.GetAuthURL("state-2")

		assert.NotEqual(t, url1, url2)
	})
}

func TestExchangeCode(t *testing.T) {
	t.Run("exchanges code for token", func(t *testing.T) {
		oauthService, _ := setupOAuthService(t)
		oauthService.config.Endpoint = oauth2.Endpoint{TokenURL: serveToken(t).URL}

		token, err := oauthService.ExchangeCode(context.Background(), "test-auth-code")
		require.NoError(t, err)
		assert.Equal(t, "mock-access-token", token.AccessToken)
	})

	t.Run("returns error for rejected code", func(t *testing.T) {
		oauthService, _ := setupOAuthService(t)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "invalid_grant"})
		}))
		t.Cleanup(server.Close)
		oauthService.config.Endpoint = oauth2.Endpoint{TokenURL: server.URL}

		_, err := oauthService.ExchangeCode(context.Background(), "invalid-code")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to exchange code")
	})
}

func TestGetUserInfo(t *testing.T) {
	token := &oauth2.Token{AccessToken: "mock-access-token", TokenType: "Bearer"}

	t.Run("retrieves user info", func(t *testing.T) {
		oauthService, _ := setupOAuthService(t)
		oauthService.userInfoURL = serveUserInfo(t, GoogleUserInfo{
			ID:    "123456789",
			Email: "test@example.com",
			Name:  "Test User",
		}).URL

		info, err := oauthService.GetUserInfo(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, "test@example.com", info.Email)
		assert.Equal(t, "Test User", info.Name)
	})

	t.Run("handles API errors", func(t *testing.T) {
		oauthService, _ := setupOAuthService(t)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		t.Cleanup(server.Close)
		oauthService.userInfoURL = server.URL

		_, err := oauthService.GetUserInfo(context.Background(), token)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to get user info")
	})

	t.Run("handles malformed JSON", func(t *testing.T) {
		oauthService, _ := setupOAuthService(t)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("invalid json{"))
		}))
		t.Cleanup(server.Close)
		oauthService.userInfoURL = server.URL

		_, err := oauthService.GetUserInfo(context.Background(), token)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to decode user info")
	})
}

func TestOAuthAuthenticateUser(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T, info GoogleUserInfo) (*OAuthService, *MockUserStore) {
		oauthService, mockDB := setupOAuthService(t)
		oauthService.config.Endpoint = oauth2.Endpoint{TokenURL: serveToken(t).URL}
		oauthService.userInfoURL = serveUserInfo(t, info).URL
		return oauthService, mockDB
	}

	t.Run("creates account with sentinel for a new email", func(t *testing.T) {
		svc, mockDB := setup(t, GoogleUserInfo{ID: "g-1", Email: "new@example.com"})

		created := testutil.TestOAuthUser()
		created.Email = "new@example.com"
		mockDB.On("GetUserByEmail", mock.Anything, "new@example.com").Return(nil, database.ErrNotFound)
		mockDB.On("CreateUser", mock.Anything, "new@example.com", models.SentinelGoogle).Return(created, nil)

		user, err := svc.AuthenticateUser(ctx, "test-code")
		require.NoError(t, err)
		assert.Equal(t, "new@example.com", user.Email)
		assert.True(t, user.IsOAuthOnly())
		mockDB.AssertExpectations(t)
	})

	t.Run("links to an existing local account by email", func(t *testing.T) {
		svc, mockDB := setup(t, GoogleUserInfo{ID: "g-2", Email: "local@example.com"})

		existing := testutil.TestUserWithEmail("local@example.com")
		mockDB.On("GetUserByEmail", mock.Anything, "local@example.com").Return(existing, nil)

		user, err := svc.AuthenticateUser(ctx, "test-code")
		require.NoError(t, err)
		assert.Equal(t, existing.ID, user.ID)
		// The local password hash stays untouched
		assert.False(t, user.IsOAuthOnly())
		mockDB.AssertNotCalled(t, "CreateUser")
	})

	t.Run("rejects a profile without an email", func(t *testing.T) {
		svc, mockDB := setup(t, GoogleUserInfo{ID: "g-3"})

		_, err := svc.AuthenticateUser(ctx, "test-code")
		assert.ErrorIs(t, err, ErrProfileIncomplete)
		mockDB.AssertNotCalled(t, "GetUserByEmail")
	})

	t.Run("falls back to lookup when a concurrent insert wins", func(t *testing.T) {
		svc, mockDB := setup(t, GoogleUserInfo{ID: "g-4", Email: "race@example.com"})

		winner := testutil.TestOAuthUser()
		winner.Email = "race@example.com"
		mockDB.On("GetUserByEmail", mock.Anything, "race@example.com").Return(nil, database.ErrNotFound).Once()
		mockDB.On("CreateUser", mock.Anything, "race@example.com", models.SentinelGoogle).Return(nil, database.ErrDuplicateEmail)
		mockDB.On("GetUserByEmail", mock.Anything, "race@example.com").Return(winner, nil)

		user, err := svc.AuthenticateUser(ctx, "test-code")
		require.NoError(t, err)
		assert.Equal(t, winner.ID, user.ID)
	})

	t.Run("fails when code exchange fails", func(t *testing.T) {
		oauthService, _ := setupOAuthService(t)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		}))
		t.Cleanup(server.Close)
		oauthService.config.Endpoint = oauth2.Endpoint{TokenURL: server.URL}

		_, err := oauthService.AuthenticateUser(ctx, "bad-code")
		assert.Error(t, err)
	})
}
