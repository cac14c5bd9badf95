// Package handlers provides HTTP request handlers for the API.
// Handlers decode and validate requests, delegate to the services layer,
// and translate service errors into HTTP status codes. They hold no
// business logic of their own.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/rs/zerolog/log"

	"github.com/swapnilsubhashpatil/Secrets/internal/middleware"
	"github.com/swapnilsubhashpatil/Secrets/internal/models"
	"github.com/swapnilsubhashpatil/Secrets/internal/services"
	"github.com/swapnilsubhashpatil/Secrets/pkg/utils"
)

// stateCookieName is the short-lived cookie carrying the OAuth CSRF state.
const stateCookieName = "oauth_state"

// LocalAuth defines the interface for email/password authentication.
// Abstracts the local auth service for testing and dependency injection.
type LocalAuth interface {
	Register(ctx context.Context, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, error)
}

// OAuth defines the interface for the Google OAuth flow.
type OAuth interface {
	GetAuthURL(state string) string
	AuthenticateUser(ctx context.Context, code string) (*models.User, error)
}

// StateIssuer defines the interface for OAuth CSRF state tokens.
type StateIssuer interface {
	Issue() (string, error)
	Verify(queryState, cookieState string) error
}

// Sessions defines the interface for session lifecycle operations used by
// the auth endpoints.
type Sessions interface {
	Create(ctx context.Context, user *models.User, userAgent, ipAddress string) (*models.Session, error)
	Resolve(ctx context.Context, token string) (*models.Session, error)
	Destroy(ctx context.Context, token string) error
}

// AuthHandler handles all authentication-related HTTP endpoints:
// registration, local login, the Google OAuth flow, the check-auth probe,
// and logout.
//
// Both login strategies converge on the same session mechanics: a successful
// authentication creates a server-side session and delivers its opaque token
// in the session cookie. Nothing downstream can tell the strategies apart.
type AuthHandler struct {
	local        LocalAuth   // Email/password authentication
	oauth        OAuth       // Google OAuth integration
	states       StateIssuer // OAuth CSRF state tokens
	sessions     Sessions    // Session lifecycle
	isProduction bool        // Production mode flag (affects cookie settings)
	frontendURL  string      // Front-end base URL for OAuth redirects
}

// NewAuthHandler creates a new authentication handler with all required
// dependencies.
//
// Parameters:
//   - local: Service for email/password authentication
//   - oauth: Service for Google OAuth operations
//   - states: Service for OAuth state tokens
//   - sessions: Service for session management
//   - isProduction: Whether to use cross-site cookie settings
//   - frontendURL: Front-end base URL (OAuth callback redirects land there)
//
// Example:
//
//	authHandler := handlers.NewAuthHandler(localSvc, oauthSvc, stateSvc, sessionSvc,
//	    cfg.IsProduction(), cfg.Server.FrontendURL)
func NewAuthHandler(
	local LocalAuth,
	oauth OAuth,
	states StateIssuer,
	sessions Sessions,
	isProduction bool,
	frontendURL string,
) *AuthHandler {
	return &AuthHandler{
		local:        local,
		oauth:        oauth,
		states:       states,
		sessions:     sessions,
		isProduction: isProduction,
		frontendURL:  frontendURL,
	}
}

// credentialsRequest is the JSON body for login and registration. The
// "username" field carries the email address; the front end has always
// posted it under that name.
type credentialsRequest struct {
	Email    string `json:"username"`
	Password string `json:"password"`
}

// authResponse is the JSON body returned by successful login and
// registration.
type authResponse struct {
	Success bool              `json:"success"`
	User    models.PublicUser `json:"user"`
}

// checkAuthResponse is the JSON body returned by the check-auth probe.
// The user field is omitted when not authenticated.
type checkAuthResponse struct {
	IsAuthenticated bool               `json:"isAuthenticated"`
	User            *models.PublicUser `json:"user,omitempty"`
}

// CheckAuth reports the caller's authentication state.
// This endpoint always returns 200: an unauthenticated visitor is a normal
// state for the front end's routing logic, not an error. It is registered
// outside the session gate for that reason.
//
// Response:
//
//	{"isAuthenticated": true, "user": {"id": "...", "email": "..."}}
//	{"isAuthenticated": false}
func (h *AuthHandler) CheckAuth(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(utils.SessionCookieName)
	if err != nil || cookie.Value == "" {
		utils.RespondWithJSON(w, r, http.StatusOK, checkAuthResponse{IsAuthenticated: false})
		return
	}

	session, err := h.sessions.Resolve(r.Context(), cookie.Value)
	if err != nil {
		utils.RespondWithJSON(w, r, http.StatusOK, checkAuthResponse{IsAuthenticated: false})
		return
	}

	user := models.PublicUser{ID: session.UserID, Email: session.Email}
	utils.RespondWithJSON(w, r, http.StatusOK, checkAuthResponse{
		IsAuthenticated: true,
		User:            &user,
	})
}

// Login authenticates an email/password pair and establishes a session.
//
// Every failure mode — unknown email, OAuth-only account, wrong password —
// returns the same 401 with the same message, so responses never reveal
// whether an email is registered.
//
// Request:
//
//	POST /api/login
//	{"username": "user@example.com", "password": "..."}
//
// Responses:
//   - 200: {"success": true, "user": {...}} with the session cookie set
//   - 400: Malformed JSON body
//   - 401: Invalid credentials
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.local.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			middleware.IncrementAuthAttempts("local", "invalid_credentials")
			utils.RespondWithError(w, r, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		middleware.IncrementAuthAttempts("local", "error")
		utils.RespondWithError(w, r, http.StatusInternalServerError, "Authentication failed")
		return
	}

	session, err := h.sessions.Create(r.Context(), user, r.UserAgent(), utils.ExtractClientIP(r))
	if err != nil {
		utils.RespondWithError(w, r, http.StatusInternalServerError, "Failed to create session")
		return
	}

	middleware.IncrementAuthAttempts("local", "success")
	utils.SetSessionCookie(w, session.Token, session.ExpiresAt, h.isProduction)
	utils.RespondWithJSON(w, r, http.StatusOK, authResponse{Success: true, User: user.Public()})
}

// Register creates a new local account and logs it in immediately.
// The new user lands in the app without a second login step.
//
// Request:
//
//	POST /api/register
//	{"username": "user@example.com", "password": "..."}
//
// Responses:
//   - 201: {"success": true, "user": {...}} with the session cookie set
//   - 400: Malformed body, invalid email, or password under 8 characters
//   - 409: Email already registered (local or OAuth)
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.local.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidEmail), errors.Is(err, services.ErrWeakPassword):
			middleware.IncrementAuthAttempts("register", "invalid_input")
			utils.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		case errors.Is(err, services.ErrEmailTaken):
			middleware.IncrementAuthAttempts("register", "email_taken")
			utils.RespondWithError(w, r, http.StatusConflict, "Email already registered")
		default:
			middleware.IncrementAuthAttempts("register", "error")
			utils.RespondWithError(w, r, http.StatusInternalServerError, "Registration failed")
		}
		return
	}

	session, err := h.sessions.Create(r.Context(), user, r.UserAgent(), utils.ExtractClientIP(r))
	if err != nil {
		utils.RespondWithError(w, r, http.StatusInternalServerError, "Failed to create session")
		return
	}

	middleware.IncrementAuthAttempts("register", "success")
	utils.SetSessionCookie(w, session.Token, session.ExpiresAt, h.isProduction)
	utils.RespondWithJSON(w, r, http.StatusCreated, authResponse{Success: true, User: user.Public()})
}

// Logout destroys the caller's session and clears the session cookie.
// The operation is idempotent: calling it without a session, or twice with
// the same cookie, still returns 200. The cookie is cleared regardless of
// whether a server-side session existed.
//
// Responses:
//   - 200: {"success": true}
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(utils.SessionCookieName); err == nil && cookie.Value != "" {
		if err := h.sessions.Destroy(r.Context(), cookie.Value); err != nil {
			// The cookie is cleared either way; the orphan row expires on
			// its own and the sweep removes it.
			log.Warn().Err(err).Msg("Failed to destroy session on logout")
		}
	}

	utils.ClearSessionCookie(w, h.isProduction)
	utils.RespondWithJSON(w, r, http.StatusOK, map[string]bool{"success": true})
}

// GoogleLogin initiates the Google OAuth 2.0 authentication flow.
// It issues a signed CSRF state token, stores it in a short-lived cookie,
// and redirects the user to Google's consent screen with the same token as
// the state parameter.
//
// The callback later requires the query state and cookie state to be
// present, identical, validly signed, and unexpired.
//
// Responses:
//   - 307: Redirect to Google's authorization URL
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	state, err := h.states.Issue()
	if err != nil {
		utils.RespondWithError(w, r, http.StatusInternalServerError, "Failed to start login")
		return
	}

	utils.SetStateCookie(w, stateCookieName, state, 600, h.isProduction) // 10 minutes

	authURL := h.oauth.GetAuthURL(state)
	http.Redirect(w, r, authURL, http.StatusTemporaryRedirect)
}

// GoogleCallback handles the OAuth 2.0 callback from Google.
// Completes the flow: verifies the CSRF state, exchanges the authorization
// code, links the Google identity to a local account by email, creates a
// session, and redirects back to the front end.
//
// This endpoint answers a top-level browser navigation, so both outcomes
// are redirects rather than JSON:
//   - success: 303 to {frontend}/secrets
//   - any failure: 303 to {frontend}/login?error=auth_failed
//
// A user who denies consent arrives here with an error parameter and no
// code, which lands in the failure redirect like every other problem.
//
// Query parameters:
//   - state: CSRF protection token (must match the state cookie)
//   - code: Authorization code from Google
func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil {
		h.failOAuth(w, r, "missing state cookie")
		return
	}

	if err := h.states.Verify(r.URL.Query().Get("state"), stateCookie.Value); err != nil {
		h.failOAuth(w, r, "state verification failed")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		h.failOAuth(w, r, "missing authorization code")
		return
	}

	user, err := h.oauth.AuthenticateUser(r.Context(), code)
	if err != nil {
		log.Error().Err(err).Msg("OAuth authentication failed")
		h.failOAuth(w, r, "authentication failed")
		return
	}

	session, err := h.sessions.Create(r.Context(), user, r.UserAgent(), utils.ExtractClientIP(r))
	if err != nil {
		h.failOAuth(w, r, "session creation failed")
		return
	}

	middleware.IncrementAuthAttempts("google", "success")
	// The state cookie is single-use; clear it before the redirect commits
	// the response headers.
	utils.ClearCookie(w, stateCookieName)
	utils.SetSessionCookie(w, session.Token, session.ExpiresAt, h.isProduction)
	http.Redirect(w, r, h.frontendURL+"/secrets", http.StatusSeeOther)
}

// failOAuth logs an OAuth failure and redirects to the front-end login page
// with a generic error marker. The reason stays in the logs; the query
// string never says why.
func (h *AuthHandler) failOAuth(w http.ResponseWriter, r *http.Request, reason string) {
	log.Warn().
		Str("reason", reason).
		Str("request_id", utils.GetRequestID(r.Context())).
		Msg("OAuth callback rejected")

	middleware.IncrementAuthAttempts("google", "failed")

	utils.ClearCookie(w, stateCookieName)
	redirect := h.frontendURL + "/login?" + url.Values{"error": {"auth_failed"}}.Encode()
	http.Redirect(w, r, redirect, http.StatusSeeOther)
}
