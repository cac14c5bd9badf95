package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/swapnilsubhashpatil/Secrets/internal/models"
	"github.com/swapnilsubhashpatil/Secrets/pkg/utils"
)

// contextKey is a private type for context keys to avoid collisions with
// other packages.
type contextKey string

const (
	// userIDKey is the context key for the authenticated user's ID
	userIDKey contextKey = "user_id"
	// userEmailKey is the context key for the authenticated user's email
	userEmailKey contextKey = "user_email"
	// sessionTokenKey is the context key for the resolved session token
	sessionTokenKey contextKey = "session_token"
)

// SessionResolver defines the interface for resolving session cookies into
// sessions. This abstracts the session service for testing.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*models.Session, error)
}

// SessionAuth creates middleware that gates routes behind a valid session.
// It reads the session cookie, resolves it through the session service, and
// injects the authenticated identity into the request context.
//
// Requests without a cookie, with an unknown token, or with an expired
// session all receive the same 401 response; the client cannot distinguish
// the cases.
//
// Downstream handlers retrieve the identity with GetUserID and GetUserEmail.
//
// Usage:
//
//	r.Group(func(r chi.Router) {
//	    r.Use(middleware.SessionAuth(sessionSvc))
//	    r.Get("/api/secrets", secretHandler.List)
//	})
func SessionAuth(sessions SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(utils.SessionCookieName)
			if err != nil || cookie.Value == "" {
				utils.RespondWithError(w, r, http.StatusUnauthorized, "Not authenticated")
				return
			}

			session, err := sessions.Resolve(r.Context(), cookie.Value)
			if err != nil {
				utils.RespondWithError(w, r, http.StatusUnauthorized, "Not authenticated")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, session.UserID)
			ctx = context.WithValue(ctx, userEmailKey, session.Email)
			ctx = context.WithValue(ctx, sessionTokenKey, session.Token)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithUser returns a context carrying an authenticated identity, as
// SessionAuth would have set it. Primarily for handler tests that bypass
// the middleware chain.
func WithUser(ctx context.Context, userID uuid.UUID, email string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, userEmailKey, email)
}

// GetUserID retrieves the authenticated user's ID from the request context.
// Returns uuid.Nil and false if no session middleware ran on this request.
func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey).(uuid.UUID)
	return id, ok
}

// GetUserEmail retrieves the authenticated user's email from the request
// context.
func GetUserEmail(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(userEmailKey).(string)
	return email, ok
}

// GetSessionToken retrieves the resolved session token from the request
// context, for handlers behind the gate that need to act on the session
// they arrived on. Logout sits outside the gate and reads the cookie
// directly instead.
func GetSessionToken(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(sessionTokenKey).(string)
	return token, ok
}
