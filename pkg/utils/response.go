// Package utils provides common utility functions for HTTP response handling,
// request ID management, and cookie operations. It includes standardized response
// formats with automatic request ID injection for distributed tracing.
package utils

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

// requestIDKey is the context key for request ID
const requestIDKey contextKey = "request_id"

// SessionCookieName is the name of the session cookie the API issues.
// The front end never reads it (HttpOnly); it only rides along on
// credentialed requests.
const SessionCookieName = "sessionId"

// GetRequestID retrieves the request ID from the context.
// Returns an empty string if the context is nil or no request ID is present.
func GetRequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if requestID, ok := ctx.Value(requestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// WithRequestID adds a request ID to the context for distributed tracing.
// This is typically called by middleware to inject a unique identifier for each request.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// ErrorResponse represents a standard error response structure.
// It includes the HTTP status text, a custom message, and a request ID for tracing.
type ErrorResponse struct {
	Success   bool   `json:"success"`              // Always false for errors
	Error     string `json:"error"`                // HTTP status text (e.g., "Bad Request")
	Message   string `json:"message,omitempty"`    // Detailed error message
	RequestID string `json:"request_id,omitempty"` // Request ID for distributed tracing
}

// RespondWithError sends a JSON error response with automatic request ID extraction.
// The request ID is automatically extracted from the request context.
//
// Example:
//
//	if errors.Is(err, services.ErrSecretNotFound) {
//	    utils.RespondWithError(w, r, http.StatusNotFound, "Secret not found")
//	    return
//	}
func RespondWithError(w http.ResponseWriter, r *http.Request, statusCode int, message string) {
	requestID := GetRequestID(r.Context())
	response := ErrorResponse{
		Success:   false,
		Error:     http.StatusText(statusCode),
		Message:   message,
		RequestID: requestID,
	}

	RespondWithJSONAndRequestID(w, statusCode, response, requestID)
}

// RespondWithJSON sends a JSON response with the given status code and data.
// The request ID is automatically extracted from the request context.
//
// Example:
//
//	utils.RespondWithJSON(w, r, http.StatusOK, map[string]interface{}{
//	    "success": true,
//	    "secrets": secrets,
//	})
func RespondWithJSON(w http.ResponseWriter, r *http.Request, statusCode int, data interface{}) {
	requestID := GetRequestID(r.Context())
	RespondWithJSONAndRequestID(w, statusCode, data, requestID)
}

// RespondWithJSONAndRequestID sends a JSON response with an explicit request ID.
// Use RespondWithJSON instead for automatic request ID extraction from context.
func RespondWithJSONAndRequestID(w http.ResponseWriter, statusCode int, data interface{}, requestID string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().
			Err(err).
			Str("request_id", requestID).
			Msg("Failed to encode JSON response")
	}
}

// SetSessionCookie sets the session cookie with appropriate security settings.
// The cookie is always HttpOnly. In production it is Secure with SameSite=None,
// which the cross-site front end requires for credentialed requests; browsers
// reject SameSite=None without Secure, so development falls back to Lax.
//
// Example:
//
//	utils.SetSessionCookie(w, token, time.Now().Add(24*time.Hour), cfg.IsProduction())
func SetSessionCookie(w http.ResponseWriter, value string, expires time.Time, isProduction bool) {
	sameSite := http.SameSiteLaxMode
	if isProduction {
		sameSite = http.SameSiteNoneMode
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: sameSite,
		Expires:  expires,
	})
}

// ClearSessionCookie instructs the browser to delete the session cookie
// by setting MaxAge to -1.
func ClearSessionCookie(w http.ResponseWriter, isProduction bool) {
	sameSite := http.SameSiteLaxMode
	if isProduction {
		sameSite = http.SameSiteNoneMode
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: sameSite,
	})
}

// SetStateCookie stores the OAuth state token in a short-lived HttpOnly cookie.
// MaxAge is specified in seconds.
//
// Example:
//
//	utils.SetStateCookie(w, "oauth_state", state, 600, true) // 10 minutes
func SetStateCookie(w http.ResponseWriter, name, value string, maxAge int, isProduction bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

// ClearCookie clears an arbitrary cookie by name.
func ClearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}
