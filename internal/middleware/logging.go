// Package middleware provides HTTP middleware for the API: session-based
// authentication, structured request logging with request IDs, panic
// recovery, CORS for the single front-end origin, security headers, and
// Prometheus metrics collection.
package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/swapnilsubhashpatil/Secrets/pkg/utils"
)

// CORS creates CORS middleware for the separately hosted front end.
// The API is consumed cross-origin with cookies, so credentials are enabled
// and exactly one origin is allowed; a wildcard origin cannot be combined
// with credentialed requests.
//
// Configuration:
//   - Allowed methods: GET, POST, OPTIONS (the full API surface)
//   - Allowed headers: Accept, Content-Type, X-Request-ID
//   - Credentials: Enabled (the session cookie must flow)
//   - Max age: 300 seconds
//
// Parameters:
//   - frontendOrigin: The front end's origin URL (e.g., "https://secrets.example.com")
//
// Example:
//
//	r.Use(middleware.CORS(cfg.Server.FrontendURL))
func CORS(frontendOrigin string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   []string{frontendOrigin},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID", "User-Agent"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	})
}

// Logger creates structured logging middleware with request ID correlation.
// Logs every HTTP request and response with consistent formatting and timing.
//
// Features:
//   - Generates or uses existing X-Request-ID for request correlation
//   - Logs request start with method, path, client info
//   - Logs request completion with status, bytes, duration
//   - Adds request ID to response headers for client-side tracing
//   - Propagates request ID through context for downstream logging
//
// Example logs:
//
//	{"level":"info","request_id":"abc-123","method":"GET","path":"/api/secrets","msg":"Request started"}
//	{"level":"info","request_id":"abc-123","status":200,"bytes":156,"duration_ms":45,"msg":"Request completed"}
//
// Usage:
//
//	r.Use(middleware.Logger())
func Logger() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Generate request ID
			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = uuid.New().String()
			}

			// Add request ID to context
			ctx := utils.WithRequestID(r.Context(), requestID)
			r = r.WithContext(ctx)

			// Create response writer wrapper to capture status code
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			// Add request ID to response headers
			ww.Header().Set("X-Request-ID", requestID)

			log.Info().
				Str("request_id", requestID).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("remote_addr", r.RemoteAddr).
				Str("user_agent", r.UserAgent()).
				Msg("Request started")

			next.ServeHTTP(ww, r)

			duration := time.Since(start)
			log.Info().
				Str("request_id", requestID).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration_ms", duration).
				Msg("Request completed")
		})
	}
}

// Recoverer recovers from panics and logs the error.
// Prevents the entire application from crashing when a handler panics.
// This is critical middleware that should be registered early in the chain.
//
// Behavior:
//  1. Catches any panic in downstream handlers
//  2. Logs the panic with error details and request context
//  3. Returns 500 Internal Server Error to the client
//  4. Prevents application crash
//
// The panic details are logged but NOT exposed to the client.
//
// Usage (should be early in middleware chain):
//
//	r.Use(middleware.Recoverer())
//	r.Use(middleware.Logger())
func Recoverer() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.Error().
						Interface("error", err).
						Str("method", r.Method).
						Str("path", r.URL.Path).
						Msg("Panic recovered")

					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// SecurityHeaders adds security-related HTTP headers to all responses.
//
// Headers added:
//
//   - X-Content-Type-Options: nosniff
//     Prevents MIME type sniffing attacks
//
//   - X-Frame-Options: DENY
//     Prevents clickjacking by disallowing iframe embedding
//
//   - Strict-Transport-Security: max-age=31536000; includeSubDomains
//     Forces HTTPS for 1 year including subdomains (HSTS)
//
//   - Referrer-Policy: strict-origin-when-cross-origin
//     Controls referrer information leakage
//
// The API serves JSON only; the front end is hosted elsewhere, so no CSP
// is set here.
//
// Usage:
//
//	r.Use(middleware.SecurityHeaders())
func SecurityHeaders() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

			next.ServeHTTP(w, r)
		})
	}
}
