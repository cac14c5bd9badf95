package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mileusna/useragent"
	"github.com/rs/zerolog/log"

	"github.com/swapnilsubhashpatil/Secrets/internal/database"
	"github.com/swapnilsubhashpatil/Secrets/internal/models"
	"github.com/swapnilsubhashpatil/Secrets/pkg/cache"
)

// SessionStore defines the interface for durable session persistence.
// Sessions live in PostgreSQL alongside the credential store so that a
// server restart does not log anyone out and logout is a real revocation.
type SessionStore interface {
	InsertSession(ctx context.Context, session *models.Session) error
	GetSession(ctx context.Context, token string) (*models.Session, error)
	DeleteSession(ctx context.Context, token string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

// SessionService manages opaque server-side sessions.
//
// A session is a random token mapped to a user identity with a fixed
// 24-hour window measured from creation; activity never extends it. The
// PostgreSQL row is the source of truth. Resolved sessions are cached in
// Redis with a short TTL to keep the per-request auth check off the
// database; Destroy invalidates the cache entry so revocation takes effect
// immediately, not after the cache TTL.
type SessionService struct {
	db       SessionStore  // Durable session persistence
	cache    *cache.Cache  // Read-through cache for resolved sessions (may be nil)
	ttl      time.Duration // Fixed session window (default: 24h)
	cacheTTL time.Duration // Cache entry lifetime (default: 5m)
}

// NewSessionService creates a new session service.
//
// Parameters:
//   - db: Durable session store (typically PostgresDB)
//   - sessionCache: Redis cache for resolved sessions; pass nil to disable caching
//   - ttl: Fixed session lifetime (e.g., 24*time.Hour)
//   - cacheTTL: Lifetime of cached session entries (e.g., 5*time.Minute)
//
// Example:
//
//	sessionSvc := services.NewSessionService(postgresDB, cacheInstance, cfg.Session.TTL, cfg.Cache.SessionTTL)
func NewSessionService(db SessionStore, sessionCache *cache.Cache, ttl, cacheTTL time.Duration) *SessionService {
	return &SessionService{
		db:       db,
		cache:    sessionCache,
		ttl:      ttl,
		cacheTTL: cacheTTL,
	}
}

// Create establishes a new session for an authenticated user and returns it.
// The token is a fresh UUID; ExpiresAt is fixed at creation time plus the
// configured TTL and is never extended afterwards.
//
// Session metadata (parsed User-Agent, client IP) is recorded for audit
// logging only; it plays no part in authorization.
//
// Parameters:
//   - ctx: Context for timeout and cancellation
//   - user: The authenticated user
//   - userAgent: Raw User-Agent header (parsed via ExtractDeviceInfo)
//   - ipAddress: Client IP address (use utils.ExtractClientIP)
func (s *SessionService) Create(ctx context.Context, user *models.User, userAgent, ipAddress string) (*models.Session, error) {
	now := time.Now().UTC()
	session := &models.Session{
		Token:     uuid.New().String(),
		UserID:    user.ID,
		Email:     user.Email,
		UserAgent: ExtractDeviceInfo(userAgent),
		IPAddress: ipAddress,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	if err := s.db.InsertSession(ctx, session); err != nil {
		log.Error().
			Err(err).
			Str("user_id", user.ID.String()).
			Msg("Failed to create session")
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	log.Info().
		Str("user_id", user.ID.String()).
		Str("device", session.UserAgent).
		Str("ip", ipAddress).
		Time("expires_at", session.ExpiresAt).
		Msg("Session created")

	return session, nil
}

// Resolve maps a session token to its session, consulting the Redis cache
// before PostgreSQL. Expiry is checked here against the wall clock on every
// resolution, so a cached session cannot outlive its window by more than
// the check itself.
//
// Returns ErrSessionNotFound for unknown tokens and for sessions whose
// window has passed; expired rows are deleted opportunistically.
func (s *SessionService) Resolve(ctx context.Context, token string) (*models.Session, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}

	session, err := s.lookup(ctx, token)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to resolve session: %w", err)
	}

	if session.Expired(time.Now().UTC()) {
		// Lazy cleanup; the periodic sweep catches whatever this misses.
		if err := s.Destroy(ctx, token); err != nil {
			log.Warn().Err(err).Msg("Failed to remove expired session")
		}
		return nil, ErrSessionNotFound
	}

	return session, nil
}

// lookup fetches a session from cache or database via the cache-aside
// helper. Cache failures degrade to a database read, never to an auth
// failure; store errors (including not-found) pass through unchanged.
func (s *SessionService) lookup(ctx context.Context, token string) (*models.Session, error) {
	if s.cache == nil {
		return s.db.GetSession(ctx, token)
	}

	var session models.Session
	err := s.cache.GetOrSet(ctx, cache.SessionKey(token), s.cacheTTL, &session, func() (interface{}, error) {
		return s.db.GetSession(ctx, token)
	})
	if err != nil {
		return nil, err
	}

	// Token is stripped by json:"-" on the way through the cache; restore
	// it from the key we looked up.
	session.Token = token
	return &session, nil
}

// Destroy revokes a session. The operation is idempotent: destroying an
// unknown or already-destroyed token succeeds silently. The cache entry is
// invalidated before the database row so a failed delete cannot leave a
// live cached session pointing at a dead row.
func (s *SessionService) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, cache.SessionKey(token)); err != nil {
			log.Warn().Err(err).Msg("Failed to invalidate cached session")
		}
	}

	if err := s.db.DeleteSession(ctx, token); err != nil {
		return fmt.Errorf("failed to destroy session: %w", err)
	}

	return nil
}

// SweepExpired deletes all sessions whose window has passed. Intended to be
// run periodically from the server's background loop; resolution already
// rejects expired sessions, so the sweep is storage hygiene, not a
// correctness requirement.
func (s *SessionService) SweepExpired(ctx context.Context) (int64, error) {
	removed, err := s.db.DeleteExpiredSessions(ctx, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to sweep sessions: %w", err)
	}

	if removed > 0 {
		log.Info().Int64("removed", removed).Msg("Swept expired sessions")
	}

	return removed, nil
}

// ExtractDeviceInfo extracts human-readable device information from a
// User-Agent header. Parses the User-Agent to identify browser, operating
// system, and device type, formatting a friendly string for session audit
// records.
//
// Returns a formatted string like "Chrome 120.0 / Windows 11 / Desktop" or
// "Unknown Device" if the User-Agent is empty.
func ExtractDeviceInfo(userAgent string) string {
	if userAgent == "" {
		return "Unknown Device"
	}

	ua := useragent.Parse(userAgent)

	var parts []string

	if ua.Name != "" {
		browser := ua.Name
		if ua.Version != "" {
			browser += " " + ua.Version
		}
		parts = append(parts, browser)
	}

	if ua.OS != "" {
		os := ua.OS
		if ua.OSVersion != "" {
			os += " " + ua.OSVersion
		}
		parts = append(parts, os)
	}

	if ua.Mobile {
		parts = append(parts, "Mobile")
	} else if ua.Tablet {
		parts = append(parts, "Tablet")
	} else if ua.Desktop {
		parts = append(parts, "Desktop")
	}

	if len(parts) == 0 {
		// Fallback to truncated user agent
		if len(userAgent) > 100 {
			return userAgent[:100] + "..."
		}
		return userAgent
	}

	return strings.Join(parts, " / ")
}
