// Package database provides database access layers for PostgreSQL and Redis.
// Implements connection management, query operations, and error mapping with
// automatic retry logic during connection bootstrap and connection pooling.
//
// PostgreSQL is the durable store for users, secrets, and sessions.
// Redis is used only as a read-through cache on top of it.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"github.com/swapnilsubhashpatil/Secrets/internal/models"
	"github.com/swapnilsubhashpatil/Secrets/pkg/config"
	"github.com/swapnilsubhashpatil/Secrets/pkg/utils"
)

// Storage-level sentinel errors. The service layer maps these onto its own
// error taxonomy; handlers never see them directly.
var (
	// ErrNotFound indicates no row matched the query. For owner-scoped
	// secret operations this deliberately covers both "does not exist"
	// and "exists but belongs to someone else".
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateEmail indicates a unique-constraint violation on users.email.
	ErrDuplicateEmail = errors.New("email already registered")
)

// uniqueViolation is the PostgreSQL error code for unique-constraint violations.
const uniqueViolation = "23505"

// PostgresDB wraps a PostgreSQL database connection with connection pooling.
// Provides high-level methods for user, secret, and session persistence.
//
// Features:
//   - Automatic connection retry with exponential backoff at startup
//   - Connection pooling (configurable max connections)
//   - Sentinel-error mapping for not-found and duplicate-key outcomes
//   - Health check support
type PostgresDB struct {
	db *sql.DB // Underlying connection pool
}

// NewPostgresDB creates a new PostgreSQL connection with automatic retry.
// Implements exponential backoff retry logic to handle transient connection
// failures during startup (e.g., database container not ready yet).
//
// Connection pool settings:
//   - MaxOpenConns: From configuration (default: 25)
//   - MaxIdleConns: Half of MaxOpenConns
//   - ConnMaxLifetime: 1 hour
//
// Returns the connected database or an error if all retries fail.
func NewPostgresDB(cfg *config.DatabaseConfig) (*PostgresDB, error) {
	var db *sql.DB
	var connErr error

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	retryConfig := utils.DatabaseRetryConfig()
	retryConfig.MaxAttempts = 5
	retryConfig.InitialDelay = 100 * time.Millisecond
	retryConfig.MaxDelay = 3 * time.Second

	err := utils.Retry(ctx, retryConfig, func() error {
		var err error
		db, err = sql.Open("postgres", cfg.DSN())
		if err != nil {
			connErr = err
			log.Warn().Err(err).Msg("Failed to open database connection, retrying...")
			return err
		}

		db.SetMaxOpenConns(cfg.MaxConns)
		db.SetMaxIdleConns(cfg.MaxConns / 2)
		db.SetConnMaxLifetime(time.Hour)

		pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer pingCancel()

		if err := db.PingContext(pingCtx); err != nil {
			connErr = err
			log.Warn().Err(err).Msg("Failed to ping database, retrying...")
			db.Close() // Clean up failed connection
			return err
		}

		return nil
	})

	if err != nil {
		if connErr != nil {
			return nil, fmt.Errorf("failed to connect to database after retries: %w", connErr)
		}
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Info().Msg("Successfully connected to PostgreSQL")

	return &PostgresDB{db: db}, nil
}

// NewPostgresDBFromConn wraps an existing *sql.DB. Used by tests (sqlmock)
// and by the migrate command, which manages its own connection lifecycle.
func NewPostgresDBFromConn(db *sql.DB) *PostgresDB {
	return &PostgresDB{db: db}
}

// Close closes the database connection and releases all resources.
// Should be called when shutting down the application, typically
// with defer in main().
func (p *PostgresDB) Close() error {
	return p.db.Close()
}

// Ping checks if the database connection is alive.
// Used by health check endpoints to verify database availability.
func (p *PostgresDB) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// RunMigrations executes a schema migration script. This is invoked by the
// migrate command at deploy time, never by the server at boot, so that
// concurrent instance startup cannot race on DDL.
func (p *PostgresDB) RunMigrations(ctx context.Context, migrationSQL string) error {
	_, err := p.db.ExecContext(ctx, migrationSQL)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info().Msg("Database migrations completed successfully")
	return nil
}

// --- Users ---

// CreateUser inserts a new user row and returns the stored record.
// The user ID and creation timestamp are generated by the database; the
// insert returns them in the same statement, so there is no read-after-write
// round trip.
//
// passwordHash is either a bcrypt hash (local registration) or the OAuth
// sentinel (accounts created by the Google strategy).
//
// Returns ErrDuplicateEmail when the email is already registered; the unique
// constraint is the single source of truth, so two concurrent registrations
// for the same email cannot both succeed.
func (p *PostgresDB) CreateUser(ctx context.Context, email, passwordHash string) (*models.User, error) {
	query := `
		INSERT INTO users (email, password_hash)
		VALUES ($1, $2)
		RETURNING id, email, password_hash, created_at
	`

	var user models.User
	err := p.db.QueryRowContext(ctx, query, email, passwordHash).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Info().
		Str("user_id", user.ID.String()).
		Str("email", user.Email).
		Msg("User created")

	return &user, nil
}

// GetUserByEmail retrieves a user by exact email match.
// Returns ErrNotFound if no such user exists.
func (p *PostgresDB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, email, password_hash, created_at
		FROM users
		WHERE email = $1
	`

	var user models.User
	err := p.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

// --- Secrets ---

// CreateSecret inserts a secret for the given owner and returns the stored
// record including the generated id and timestamp (single RETURNING
// statement).
func (p *PostgresDB) CreateSecret(ctx context.Context, userID uuid.UUID, content string) (*models.Secret, error) {
	query := `
		INSERT INTO secrets (user_id, secret)
		VALUES ($1, $2)
		RETURNING secret_id, user_id, secret, created_at
	`

	var secret models.Secret
	err := p.db.QueryRowContext(ctx, query, userID, content).Scan(
		&secret.ID,
		&secret.UserID,
		&secret.Content,
		&secret.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create secret: %w", err)
	}

	return &secret, nil
}

// ListSecrets returns the owner's secrets ordered by creation time,
// newest first. An empty result is valid and returns an empty slice,
// not nil and not an error.
func (p *PostgresDB) ListSecrets(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Secret, error) {
	query := `
		SELECT secret_id, user_id, secret, created_at
		FROM secrets
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := p.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list secrets: %w", err)
	}
	defer rows.Close()

	secrets := make([]models.Secret, 0)
	for rows.Next() {
		var secret models.Secret
		if err := rows.Scan(&secret.ID, &secret.UserID, &secret.Content, &secret.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan secret: %w", err)
		}
		secrets = append(secrets, secret)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list secrets: %w", err)
	}

	return secrets, nil
}

// UpdateSecret replaces the content of a secret identified by
// (secretID, userID) and returns the updated record.
//
// Returns ErrNotFound when no row matches the pair — the same outcome whether
// the id does not exist or belongs to another user, so a caller probing with
// guessed ids learns nothing.
func (p *PostgresDB) UpdateSecret(ctx context.Context, userID, secretID uuid.UUID, content string) (*models.Secret, error) {
	query := `
		UPDATE secrets
		SET secret = $1
		WHERE secret_id = $2 AND user_id = $3
		RETURNING secret_id, user_id, secret, created_at
	`

	var secret models.Secret
	err := p.db.QueryRowContext(ctx, query, content, secretID, userID).Scan(
		&secret.ID,
		&secret.UserID,
		&secret.Content,
		&secret.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update secret: %w", err)
	}

	return &secret, nil
}

// DeleteSecret removes a secret identified by (secretID, userID).
//
// Returns ErrNotFound when no row matches the pair, including a repeated
// delete of the same id — the caller cannot distinguish "never existed",
// "already deleted", and "not yours".
func (p *PostgresDB) DeleteSecret(ctx context.Context, userID, secretID uuid.UUID) error {
	query := `
		DELETE FROM secrets
		WHERE secret_id = $1 AND user_id = $2
	`

	result, err := p.db.ExecContext(ctx, query, secretID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete secret: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// --- Sessions ---

// InsertSession persists a new session row. Sessions live in the same durable
// store as users and secrets so that restarts and horizontal scaling neither
// log users out nor resurrect revoked sessions.
func (p *PostgresDB) InsertSession(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO sessions (token, user_id, email, user_agent, ip_address, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := p.db.ExecContext(ctx, query,
		session.Token,
		session.UserID,
		session.Email,
		session.UserAgent,
		session.IPAddress,
		session.CreatedAt,
		session.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	return nil
}

// GetSession retrieves a session by its opaque token.
// Returns ErrNotFound if the token is unknown. Expiry is not checked here;
// the session service owns that decision.
func (p *PostgresDB) GetSession(ctx context.Context, token string) (*models.Session, error) {
	query := `
		SELECT token, user_id, email, user_agent, ip_address, created_at, expires_at
		FROM sessions
		WHERE token = $1
	`

	var session models.Session
	err := p.db.QueryRowContext(ctx, query, token).Scan(
		&session.Token,
		&session.UserID,
		&session.Email,
		&session.UserAgent,
		&session.IPAddress,
		&session.CreatedAt,
		&session.ExpiresAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return &session, nil
}

// DeleteSession removes a session row. Deleting a token that no longer
// exists is not an error — logout must be idempotent.
func (p *PostgresDB) DeleteSession(ctx context.Context, token string) error {
	query := `DELETE FROM sessions WHERE token = $1`

	if _, err := p.db.ExecContext(ctx, query, token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}

// DeleteExpiredSessions removes all sessions whose fixed window has passed.
// Run from the migrate/maintenance path; resolve already ignores expired
// rows, so this is garbage collection rather than enforcement.
func (p *PostgresDB) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	query := `DELETE FROM sessions WHERE expires_at <= $1`

	result, err := p.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}
