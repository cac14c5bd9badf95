// Command migrate applies the database schema. It runs at deploy time,
// before the server starts; the server itself never touches the schema, so
// concurrently starting replicas cannot race each other on DDL.
//
// Usage:
//
//	migrate            # apply the schema
//	migrate -sweep     # apply the schema, then delete expired sessions
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/swapnilsubhashpatil/Secrets/internal/database"
	"github.com/swapnilsubhashpatil/Secrets/pkg/config"
)

// schema is the complete database schema. Every statement is idempotent, so
// re-running the command against an up-to-date database is a no-op.
const schema = `
	CREATE EXTENSION IF NOT EXISTS pgcrypto;

	CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		email VARCHAR(255) UNIQUE NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);

	CREATE TABLE IF NOT EXISTS secrets (
		secret_id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id UUID NOT NULL REFERENCES users(id),
		secret TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_secrets_user_id ON secrets(user_id);
	CREATE INDEX IF NOT EXISTS idx_secrets_user_created ON secrets(user_id, created_at DESC);

	CREATE TABLE IF NOT EXISTS sessions (
		token VARCHAR(64) PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id),
		email VARCHAR(255) NOT NULL,
		user_agent TEXT NOT NULL DEFAULT '',
		ip_address VARCHAR(45) NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		expires_at TIMESTAMPTZ NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);
`

func main() {
	sweep := flag.Bool("sweep", false, "delete expired sessions after migrating")
	flag.Parse()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := loadDatabaseConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load database configuration")
	}

	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if err := db.RunMigrations(ctx, schema); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	log.Info().Msg("Schema applied")

	if *sweep {
		removed, err := db.DeleteExpiredSessions(ctx, time.Now().UTC())
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to sweep expired sessions")
		}
		log.Info().Int64("removed", removed).Msg("Swept expired sessions")
	}
}

// loadDatabaseConfig reads only the database settings from the environment.
// The migrate command deliberately skips the full config loader: it has no
// use for OAuth credentials or session secrets, and requiring them would
// couple schema deploys to application secrets.
func loadDatabaseConfig() (*config.DatabaseConfig, error) {
	_ = godotenv.Load()

	password := os.Getenv("POSTGRES_PASSWORD")
	if password == "" {
		return nil, fmt.Errorf("required environment variable POSTGRES_PASSWORD is not set")
	}

	cfg := &config.DatabaseConfig{
		Host:     envOr("POSTGRES_HOST", "localhost"),
		Port:     envOr("POSTGRES_PORT", "5432"),
		Database: envOr("POSTGRES_DB", "secrets"),
		User:     envOr("POSTGRES_USER", "secrets"),
		Password: password,
		MaxConns: 2,
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
