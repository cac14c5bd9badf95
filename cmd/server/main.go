package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/swapnilsubhashpatil/Secrets/internal/database"
	"github.com/swapnilsubhashpatil/Secrets/internal/handlers"
	"github.com/swapnilsubhashpatil/Secrets/internal/middleware"
	"github.com/swapnilsubhashpatil/Secrets/internal/services"
	"github.com/swapnilsubhashpatil/Secrets/pkg/cache"
	"github.com/swapnilsubhashpatil/Secrets/pkg/config"
)

// sweepInterval is how often the background loop removes expired session
// rows. Resolution already rejects expired sessions, so the sweep only
// controls table growth.
const sweepInterval = 1 * time.Hour

func main() {
	// Initialize logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log.Info().
		Str("env", cfg.Server.Environment).
		Str("port", cfg.Server.Port).
		Msg("Starting secrets service")

	// Initialize PostgreSQL. Schema management lives in cmd/migrate and runs
	// at deploy time; the server assumes the schema is already in place.
	postgresDB, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer postgresDB.Close()

	// Initialize Redis
	redisDB, err := database.NewRedisDB(&cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisDB.Close()

	// Initialize the session cache
	var sessionCache *cache.Cache
	if cfg.Cache.Enabled {
		sessionCache = cache.NewCache(redisDB.Client())
	}

	// Initialize services
	localService := services.NewLocalAuthService(postgresDB)
	oauthService := services.NewOAuthService(&cfg.OAuth, postgresDB)
	stateService := services.NewStateService(cfg.Session.Secret)
	sessionService := services.NewSessionService(postgresDB, sessionCache, cfg.Session.TTL, cfg.Cache.SessionTTL)
	secretService := services.NewSecretService(postgresDB)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(
		localService,
		oauthService,
		stateService,
		sessionService,
		cfg.IsProduction(),
		cfg.Server.FrontendURL,
	)
	secretHandler := handlers.NewSecretHandler(secretService)
	healthHandler := handlers.NewHealthHandler(postgresDB, redisDB)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recoverer())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.FrontendURL))
	r.Use(chimiddleware.Compress(5))
	r.Use(chimiddleware.Timeout(60 * time.Second))

	// Health check endpoints
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	r.Handle("/metrics", middleware.MetricsHandler())

	// Public endpoints
	r.Get("/api/check-auth", authHandler.CheckAuth)
	r.Post("/api/login", authHandler.Login)
	r.Post("/api/register", authHandler.Register)
	r.Get("/api/logout", authHandler.Logout)
	r.Get("/api/auth/google", authHandler.GoogleLogin)
	r.Get("/auth/google/secrets", authHandler.GoogleCallback)

	// Protected endpoints (require a valid session)
	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionAuth(sessionService))
		r.Get("/api/secrets", secretHandler.List)
		r.Post("/api/submit", secretHandler.Submit)
		r.Post("/api/secrets/delete", secretHandler.Delete)
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Periodically sweep expired sessions
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-sweepCtx.Done():
				return
			case <-ticker.C:
				removed, err := sessionService.SweepExpired(sweepCtx)
				if err != nil {
					log.Warn().Err(err).Msg("Session sweep failed")
					continue
				}
				middleware.AddSessionsSwept(removed)
			}
		}
	}()

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", server.Addr).Msg("Server started")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Wait for interrupt signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped gracefully")
}
