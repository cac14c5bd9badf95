package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/swapnilsubhashpatil/Secrets/pkg/utils"
)

// Pinger is the minimal dependency surface the health handler needs from a
// backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check endpoints for monitoring and
// orchestration.
type HealthHandler struct {
	postgres Pinger // PostgreSQL connection for readiness checks
	redis    Pinger // Redis connection for readiness checks
}

// NewHealthHandler creates a new health handler with database dependencies.
//
// Example:
//
//	healthHandler := handlers.NewHealthHandler(postgresDB, redisDB)
//	r.Get("/health", healthHandler.Health)
//	r.Get("/ready", healthHandler.Ready)
func NewHealthHandler(postgres, redis Pinger) *HealthHandler {
	return &HealthHandler{
		postgres: postgres,
		redis:    redis,
	}
}

// HealthResponse represents the health check response structure.
// Used by both the basic health check and detailed readiness check.
//
// JSON example:
//
//	{
//	  "status": "ok",
//	  "timestamp": "2024-01-20T14:30:00Z",
//	  "services": {
//	    "postgres": "healthy",
//	    "redis": "healthy"
//	  }
//	}
type HealthResponse struct {
	Status    string            `json:"status"`             // Overall status: "ok" or "degraded"
	Timestamp time.Time         `json:"timestamp"`          // Current server time
	Services  map[string]string `json:"services,omitempty"` // Individual service health (readiness only)
}

// Health returns a simple health check indicating the service is running.
// This is a liveness probe: it only checks that the application is alive,
// not that it is ready to serve traffic. Use Ready for readiness checks.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
	}

	utils.RespondWithJSON(w, r, http.StatusOK, response)
}

// Ready checks if the service is ready to accept traffic.
// Verifies connectivity to PostgreSQL and Redis with a 5-second timeout.
//
// PostgreSQL is the source of truth for users, secrets, and sessions, so
// losing it means 503. Redis is only the session cache: the session service
// falls back to the database when cache reads fail, so a Redis outage is
// reported as degraded but the instance stays in rotation.
//
// Response status:
//   - "ok": All services healthy (200 OK)
//   - "degraded": Redis unhealthy, PostgreSQL fine (200 OK)
//   - "degraded": PostgreSQL unhealthy (503 Service Unavailable)
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	services := make(map[string]string)
	ready := true
	degraded := false

	if err := h.postgres.Ping(ctx); err != nil {
		log.Error().Err(err).Msg("PostgreSQL health check failed")
		services["postgres"] = "unhealthy"
		ready = false
	} else {
		services["postgres"] = "healthy"
	}

	if err := h.redis.Ping(ctx); err != nil {
		log.Error().Err(err).Msg("Redis health check failed")
		services["redis"] = "unhealthy"
		degraded = true
	} else {
		services["redis"] = "healthy"
	}

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Services:  services,
	}

	statusCode := http.StatusOK
	if !ready {
		response.Status = "degraded"
		statusCode = http.StatusServiceUnavailable
	} else if degraded {
		response.Status = "degraded"
	}

	utils.RespondWithJSON(w, r, statusCode, response)
}
